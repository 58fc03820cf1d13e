// internal/domain/exercise.go
package domain

// Exercise is one movement entry inside a split.
type Exercise struct {
	Name   string `bson:"name" json:"name"`
	Sets   int    `bson:"sets" json:"sets"`
	Reps   string `bson:"reps" json:"reps"`                         // Free-form, supports ranges like "10-12"
	Weight string `bson:"weight,omitempty" json:"weight,omitempty"` // Unit embedded in text, e.g. "50kg"
	Notes  string `bson:"notes,omitempty" json:"notes,omitempty"`
}
