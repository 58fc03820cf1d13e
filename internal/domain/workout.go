package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutType distinguishes seeded templates from user-owned workouts.
type WorkoutType string

const (
	WorkoutTypePredefined WorkoutType = "predefined" // Seeded template, read and copy only
	WorkoutTypeCustom     WorkoutType = "custom"     // Created or copied by the user, fully mutable
)

// Valid reports whether t is one of the known workout types.
func (t WorkoutType) Valid() bool {
	return t == WorkoutTypePredefined || t == WorkoutTypeCustom
}

// Workout is a named training program made of ordered splits.
// Splits and their exercises are embedded in the workout document and owned by it.
type Workout struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Type      WorkoutType        `bson:"type" json:"type"`
	Splits    []WorkoutSplit     `bson:"splits" json:"splits"` // Order is the weekly training-day sequence
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// WorkoutSplit groups the exercises of one training day, e.g. "A - Peito e Tríceps".
type WorkoutSplit struct {
	Day       string     `bson:"day" json:"day"`
	Exercises []Exercise `bson:"exercises" json:"exercises"`
}

func (w *Workout) IsPredefined() bool {
	return w.Type == WorkoutTypePredefined
}

func (w *Workout) IsCustom() bool {
	return w.Type == WorkoutTypeCustom
}

// Clone returns a deep copy of the workout. The returned splits and exercises
// share no backing arrays with w, so mutating one never affects the other.
func (w *Workout) Clone() *Workout {
	if w == nil {
		return nil
	}
	clone := *w
	clone.Splits = CloneSplits(w.Splits)
	return &clone
}

// CloneSplits deep-copies a split sequence. A nil input yields an empty, non-nil slice.
func CloneSplits(splits []WorkoutSplit) []WorkoutSplit {
	out := make([]WorkoutSplit, len(splits))
	for i, s := range splits {
		exercises := make([]Exercise, len(s.Exercises))
		copy(exercises, s.Exercises) // Exercise holds only value fields
		out[i] = WorkoutSplit{Day: s.Day, Exercises: exercises}
	}
	return out
}
