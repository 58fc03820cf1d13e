package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Export stores metadata about a workout snapshot written to object storage.
// The snapshot itself lives in the bucket under ObjectKey.
type Export struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutID   primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	ObjectKey   string             `bson:"objectKey" json:"objectKey"`
	ContentType string             `bson:"contentType" json:"contentType"` // Always application/json for now
	Size        int64              `bson:"size" json:"size"`               // Snapshot size in bytes
	ExportedAt  time.Time          `bson:"exportedAt" json:"exportedAt"`
}
