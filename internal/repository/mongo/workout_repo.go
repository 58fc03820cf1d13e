// internal/repository/mongo/workout_repo.go
package mongo

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// now returns the current time at the precision MongoDB stores, so values
// returned from Create compare equal to what a later read decodes.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// Create inserts a new workout, assigning its ID and timestamps.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.Name == "" || !workout.Type.Valid() {
		return primitive.NilObjectID, fmt.Errorf("%w: workout requires name and a valid type", repository.ErrInvalidInput)
	}
	prepareInsert(workout)

	result, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout ID")
	}
	return insertedID, nil
}

// CreateMany inserts several workouts in one round trip. Used by seeding.
func (r *mongoWorkoutRepository) CreateMany(ctx context.Context, workouts []*domain.Workout) error {
	if len(workouts) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(workouts))
	for _, w := range workouts {
		if w.Name == "" || !w.Type.Valid() {
			return fmt.Errorf("%w: workout requires name and a valid type", repository.ErrInvalidInput)
		}
		prepareInsert(w)
		docs = append(docs, w)
	}
	// Ordered insert keeps the catalog order, which predefined listings rely on.
	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	return err
}

func prepareInsert(w *domain.Workout) {
	w.ID = primitive.NewObjectID()
	ts := now()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = ts
	}
	w.UpdatedAt = ts
	w.Splits = domain.CloneSplits(w.Splits) // never persist null arrays
}

// GetByID retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// List retrieves workouts, optionally filtered by type.
func (r *mongoWorkoutRepository) List(ctx context.Context, opts repository.ListOptions) ([]domain.Workout, error) {
	filter := bson.M{}
	if opts.Type != "" {
		filter["type"] = opts.Type
	}
	findOptions := options.Find()
	if opts.NewestFirst {
		findOptions.SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	workouts := []domain.Workout{}
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return workouts, nil
}

// CountByType counts workouts of the given type.
func (r *mongoWorkoutRepository) CountByType(ctx context.Context, workoutType domain.WorkoutType) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"type": workoutType})
}

// Update replaces the name and splits of an existing workout.
// ID, type and createdAt are never touched.
func (r *mongoWorkoutRepository) Update(ctx context.Context, workout *domain.Workout) error {
	if workout.ID == primitive.NilObjectID {
		return fmt.Errorf("%w: workout ID is required for update", repository.ErrInvalidInput)
	}
	workout.Splits = domain.CloneSplits(workout.Splits)
	workout.UpdatedAt = now()

	filter := bson.M{"_id": workout.ID}
	updateDoc := bson.M{
		"$set": bson.M{
			"name":      workout.Name,
			"splits":    workout.Splits,
			"updatedAt": workout.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a workout by ID.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Ping checks that the primary is reachable.
func (r *mongoWorkoutRepository) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, readpref.Primary())
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Listing by type, newest first
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("workout_type_created"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("workout_created"),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Warnf("failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
