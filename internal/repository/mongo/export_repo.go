package mongo

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const exportCollectionName = "exports"

// mongoExportRepository implements repository.ExportRepository
type mongoExportRepository struct {
	collection *mongo.Collection
}

// NewMongoExportRepository creates a new Export repository backed by MongoDB.
func NewMongoExportRepository(db *mongo.Database) repository.ExportRepository {
	return &mongoExportRepository{
		collection: db.Collection(exportCollectionName),
	}
}

// Create inserts new export metadata into the database.
func (r *mongoExportRepository) Create(ctx context.Context, export *domain.Export) (primitive.ObjectID, error) {
	if export.WorkoutID == primitive.NilObjectID || export.ObjectKey == "" {
		return primitive.NilObjectID, fmt.Errorf("%w: export requires workoutId and objectKey", repository.ErrInvalidInput)
	}

	export.ID = primitive.NewObjectID()
	export.ExportedAt = now()

	result, err := r.collection.InsertOne(ctx, export)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves export metadata by its ID.
func (r *mongoExportRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Export, error) {
	var export domain.Export
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&export)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &export, nil
}

// GetByWorkoutID retrieves all exports of a workout, newest first.
func (r *mongoExportRepository) GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.Export, error) {
	filter := bson.M{"workoutId": workoutID}
	findOptions := options.Find().SetSort(bson.D{{Key: "exportedAt", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	exports := []domain.Export{}
	if err = cursor.All(ctx, &exports); err != nil {
		return nil, err
	}
	return exports, nil
}

// EnsureExportIndexes creates necessary indexes for the exports collection.
func EnsureExportIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workoutId", Value: 1}, {Key: "exportedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			// Object keys embed a UUID and must stay unique within the bucket
			Keys:    bson.D{{Key: "objectKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Warnf("failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
