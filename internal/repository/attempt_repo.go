package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"triviarena/internal/model"
)

// AttemptRepository handles MongoDB operations for quiz attempts. Attempts
// are append-only: there is no update or delete.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *model.Attempt) error
	TopByName(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
}

type attemptRepository struct {
	collection *mongo.Collection
}

// NewAttemptRepository creates a new attempt repository.
func NewAttemptRepository(db *mongo.Database) AttemptRepository {
	return &attemptRepository{
		collection: db.Collection("attempts"),
	}
}

func (r *attemptRepository) Create(ctx context.Context, attempt *model.Attempt) error {
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now()
	}

	result, err := r.collection.InsertOne(ctx, attempt)
	if err != nil {
		return err
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		attempt.ID = oid.Hex()
	}
	return nil
}

// TopByName groups attempts by player name, keeps each player's best score
// with the percentage derived from that same record, and returns at most
// limit entries sorted by percentage descending.
func (r *attemptRepository) TopByName(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$name"},
			{Key: "score", Value: bson.D{{Key: "$max", Value: "$score"}}},
			{Key: "total", Value: bson.D{{Key: "$first", Value: "$total"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "name", Value: "$_id"},
			{Key: "percentage", Value: bson.D{{Key: "$round", Value: bson.A{
				bson.D{{Key: "$multiply", Value: bson.A{
					bson.D{{Key: "$divide", Value: bson.A{"$score", "$total"}}},
					100,
				}}},
				2,
			}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "percentage", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []model.LeaderboardEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
