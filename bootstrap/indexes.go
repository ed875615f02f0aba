package bootstrap

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// EnsureIndexes creates the indexes the duplicate checks lean on. The
// create paths still check-then-merge; these make the race land on a
// duplicate-key error instead of a second document.
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("uploads").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "file_hash", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"type": "notes", "file_hash": bson.M{"$type": "string"}}),
		},
		{
			Keys: bson.D{
				{Key: "subject", Value: 1},
				{Key: "branch", Value: 1},
				{Key: "semester", Value: 1},
				{Key: "year", Value: 1},
			},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"type": "pyp"}),
		},
		{
			Keys: bson.D{{Key: "type", Value: 1}, {Key: "created_at", Value: -1}},
		},
	})
	return err
}
