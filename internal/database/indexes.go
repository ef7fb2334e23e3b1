package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Indexes lists the indexes the service expects, per collection name.
// Creating an index that already exists with the same keys and options is a no-op, so
// EnsureIndexes is safe to run on every start.
func Indexes(eventsCollection string) map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		eventsCollection: {
			{
				Keys:    bson.D{{Key: "created_at", Value: -1}},
				Options: options.Index().SetName("created_at_desc"),
			},
			{
				// Lets operators find every event a participant answered.
				Keys:    bson.D{{Key: "submissions.username", Value: 1}},
				Options: options.Index().SetName("submissions_username"),
			},
		},
	}
}

// EnsureIndexes creates any missing index from Indexes.
func (db *Database) EnsureIndexes(ctx context.Context, logger *zerolog.Logger, eventsCollection string) error {
	for collection, models := range Indexes(eventsCollection) {
		names, err := db.DB.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("creating indexes on %s: %w", collection, err)
		}

		logger.Info().
			Str("collection", collection).
			Strs("indexes", names).
			Msg("database indexes up to date")
	}
	return nil
}
