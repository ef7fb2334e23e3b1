package repository

import (
	"context"
	"errors"
	"time"

	"github.com/deppfellow/event-scheduler/internal/database"
	"github.com/deppfellow/event-scheduler/internal/dberr"
	"github.com/deppfellow/event-scheduler/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventRepository stores events in a single collection. Submissions are
// embedded in their event, so every write is a single-document update and
// MongoDB's document-level atomicity is all the coordination needed.
type EventRepository struct {
	db         *database.Database
	collection *mongo.Collection
	name       string
}

func NewEventRepository(db *database.Database, collection string) *EventRepository {
	return &EventRepository{
		db:         db,
		collection: db.DB.Collection(collection),
		name:       collection,
	}
}

// Create inserts event and sets its generated ID.
func (r *EventRepository) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	if event.Submissions == nil {
		// $push on a null field fails, so new events start with an empty array.
		event.Submissions = []model.Submission{}
	}

	res, err := r.collection.InsertOne(ctx, event)
	if err != nil {
		return nil, dberr.Wrap(err, r.name, "insert")
	}

	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		event.ID = id
	}

	return event, nil
}

// GetByID fetches one event.
func (r *EventRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Event, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	var event model.Event
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&event); err != nil {
		return nil, dberr.Wrap(err, r.name, "find")
	}

	return &event, nil
}

// UpsertSubmission replaces the times of sub.Username on the event, or appends
// a new submission when the participant has not answered yet. It returns the
// event as stored after the write.
func (r *EventRepository) UpsertSubmission(ctx context.Context, id primitive.ObjectID, sub model.Submission) (*model.Event, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	// Two attempts: a concurrent first submission by the same user can land
	// between the $set miss and the $push, in which case the $set now matches.
	for attempt := 0; attempt < 2; attempt++ {
		var event model.Event

		err := r.collection.FindOneAndUpdate(ctx,
			bson.M{"_id": id, "submissions.username": sub.Username},
			bson.M{"$set": bson.M{
				"submissions.$.times":      sub.Times,
				"submissions.$.updated_at": sub.UpdatedAt,
				"updated_at":               sub.UpdatedAt,
			}},
			after,
		).Decode(&event)
		if err == nil {
			return &event, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, dberr.Wrap(err, r.name, "update")
		}

		err = r.collection.FindOneAndUpdate(ctx,
			bson.M{"_id": id, "submissions.username": bson.M{"$ne": sub.Username}},
			bson.M{
				"$push": bson.M{"submissions": sub},
				"$set":  bson.M{"updated_at": sub.UpdatedAt},
			},
			after,
		).Decode(&event)
		if err == nil {
			return &event, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, dberr.Wrap(err, r.name, "update")
		}

		exists, err := r.exists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, dberr.Wrap(mongo.ErrNoDocuments, r.name, "update")
		}
	}

	return nil, dberr.Wrap(errors.New("submission changed concurrently"), r.name, "update")
}

func (r *EventRepository) exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, dberr.Wrap(err, r.name, "count")
	}
	return n > 0, nil
}

// Now is the clock used for created/updated timestamps, truncated to the
// millisecond precision MongoDB stores.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
