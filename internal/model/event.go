// Package model holds the documents stored in MongoDB.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a schedulable entity: a list of candidate days, a daily time window
// and the times each participant has said they are available.
//
// StartTime and EndTime are kept exactly as the client sent them.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"eventURI"`
	Days        []string           `bson:"days" json:"days"`
	StartTime   string             `bson:"start_time" json:"startTime"`
	EndTime     string             `bson:"end_time" json:"endTime"`
	Submissions []Submission       `bson:"submissions" json:"submissions"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// URI returns the identifier clients use in /event/:eventURI.
func (e *Event) URI() string {
	return e.ID.Hex()
}

// Submission is one participant's selected times for an event.
type Submission struct {
	Username  string    `bson:"username" json:"username"`
	Times     []string  `bson:"times" json:"times"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
