package models

import "time"

// Group is a discussion group created by a senior user. Groups are immutable
// after creation; the ID is assigned by the storage backend.
type Group struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	CreatorID   string    `json:"creator_id" bson:"creator_id"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}
