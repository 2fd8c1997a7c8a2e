package models

import "time"

// Message is a post within a group. The timestamp is assigned by the storage
// backend at insertion; client-supplied timestamps are ignored.
type Message struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Content   string    `json:"content" bson:"content"`
	GroupID   string    `json:"group_id" bson:"group_id"`
	SenderID  string    `json:"sender_id" bson:"sender_id"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}
