package models

import "time"

// User is a registered community member. The ID equals the chosen username in
// every storage backend; users are immutable after registration.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	IsSenior     bool      `json:"is_senior" bson:"is_senior"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}
