package models

import "time"

// Admin is the single privileged role. Passwords are stored only as bcrypt
// hashes; admins are never created or deleted through the UI.
type Admin struct {
	ID           string    `json:"id" db:"-" bson:"-"`
	Username     string    `json:"username" db:"username" bson:"username"`
	PasswordHash string    `json:"-" db:"password_hash" bson:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at" bson:"created_at"`
}
