package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Auth methods.
const (
	AuthMethodPassword = "password"
	AuthMethodGoogle   = "google"
)

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName string             `bson:"full_name" json:"full_name"`

	Email   string `bson:"email" json:"email"`
	EmailCI string `bson:"email_ci" json:"-"` // folded, unique

	PasswordHash string `bson:"password_hash,omitempty" json:"-"`
	AuthMethod   string `bson:"auth_method" json:"auth_method"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
