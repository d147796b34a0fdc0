package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type User struct {
	ID        bson.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name      string        `json:"name" bson:"name"`
	Email     string        `json:"email" bson:"email"`
	Password  string        `json:"-" bson:"password"`
	Bio       string        `json:"bio" bson:"bio"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt"`
}

// UserRef is the one-level author resolution embedded in post and
// comment responses.
type UserRef struct {
	ID   bson.ObjectID `json:"_id" bson:"_id"`
	Name string        `json:"name" bson:"name"`
}
