package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type FCMToken struct {
	ID        bson.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID    bson.ObjectID `json:"userId" bson:"userId"`
	Token     string        `json:"token" bson:"token"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updatedAt"`
}
