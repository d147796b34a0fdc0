package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Comment struct {
	ID        bson.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Content   string          `json:"content" bson:"content"`
	Author    bson.ObjectID   `json:"author" bson:"author"`
	Post      bson.ObjectID   `json:"post" bson:"post"`
	Likes     []bson.ObjectID `json:"likes" bson:"likes"`
	CreatedAt time.Time       `json:"createdAt" bson:"createdAt"`
}

type CommentWithUser struct {
	ID        bson.ObjectID `json:"_id"`
	Content   string        `json:"content"`
	Author    UserRef       `json:"author"`
	CreatedAt time.Time     `json:"createdAt"`
}
