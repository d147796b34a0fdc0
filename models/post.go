package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Post struct {
	ID        bson.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Content   string          `json:"content" bson:"content"`
	Author    bson.ObjectID   `json:"author" bson:"author"`
	Likes     []bson.ObjectID `json:"likes" bson:"likes"`
	Comments  []bson.ObjectID `json:"comments" bson:"comments"`
	CreatedAt time.Time       `json:"createdAt" bson:"createdAt"`
}

type PostWithAuthor struct {
	ID        bson.ObjectID     `json:"_id"`
	Content   string            `json:"content"`
	Author    UserRef           `json:"author"`
	Likes     []bson.ObjectID   `json:"likes"`
	Comments  []CommentWithUser `json:"comments"`
	CreatedAt time.Time         `json:"createdAt"`
}
