package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"linkdein.com/project-linkdein/middleware"
	"linkdein.com/project-linkdein/models"
	"linkdein.com/project-linkdein/services"
)

const (
	postListLimit     = 50
	commentListLimit  = 50
	trendingPoolLimit = 5
	trendingWindow    = 7 * 24 * time.Hour
)

func CreatePost(db *mongo.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)

		var req struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		content, ok := trimContent(req.Content)
		if !ok {
			respondError(w, http.StatusBadRequest, "Post content is required")
			return
		}

		post := models.Post{
			Content:   content,
			Author:    userID,
			Likes:     []bson.ObjectID{},
			Comments:  []bson.ObjectID{},
			CreatedAt: time.Now().UTC(),
		}

		result, err := db.Collection("posts").InsertOne(r.Context(), post)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("CreatePost error:", err)
			return
		}
		post.ID = result.InsertedID.(bson.ObjectID)

		authors, err := fetchUserRefs(r.Context(), db, []bson.ObjectID{userID})
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("CreatePost author lookup error:", err)
			return
		}

		respondJSON(w, http.StatusCreated, map[string]interface{}{
			"message": "Post created successfully",
			"post": models.PostWithAuthor{
				ID:        post.ID,
				Content:   post.Content,
				Author:    authors[userID],
				Likes:     post.Likes,
				Comments:  []models.CommentWithUser{},
				CreatedAt: post.CreatedAt,
			},
		})
	}
}

func GetPosts(db *mongo.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := bson.M{}
		if userIDStr := r.URL.Query().Get("userId"); userIDStr != "" {
			authorID, err := bson.ObjectIDFromHex(userIDStr)
			if err != nil {
				respondError(w, http.StatusBadRequest, "Invalid userId")
				return
			}
			filter["author"] = authorID
		}

		posts, err := findPosts(r.Context(), db, filter, postListLimit)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("GetPosts error:", err)
			return
		}

		populated, err := populatePosts(r.Context(), db, posts)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("GetPosts populate error:", err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{"posts": populated})
	}
}

// GetTrendingPosts ranks the candidate pool by like count. The pool is
// the trendingPoolLimit newest posts inside the trailing seven days,
// taken BEFORE the like-count ordering: a heavily liked post older than
// the pool window never appears. That limit-then-sort staging is the
// shipped behavior and callers depend on it.
func GetTrendingPosts(db *mongo.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		since := time.Now().UTC().Add(-trendingWindow)

		posts, err := findPosts(r.Context(), db,
			bson.M{"createdAt": bson.M{"$gte": since}}, trendingPoolLimit)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("GetTrendingPosts error:", err)
			return
		}

		rankByLikes(posts)

		authors, err := fetchUserRefs(r.Context(), db, postAuthorIDs(posts))
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("GetTrendingPosts author lookup error:", err)
			return
		}

		trending := make([]map[string]interface{}, 0, len(posts))
		for _, p := range posts {
			trending = append(trending, map[string]interface{}{
				"_id":       p.ID,
				"content":   p.Content,
				"author":    authors[p.Author],
				"likes":     nonNilIDs(p.Likes),
				"comments":  nonNilIDs(p.Comments),
				"createdAt": p.CreatedAt,
			})
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{"posts": trending})
	}
}

func ToggleLike(db *mongo.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)

		postID, err := bson.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}

		posts := db.Collection("posts")

		// Each branch is one atomic document update. The $ne guard
		// makes the insert conditional; when it does not match, the
		// caller already likes the post (or it is gone) and the $pull
		// branch decides which.
		liked := true
		addFilter, addUpdate := likeInsertDocs(postID, userID)
		result, err := posts.UpdateOne(r.Context(), addFilter, addUpdate)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("ToggleLike add error:", err)
			return
		}

		if result.MatchedCount == 0 {
			liked = false
			pullFilter, pullUpdate := likeRemoveDocs(postID, userID)
			result, err = posts.UpdateOne(r.Context(), pullFilter, pullUpdate)
			if err != nil {
				respondError(w, http.StatusInternalServerError, "Internal server error")
				log.Println("ToggleLike remove error:", err)
				return
			}
			if result.MatchedCount == 0 {
				respondError(w, http.StatusNotFound, "Post not found")
				return
			}
		}

		var post models.Post
		if err := posts.FindOne(r.Context(), bson.M{"_id": postID}).Decode(&post); err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("ToggleLike readback error:", err)
			return
		}

		message := "Post liked"
		if !liked {
			message = "Post unliked"
		}

		if liked {
			go notifyPostOwnerOfLike(db, post, userID)
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"message":   message,
			"likes":     nonNilIDs(post.Likes),
			"likeCount": len(post.Likes),
		})
	}
}

func CreateComment(db *mongo.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)

		postID, err := bson.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}

		var req struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		content, ok := trimContent(req.Content)
		if !ok {
			respondError(w, http.StatusBadRequest, "Comment content is required")
			return
		}

		var post models.Post
		err = db.Collection("posts").FindOne(r.Context(), bson.M{"_id": postID}).Decode(&post)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(w, http.StatusNotFound, "Post not found")
				return
			}
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("CreateComment post lookup error:", err)
			return
		}

		comment := models.Comment{
			Content:   content,
			Author:    userID,
			Post:      postID,
			Likes:     []bson.ObjectID{},
			CreatedAt: time.Now().UTC(),
		}

		result, err := db.Collection("comments").InsertOne(r.Context(), comment)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("CreateComment insert error:", err)
			return
		}
		comment.ID = result.InsertedID.(bson.ObjectID)

		// Atomic append of the comment reference.
		_, err = db.Collection("posts").UpdateOne(r.Context(),
			bson.M{"_id": postID},
			bson.M{"$push": bson.M{"comments": comment.ID}})
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("CreateComment link error:", err)
			return
		}

		authors, err := fetchUserRefs(r.Context(), db, []bson.ObjectID{userID})
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("CreateComment author lookup error:", err)
			return
		}

		go notifyPostOwnerOfComment(db, post, userID, content)

		respondJSON(w, http.StatusCreated, map[string]interface{}{
			"message": "Comment created successfully",
			"comment": map[string]interface{}{
				"_id":       comment.ID,
				"content":   comment.Content,
				"author":    authors[userID],
				"post":      comment.Post,
				"likes":     comment.Likes,
				"createdAt": comment.CreatedAt,
			},
		})
	}
}

func GetPostComments(db *mongo.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := bson.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}

		count, err := db.Collection("posts").CountDocuments(r.Context(), bson.M{"_id": postID})
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("GetPostComments post check error:", err)
			return
		}
		if count == 0 {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}

		cursor, err := db.Collection("comments").Find(r.Context(),
			bson.M{"post": postID},
			options.Find().
				SetSort(bson.D{{Key: "createdAt", Value: -1}}).
				SetLimit(commentListLimit))
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("GetPostComments error:", err)
			return
		}

		var comments []models.Comment
		if err := cursor.All(r.Context(), &comments); err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("GetPostComments decode error:", err)
			return
		}

		authorIDs := make([]bson.ObjectID, 0, len(comments))
		for _, c := range comments {
			authorIDs = append(authorIDs, c.Author)
		}
		authors, err := fetchUserRefs(r.Context(), db, authorIDs)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("GetPostComments author lookup error:", err)
			return
		}

		resolved := make([]models.CommentWithUser, 0, len(comments))
		for _, c := range comments {
			resolved = append(resolved, models.CommentWithUser{
				ID:        c.ID,
				Content:   c.Content,
				Author:    authors[c.Author],
				CreatedAt: c.CreatedAt,
			})
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{"comments": resolved})
	}
}

// likeInsertDocs builds the conditional like insert: the $ne guard makes
// the $addToSet match only when the caller is not already in the liker
// set, so the whole insert is one atomic document update.
func likeInsertDocs(postID, userID bson.ObjectID) (bson.M, bson.M) {
	return bson.M{"_id": postID, "likes": bson.M{"$ne": userID}},
		bson.M{"$addToSet": bson.M{"likes": userID}}
}

func likeRemoveDocs(postID, userID bson.ObjectID) (bson.M, bson.M) {
	return bson.M{"_id": postID},
		bson.M{"$pull": bson.M{"likes": userID}}
}

func trimContent(content string) (string, bool) {
	trimmed := strings.TrimSpace(content)
	return trimmed, trimmed != ""
}

// rankByLikes orders posts by like count descending, breaking ties by
// creation time descending.
func rankByLikes(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if len(posts[i].Likes) != len(posts[j].Likes) {
			return len(posts[i].Likes) > len(posts[j].Likes)
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

func findPosts(ctx context.Context, db *mongo.Database, filter bson.M, limit int64) ([]models.Post, error) {
	cursor, err := db.Collection("posts").Find(ctx, filter,
		options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetLimit(limit))
	if err != nil {
		return nil, err
	}

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// populatePosts resolves each post's author and its comments one level
// deep, comment authors included, in two batched lookups.
func populatePosts(ctx context.Context, db *mongo.Database, posts []models.Post) ([]models.PostWithAuthor, error) {
	commentIDs := make([]bson.ObjectID, 0)
	for _, p := range posts {
		commentIDs = append(commentIDs, p.Comments...)
	}

	commentsByID := map[bson.ObjectID]models.Comment{}
	if len(commentIDs) > 0 {
		cursor, err := db.Collection("comments").Find(ctx,
			bson.M{"_id": bson.M{"$in": commentIDs}})
		if err != nil {
			return nil, err
		}
		var comments []models.Comment
		if err := cursor.All(ctx, &comments); err != nil {
			return nil, err
		}
		for _, c := range comments {
			commentsByID[c.ID] = c
		}
	}

	authorIDs := postAuthorIDs(posts)
	for _, c := range commentsByID {
		authorIDs = append(authorIDs, c.Author)
	}
	authors, err := fetchUserRefs(ctx, db, authorIDs)
	if err != nil {
		return nil, err
	}

	populated := make([]models.PostWithAuthor, 0, len(posts))
	for _, p := range posts {
		resolved := make([]models.CommentWithUser, 0, len(p.Comments))
		for _, id := range p.Comments {
			c, ok := commentsByID[id]
			if !ok {
				continue
			}
			resolved = append(resolved, models.CommentWithUser{
				ID:        c.ID,
				Content:   c.Content,
				Author:    authors[c.Author],
				CreatedAt: c.CreatedAt,
			})
		}

		populated = append(populated, models.PostWithAuthor{
			ID:        p.ID,
			Content:   p.Content,
			Author:    authors[p.Author],
			Likes:     nonNilIDs(p.Likes),
			Comments:  resolved,
			CreatedAt: p.CreatedAt,
		})
	}
	return populated, nil
}

func postAuthorIDs(posts []models.Post) []bson.ObjectID {
	ids := make([]bson.ObjectID, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.Author)
	}
	return ids
}

func fetchUserRefs(ctx context.Context, db *mongo.Database, ids []bson.ObjectID) (map[bson.ObjectID]models.UserRef, error) {
	refs := map[bson.ObjectID]models.UserRef{}
	if len(ids) == 0 {
		return refs, nil
	}

	cursor, err := db.Collection("users").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var users []models.UserRef
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		refs[u.ID] = u
	}
	return refs, nil
}

func nonNilIDs(ids []bson.ObjectID) []bson.ObjectID {
	if ids == nil {
		return []bson.ObjectID{}
	}
	return ids
}

func notifyPostOwnerOfLike(db *mongo.Database, post models.Post, likerID bson.ObjectID) {
	if post.Author == likerID {
		return
	}

	ctx := context.Background()

	var liker models.User
	err := db.Collection("users").FindOne(ctx, bson.M{"_id": likerID}).Decode(&liker)
	if err != nil {
		log.Printf("Error fetching liker name: %v", err)
		liker.Name = "Someone"
	}

	tokens, err := fcmTokensForUser(ctx, db, post.Author)
	if err != nil {
		log.Printf("Error fetching post owner FCM tokens: %v", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	title := fmt.Sprintf("%s liked your post", liker.Name)
	body := truncateBody(post.Content)

	data := map[string]string{
		"type":    "post_like",
		"post_id": post.ID.Hex(),
		"liker":   likerID.Hex(),
	}

	successCount, failureCount, err := services.SendMultipleNotifications(db, tokens, title, body, data)
	if err != nil {
		log.Printf("Error sending like notification: %v", err)
		return
	}

	log.Printf("Sent like notification for post %s: %d successful, %d failed",
		post.ID.Hex(), successCount, failureCount)
}

func notifyPostOwnerOfComment(db *mongo.Database, post models.Post, commenterID bson.ObjectID, commentText string) {
	if post.Author == commenterID {
		return
	}

	ctx := context.Background()

	var commenter models.User
	err := db.Collection("users").FindOne(ctx, bson.M{"_id": commenterID}).Decode(&commenter)
	if err != nil {
		log.Printf("Error fetching commenter name: %v", err)
		commenter.Name = "Someone"
	}

	tokens, err := fcmTokensForUser(ctx, db, post.Author)
	if err != nil {
		log.Printf("Error fetching post owner FCM tokens: %v", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	title := fmt.Sprintf("%s commented on your post", commenter.Name)
	body := truncateBody(commentText)

	data := map[string]string{
		"type":      "post_comment",
		"post_id":   post.ID.Hex(),
		"commenter": commenterID.Hex(),
	}

	successCount, failureCount, err := services.SendMultipleNotifications(db, tokens, title, body, data)
	if err != nil {
		log.Printf("Error sending comment notification: %v", err)
		return
	}

	log.Printf("Sent comment notification for post %s: %d successful, %d failed",
		post.ID.Hex(), successCount, failureCount)
}

func fcmTokensForUser(ctx context.Context, db *mongo.Database, userID bson.ObjectID) ([]string, error) {
	cursor, err := db.Collection("fcm_tokens").Find(ctx,
		bson.M{"userId": userID, "token": bson.M{"$ne": ""}})
	if err != nil {
		return nil, err
	}

	var records []models.FCMToken
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	tokens := make([]string, 0, len(records))
	for _, rec := range records {
		tokens = append(tokens, rec.Token)
	}
	return tokens, nil
}

func truncateBody(s string) string {
	if len(s) <= 100 {
		return s
	}
	// Back up to a rune boundary so the cut never splits a multi-byte
	// character.
	cut := 97
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
