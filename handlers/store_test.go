package handlers

// Store-backed handler tests. They need a reachable MongoDB and skip
// when MONGODB_TEST_URI is not set; each test works in its own
// throwaway database.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"linkdein.com/project-linkdein/database"
	"linkdein.com/project-linkdein/middleware"
	"linkdein.com/project-linkdein/models"
)

func testDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { client.Disconnect(context.Background()) })

	db := client.Database(fmt.Sprintf("linkdein_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() { db.Drop(context.Background()) })

	require.NoError(t, database.EnsureIndexes(db))
	return db
}

func authAs(next http.HandlerFunc, userID bson.ObjectID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), middleware.ContextKeyUserID, userID)
		next(w, r.WithContext(ctx))
	})
}

func seedUser(t *testing.T, db *mongo.Database, name, email string) bson.ObjectID {
	t.Helper()
	user := models.User{
		ID:        bson.NewObjectID(),
		Name:      name,
		Email:     email,
		Password:  "$2a$12$seeded-hash",
		CreatedAt: time.Now().UTC(),
	}
	_, err := db.Collection("users").InsertOne(context.Background(), user)
	require.NoError(t, err)
	return user.ID
}

func seedPost(t *testing.T, db *mongo.Database, author bson.ObjectID, content string, createdAt time.Time) bson.ObjectID {
	t.Helper()
	post := models.Post{
		ID:        bson.NewObjectID(),
		Content:   content,
		Author:    author,
		Likes:     []bson.ObjectID{},
		Comments:  []bson.ObjectID{},
		CreatedAt: createdAt,
	}
	_, err := db.Collection("posts").InsertOne(context.Background(), post)
	require.NoError(t, err)
	return post.ID
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	db := testDB(t)
	handler := Register(db)

	body := `{"name":"Ada","email":"ada@example.com","password":"hunter22"}`

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "User with this email already exists", resp["error"])

	count, err := db.Collection("users").CountDocuments(context.Background(),
		bson.M{"email": "ada@example.com"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestToggleLikeIdempotentPair(t *testing.T) {
	db := testDB(t)

	author := seedUser(t, db, "Ada", "ada@example.com")
	postID := seedPost(t, db, author, "hello world", time.Now().UTC())

	router := mux.NewRouter()
	router.Handle("/posts/{id}/like", authAs(ToggleLike(db), author)).Methods("POST")

	toggle := func() map[string]interface{} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
			"/posts/"+postID.Hex()+"/like", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp
	}

	resp := toggle()
	assert.Equal(t, "Post liked", resp["message"])
	assert.EqualValues(t, 1, resp["likeCount"])

	resp = toggle()
	assert.Equal(t, "Post unliked", resp["message"])
	assert.EqualValues(t, 0, resp["likeCount"])

	// A third toggle likes again; the stored set must hold exactly one
	// entry, never a duplicate.
	resp = toggle()
	assert.EqualValues(t, 1, resp["likeCount"])

	var post models.Post
	require.NoError(t, db.Collection("posts").
		FindOne(context.Background(), bson.M{"_id": postID}).Decode(&post))
	require.Len(t, post.Likes, 1)
	assert.Equal(t, author, post.Likes[0])
}

func TestCreateCommentMissingPostLeavesNoRecord(t *testing.T) {
	db := testDB(t)

	author := seedUser(t, db, "Ada", "ada@example.com")

	router := mux.NewRouter()
	router.Handle("/posts/{id}/comments", authAs(CreateComment(db), author)).Methods("POST")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/posts/"+bson.NewObjectID().Hex()+"/comments",
		strings.NewReader(`{"content":"hi"}`)))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	count, err := db.Collection("comments").CountDocuments(context.Background(), bson.M{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestGetPostsCapNewestFirstNoPassword(t *testing.T) {
	db := testDB(t)

	author := seedUser(t, db, "Ada", "ada@example.com")
	base := time.Now().UTC().Add(-2 * time.Hour)
	for i := 0; i < 55; i++ {
		seedPost(t, db, author, fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	rec := httptest.NewRecorder()
	GetPosts(db)(rec, httptest.NewRequest(http.MethodGet, "/posts", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Posts []models.PostWithAuthor `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Posts, 50)
	assert.Equal(t, "post 54", resp.Posts[0].Content)
	for i := 1; i < len(resp.Posts); i++ {
		assert.False(t, resp.Posts[i].CreatedAt.After(resp.Posts[i-1].CreatedAt))
	}
	assert.Equal(t, "Ada", resp.Posts[0].Author.Name)

	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "seeded-hash")
}
