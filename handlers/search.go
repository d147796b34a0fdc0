package handlers

import (
	"log"
	"net/http"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"linkdein.com/project-linkdein/models"
)

const (
	searchTypeLimit  = 5
	searchTotalLimit = 10
	searchMinQuery   = 2
)

// Search matches the query as a case-insensitive substring against user
// name/email/bio and post content, users first. Queries shorter than
// two characters return an empty result set rather than an error.
func Search(db *mongo.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if len(query) < searchMinQuery {
			respondJSON(w, http.StatusOK, map[string]interface{}{
				"results": []map[string]interface{}{},
			})
			return
		}

		// QuoteMeta so "c++" searches for the literal text instead of
		// being an invalid pattern.
		pattern := bson.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}

		userCursor, err := db.Collection("users").Find(r.Context(),
			bson.M{"$or": []bson.M{
				{"name": pattern},
				{"email": pattern},
				{"bio": pattern},
			}},
			options.Find().SetLimit(searchTypeLimit))
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("Search users error:", err)
			return
		}
		var users []models.User
		if err := userCursor.All(r.Context(), &users); err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("Search users decode error:", err)
			return
		}

		postCursor, err := db.Collection("posts").Find(r.Context(),
			bson.M{"content": pattern},
			options.Find().SetLimit(searchTypeLimit))
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("Search posts error:", err)
			return
		}
		var posts []models.Post
		if err := postCursor.All(r.Context(), &posts); err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("Search posts decode error:", err)
			return
		}

		authors, err := fetchUserRefs(r.Context(), db, postAuthorIDs(posts))
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("Search author lookup error:", err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"results": assembleSearchResults(users, posts, authors, searchTotalLimit),
		})
	}
}

// assembleSearchResults merges the per-type matches: every user result
// precedes every post result, order inside each type is preserved, and
// the combined list is truncated to limit.
func assembleSearchResults(
	users []models.User,
	posts []models.Post,
	authors map[bson.ObjectID]models.UserRef,
	limit int,
) []map[string]interface{} {
	results := make([]map[string]interface{}, 0, len(users)+len(posts))

	for _, u := range users {
		results = append(results, map[string]interface{}{
			"_id":   u.ID,
			"type":  "user",
			"name":  u.Name,
			"email": u.Email,
			"bio":   u.Bio,
		})
	}

	for _, p := range posts {
		results = append(results, map[string]interface{}{
			"_id":       p.ID,
			"type":      "post",
			"content":   p.Content,
			"author":    authors[p.Author],
			"createdAt": p.CreatedAt,
		})
	}

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
