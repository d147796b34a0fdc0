package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"linkdein.com/project-linkdein/models"
)

const profilePostLimit = 20

// GetUserProfile returns a user minus their password, plus their most
// recent posts.
func GetUserProfile(db *mongo.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := bson.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}

		var user models.User
		err = db.Collection("users").FindOne(r.Context(), bson.M{"_id": userID}).Decode(&user)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(w, http.StatusNotFound, "User not found")
				return
			}
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("GetUserProfile query error:", err)
			return
		}

		posts, err := findPosts(r.Context(), db, bson.M{"author": userID}, profilePostLimit)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("GetUserProfile posts error:", err)
			return
		}

		populated, err := populatePosts(r.Context(), db, posts)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("GetUserProfile populate error:", err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"user":  user,
			"posts": populated,
		})
	}
}
