package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"linkdein.com/project-linkdein/middleware"
)

// GetNotifications returns a fixed sample list. Nothing is persisted;
// the read/unread endpoints below acknowledge and discard. This is the
// shipped behavior of the notification feature, not a placeholder to
// wire up silently.
func GetNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()

		sample := []map[string]interface{}{
			{
				"_id":       "1",
				"message":   "Welcome to LinkDein! Start connecting with professionals.",
				"read":      false,
				"createdAt": now.Add(-2 * time.Hour),
			},
			{
				"_id":       "2",
				"message":   "Your post received 5 likes!",
				"read":      false,
				"createdAt": now.Add(-30 * time.Minute),
			},
			{
				"_id":       "3",
				"message":   "New user John Doe joined the platform.",
				"read":      true,
				"createdAt": now.Add(-24 * time.Hour),
			},
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{"notifications": sample})
	}
}

func MarkNotificationRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{
			"message":        "Notification marked as read",
			"notificationId": mux.Vars(r)["id"],
		})
	}
}

func MarkAllNotificationsRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{
			"message": "All notifications marked as read",
		})
	}
}

// RegisterFCMToken stores a device token for the caller so push
// delivery can reach them. Repeated registrations refresh updatedAt.
func RegisterFCMToken(db *mongo.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)

		var req struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Token == "" {
			respondError(w, http.StatusBadRequest, "FCM token is required")
			return
		}

		now := time.Now().UTC()
		_, err := db.Collection("fcm_tokens").UpdateOne(r.Context(),
			bson.M{"userId": userID, "token": req.Token},
			bson.M{
				"$set":         bson.M{"updatedAt": now},
				"$setOnInsert": bson.M{"userId": userID, "token": req.Token, "createdAt": now},
			},
			options.UpdateOne().SetUpsert(true))
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to register FCM token")
			log.Println("RegisterFCMToken error:", err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]string{
			"message": "FCM token registered successfully",
		})
	}
}
