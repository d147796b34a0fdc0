package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"linkdein.com/project-linkdein/handlers"
)

func CreateUserRoutes(db *mongo.Database, guard func(http.Handler) http.Handler, router *mux.Router) *mux.Router {
	router.HandleFunc("/search", handlers.Search(db)).Methods("GET")
	router.HandleFunc("/users/{id}", handlers.GetUserProfile(db)).Methods("GET")

	router.Handle("/notifications", guard(handlers.GetNotifications())).Methods("GET")
	router.Handle("/notifications/read-all", guard(handlers.MarkAllNotificationsRead())).Methods("POST")
	router.Handle("/notifications/{id}/read", guard(handlers.MarkNotificationRead())).Methods("POST")
	router.Handle("/notifications/fcm-token", guard(handlers.RegisterFCMToken(db))).Methods("POST")

	return router
}
