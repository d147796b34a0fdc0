package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"linkdein.com/project-linkdein/handlers"
	"linkdein.com/project-linkdein/services"
)

func CreateAuthRoutes(db *mongo.Database, tokens *services.TokenService, guard func(http.Handler) http.Handler, router *mux.Router) *mux.Router {
	router.HandleFunc("/auth/register", handlers.Register(db)).Methods("POST")
	router.HandleFunc("/auth/login", handlers.Login(db, tokens)).Methods("POST")
	router.HandleFunc("/auth/logout", handlers.Logout()).Methods("POST")
	router.Handle("/auth/me", guard(handlers.GetCurrentUser(db))).Methods("GET")

	return router
}
