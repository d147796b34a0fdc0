package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"linkdein.com/project-linkdein/handlers"
)

func CreatePostRoutes(db *mongo.Database, guard func(http.Handler) http.Handler, router *mux.Router) *mux.Router {
	router.HandleFunc("/posts/trending", handlers.GetTrendingPosts(db)).Methods("GET")
	router.HandleFunc("/posts", handlers.GetPosts(db)).Methods("GET")
	router.Handle("/posts", guard(handlers.CreatePost(db))).Methods("POST")
	router.Handle("/posts/{id}/like", guard(handlers.ToggleLike(db))).Methods("POST")
	router.Handle("/posts/{id}/comments", guard(handlers.CreateComment(db))).Methods("POST")
	router.HandleFunc("/posts/{id}/comments", handlers.GetPostComments(db)).Methods("GET")

	return router
}
