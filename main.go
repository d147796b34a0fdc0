package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"linkdein.com/project-linkdein/database"
	"linkdein.com/project-linkdein/middleware"
	"linkdein.com/project-linkdein/routes"
	"linkdein.com/project-linkdein/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	// The signing secret has no fallback; a server without one must not
	// come up.
	tokens, err := services.NewTokenService(os.Getenv("JWT_SECRET"))
	if err != nil {
		log.Fatal("JWT_SECRET not set")
	}

	db, err := database.ConnectDB()
	if err != nil {
		log.Fatal("DB connection failed: ", err)
	}

	if err := database.EnsureIndexes(db); err != nil {
		log.Fatal("Index creation failed: ", err)
	}

	firebasePath := os.Getenv("FIREBASE_CREDENTIALS_PATH")
	if firebasePath == "" {
		log.Println("FIREBASE_CREDENTIALS_PATH not set, push notifications disabled")
	} else if err := services.InitFirebase(firebasePath); err != nil {
		log.Printf("Firebase init failed, push notifications disabled: %v", err)
	}

	guard := middleware.Authorize(tokens)

	router := mux.NewRouter()
	routes.CreateAuthRoutes(db, tokens, guard, router)
	routes.CreatePostRoutes(db, guard, router)
	routes.CreateUserRoutes(db, guard, router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Listening on :%s", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
