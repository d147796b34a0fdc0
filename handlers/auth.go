package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/crypto/bcrypt"

	"linkdein.com/project-linkdein/middleware"
	"linkdein.com/project-linkdein/models"
	"linkdein.com/project-linkdein/services"
)

const bcryptCost = 12

func Register(db *mongo.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Bio      string `json:"bio"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Name == "" || req.Email == "" || req.Password == "" {
			respondError(w, http.StatusBadRequest, "Name, email, and password are required")
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("Register hash error:", err)
			return
		}

		user := models.User{
			Name:      req.Name,
			Email:     req.Email,
			Password:  string(hashedPassword),
			Bio:       req.Bio,
			CreatedAt: time.Now().UTC(),
		}

		result, err := db.Collection("users").InsertOne(r.Context(), user)
		if err != nil {
			// Duplicate email surfaces from the unique index.
			if mongo.IsDuplicateKeyError(err) {
				respondError(w, http.StatusBadRequest, "User with this email already exists")
				return
			}
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("Register insert error:", err)
			return
		}

		user.ID = result.InsertedID.(bson.ObjectID)
		respondJSON(w, http.StatusCreated, map[string]interface{}{
			"message": "User created successfully",
			"user":    user,
		})
	}
}

func Login(db *mongo.Database, tokens *services.TokenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Email == "" || req.Password == "" {
			respondError(w, http.StatusBadRequest, "Email and password are required")
			return
		}

		// Unknown email and wrong password produce the same response;
		// the caller learns nothing about which one failed.
		var user models.User
		err := db.Collection("users").
			FindOne(r.Context(), bson.M{"email": req.Email}).
			Decode(&user)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(w, http.StatusUnauthorized, "Invalid credentials")
				return
			}
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("Login query error:", err)
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
			respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		token, err := tokens.Issue(user.ID.Hex())
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("Login token error:", err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     "token",
			Value:    token,
			Path:     "/",
			MaxAge:   int(services.TokenTTL.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Login successful",
			"user":    user,
		})
	}
}

func Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     "token",
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
	}
}

func GetCurrentUser(db *mongo.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)

		var user models.User
		err := db.Collection("users").
			FindOne(r.Context(), bson.M{"_id": userID}).
			Decode(&user)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(w, http.StatusNotFound, "User not found")
				return
			}
			respondError(w, http.StatusInternalServerError, "Internal server error")
			log.Println("GetCurrentUser query error:", err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
	}
}
