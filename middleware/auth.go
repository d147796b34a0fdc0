package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/v2/bson"

	"linkdein.com/project-linkdein/services"
)

type contextKey string

const ContextKeyUserID = contextKey("userId")

// Authorize verifies the "token" cookie and injects the caller's user ID
// into the request context. Every failure mode (missing cookie, bad
// signature, expired token, garbage identity) gets the same 401.
func Authorize(tokens *services.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var raw string
			if cookie, err := r.Cookie("token"); err == nil {
				raw = cookie.Value
			}

			userIDHex, err := tokens.Verify(raw)
			if err != nil {
				unauthorized(w)
				return
			}

			userID, err := bson.ObjectIDFromHex(userIDHex)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the identity the guard resolved for this request. Only
// valid on handlers registered behind Authorize.
func UserID(r *http.Request) bson.ObjectID {
	id, _ := r.Context().Value(ContextKeyUserID).(bson.ObjectID)
	return id
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "Authentication required"})
}
