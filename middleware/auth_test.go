package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"linkdein.com/project-linkdein/services"
)

func newGuard(t *testing.T) (*services.TokenService, func(http.Handler) http.Handler) {
	t.Helper()
	tokens, err := services.NewTokenService("test-secret")
	require.NoError(t, err)
	return tokens, Authorize(tokens)
}

func TestAuthorizeInjectsUserID(t *testing.T) {
	tokens, guard := newGuard(t)

	userID := bson.NewObjectID()
	token, err := tokens.Issue(userID.Hex())
	require.NoError(t, err)

	var got bson.ObjectID
	handler := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = UserID(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, got)
}

func TestAuthorizeRejectsMissingCookie(t *testing.T) {
	_, guard := newGuard(t)

	called := false
	handler := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Authentication required", body["error"])
}

func TestAuthorizeRejectsTamperedToken(t *testing.T) {
	tokens, guard := newGuard(t)

	token, err := tokens.Issue(bson.NewObjectID().Hex())
	require.NoError(t, err)

	handler := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler reached with tampered token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token + "x"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthorizeRejectsNonObjectIDIdentity(t *testing.T) {
	tokens, guard := newGuard(t)

	token, err := tokens.Issue("definitely-not-an-object-id")
	require.NoError(t, err)

	handler := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler reached with invalid identity")
	}))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
