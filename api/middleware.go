package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/character8/medicx-clinic-central-main/config"
	"github.com/character8/medicx-clinic-central-main/databases"
	"github.com/character8/medicx-clinic-central-main/models"
)

// DefaultSessionTTL bounds how long an issued token stays in the session
// cache before the client has to log in again.
const DefaultSessionTTL = 12 * time.Hour

// CredentialVerifier checks a username/password pair and returns the matching
// user row. Keeping it behind an interface lets the login handler be tested
// without a user collection.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) (*models.User, error)
}

// BcryptVerifier verifies credentials against the bcrypt hashes stored in the
// users collection.
type BcryptVerifier struct {
	DB databases.UserDatabase
}

// Verify looks up the user by username and compares the bcrypt hash.
func (v BcryptVerifier) Verify(ctx context.Context, username, password string) (*models.User, error) {
	user, err := v.DB.FindOne(ctx, bson.M{"username": username})
	if err != nil {
		return nil, fmt.Errorf("no matching username found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	return user, nil
}

// SessionMiddleware owns login, logout and the bearer-token gate in front of
// the routes.
type SessionMiddleware struct {
	Verifier CredentialVerifier
	Secret   string
	TTL      time.Duration
}

var authenticator auth.Authenticator
var cache store.Cache

// SetupGoGuardian sets up the go-guardian middleware. Tokens live in a FIFO
// cache whose TTL doubles as the session expiry.
func (m SessionMiddleware) SetupGoGuardian() {
	ttl := m.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	authenticator = auth.New()
	cache = store.NewFIFO(context.Background(), ttl)
	tokenStrategy := bearer.New(bearer.NoOpAuthenticate, cache)
	authenticator.EnableStrategy(bearer.CachedStrategyKey, tokenStrategy)
}

// Middleware adds bearer token authentication around accessing the routes
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		user, err := authenticator.Authenticate(r)
		if err != nil {
			zap.S().Errorw("unauthorized",
				"url", r.URL)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		zap.S().Debugf("User %s Authenticated\n", user.UserName())
		next.ServeHTTP(w, r)
	})
}

// RequireRole gates a route on the authenticated user holding one of the
// given roles. It runs its own authentication, so it is used instead of
// Middleware, not inside it.
func RequireRole(next http.Handler, roles ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		user, err := authenticator.Authenticate(r)
		if err != nil {
			zap.S().Errorw("unauthorized", "url", r.URL)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		for _, role := range roles {
			for _, group := range user.Groups() {
				if group == role {
					next.ServeHTTP(w, r)
					return
				}
			}
		}
		zap.S().Warnw("forbidden", "url", r.URL, "user", user.UserName())
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "forbidden"}`))
	})
}

// Login verifies a username/password body, issues a signed session token and
// caches it for the bearer strategy.
func (m SessionMiddleware) Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	user, err := m.Verifier.Verify(r.Context(), body.Username, body.Password)
	if err != nil {
		zap.S().Warnw("login rejected", "username", body.Username)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "invalid credentials"}`))
		return
	}

	ttl := m.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	expiresAt := time.Now().Add(ttl)

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"name": user.Username,
		"role": user.Role,
		"exp":  expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.Secret))
	if err != nil {
		config.ErrorStatus("failed to sign session token", http.StatusInternalServerError, w, err)
		return
	}

	authUser := auth.NewDefaultUser(user.Username, user.ID, []string{user.Role}, nil)
	tokenStrategy := authenticator.Strategy(bearer.CachedStrategyKey)
	auth.Append(tokenStrategy, token, authUser, r)

	session := models.Session{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		User:      user.Info(),
	}
	responseBody, err := json.Marshal(session)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Write(responseBody)
}

// RevokeToken revokes the caller's session token
func RevokeToken(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	reqToken := r.Header.Get("Authorization")
	splitToken := strings.Split(reqToken, "Bearer ")
	if len(splitToken) != 2 {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "missing bearer token"}`))
		return
	}
	reqToken = splitToken[1]

	tokenStrategy := authenticator.Strategy(bearer.CachedStrategyKey)
	auth.Revoke(tokenStrategy, reqToken, r)
	body := fmt.Sprintf(`{"revoked token": "%s"}`, reqToken)
	w.Write([]byte(body))
}
