package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/parkspot-app/backend/config"
	"github.com/parkspot-app/backend/controllers"
	"github.com/parkspot-app/backend/models"
	"github.com/parkspot-app/backend/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var errMalformedHeader = errors.New("authorization header must be \"Bearer <token>\"")

// bearerToken extracts the token from an Authorization header.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("missing Authorization header")
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errMalformedHeader
	}
	return parts[1], nil
}

// Auth verifies the bearer token and resolves it to the current user record.
// The live lookup (rather than trusting the signed payload alone) means a
// token for a since-deleted account stops working without a revocation list.
func Auth(store *config.Store, cfg config.App) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			token, err := bearerToken(r.Header.Get("Authorization"))
			if err != nil {
				unauthorized(w, r, err.Error())
				return
			}

			claims, err := utils.ValidateJWT(token, cfg.JWTSecret)
			if err != nil {
				log.Printf("Invalid token on %s %s: %v", r.Method, r.URL, err)
				unauthorized(w, r, "Invalid or expired token")
				return
			}

			userID, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				unauthorized(w, r, "Invalid token subject")
				return
			}

			var user models.User
			err = store.Users.FindOne(r.Context(), bson.M{"_id": userID}).Decode(&user)
			if err == mongo.ErrNoDocuments {
				unauthorized(w, r, "The user belonging to this token no longer exists")
				return
			}
			if err != nil {
				log.Printf("User lookup failed for %s: %v", claims.UserID, err)
				serverError(w, "Authentication failed")
				return
			}

			ctx := context.WithValue(r.Context(), controllers.UserKey, &user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	log.Printf("401 %s %s: %s", r.Method, r.URL, message)
	writeEnvelope(w, http.StatusUnauthorized, "fail", message)
}

func serverError(w http.ResponseWriter, message string) {
	writeEnvelope(w, http.StatusInternalServerError, "error", message)
}

func writeEnvelope(w http.ResponseWriter, code int, status, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(controllers.Envelope{Status: status, Message: message})
}
