package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/parkspot-app/backend/config"
	"github.com/parkspot-app/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetAllUsers lists every account. Password hashes never leave the store:
// the field is excluded by projection on top of the json:"-" tag.
func GetAllUsers(store *config.Store, cfg config.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := options.Find().SetProjection(bson.M{"password": 0})
		cursor, err := store.Users.Find(r.Context(), bson.M{}, opts)
		if err != nil {
			sendError(w, http.StatusInternalServerError, "Could not fetch users", err, cfg.Production())
			return
		}
		defer cursor.Close(r.Context())

		users := []models.User{}
		if err := cursor.All(r.Context(), &users); err != nil {
			sendError(w, http.StatusInternalServerError, "Could not fetch users", err, cfg.Production())
			return
		}

		sendList(w, http.StatusOK, len(users), users)
	}
}

// GetMe returns the authenticated caller's profile.
func GetMe(cfg config.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(r)
		if !ok {
			sendFail(w, http.StatusUnauthorized, "Not logged in", nil, cfg.Production())
			return
		}
		sendData(w, http.StatusOK, user)
	}
}

// updatableProfileFields are the only keys a profile patch may touch.
// Credentials, the verification flag and the stat counters are managed by
// their own flows.
var updatableProfileFields = map[string]bool{
	"name":           true,
	"lastName":       true,
	"phone":          true,
	"avatar":         true,
	"paymentMethods": true,
}

// UpdateMe applies a partial profile edit to the authenticated user.
func UpdateMe(store *config.Store, cfg config.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(r)
		if !ok {
			sendFail(w, http.StatusUnauthorized, "Not logged in", nil, cfg.Production())
			return
		}

		var patch map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			sendFail(w, http.StatusBadRequest, "Invalid request payload", err, cfg.Production())
			return
		}

		update := bson.M{}
		for key, value := range patch {
			if updatableProfileFields[key] {
				update[key] = value
			}
		}
		if len(update) == 0 {
			sendFail(w, http.StatusBadRequest, "No updatable fields in payload", nil, cfg.Production())
			return
		}

		opts := options.FindOneAndUpdate().SetReturnDocument(options.After).SetProjection(bson.M{"password": 0})
		var updated models.User
		err := store.Users.FindOneAndUpdate(r.Context(), bson.M{"_id": user.ID}, bson.M{"$set": update}, opts).Decode(&updated)
		if err != nil {
			sendError(w, http.StatusInternalServerError, "Profile update failed", err, cfg.Production())
			return
		}

		sendData(w, http.StatusOK, updated)
	}
}
