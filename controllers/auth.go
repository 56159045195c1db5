package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/parkspot-app/backend/config"
	"github.com/parkspot-app/backend/models"
	"github.com/parkspot-app/backend/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Signup registers a new account and logs it in. The confirmation password
// is compared and discarded; only the bcrypt hash is persisted.
func Signup(store *config.Store, cfg config.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.SignupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			sendFail(w, http.StatusBadRequest, "Invalid request payload", err, cfg.Production())
			return
		}

		if errs := req.Validate(); len(errs) > 0 {
			sendValidationFail(w, "User creation failed", errs)
			return
		}

		email := models.NormalizeEmail(req.Email)

		err := store.Users.FindOne(r.Context(), bson.M{"email": email}).Err()
		if err == nil {
			sendValidationFail(w, "User creation failed", models.ValidationErrors{
				{Field: "email", Message: "email is already taken"},
			})
			return
		}
		if err != mongo.ErrNoDocuments {
			sendError(w, http.StatusInternalServerError, "Failed to create user", err, cfg.Production())
			return
		}

		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			sendError(w, http.StatusInternalServerError, "Failed to create user", err, cfg.Production())
			return
		}

		user := models.User{
			Name:      req.Name,
			LastName:  req.LastName,
			Email:     email,
			Password:  hash,
			CreatedAt: time.Now(),
		}

		res, err := store.Users.InsertOne(r.Context(), &user)
		if err != nil {
			// The unique index catches the race between the lookup above and
			// this insert.
			if mongo.IsDuplicateKeyError(err) {
				sendValidationFail(w, "User creation failed", models.ValidationErrors{
					{Field: "email", Message: "email is already taken"},
				})
				return
			}
			sendError(w, http.StatusInternalServerError, "Failed to create user", err, cfg.Production())
			return
		}
		user.ID = res.InsertedID.(primitive.ObjectID)

		token, err := utils.GenerateJWT(user.ID.Hex(), cfg.JWTSecret, cfg.JWTExpiresIn)
		if err != nil {
			sendError(w, http.StatusInternalServerError, "Failed to generate token", err, cfg.Production())
			return
		}

		sendData(w, http.StatusCreated, map[string]interface{}{
			"user":  user,
			"token": token,
		})
	}
}

// Login exchanges email and password for a bearer token. The email lookup is
// case-insensitive; an unknown address is 404, a wrong password 401.
func Login(store *config.Store, cfg config.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var credentials struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
			sendFail(w, http.StatusBadRequest, "Invalid request payload", err, cfg.Production())
			return
		}

		var user models.User
		err := store.Users.FindOne(r.Context(), bson.M{"email": models.NormalizeEmail(credentials.Email)}).Decode(&user)
		if err == mongo.ErrNoDocuments {
			sendFail(w, http.StatusNotFound, "User not found", nil, cfg.Production())
			return
		}
		if err != nil {
			sendError(w, http.StatusInternalServerError, "Login failed", err, cfg.Production())
			return
		}

		if !utils.CheckPasswordHash(credentials.Password, user.Password) {
			sendFail(w, http.StatusUnauthorized, "Incorrect password", nil, cfg.Production())
			return
		}

		token, err := utils.GenerateJWT(user.ID.Hex(), cfg.JWTSecret, cfg.JWTExpiresIn)
		if err != nil {
			sendError(w, http.StatusInternalServerError, "Failed to generate token", err, cfg.Production())
			return
		}

		sendData(w, http.StatusOK, map[string]string{"token": token})
	}
}
