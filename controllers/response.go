package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/parkspot-app/backend/models"
)

// ContextKey is the type of request-context keys set by the auth middleware.
type ContextKey string

// UserKey carries the resolved *models.User of the authenticated caller.
const UserKey = ContextKey("user")

// Envelope is the uniform response shape: status is "success", "fail"
// (client error) or "error" (server error).
type Envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Results *int        `json:"results,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func sendData(w http.ResponseWriter, code int, data interface{}) {
	writeJSON(w, code, Envelope{Status: "success", Data: data})
}

// sendList wraps a collection response and reports its length alongside.
func sendList(w http.ResponseWriter, code int, results int, data interface{}) {
	writeJSON(w, code, Envelope{Status: "success", Results: &results, Data: data})
}

// sendFail reports a client error (4xx). Internal detail is echoed only
// outside production.
func sendFail(w http.ResponseWriter, code int, message string, err error, production bool) {
	if err != nil {
		log.Printf("%d %s: %v", code, message, err)
	} else {
		log.Printf("%d %s", code, message)
	}
	env := Envelope{Status: "fail", Message: message}
	if err != nil && !production {
		env.Error = err.Error()
	}
	writeJSON(w, code, env)
}

// sendValidationFail reports a 400 with the full field-error list.
func sendValidationFail(w http.ResponseWriter, message string, errs models.ValidationErrors) {
	log.Printf("400 %s: %v", message, errs.Error())
	writeJSON(w, http.StatusBadRequest, Envelope{Status: "fail", Message: message, Error: errs})
}

// sendError reports a server error (5xx).
func sendError(w http.ResponseWriter, code int, message string, err error, production bool) {
	log.Printf("%d %s: %v", code, message, err)
	env := Envelope{Status: "error", Message: message}
	if err != nil && !production {
		env.Error = err.Error()
	}
	writeJSON(w, code, env)
}

// currentUser pulls the authenticated user the middleware attached to the
// request. The boolean is false on routes that skipped the middleware.
func currentUser(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(UserKey).(*models.User)
	return user, ok
}
