package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/parkspot-app/backend/config"
	"github.com/parkspot-app/backend/controllers"
	"github.com/parkspot-app/backend/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Routes wires every endpoint. Listing reads are public; mutations and the
// profile endpoints go through the auth middleware.
func Routes(router *mux.Router, store *config.Store, rdb *redis.Client, cfg config.App) {
	router.Use(middleware.Metrics)

	auth := middleware.Auth(store, cfg)

	// Users
	router.HandleFunc("/users/signup", controllers.Signup(store, cfg)).Methods("POST")
	router.HandleFunc("/users/login", controllers.Login(store, cfg)).Methods("POST")
	router.HandleFunc("/users", controllers.GetAllUsers(store, cfg)).Methods("GET")
	router.Handle("/users/me", auth(controllers.GetMe(cfg))).Methods("GET")
	router.Handle("/users/me", auth(controllers.UpdateMe(store, cfg))).Methods("PATCH")

	// Parkings: public reads
	router.HandleFunc("/parkings", controllers.GetAllParkings(store, rdb, cfg)).Methods("GET")
	router.HandleFunc("/parkings/top-rated", controllers.GetTopRated(store, rdb, cfg)).Methods("GET")

	// Parkings: owner routes (fixed paths before the {id} matcher)
	router.Handle("/parkings", auth(controllers.CreateParking(store, rdb, cfg))).Methods("POST")
	router.Handle("/parkings/my-listings", auth(controllers.GetMyParkings(store, cfg))).Methods("GET")

	router.HandleFunc("/parkings/{id}", controllers.GetParking(store, cfg)).Methods("GET")
	router.Handle("/parkings/{id}", auth(controllers.UpdateParking(store, rdb, cfg))).Methods("PATCH")
	router.Handle("/parkings/{id}", auth(controllers.DeleteParking(store, rdb, cfg))).Methods("DELETE")

	// Operational endpoints
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")
}
