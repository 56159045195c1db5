package controllers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/parkspot-app/backend/config"
	"github.com/parkspot-app/backend/models"
	"github.com/parkspot-app/backend/utils"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	searchCacheTTL    = 10 * time.Minute
	searchCachePrefix = "parkings:"
)

// updatableParkingFields are the only keys a listing patch may touch.
// Identity, the owner link and the denormalized counters are never
// client-writable; unknown keys are dropped rather than $set verbatim.
var updatableParkingFields = map[string]bool{
	"name":        true,
	"description": true,
	"photos":      true,
	"address":     true,
	"location":    true,
	"parkingType": true,
	"features":    true,
	"tags":        true,
	"prices":      true,
	"currency":    true,
	"isActive":    true,
}

// filterParkingPatch keeps only the updatable fields of a raw patch.
func filterParkingPatch(patch map[string]interface{}) map[string]interface{} {
	update := map[string]interface{}{}
	for key, value := range patch {
		if updatableParkingFields[key] {
			update[key] = value
		}
	}
	return update
}

// buildSearchFilter translates the search query parameters into a Mongo
// filter. Only active listings are ever matched. When lat, lng and distance
// are all present the filter becomes a $nearSphere query against the
// 2dsphere index, which also orders results nearest-first; the radius is
// taken in kilometers.
func buildSearchFilter(query url.Values) (bson.M, models.ValidationErrors) {
	var errs models.ValidationErrors
	filter := bson.M{"isActive": true}

	lat, lng, distance := query.Get("lat"), query.Get("lng"), query.Get("distance")
	geoParams := 0
	for _, v := range []string{lat, lng, distance} {
		if v != "" {
			geoParams++
		}
	}
	switch geoParams {
	case 0:
		// no geo restriction
	case 3:
		latV, latErr := strconv.ParseFloat(lat, 64)
		lngV, lngErr := strconv.ParseFloat(lng, 64)
		distV, distErr := strconv.ParseFloat(distance, 64)
		if latErr != nil || lngErr != nil || distErr != nil {
			errs = append(errs, models.FieldError{Field: "lat,lng,distance", Message: "geo parameters must be numeric"})
			break
		}
		if distV <= 0 {
			errs = append(errs, models.FieldError{Field: "distance", Message: "distance must be a positive number of kilometers"})
			break
		}
		filter["location"] = bson.M{
			"$nearSphere": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{lngV, latV},
				},
				"$maxDistance": distV * 1000,
			},
		}
	default:
		errs = append(errs, models.FieldError{Field: "lat,lng,distance", Message: "lat, lng and distance must be provided together"})
	}

	if parkingType := query.Get("parkingType"); parkingType != "" {
		if !models.ValidParkingType(parkingType) {
			errs = append(errs, models.FieldError{Field: "parkingType", Message: "unknown parking type"})
		} else {
			filter["parkingType"] = parkingType
		}
	}

	if priceMax := query.Get("priceMax"); priceMax != "" {
		ceiling, err := strconv.ParseFloat(priceMax, 64)
		if err != nil {
			errs = append(errs, models.FieldError{Field: "priceMax", Message: "priceMax must be numeric"})
		} else {
			filter["prices.hourly"] = bson.M{"$lte": ceiling}
		}
	}

	return filter, errs
}

// GetAllParkings searches active listings with optional geo, type and price
// filters. Responses are cached in redis per query string and invalidated on
// every listing mutation.
func GetAllParkings(store *config.Store, rdb *redis.Client, cfg config.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		filter, errs := buildSearchFilter(query)
		if len(errs) > 0 {
			sendValidationFail(w, "Invalid search parameters", errs)
			return
		}

		cacheKey := searchCacheKey(query)
		if serveCached(r.Context(), w, rdb, cacheKey) {
			return
		}

		cursor, err := store.Parkings.Find(r.Context(), filter)
		if err != nil {
			sendError(w, http.StatusInternalServerError, "Failed to fetch parking listings", err, cfg.Production())
			return
		}
		defer cursor.Close(r.Context())

		parkings := []models.Parking{}
		if err := cursor.All(r.Context(), &parkings); err != nil {
			sendError(w, http.StatusInternalServerError, "Failed to fetch parking listings", err, cfg.Production())
			return
		}

		writeListThroughCache(r.Context(), w, rdb, cacheKey, parkings, cfg.Production())
	}
}

// topRatedFindOptions orders by rating descending with review count as the
// tie-break, so corroborated ratings win at equal rating, and caps the page
// at five.
func topRatedFindOptions() *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "averageRating", Value: -1}, {Key: "reviewCount", Value: -1}}).
		SetLimit(5)
}

// GetTopRated returns the five best active listings, rating first and review
// count as the tie-break so corroborated ratings win.
func GetTopRated(store *config.Store, rdb *redis.Client, cfg config.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cacheKey := searchCachePrefix + "top-rated"
		if serveCached(r.Context(), w, rdb, cacheKey) {
			return
		}

		cursor, err := store.Parkings.Find(r.Context(), bson.M{"isActive": true}, topRatedFindOptions())
		if err != nil {
			sendError(w, http.StatusInternalServerError, "Could not fetch top-rated parkings", err, cfg.Production())
			return
		}
		defer cursor.Close(r.Context())

		parkings := []models.Parking{}
		if err := cursor.All(r.Context(), &parkings); err != nil {
			sendError(w, http.StatusInternalServerError, "Could not fetch top-rated parkings", err, cfg.Production())
			return
		}

		writeListThroughCache(r.Context(), w, rdb, cacheKey, parkings, cfg.Production())
	}
}

// GetParking returns a single listing by id, active or not.
func GetParking(store *config.Store, cfg config.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			sendFail(w, http.StatusBadRequest, "Invalid parking ID", err, cfg.Production())
			return
		}

		var parking models.Parking
		err = store.Parkings.FindOne(r.Context(), bson.M{"_id": objID}).Decode(&parking)
		if err == mongo.ErrNoDocuments {
			sendFail(w, http.StatusNotFound, "No parking spot found with that ID", nil, cfg.Production())
			return
		}
		if err != nil {
			sendError(w, http.StatusInternalServerError, "Failed to fetch parking spot", err, cfg.Production())
			return
		}

		sendData(w, http.StatusOK, parking)
	}
}

// CreateParking inserts a new listing owned by the authenticated user and
// bumps the owner's active-listing counter.
func CreateParking(store *config.Store, rdb *redis.Client, cfg config.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(r)
		if !ok {
			sendFail(w, http.StatusUnauthorized, "Not logged in", nil, cfg.Production())
			return
		}

		var parking models.Parking
		if err := json.NewDecoder(r.Body).Decode(&parking); err != nil {
			sendFail(w, http.StatusBadRequest, "Invalid request payload", err, cfg.Production())
			return
		}

		if errs := parking.Validate(); len(errs) > 0 {
			sendValidationFail(w, "Invalid data provided for creating parking spot", errs)
			return
		}

		// Server-managed fields; whatever the client sent for them is ignored.
		parking.ID = primitive.NewObjectID()
		parking.Owner = user.ID
		parking.AverageRating = 0
		parking.ReviewCount = 0
		parking.TotalBookings = 0
		parking.IsActive = true
		parking.CreatedAt = time.Now()
		if parking.Currency == "" {
			parking.Currency = "USD"
		}
		if parking.Photos == nil {
			parking.Photos = []string{}
		}
		if parking.Features == nil {
			parking.Features = []string{}
		}
		if parking.Tags == nil {
			parking.Tags = []string{}
		}

		if _, err := store.Parkings.InsertOne(r.Context(), &parking); err != nil {
			sendError(w, http.StatusInternalServerError, "Failed to create parking spot", err, cfg.Production())
			return
		}

		if err := adjustActiveListings(r.Context(), store, user.ID, 1); err != nil {
			log.Printf("Failed to bump active listing count for %s: %v", user.ID.Hex(), err)
		}

		go invalidateSearchCache(rdb)

		sendData(w, http.StatusCreated, parking)
	}
}

// GetMyParkings returns every listing of the authenticated owner, active and
// inactive alike, for the dashboard.
func GetMyParkings(store *config.Store, cfg config.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(r)
		if !ok {
			sendFail(w, http.StatusUnauthorized, "Not logged in", nil, cfg.Production())
			return
		}

		cursor, err := store.Parkings.Find(r.Context(), bson.M{"owner": user.ID})
		if err != nil {
			sendError(w, http.StatusInternalServerError, "Could not fetch your listings", err, cfg.Production())
			return
		}
		defer cursor.Close(r.Context())

		parkings := []models.Parking{}
		if err := cursor.All(r.Context(), &parkings); err != nil {
			sendError(w, http.StatusInternalServerError, "Could not fetch your listings", err, cfg.Production())
			return
		}

		sendList(w, http.StatusOK, len(parkings), parkings)
	}
}

// UpdateParking applies a partial patch to a listing after the ownership
// check. Patched fields are re-validated before persisting.
func UpdateParking(store *config.Store, rdb *redis.Client, cfg config.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(r)
		if !ok {
			sendFail(w, http.StatusUnauthorized, "Not logged in", nil, cfg.Production())
			return
		}

		objID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			sendFail(w, http.StatusBadRequest, "Invalid parking ID", err, cfg.Production())
			return
		}

		var patch map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			sendFail(w, http.StatusBadRequest, "Invalid update payload", err, cfg.Production())
			return
		}
		update := filterParkingPatch(patch)
		if len(update) == 0 {
			sendFail(w, http.StatusBadRequest, "No updatable fields in payload", nil, cfg.Production())
			return
		}

		if errs := models.ValidateParkingUpdate(update); len(errs) > 0 {
			sendValidationFail(w, "Invalid update data", errs)
			return
		}

		var existing models.Parking
		err = store.Parkings.FindOne(r.Context(), bson.M{"_id": objID}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			sendFail(w, http.StatusNotFound, "No parking spot found with that ID", nil, cfg.Production())
			return
		}
		if err != nil {
			sendError(w, http.StatusInternalServerError, "Update failed", err, cfg.Production())
			return
		}

		if !utils.IsOwner(user.ID.Hex(), existing.Owner) {
			sendFail(w, http.StatusForbidden, "Forbidden: you do not own this parking spot", nil, cfg.Production())
			return
		}

		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		var updated models.Parking
		err = store.Parkings.FindOneAndUpdate(r.Context(), bson.M{"_id": objID}, bson.M{"$set": update}, opts).Decode(&updated)
		if err != nil {
			sendError(w, http.StatusInternalServerError, "Update failed", err, cfg.Production())
			return
		}

		// A patch may toggle visibility; keep the owner's dashboard counter in
		// step with the transition.
		if existing.IsActive != updated.IsActive {
			delta := -1
			if updated.IsActive {
				delta = 1
			}
			if err := adjustActiveListings(r.Context(), store, existing.Owner, delta); err != nil {
				log.Printf("Failed to adjust active listing count for %s: %v", existing.Owner.Hex(), err)
			}
		}

		go invalidateSearchCache(rdb)

		sendData(w, http.StatusOK, updated)
	}
}

// DeleteParking deactivates a listing instead of removing it, preserving its
// rating and booking history. Deactivating an already-inactive listing is a
// no-op that still succeeds.
func DeleteParking(store *config.Store, rdb *redis.Client, cfg config.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(r)
		if !ok {
			sendFail(w, http.StatusUnauthorized, "Not logged in", nil, cfg.Production())
			return
		}

		objID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
		if err != nil {
			sendFail(w, http.StatusBadRequest, "Invalid parking ID", err, cfg.Production())
			return
		}

		var parking models.Parking
		err = store.Parkings.FindOne(r.Context(), bson.M{"_id": objID}).Decode(&parking)
		if err == mongo.ErrNoDocuments {
			sendFail(w, http.StatusNotFound, "No parking spot found with that ID", nil, cfg.Production())
			return
		}
		if err != nil {
			sendError(w, http.StatusInternalServerError, "Deletion failed", err, cfg.Production())
			return
		}

		if !utils.IsOwner(user.ID.Hex(), parking.Owner) {
			sendFail(w, http.StatusForbidden, "Forbidden: you do not own this parking spot", nil, cfg.Production())
			return
		}

		if parking.IsActive {
			_, err = store.Parkings.UpdateOne(r.Context(), bson.M{"_id": objID}, bson.M{"$set": bson.M{"isActive": false}})
			if err != nil {
				sendError(w, http.StatusInternalServerError, "Deletion failed", err, cfg.Production())
				return
			}
			if err := adjustActiveListings(r.Context(), store, parking.Owner, -1); err != nil {
				log.Printf("Failed to drop active listing count for %s: %v", parking.Owner.Hex(), err)
			}
			go invalidateSearchCache(rdb)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func adjustActiveListings(ctx context.Context, store *config.Store, owner primitive.ObjectID, delta int) error {
	_, err := store.Users.UpdateOne(ctx, bson.M{"_id": owner}, bson.M{"$inc": bson.M{"stats.activeListings": delta}})
	return err
}

// searchCacheKey hashes the sorted query parameters so semantically equal
// searches share a cache entry.
func searchCacheKey(queryParams url.Values) string {
	keys := make([]string, 0, len(queryParams))
	for k := range queryParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, key := range keys {
		values := queryParams[key]
		sort.Strings(values)
		for _, val := range values {
			sb.WriteString(key)
			sb.WriteString("=")
			sb.WriteString(val)
			sb.WriteString("&")
		}
	}
	rawKey := strings.TrimSuffix(sb.String(), "&")

	sum := sha256.Sum256([]byte(rawKey))
	return searchCachePrefix + hex.EncodeToString(sum[:])
}

// serveCached replays a cached search response verbatim. A redis failure is
// only a cache miss, never a request failure.
func serveCached(ctx context.Context, w http.ResponseWriter, rdb *redis.Client, key string) bool {
	cached, err := rdb.Get(ctx, key).Result()
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(cached))
		return true
	}
	if err != redis.Nil {
		log.Printf("Redis GET error for key %s: %v", key, err)
	}
	return false
}

func writeListThroughCache(ctx context.Context, w http.ResponseWriter, rdb *redis.Client, key string, parkings []models.Parking, production bool) {
	results := len(parkings)
	body, err := json.Marshal(Envelope{Status: "success", Results: &results, Data: parkings})
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to encode response", err, production)
		return
	}

	if err := rdb.Set(ctx, key, body, searchCacheTTL).Err(); err != nil {
		log.Printf("Failed to cache response for key %s: %v", key, err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// invalidateSearchCache drops every cached search page after a listing
// mutation. Runs off the request goroutine; staleness until completion is
// bounded by the cache TTL anyway.
func invalidateSearchCache(rdb *redis.Client) {
	ctx := context.Background()
	scanPattern := searchCachePrefix + "*"
	const scanCount = 100

	var keysToDelete []string
	var cursor uint64
	var err error

	for {
		var currentKeys []string
		currentKeys, cursor, err = rdb.Scan(ctx, cursor, scanPattern, scanCount).Result()
		if err != nil {
			log.Printf("Error during Redis SCAN for pattern %q: %v", scanPattern, err)
			return
		}
		keysToDelete = append(keysToDelete, currentKeys...)
		if cursor == 0 {
			break
		}
	}

	if len(keysToDelete) == 0 {
		return
	}

	pipe := rdb.Pipeline()
	for _, key := range keysToDelete {
		pipe.Del(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("Error deleting %d search cache keys: %v", len(keysToDelete), err)
		return
	}
	log.Printf("Search cache invalidated, %d keys deleted", len(keysToDelete))
}
