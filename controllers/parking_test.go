package controllers

import (
	"net/url"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildSearchFilterDefault(t *testing.T) {
	filter, errs := buildSearchFilter(url.Values{})
	if len(errs) != 0 {
		t.Fatalf("buildSearchFilter() errors: %v", errs)
	}
	if active, ok := filter["isActive"].(bool); !ok || !active {
		t.Errorf("filter[isActive] = %v, want true", filter["isActive"])
	}
	if len(filter) != 1 {
		t.Errorf("filter = %v, want only the isActive restriction", filter)
	}
}

func TestBuildSearchFilterGeo(t *testing.T) {
	query := url.Values{}
	query.Set("lat", "37.7749")
	query.Set("lng", "-122.4194")
	query.Set("distance", "5")

	filter, errs := buildSearchFilter(query)
	if len(errs) != 0 {
		t.Fatalf("buildSearchFilter() errors: %v", errs)
	}

	location, ok := filter["location"].(bson.M)
	if !ok {
		t.Fatalf("filter[location] = %v, want a $nearSphere document", filter["location"])
	}
	near, ok := location["$nearSphere"].(bson.M)
	if !ok {
		t.Fatalf("location = %v, want $nearSphere", location)
	}
	if got := near["$maxDistance"]; got != 5000.0 {
		t.Errorf("$maxDistance = %v, want 5000 meters for 5 km", got)
	}
	geometry, ok := near["$geometry"].(bson.M)
	if !ok {
		t.Fatalf("$geometry missing: %v", near)
	}
	coords, ok := geometry["coordinates"].([]float64)
	if !ok || len(coords) != 2 {
		t.Fatalf("coordinates = %v, want [lng lat]", geometry["coordinates"])
	}
	if coords[0] != -122.4194 || coords[1] != 37.7749 {
		t.Errorf("coordinates = %v, want longitude first", coords)
	}
}

func TestBuildSearchFilterGeoErrors(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
	}{
		{"partial trio", url.Values{"lat": {"37.7"}}},
		{"missing distance", url.Values{"lat": {"37.7"}, "lng": {"-122.4"}}},
		{"non-numeric", url.Values{"lat": {"x"}, "lng": {"-122.4"}, "distance": {"5"}}},
		{"zero distance", url.Values{"lat": {"37.7"}, "lng": {"-122.4"}, "distance": {"0"}}},
		{"negative distance", url.Values{"lat": {"37.7"}, "lng": {"-122.4"}, "distance": {"-2"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, errs := buildSearchFilter(tt.query)
			if len(errs) == 0 {
				t.Errorf("buildSearchFilter(%v) accepted bad geo parameters", tt.query)
			}
			if _, has := filter["location"]; has {
				t.Errorf("filter gained a location restriction despite bad input: %v", filter)
			}
		})
	}
}

func TestBuildSearchFilterTypeAndPrice(t *testing.T) {
	query := url.Values{}
	query.Set("parkingType", "Garage")
	query.Set("priceMax", "4.5")

	filter, errs := buildSearchFilter(query)
	if len(errs) != 0 {
		t.Fatalf("buildSearchFilter() errors: %v", errs)
	}
	if filter["parkingType"] != "Garage" {
		t.Errorf("filter[parkingType] = %v, want Garage", filter["parkingType"])
	}
	price, ok := filter["prices.hourly"].(bson.M)
	if !ok {
		t.Fatalf("filter[prices.hourly] = %v, want a $lte document", filter["prices.hourly"])
	}
	if price["$lte"] != 4.5 {
		t.Errorf("$lte = %v, want 4.5", price["$lte"])
	}
}

func TestBuildSearchFilterBadTypeAndPrice(t *testing.T) {
	if _, errs := buildSearchFilter(url.Values{"parkingType": {"Rooftop"}}); len(errs) == 0 {
		t.Error("unknown parkingType accepted")
	}
	if _, errs := buildSearchFilter(url.Values{"priceMax": {"cheap"}}); len(errs) == 0 {
		t.Error("non-numeric priceMax accepted")
	}
}

func TestFilterParkingPatch(t *testing.T) {
	patch := map[string]interface{}{
		"name":          "New Name",
		"isActive":      false,
		"owner":         "66a6a02b1234567890abcdef",
		"averageRating": 5.0,
		"reviewCount":   100.0,
		"createdAt":     "2020-01-01",
		"_id":           "whatever",
		"bogusField":    "junk",
	}

	update := filterParkingPatch(patch)

	if len(update) != 2 {
		t.Fatalf("filterParkingPatch kept %d fields (%v), want only name and isActive", len(update), update)
	}
	if update["name"] != "New Name" {
		t.Errorf("name = %v, want New Name", update["name"])
	}
	if update["isActive"] != false {
		t.Errorf("isActive = %v, want false", update["isActive"])
	}
	for _, key := range []string{"owner", "averageRating", "reviewCount", "createdAt", "_id", "bogusField"} {
		if _, kept := update[key]; kept {
			t.Errorf("non-updatable field %q survived filtering", key)
		}
	}
}

func TestTopRatedFindOptions(t *testing.T) {
	opts := topRatedFindOptions()

	if opts.Limit == nil || *opts.Limit != 5 {
		t.Errorf("limit = %v, want 5", opts.Limit)
	}

	sortDoc, ok := opts.Sort.(bson.D)
	if !ok {
		t.Fatalf("sort = %T, want bson.D", opts.Sort)
	}
	if len(sortDoc) != 2 {
		t.Fatalf("sort = %v, want rating then review count", sortDoc)
	}
	if sortDoc[0].Key != "averageRating" || sortDoc[0].Value != -1 {
		t.Errorf("primary sort = %v, want averageRating descending", sortDoc[0])
	}
	if sortDoc[1].Key != "reviewCount" || sortDoc[1].Value != -1 {
		t.Errorf("tie-break sort = %v, want reviewCount descending", sortDoc[1])
	}
}

func TestSearchCacheKeyStable(t *testing.T) {
	a := url.Values{}
	a.Set("lat", "37.7")
	a.Set("lng", "-122.4")
	a.Set("distance", "5")

	b := url.Values{}
	b.Set("distance", "5")
	b.Set("lng", "-122.4")
	b.Set("lat", "37.7")

	if searchCacheKey(a) != searchCacheKey(b) {
		t.Error("parameter order changed the cache key")
	}

	c := url.Values{}
	c.Set("lat", "37.8")
	c.Set("lng", "-122.4")
	c.Set("distance", "5")
	if searchCacheKey(a) == searchCacheKey(c) {
		t.Error("different searches share a cache key")
	}

	if !strings.HasPrefix(searchCacheKey(a), searchCachePrefix) {
		t.Errorf("cache key %q lacks the %q prefix", searchCacheKey(a), searchCachePrefix)
	}
}
