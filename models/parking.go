package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParkingTypes enumerates the accepted values of the parkingType field.
var ParkingTypes = []string{"Driveway", "Garage", "Street", "Lot", "Basement"}

// Address is the structured street address of a spot.
type Address struct {
	Street string `bson:"street" json:"street"`
	City   string `bson:"city" json:"city"`
	State  string `bson:"state" json:"state"`
	Zip    string `bson:"zip" json:"zip"`
}

// GeoPoint is a GeoJSON Point. Coordinates are [longitude, latitude], the
// order the 2dsphere index expects.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// Prices holds the rate card. Hourly is required; daily and monthly are
// optional and zero when unset.
type Prices struct {
	Hourly  float64 `bson:"hourly" json:"hourly"`
	Daily   float64 `bson:"daily,omitempty" json:"daily,omitempty"`
	Monthly float64 `bson:"monthly,omitempty" json:"monthly,omitempty"`
}

// Parking is a listed spot. Owner links to the user that created it and is
// immutable after creation. Deactivation flips IsActive instead of removing
// the document, so ratings and booking history survive.
type Parking struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Owner         primitive.ObjectID `bson:"owner" json:"owner"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Photos        []string           `bson:"photos" json:"photos"`
	Address       Address            `bson:"address" json:"address"`
	Location      GeoPoint           `bson:"location" json:"location"`
	ParkingType   string             `bson:"parkingType" json:"parkingType"`
	Features      []string           `bson:"features" json:"features"`
	Tags          []string           `bson:"tags" json:"tags"`
	Prices        Prices             `bson:"prices" json:"prices"`
	Currency      string             `bson:"currency" json:"currency"`
	AverageRating float64            `bson:"averageRating" json:"averageRating"`
	ReviewCount   int                `bson:"reviewCount" json:"reviewCount"`
	TotalBookings int                `bson:"totalBookings" json:"totalBookings"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// ValidParkingType reports whether t is one of the accepted enum values.
func ValidParkingType(t string) bool {
	for _, v := range ParkingTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Validate checks a full listing payload before insertion. The owner field is
// set by the handler from the authenticated identity and is not validated
// here.
func (p *Parking) Validate() ValidationErrors {
	var errs ValidationErrors

	if p.Name == "" {
		errs.add("name", "a parking spot must have a name")
	}
	validateLocation(&errs, p.Location.Type, p.Location.Coordinates)
	if p.ParkingType == "" {
		errs.add("parkingType", "parking type is required")
	} else if !ValidParkingType(p.ParkingType) {
		errs.add("parkingType", "parking type must be one of Driveway, Garage, Street, Lot, Basement")
	}
	validatePrices(&errs, p.Prices.Hourly, p.Prices.Daily, p.Prices.Monthly)

	return errs
}

// ValidateParkingUpdate checks a partial update payload. Only the fields
// present in the patch are validated; absent fields keep their stored values.
func ValidateParkingUpdate(fields map[string]interface{}) ValidationErrors {
	var errs ValidationErrors

	if raw, ok := fields["name"]; ok {
		if s, ok := raw.(string); !ok || s == "" {
			errs.add("name", "name must be a non-empty string")
		}
	}
	if raw, ok := fields["parkingType"]; ok {
		s, isStr := raw.(string)
		if !isStr || !ValidParkingType(s) {
			errs.add("parkingType", "parking type must be one of Driveway, Garage, Street, Lot, Basement")
		}
	}
	if raw, ok := fields["prices"]; ok {
		prices, isMap := raw.(map[string]interface{})
		if !isMap {
			errs.add("prices", "prices must be an object")
		} else {
			hourly, daily, monthly, ok := numericPrices(prices)
			if !ok {
				errs.add("prices", "prices must be numeric")
			} else {
				validatePrices(&errs, hourly, daily, monthly)
			}
		}
	}
	if raw, ok := fields["location"]; ok {
		loc, isMap := raw.(map[string]interface{})
		if !isMap {
			errs.add("location", "location must be a GeoJSON point")
		} else {
			typ, _ := loc["type"].(string)
			coords, ok := numericSlice(loc["coordinates"])
			if !ok {
				errs.add("location", "location coordinates must be numeric")
			} else {
				validateLocation(&errs, typ, coords)
			}
		}
	}
	if raw, ok := fields["isActive"]; ok {
		if _, isBool := raw.(bool); !isBool {
			errs.add("isActive", "isActive must be a boolean")
		}
	}
	if raw, ok := fields["description"]; ok {
		if _, isStr := raw.(string); !isStr {
			errs.add("description", "description must be a string")
		}
	}
	if raw, ok := fields["currency"]; ok {
		if s, isStr := raw.(string); !isStr || s == "" {
			errs.add("currency", "currency must be a non-empty string")
		}
	}
	if raw, ok := fields["photos"]; ok {
		if _, isList := stringSlice(raw); !isList {
			errs.add("photos", "photos must be a list of URLs")
		}
	}
	if raw, ok := fields["features"]; ok {
		if _, isList := stringSlice(raw); !isList {
			errs.add("features", "features must be a list of strings")
		}
	}
	if raw, ok := fields["tags"]; ok {
		if _, isList := stringSlice(raw); !isList {
			errs.add("tags", "tags must be a list of strings")
		}
	}
	if raw, ok := fields["address"]; ok {
		addr, isMap := raw.(map[string]interface{})
		if !isMap {
			errs.add("address", "address must be an object")
		} else {
			for _, key := range []string{"street", "city", "state", "zip"} {
				if v, present := addr[key]; present {
					if _, isStr := v.(string); !isStr {
						errs.add("address", "address."+key+" must be a string")
					}
				}
			}
		}
	}

	return errs
}

func validateLocation(errs *ValidationErrors, typ string, coords []float64) {
	if typ != "Point" {
		errs.add("location", "location type must be \"Point\"")
	}
	if len(coords) != 2 {
		errs.add("location", "coordinates must be a [longitude, latitude] pair")
		return
	}
	lng, lat := coords[0], coords[1]
	if lng < -180 || lng > 180 {
		errs.add("location", "longitude must be between -180 and 180")
	}
	if lat < -90 || lat > 90 {
		errs.add("location", "latitude must be between -90 and 90")
	}
}

func validatePrices(errs *ValidationErrors, hourly, daily, monthly float64) {
	if hourly <= 0 {
		errs.add("prices", "an hourly price is required")
	}
	if daily < 0 {
		errs.add("prices", "daily price cannot be negative")
	}
	if monthly < 0 {
		errs.add("prices", "monthly price cannot be negative")
	}
}

func numericPrices(m map[string]interface{}) (hourly, daily, monthly float64, ok bool) {
	read := func(key string) (float64, bool) {
		raw, present := m[key]
		if !present {
			return 0, true
		}
		n, isNum := raw.(float64)
		return n, isNum
	}

	if hourly, ok = read("hourly"); !ok {
		return 0, 0, 0, false
	}
	if daily, ok = read("daily"); !ok {
		return 0, 0, 0, false
	}
	if monthly, ok = read("monthly"); !ok {
		return 0, 0, 0, false
	}
	return hourly, daily, monthly, true
}

func stringSlice(raw interface{}) ([]string, bool) {
	items, ok := raw.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, isStr := item.(string)
		if !isStr {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func numericSlice(raw interface{}) ([]float64, bool) {
	items, ok := raw.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		n, isNum := item.(float64)
		if !isNum {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}
