package models

import "testing"

func validParking() Parking {
	return Parking{
		Name: "Downtown Secure Garage",
		Location: GeoPoint{
			Type:        "Point",
			Coordinates: []float64{-122.4194, 37.7749},
		},
		ParkingType: "Garage",
		Prices:      Prices{Hourly: 3.5, Daily: 25},
	}
}

func TestParkingValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Parking)
		wantField string
	}{
		{"valid", func(p *Parking) {}, ""},
		{"missing name", func(p *Parking) { p.Name = "" }, "name"},
		{"missing location type", func(p *Parking) { p.Location.Type = "" }, "location"},
		{"one coordinate", func(p *Parking) { p.Location.Coordinates = []float64{-122.4} }, "location"},
		{"three coordinates", func(p *Parking) { p.Location.Coordinates = []float64{1, 2, 3} }, "location"},
		{"longitude out of range", func(p *Parking) { p.Location.Coordinates = []float64{-181, 37.7} }, "location"},
		{"latitude out of range", func(p *Parking) { p.Location.Coordinates = []float64{-122.4, 91} }, "location"},
		{"missing parking type", func(p *Parking) { p.ParkingType = "" }, "parkingType"},
		{"bad enum value", func(p *Parking) { p.ParkingType = "Rooftop" }, "parkingType"},
		{"missing hourly price", func(p *Parking) { p.Prices.Hourly = 0 }, "prices"},
		{"negative daily price", func(p *Parking) { p.Prices.Daily = -1 }, "prices"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParking()
			tt.mutate(&p)
			errs := p.Validate()

			if tt.wantField == "" {
				if len(errs) != 0 {
					t.Fatalf("Validate() = %v, want no errors", errs)
				}
				return
			}

			found := false
			for _, fe := range errs {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() = %v, want an error on field %q", errs, tt.wantField)
			}
		})
	}
}

func TestValidateParkingUpdate(t *testing.T) {
	tests := []struct {
		name      string
		patch     map[string]interface{}
		wantField string
	}{
		{"empty patch", map[string]interface{}{}, ""},
		{"valid name", map[string]interface{}{"name": "New Name"}, ""},
		{"empty name", map[string]interface{}{"name": ""}, "name"},
		{"name wrong type", map[string]interface{}{"name": 42.0}, "name"},
		{"valid type", map[string]interface{}{"parkingType": "Driveway"}, ""},
		{"bad type", map[string]interface{}{"parkingType": "Rooftop"}, "parkingType"},
		{"valid prices", map[string]interface{}{"prices": map[string]interface{}{"hourly": 4.0}}, ""},
		{"prices without hourly", map[string]interface{}{"prices": map[string]interface{}{"daily": 30.0}}, "prices"},
		{"prices not an object", map[string]interface{}{"prices": "cheap"}, "prices"},
		{"prices non-numeric", map[string]interface{}{"prices": map[string]interface{}{"hourly": "four"}}, "prices"},
		{
			"valid location",
			map[string]interface{}{"location": map[string]interface{}{
				"type":        "Point",
				"coordinates": []interface{}{-122.4, 37.7},
			}},
			"",
		},
		{
			"location bad arity",
			map[string]interface{}{"location": map[string]interface{}{
				"type":        "Point",
				"coordinates": []interface{}{-122.4},
			}},
			"location",
		},
		{"location not a point", map[string]interface{}{"location": "somewhere"}, "location"},
		{"valid isActive", map[string]interface{}{"isActive": true}, ""},
		{"isActive wrong type", map[string]interface{}{"isActive": "yes"}, "isActive"},
		{"valid description", map[string]interface{}{"description": "quiet street"}, ""},
		{"description wrong type", map[string]interface{}{"description": []interface{}{"a"}}, "description"},
		{"valid currency", map[string]interface{}{"currency": "EUR"}, ""},
		{"currency wrong type", map[string]interface{}{"currency": 7.0}, "currency"},
		{"empty currency", map[string]interface{}{"currency": ""}, "currency"},
		{"valid photos", map[string]interface{}{"photos": []interface{}{"https://example.com/a.jpg"}}, ""},
		{"photos not a list", map[string]interface{}{"photos": "not-a-list"}, "photos"},
		{"photos numeric", map[string]interface{}{"photos": 123.0}, "photos"},
		{"photos with non-string element", map[string]interface{}{"photos": []interface{}{"a.jpg", 2.0}}, "photos"},
		{"valid features", map[string]interface{}{"features": []interface{}{"CCTV", "Gated"}}, ""},
		{"features not a list", map[string]interface{}{"features": "covered"}, "features"},
		{"valid tags", map[string]interface{}{"tags": []interface{}{"Cheap"}}, ""},
		{"tags not a list", map[string]interface{}{"tags": map[string]interface{}{"x": 1.0}}, "tags"},
		{
			"valid address",
			map[string]interface{}{"address": map[string]interface{}{
				"street": "123 Market St",
				"city":   "San Francisco",
			}},
			"",
		},
		{"address not an object", map[string]interface{}{"address": "main street"}, "address"},
		{
			"address with non-string value",
			map[string]interface{}{"address": map[string]interface{}{"zip": 94103.0}},
			"address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateParkingUpdate(tt.patch)

			if tt.wantField == "" {
				if len(errs) != 0 {
					t.Fatalf("ValidateParkingUpdate() = %v, want no errors", errs)
				}
				return
			}

			found := false
			for _, fe := range errs {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("ValidateParkingUpdate() = %v, want an error on field %q", errs, tt.wantField)
			}
		})
	}
}

func TestValidParkingType(t *testing.T) {
	for _, v := range ParkingTypes {
		if !ValidParkingType(v) {
			t.Errorf("ValidParkingType(%q) = false", v)
		}
	}
	for _, v := range []string{"", "garage", "Rooftop"} {
		if ValidParkingType(v) {
			t.Errorf("ValidParkingType(%q) = true", v)
		}
	}
}
