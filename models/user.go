package models

import (
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// PaymentMethod references a card held by the payment provider. Only the
// opaque provider token is stored, never raw card data.
type PaymentMethod struct {
	Provider string `bson:"provider" json:"provider"`
	Token    string `bson:"token" json:"token"`
	Label    string `bson:"label,omitempty" json:"label,omitempty"`
}

// OwnerStats are denormalized counters maintained by listing and booking
// activity, shown on the owner dashboard.
type OwnerStats struct {
	TotalEarnings  float64 `bson:"totalEarnings" json:"totalEarnings"`
	TotalBookings  int     `bson:"totalBookings" json:"totalBookings"`
	ActiveListings int     `bson:"activeListings" json:"activeListings"`
	AverageRating  float64 `bson:"averageRating" json:"averageRating"`
	ReviewCount    int     `bson:"reviewCount" json:"reviewCount"`
}

// User is the persisted account document. The password field holds only the
// bcrypt hash and is never serialized into responses.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name           string             `bson:"name" json:"name"`
	LastName       string             `bson:"lastName" json:"lastName"`
	Email          string             `bson:"email" json:"email"`
	Password       string             `bson:"password" json:"-"`
	Phone          string             `bson:"phone,omitempty" json:"phone,omitempty"`
	IsVerified     bool               `bson:"isVerified" json:"isVerified"`
	Avatar         string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	PaymentMethods []PaymentMethod    `bson:"paymentMethods,omitempty" json:"paymentMethods,omitempty"`
	Stats          OwnerStats         `bson:"stats" json:"stats"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// SignupRequest is the signup payload. PasswordConfirm exists only in the
// request; it is checked against Password and then discarded.
type SignupRequest struct {
	Name            string `json:"name"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// Validate returns every problem with the signup payload. Email uniqueness is
// checked separately against the store.
func (r *SignupRequest) Validate() ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(r.Name) == "" {
		errs.add("name", "a user must have a name")
	}
	if strings.TrimSpace(r.LastName) == "" {
		errs.add("lastName", "a user must have a last name")
	}
	if strings.TrimSpace(r.Email) == "" {
		errs.add("email", "a user must have an email")
	} else if !emailPattern.MatchString(r.Email) {
		errs.add("email", "please provide a valid email address")
	}
	if r.Password == "" {
		errs.add("password", "a user must have a password")
	} else if len(r.Password) < MinPasswordLength {
		errs.add("password", "password must be at least 8 characters long")
	}
	if r.PasswordConfirm == "" {
		errs.add("passwordConfirm", "please confirm your password")
	} else if r.Password != "" && r.Password != r.PasswordConfirm {
		errs.add("passwordConfirm", "passwords do not match")
	}

	return errs
}

// NormalizeEmail lowercases an address so lookups and the unique index are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
