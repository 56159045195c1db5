package utils

import "golang.org/x/crypto/bcrypt"

// bcryptCost matches the cost the rest of the platform uses for account
// credentials.
const bcryptCost = 12

// HashPassword derives the stored credential from a plaintext password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPasswordHash reports whether the plaintext password matches the
// stored hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
