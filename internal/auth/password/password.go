// Package password wraps bcrypt hashing with a fixed cost factor.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Hash hashes a plaintext password using bcrypt with the given cost.
func Hash(password string, cost int) (string, error) {
	if len(password) == 0 {
		return "", errors.New("password is empty")
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify compares a plaintext password with the stored hash.
func Verify(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
