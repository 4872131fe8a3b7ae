package util

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// MatchSecret reports whether candidate equals plain (constant time) or, when
// hash is set, matches the bcrypt hash. An empty candidate never matches.
func MatchSecret(candidate, plain, hash string) bool {
	if candidate == "" {
		return false
	}
	if plain != "" && subtle.ConstantTimeCompare([]byte(candidate), []byte(plain)) == 1 {
		return true
	}
	if hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
	}
	return false
}
