// Package auth implements the credential side of API key authentication:
// minting a new plaintext secret and its lookup hash, and verifying one
// presented on a request (spec.md §4.6, SPEC_FULL.md §4.10).
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// KeyPrefix is prepended to every minted plaintext key so a leaked
// credential is recognizable in logs and secret scanners.
const KeyPrefix = "lsk_"

// secretBytes is the amount of randomness in a minted key, well above
// what brute-forcing a bearer token over the network could exhaust.
const secretBytes = 32

// APIKeyHasher implements command.APIKeySecretHasher. Unlike a user
// password, an API key must be looked up by its hash directly (spec.md
// §9: the auth middleware hashes the presented bearer token and queries
// storage for an exact match), which rules out bcrypt's salted, slow,
// non-deterministic digest — sha256 is the standard shape for this
// exact problem (GitHub- and Stripe-style token hashing).
type APIKeyHasher struct{}

// NewAPIKeyHasher returns a ready-to-use APIKeyHasher.
func NewAPIKeyHasher() *APIKeyHasher {
	return &APIKeyHasher{}
}

// GenerateAndHash mints a new random plaintext credential and its
// lookup hash.
func (h *APIKeyHasher) GenerateAndHash() (plaintext string, hash string, err error) {
	raw := make([]byte, secretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("auth: generate key: %w", err)
	}

	plaintext = KeyPrefix + hex.EncodeToString(raw)

	return plaintext, Hash(plaintext), nil
}

// Hash deterministically digests a presented plaintext credential for
// comparison against the stored hash, used identically at mint time and
// at authentication time.
func Hash(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
