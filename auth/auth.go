// Copyright (c) 2025 uulzah.link.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"fmt"
)

// alphabet is the 62-symbol set both identifiers draw from. Public ids
// and edit tokens share the alphabet but are independent random draws,
// so a token can never be derived from an id.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const (
	// PublicIDLength is the length of event ids used in share URLs.
	// 62^8 is roughly 218 trillion possibilities.
	PublicIDLength = 8

	// TokenLength is the length of edit and response tokens.
	// 62^12 is roughly 3.2 quadrillion possibilities.
	TokenLength = 12
)

// NewPublicID creates a random short id for an event. Uniqueness is not
// checked here; the events table primary key is the actual guarantee and
// a collision surfaces as an insert failure.
func NewPublicID() (string, error) {
	return randomString(PublicIDLength)
}

// NewSecretToken creates a random capability token (edit token for
// events, response token for participants).
func NewSecretToken() (string, error) {
	return randomString(TokenLength)
}

func randomString(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	out := make([]byte, length)
	for i, v := range b {
		out[i] = alphabet[int(v)%len(alphabet)]
	}
	return string(out), nil
}

// ValidPublicID reports whether s has the shape of an event id. Used to
// reject obviously malformed ids before touching storage.
func ValidPublicID(s string) bool {
	if len(s) < 7 || len(s) > 10 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'A' <= c && c <= 'Z' || 'a' <= c && c <= 'z') {
			return false
		}
	}
	return true
}

// TokensMatch compares a presented token against the stored value in
// constant time. An empty presented token never matches.
func TokensMatch(presented, stored string) bool {
	if presented == "" {
		return false
	}
	return hmac.Equal([]byte(presented), []byte(stored))
}
