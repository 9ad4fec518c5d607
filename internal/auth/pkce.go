// Package auth implements the OAuth PKCE login flow, token refresh, and
// credential storage used to authenticate every Cursor call.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

// PKCEStart is the result of initiating a login: the URL to send the user
// to, plus the verifier the poll step needs to complete the exchange.
type PKCEStart struct {
	LoginURL string
	UUID     string
	Verifier string
}

// StartPKCE generates a fresh PKCE verifier/challenge pair and builds the
// Cursor login deep-link.
func StartPKCE() (PKCEStart, error) {
	var raw [32]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return PKCEStart{}, fmt.Errorf("auth: generate verifier: %w", err)
	}
	verifier := base64.RawURLEncoding.EncodeToString(raw[:])

	sum := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(sum[:])

	id := uuid.NewString()
	loginURL := fmt.Sprintf(
		"https://cursor.com/loginDeepControl?challenge=%s&uuid=%s&mode=login&redirectTarget=cli",
		challenge, id,
	)
	return PKCEStart{LoginURL: loginURL, UUID: id, Verifier: verifier}, nil
}
