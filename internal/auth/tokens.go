package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// TokenPair is the result of a successful poll, API-key exchange, or
// refresh call.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAtMs  int64
}

const defaultExpiryWindow = time.Hour

// jwtClaims is the subset of a JWT payload this core reads. Tokens are
// opaque otherwise: no signature verification is performed, per the
// credential core's non-goal.
type jwtClaims struct {
	Exp int64 `json:"exp"`
}

// ExpiresAtFromAccessToken parses the unverified `exp` claim (seconds since
// epoch) out of a JWT access token's payload segment. It defaults to
// now+1h when the token isn't a parseable JWT or carries no exp claim.
func ExpiresAtFromAccessToken(accessToken string) int64 {
	now := time.Now()
	fallback := now.Add(defaultExpiryWindow).UnixMilli()

	parts := strings.Split(accessToken, ".")
	if len(parts) != 3 {
		return fallback
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return fallback
	}
	var claims jwtClaims
	if err := json.Unmarshal(payload, &claims); err != nil || claims.Exp == 0 {
		return fallback
	}
	return claims.Exp * 1000
}

// expiryGraceMs is how far ahead of the real expiry a token is treated as
// already expired, so a refresh has time to complete before callers hit a
// hard 401.
const expiryGraceMs = 60_000

// IsExpired reports whether a token needs refreshing: absent, or expiring
// within the grace window.
func IsExpired(accessToken string, expiresAtMs int64) bool {
	if accessToken == "" {
		return true
	}
	return expiresAtMs <= time.Now().UnixMilli()+expiryGraceMs
}
