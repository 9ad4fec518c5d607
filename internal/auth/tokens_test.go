package auth

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"
)

func makeJWT(t *testing.T, exp int64) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	payloadBytes, err := json.Marshal(map[string]int64{"exp": exp})
	if err != nil {
		t.Fatal(err)
	}
	payload := base64.RawURLEncoding.EncodeToString(payloadBytes)
	return header + "." + payload + ".sig"
}

func TestExpiresAtFromAccessTokenParsesExp(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Unix()
	tok := makeJWT(t, exp)
	got := ExpiresAtFromAccessToken(tok)
	want := exp * 1000
	if got != want {
		t.Fatalf("got %d, want %d", got, want)
	}
}

func TestExpiresAtFromAccessTokenFallsBackOnNonJWT(t *testing.T) {
	got := ExpiresAtFromAccessToken("not-a-jwt")
	now := time.Now().UnixMilli()
	if got <= now || got > now+int64(2*time.Hour/time.Millisecond) {
		t.Fatalf("expected a ~1h fallback expiry, got %d (now=%d)", got, now)
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Now().UnixMilli()
	if !IsExpired("", now+1_000_000) {
		t.Fatal("empty access token must always be expired")
	}
	if !IsExpired("tok", now+30_000) {
		t.Fatal("token expiring within the 60s grace window must be expired")
	}
	if IsExpired("tok", now+120_000) {
		t.Fatal("token expiring well in the future must not be expired")
	}
}

func TestStartPKCEProducesDistinctVerifiers(t *testing.T) {
	a, err := StartPKCE()
	if err != nil {
		t.Fatal(err)
	}
	b, err := StartPKCE()
	if err != nil {
		t.Fatal(err)
	}
	if a.Verifier == b.Verifier {
		t.Fatal("expected distinct verifiers across calls")
	}
	if a.UUID == "" || a.LoginURL == "" {
		t.Fatalf("incomplete PKCEStart: %+v", a)
	}
}
