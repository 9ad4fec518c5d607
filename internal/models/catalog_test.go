package models

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLookupCollapsesSuffixes(t *testing.T) {
	c := NewCatalog("https://example.invalid", http.DefaultClient, func() string { return "" })
	got := c.Lookup("sonnet-4.5-thinking")
	want := staticTable["sonnet-4.5"]
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestLookupUnknownFallsBackToDefault(t *testing.T) {
	c := NewCatalog("https://example.invalid", http.DefaultClient, func() string { return "" })
	if got := c.Lookup("not-a-real-model"); got != defaultLimits {
		t.Fatalf("got %+v, want default limits", got)
	}
}

func TestRefreshMergesLiveAliases(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]any{
				{"modelId": "gpt-5.2", "aliases": []string{"gpt-5.2-latest"}},
			},
		})
	}))
	defer srv.Close()

	c := NewCatalog(srv.URL, srv.Client(), func() string { return "" })
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := c.Lookup("gpt-5.2-latest"); got != staticTable["gpt-5.2"] {
		t.Fatalf("alias did not resolve to static limits: got %+v", got)
	}
}

func TestDefaultModelID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"modelId": "opus-4.5-thinking"})
	}))
	defer srv.Close()

	c := NewCatalog(srv.URL, srv.Client(), func() string { return "" })
	id, err := c.DefaultModelID(context.Background())
	if err != nil {
		t.Fatalf("DefaultModelID: %v", err)
	}
	if id != "opus-4.5" {
		t.Fatalf("got %q, want base id opus-4.5", id)
	}
}
