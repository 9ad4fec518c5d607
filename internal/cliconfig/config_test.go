package cliconfig

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestLoadMissingPathReturnsNilNil(t *testing.T) {
	cfg, err := Load("")
	if cfg != nil || err != nil {
		t.Fatalf("Load(\"\") = (%v, %v), want (nil, nil)", cfg, err)
	}

	cfg, err = Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if cfg != nil || err != nil {
		t.Fatalf("Load(missing) = (%v, %v), want (nil, nil)", cfg, err)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := &Config{
		CurrentContext: "work",
		Contexts: map[string]*Context{
			"work": {BaseURL: "https://work.example", WorkspacePath: "/home/me/work", CredentialPath: "~/.cursorbridge/work.json"},
		},
	}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.CurrentContext != "work" {
		t.Fatalf("CurrentContext = %q", got.CurrentContext)
	}
	if got.Contexts["work"].BaseURL != "https://work.example" {
		t.Fatalf("BaseURL = %q", got.Contexts["work"].BaseURL)
	}
}

func TestResolveFallsBackToCurrentContext(t *testing.T) {
	cfg := &Config{
		CurrentContext: "personal",
		Contexts: map[string]*Context{
			"personal": {BaseURL: "https://personal.example"},
		},
	}

	ctx, name, err := cfg.Resolve("")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if name != "personal" || ctx.BaseURL != "https://personal.example" {
		t.Fatalf("got ctx=%+v name=%q", ctx, name)
	}
}

func TestResolveUnknownNameErrors(t *testing.T) {
	cfg := &Config{Contexts: map[string]*Context{}}
	_, _, err := cfg.Resolve("missing")
	if !errors.Is(err, ErrContextNotFound) {
		t.Fatalf("got err=%v, want ErrContextNotFound", err)
	}
}

func TestResolveNilConfigIsNotError(t *testing.T) {
	var cfg *Config
	ctx, name, err := cfg.Resolve("anything")
	if ctx != nil || name != "" || err != nil {
		t.Fatalf("Resolve on nil config = (%v, %q, %v), want (nil, \"\", nil)", ctx, name, err)
	}
}
