package blobstore

import (
	"bytes"
	"strings"
	"testing"
)

func TestBlobIdempotence(t *testing.T) {
	s := New()
	defer s.Close()

	data := []byte("hello blob")
	s.Set("id1", data)
	s.Set("id1", data)

	got := s.Get("id1")
	if !bytes.Equal(got, data) {
		t.Fatalf("Get(id1) = %q, want %q", got, data)
	}

	if got := s.Get("unknown"); got != nil {
		t.Fatalf("Get(unknown) = %q, want nil/empty", got)
	}
}

func TestBlobLargeValueCompressedRoundTrip(t *testing.T) {
	s := New()
	defer s.Close()

	big := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog ", 500))
	s.Set("big", big)
	got := s.Get("big")
	if !bytes.Equal(got, big) {
		t.Fatalf("large value round trip mismatch: got %d bytes, want %d", len(got), len(big))
	}
}

func TestAnalyzeAssistantTextStringContent(t *testing.T) {
	doc := []byte(`{"role":"assistant","content":"the recovered answer"}`)
	texts := AnalyzeAssistantText(doc)
	if len(texts) != 1 || texts[0] != "the recovered answer" {
		t.Fatalf("got %v", texts)
	}
}

func TestAnalyzeAssistantTextListContent(t *testing.T) {
	doc := []byte(`{"role":"assistant","content":[{"type":"text","text":"part one"},{"type":"text","text":"part two"}]}`)
	texts := AnalyzeAssistantText(doc)
	if len(texts) != 2 || texts[0] != "part one" || texts[1] != "part two" {
		t.Fatalf("got %v", texts)
	}
}

func TestAnalyzeAssistantTextMessagesArray(t *testing.T) {
	doc := []byte(`{"messages":[{"role":"user","content":"hi"},{"role":"assistant","content":"recovered"}]}`)
	texts := AnalyzeAssistantText(doc)
	if len(texts) != 1 || texts[0] != "recovered" {
		t.Fatalf("got %v", texts)
	}
}

func TestAnalyzeAssistantTextIgnoresNonAssistant(t *testing.T) {
	doc := []byte(`{"role":"user","content":"not recovered"}`)
	texts := AnalyzeAssistantText(doc)
	if len(texts) != 0 {
		t.Fatalf("got %v, want none", texts)
	}
}
