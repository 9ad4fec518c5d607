package diag

import "testing"

func TestOptionsSetDefaults(t *testing.T) {
	o := Options{}
	o.setDefaults()
	if o.Stream != "CURSORBRIDGE_DIAG" {
		t.Errorf("Stream default = %q", o.Stream)
	}
	if o.Prefix != "cursorbridge" {
		t.Errorf("Prefix default = %q", o.Prefix)
	}
	if o.MaxBytes != 256<<20 {
		t.Errorf("MaxBytes default = %d", o.MaxBytes)
	}

	o2 := Options{Stream: "X", Prefix: "y", MaxBytes: 10}
	o2.setDefaults()
	if o2.Stream != "X" || o2.Prefix != "y" || o2.MaxBytes != 10 {
		t.Errorf("setDefaults overwrote explicit values: %+v", o2)
	}
}

func TestSubjectAndWildcard(t *testing.T) {
	b := &Bus{prefix: "cursorbridge"}
	if got, want := b.subject("abc-123"), "cursorbridge.sessions.abc-123"; got != want {
		t.Errorf("subject() = %q, want %q", got, want)
	}
	if got, want := b.wildcard(), "cursorbridge.sessions.*"; got != want {
		t.Errorf("wildcard() = %q, want %q", got, want)
	}
}

func TestNewDisabledWithBlankURL(t *testing.T) {
	b, err := New(Options{}, nil)
	if b != nil || err != nil {
		t.Fatalf("New with blank URL = (%v, %v), want (nil, nil)", b, err)
	}
}

func TestNilBusIsNoop(t *testing.T) {
	var b *Bus
	b.Publish("session", "opened", "detail")
	b.Close()
}
