// Package blobstore implements the session-local, content-addressed blob
// store Cursor uses to checkpoint conversation state via get_blob/set_blob,
// plus the heuristic that recovers assistant text the server persisted to
// a blob instead of streaming it.
package blobstore

import (
	"bytes"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// compressThreshold is the size at or above which a stored value is zstd
// compressed in memory. Large blobs (full conversation checkpoints) are
// common enough in long sessions that keeping them compressed at rest is
// worth the encode/decode cost; small blobs (tool args, short messages)
// are kept raw to avoid the fixed zstd frame overhead.
const compressThreshold = 4096

// Store is a single session's blob_store: get/set keyed by the server's
// opaque blob id, single-writer-per-key idempotent.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

type entry struct {
	data        []byte
	compressed  bool
}

// New creates an empty store. The returned store owns its own zstd
// encoder/decoder pair and must be closed with Close when the session ends.
func New() *Store {
	enc, _ := zstd.NewWriter(nil)
	dec, _ := zstd.NewReader(nil)
	return &Store{
		entries: make(map[string]entry),
		encoder: enc,
		decoder: dec,
	}
}

// Close releases the store's zstd resources.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.encoder != nil {
		s.encoder.Close()
	}
	if s.decoder != nil {
		s.decoder.Close()
	}
}

// Set stores data under id, overwriting any prior value. Setting the same
// id with the same bytes twice is a no-op observable from Get: idempotent
// by construction since Get always returns the last write.
func (s *Store) Set(id string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(data) < compressThreshold {
		s.entries[id] = entry{data: append([]byte(nil), data...)}
		return
	}
	compressed := s.encoder.EncodeAll(data, nil)
	s.entries[id] = entry{data: compressed, compressed: true}
}

// Get returns the bytes stored under id, or nil if id is unknown.
func (s *Store) Get(id string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil
	}
	if !e.compressed {
		return append([]byte(nil), e.data...)
	}
	out, err := s.decoder.DecodeAll(e.data, nil)
	if err != nil {
		return nil
	}
	return out
}

// Len reports the number of blobs currently held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// looksLikeJSONOrUTF8 reports whether b, after trimming surrounding
// whitespace, starts with a JSON-ish delimiter ('{' or '['), a cheap
// pre-filter before a full json.Unmarshal attempt. It does not check UTF-8
// validity itself; AnalyzeAssistantText does that before calling it.
func looksLikeJSONOrUTF8(b []byte) bool {
	trimmed := bytes.TrimSpace(b)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}
