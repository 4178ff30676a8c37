// Package kvstore persists application state as a single JSON object kept in
// one durable storage slot. Every write reloads the whole object, merges the
// change and writes the whole object back.
package kvstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bkarpinos/linkvault/internal/errx"
)

// DefaultNamespace names the storage slot holding application state.
const DefaultNamespace = "app:data:v1"

// ErrQuotaExceeded is returned when a write would grow the blob past the
// configured quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Store is a keyed view over one Backend slot. It is safe for concurrent use.
type Store struct {
	backend Backend
	quota   int
	logger  zerolog.Logger
	mu      sync.RWMutex
}

type Option func(*Store)

// WithQuota caps the encoded blob size in bytes. Zero means unlimited.
func WithQuota(bytes int) Option {
	return func(s *Store) {
		if bytes >= 0 {
			s.quota = bytes
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New returns a Store over backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get decodes the value stored under key into dst. It reports false when the
// key is absent or its value does not decode; dst must then be ignored.
func (s *Store) Get(key string, dst any) bool {
	raw, ok := s.Lookup(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("stored value does not decode")
		return false
	}
	return true
}

// Lookup returns the raw JSON stored under key.
func (s *Store) Lookup(key string) (json.RawMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.read()[key]
	return raw, ok
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	_, ok := s.Lookup(key)
	return ok
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob := s.read()
	keys := make([]string, 0, len(blob))
	for k := range blob {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Size returns the size in bytes of the stored blob.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := s.backend.Load()
	if err != nil {
		return 0
	}
	return len(data)
}

// Set stores value under key. On failure the slot keeps its previous contents.
func (s *Store) Set(key string, value any) error {
	return s.SetMany(map[string]any{key: value})
}

// SetMany stores several keys in a single write.
func (s *Store) SetMany(values map[string]any) error {
	const op = "kvstore.Set"

	encoded := make(map[string]json.RawMessage, len(values))
	for key, value := range values {
		raw, err := json.Marshal(value)
		if err != nil {
			return errx.E(op, errx.Invalid, fmt.Errorf("encode %q: %w", key, err))
		}
		encoded[key] = raw
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := s.readForWrite()
	if err != nil {
		return errx.E(op, errx.Unavailable, err)
	}
	for key, raw := range encoded {
		blob[key] = raw
	}
	return s.write(op, blob)
}

// Remove deletes key. Removing an absent key is not an error.
func (s *Store) Remove(key string) error {
	const op = "kvstore.Remove"

	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := s.readForWrite()
	if err != nil {
		return errx.E(op, errx.Unavailable, err)
	}
	if _, ok := blob[key]; !ok {
		return nil
	}
	delete(blob, key)
	return s.write(op, blob)
}

// ClearAll erases the whole slot.
func (s *Store) ClearAll() error {
	const op = "kvstore.ClearAll"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Erase(); err != nil {
		s.logger.Error().Err(err).Msg("failed to clear storage")
		return errx.E(op, errx.Unavailable, err)
	}
	return nil
}

// read loads the blob, treating any failure as an empty blob.
func (s *Store) read() map[string]json.RawMessage {
	blob, err := s.readForWrite()
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read storage")
		return map[string]json.RawMessage{}
	}
	return blob
}

// readForWrite loads the blob for a read-merge-write. A corrupt blob counts
// as empty, but a backend read failure is returned so a write never
// clobbers data it could not see.
func (s *Store) readForWrite() (map[string]json.RawMessage, error) {
	data, err := s.backend.Load()
	if err != nil {
		return nil, err
	}
	blob := map[string]json.RawMessage{}
	if len(data) == 0 {
		return blob, nil
	}
	if err := json.Unmarshal(data, &blob); err != nil {
		s.logger.Warn().Err(err).Msg("storage blob is corrupt, treating as empty")
		return map[string]json.RawMessage{}, nil
	}
	if blob == nil {
		blob = map[string]json.RawMessage{}
	}
	return blob, nil
}

func (s *Store) write(op string, blob map[string]json.RawMessage) error {
	data, err := json.Marshal(blob)
	if err != nil {
		return errx.E(op, errx.Invalid, err)
	}
	if s.quota > 0 && len(data) > s.quota {
		s.logger.Warn().Int("size", len(data)).Int("quota", s.quota).Msg("write rejected by quota")
		return errx.E(op, errx.Unavailable, ErrQuotaExceeded)
	}
	if err := s.backend.Save(data); err != nil {
		s.logger.Error().Err(err).Msg("failed to write storage")
		return errx.E(op, errx.Unavailable, err)
	}
	return nil
}
