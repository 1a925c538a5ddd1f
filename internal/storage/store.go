// Package storage provides the record store: named collections of flat JSON
// records kept whole in a key/value backend.
//
// Every write replaces a collection in full. There is no locking: two writers
// racing on one collection lose updates at collection granularity.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/wattcount/internal/metrics"
	"github.com/mmynk/wattcount/internal/models"
)

// DefaultKeyPrefix namespaces collection keys in the backend.
const DefaultKeyPrefix = "wattcount_"

const sessionKey = "current_user"

// ErrMiss is returned by a Backend for a key that was never set.
var ErrMiss = errors.New("key not set")

// Backend defines the key/value medium holding serialized collections.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// Redis, memory) without changing the repositories.
type Backend interface {
	// Get returns the value stored under key, or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value atomically.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// RecordStore reads and writes whole collections through a Backend.
type RecordStore struct {
	backend Backend
	prefix  string
	metrics *metrics.StoreMetrics
	logger  *slog.Logger
}

// Option configures a RecordStore.
type Option func(*RecordStore)

// WithKeyPrefix overrides DefaultKeyPrefix.
func WithKeyPrefix(prefix string) Option {
	return func(s *RecordStore) { s.prefix = prefix }
}

// WithMetrics instruments every collection read and write.
func WithMetrics(m *metrics.StoreMetrics) Option {
	return func(s *RecordStore) { s.metrics = m }
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *RecordStore) { s.logger = l }
}

// New creates a RecordStore over backend.
func New(backend Backend, opts ...Option) *RecordStore {
	s := &RecordStore{
		backend: backend,
		prefix:  DefaultKeyPrefix,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RecordStore) key(c Collection) string {
	return s.prefix + c.Name()
}

// Close closes the underlying backend.
func (s *RecordStore) Close() error {
	return s.backend.Close()
}

// Init writes an empty collection for every collection that was never set.
func (s *RecordStore) Init(ctx context.Context) error {
	for _, c := range Collections() {
		_, err := s.backend.Get(ctx, s.key(c))
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrMiss) {
			return fmt.Errorf("failed to check collection %s: %w", c, err)
		}
		if err := s.WriteRaw(ctx, c, nil); err != nil {
			return err
		}
	}
	return nil
}

// ReadRaw returns the records of c in insertion order, undecoded. A
// collection that was never written reads as empty.
func (s *RecordStore) ReadRaw(ctx context.Context, c Collection) ([]json.RawMessage, error) {
	records, err := s.readRaw(ctx, c)
	s.metrics.ObserveRead(c.Name(), len(records), err)
	return records, err
}

func (s *RecordStore) readRaw(ctx context.Context, c Collection) ([]json.RawMessage, error) {
	data, err := s.backend.Get(ctx, s.key(c))
	if errors.Is(err, ErrMiss) {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		s.logger.Error("Failed to read collection", "collection", c.Name(), "error", err)
		return nil, fmt.Errorf("%w: could not read %s", models.ErrPersistence, c)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Error("Collection is not a JSON array", "collection", c.Name(), "error", err)
		return nil, fmt.Errorf("%w: collection %s is corrupt", models.ErrFormat, c)
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	return records, nil
}

// WriteRaw replaces collection c with records. The underlying cause of a
// failed write is logged; the caller receives an ErrPersistence.
func (s *RecordStore) WriteRaw(ctx context.Context, c Collection, records []json.RawMessage) error {
	if records == nil {
		records = []json.RawMessage{}
	}
	data, err := json.Marshal(records)
	if err == nil {
		err = s.backend.Set(ctx, s.key(c), data)
	}
	s.metrics.ObserveWrite(c.Name(), len(records), err)
	if err != nil {
		s.logger.Error("Failed to write collection", "collection", c.Name(), "records", len(records), "error", err)
		return fmt.Errorf("%w: could not write %s", models.ErrPersistence, c)
	}
	return nil
}

// Read decodes every record of c into T.
func Read[T any](ctx context.Context, s *RecordStore, c Collection) ([]T, error) {
	raw, err := s.ReadRaw(ctx, c)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for i, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			s.logger.Error("Failed to decode record", "collection", c.Name(), "index", i, "error", err)
			return nil, fmt.Errorf("%w: record %d of %s is corrupt", models.ErrFormat, i, c)
		}
		out = append(out, v)
	}
	return out, nil
}

// Write replaces collection c with records.
func Write[T any](ctx context.Context, s *RecordStore, c Collection, records []T) error {
	raw := make([]json.RawMessage, 0, len(records))
	for i := range records {
		b, err := json.Marshal(records[i])
		if err != nil {
			return fmt.Errorf("failed to encode %s record: %w", c, err)
		}
		raw = append(raw, b)
	}
	return s.WriteRaw(ctx, c, raw)
}

// Session returns the token in the current-session slot, or "" when empty.
func (s *RecordStore) Session(ctx context.Context) (string, error) {
	data, err := s.backend.Get(ctx, s.prefix+sessionKey)
	if errors.Is(err, ErrMiss) {
		return "", nil
	}
	if err != nil {
		s.logger.Error("Failed to read session slot", "error", err)
		return "", fmt.Errorf("%w: could not read session", models.ErrPersistence)
	}
	return string(data), nil
}

// SetSession stores token in the current-session slot.
func (s *RecordStore) SetSession(ctx context.Context, token string) error {
	if err := s.backend.Set(ctx, s.prefix+sessionKey, []byte(token)); err != nil {
		s.logger.Error("Failed to write session slot", "error", err)
		return fmt.Errorf("%w: could not write session", models.ErrPersistence)
	}
	return nil
}

// ClearSession empties the current-session slot.
func (s *RecordStore) ClearSession(ctx context.Context) error {
	if err := s.backend.Delete(ctx, s.prefix+sessionKey); err != nil {
		s.logger.Error("Failed to clear session slot", "error", err)
		return fmt.Errorf("%w: could not clear session", models.ErrPersistence)
	}
	return nil
}
