// Package backup exports collections into a versioned JSON envelope and
// imports such envelopes back, either replacing or merging.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/wattcount/internal/models"
	"github.com/mmynk/wattcount/internal/storage"
)

// FormatVersion is written into every exported envelope.
const FormatVersion = "1.0"

// Envelope is the exported document.
type Envelope struct {
	Version    string                       `json:"version"`
	ExportedAt time.Time                    `json:"exportedAt"`
	Data       map[string][]json.RawMessage `json:"data"`
}

// ImportOptions selects what Import touches.
type ImportOptions struct {
	// Collections limits the import; empty means every collection.
	Collections []storage.Collection

	// Merge appends incoming records to the stored ones and keeps the first
	// record per id, so stored records win. Without Merge each imported
	// collection is replaced.
	Merge bool
}

// Result reports how many records each imported collection holds afterwards.
type Result struct {
	Counts map[storage.Collection]int
}

// Engine runs exports and imports against a record store.
type Engine struct {
	store  *storage.RecordStore
	now    func() time.Time
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now for the export timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an Engine over store.
func New(store *storage.RecordStore, opts ...Option) *Engine {
	e := &Engine{store: store, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export serializes the given collections, or all of them, verbatim into a
// pretty-printed envelope.
func (e *Engine) Export(ctx context.Context, collections ...storage.Collection) ([]byte, error) {
	if len(collections) == 0 {
		collections = storage.Collections()
	}

	env := Envelope{
		Version:    FormatVersion,
		ExportedAt: e.now().UTC(),
		Data:       make(map[string][]json.RawMessage, len(collections)),
	}
	for _, c := range collections {
		records, err := e.store.ReadRaw(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", c, err)
		}
		env.Data[c.Name()] = records
	}

	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	e.logger.Info("Data exported", "collections", len(collections))
	return out, nil
}

// ExportCodes exports only the group codes.
func (e *Engine) ExportCodes(ctx context.Context) ([]byte, error) {
	return e.Export(ctx, storage.GroupCodes)
}

// Import loads an envelope produced by Export. The whole envelope is
// validated before anything is written; a malformed envelope fails with
// models.ErrInvalidFormat and leaves the store untouched. References between
// collections are not checked.
func (e *Engine) Import(ctx context.Context, data []byte, opts ImportOptions) (*Result, error) {
	incoming, err := parseEnvelope(data, e.logger)
	if err != nil {
		return nil, err
	}

	selected := opts.Collections
	if len(selected) == 0 {
		selected = storage.Collections()
	}

	result := &Result{Counts: make(map[storage.Collection]int)}
	for _, c := range selected {
		records, ok := incoming[c]
		if !ok {
			continue
		}
		if opts.Merge {
			existing, err := e.store.ReadRaw(ctx, c)
			if err != nil {
				return result, fmt.Errorf("failed to merge %s: %w", c, err)
			}
			records = dedupeByID(append(existing, records...))
		}
		if err := e.store.WriteRaw(ctx, c, records); err != nil {
			return result, fmt.Errorf("failed to import %s: %w", c, err)
		}
		result.Counts[c] = len(records)
		e.logger.Info("Collection imported", "collection", c.Name(), "records", len(records), "merge", opts.Merge)
	}
	return result, nil
}

// ImportCodes imports only the group codes of an envelope.
func (e *Engine) ImportCodes(ctx context.Context, data []byte, merge bool) (*Result, error) {
	return e.Import(ctx, data, ImportOptions{Collections: []storage.Collection{storage.GroupCodes}, Merge: merge})
}

// parseEnvelope returns the collections present in data. Unknown keys and
// null collections are skipped; a canonical name takes precedence over its
// alias.
func parseEnvelope(data []byte, logger *slog.Logger) (map[storage.Collection][]json.RawMessage, error) {
	var env struct {
		Version string                     `json:"version"`
		Data    map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidFormat, err)
	}
	if env.Data == nil {
		return nil, fmt.Errorf("%w: missing data object", models.ErrInvalidFormat)
	}
	if env.Version != FormatVersion {
		logger.Warn("Unexpected export version", "version", env.Version, "expected", FormatVersion)
	}

	out := make(map[storage.Collection][]json.RawMessage)
	canonical := make(map[storage.Collection]bool)
	for name, raw := range env.Data {
		c, ok := storage.ParseCollection(name)
		if !ok {
			logger.Debug("Skipping unknown collection", "name", name)
			continue
		}
		if isNull(raw) {
			continue
		}
		records, err := parseRecords(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", models.ErrInvalidFormat, name, err)
		}
		isCanonical := name == c.Name()
		if _, seen := out[c]; seen && !isCanonical && canonical[c] {
			continue
		}
		out[c] = records
		canonical[c] = isCanonical
	}
	return out, nil
}

func parseRecords(raw json.RawMessage) ([]json.RawMessage, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, errors.New("expected an array of records")
	}
	for i, r := range records {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(r, &obj); err != nil || obj == nil {
			return nil, fmt.Errorf("record %d is not an object", i)
		}
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	return records, nil
}

// dedupeByID keeps the first record for every id. Records without an id
// share the empty id.
func dedupeByID(records []json.RawMessage) []json.RawMessage {
	seen := make(map[string]bool, len(records))
	out := make([]json.RawMessage, 0, len(records))
	for _, r := range records {
		id := recordID(r)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, r)
	}
	return out
}

func recordID(r json.RawMessage) string {
	var head struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(r, &head); err != nil {
		return ""
	}
	return string(head.ID)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
