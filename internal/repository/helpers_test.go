package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/wattcount/internal/idgen"
	"github.com/mmynk/wattcount/internal/models"
	"github.com/mmynk/wattcount/internal/storage"
	"github.com/mmynk/wattcount/internal/storage/memory"
)

var testNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// steppingClock advances by step on every call.
func steppingClock(start time.Time, step time.Duration) Clock {
	t := start
	return func() time.Time {
		now := t
		t = t.Add(step)
		return now
	}
}

// codeSource replays the characters of codes, one IntN call per character,
// wrapping around when exhausted.
type codeSource struct {
	chars []int
	calls int
}

func newCodeSource(codes ...string) *codeSource {
	s := &codeSource{}
	for _, code := range codes {
		for i := 0; i < len(code); i++ {
			s.chars = append(s.chars, strings.IndexByte(idgen.CodeAlphabet, code[i]))
		}
	}
	return s
}

func (s *codeSource) IntN(int) int {
	v := s.chars[s.calls%len(s.chars)]
	s.calls++
	return v
}

func newTestRepos(t *testing.T, opts ...Option) (*Repositories, *storage.RecordStore) {
	t.Helper()
	store := storage.New(memory.New())
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	return New(store, opts...), store
}

func seed[T any](t *testing.T, store *storage.RecordStore, c storage.Collection, records []T) {
	t.Helper()
	if err := storage.Write(context.Background(), store, c, records); err != nil {
		t.Fatalf("failed to seed %s: %v", c, err)
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustCreateUser(t *testing.T, repos *Repositories, u models.User) *models.User {
	t.Helper()
	created, err := repos.Users.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("failed to create user %s: %v", u.Username, err)
	}
	return created
}
