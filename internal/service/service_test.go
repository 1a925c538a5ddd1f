package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mmynk/wattcount/internal/auth"
	"github.com/mmynk/wattcount/internal/idgen"
	"github.com/mmynk/wattcount/internal/models"
	"github.com/mmynk/wattcount/internal/repository"
	"github.com/mmynk/wattcount/internal/storage"
	"github.com/mmynk/wattcount/internal/storage/memory"
)

var testNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

// codeSource replays the characters of codes, one IntN call per character.
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

type testEnv struct {
	store   *storage.RecordStore
	repos   *repository.Repositories
	auth    *AuthService
	groups  *GroupService
	billing *BillingService
}

// setupTestEnv wires the services over a memory backend. Group codes are
// drawn from codes in order.
func setupTestEnv(t *testing.T, hasher auth.PasswordHasher, codes ...string) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.New(memory.New(), storage.WithLogger(logger))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	gen := idgen.New()
	if len(codes) > 0 {
		gen = idgen.NewWithSource(newCodeSource(codes...))
	}
	repos := repository.New(store,
		repository.WithClock(func() time.Time { return testNow }),
		repository.WithIDGenerator(gen),
		repository.WithLogger(logger),
	)

	authenticator := auth.NewPasswordAuthenticator(repos.Users, hasher)
	return &testEnv{
		store:   store,
		repos:   repos,
		auth:    NewAuthService(repos, store, authenticator, auth.PlainTokens{}, logger),
		groups:  NewGroupService(repos, logger),
		billing: NewBillingService(repos, logger),
	}
}

func (e *testEnv) register(t *testing.T, username, phone string) *Session {
	t.Helper()
	s, err := e.auth.Register(context.Background(), models.Registration{
		Username: username, PhoneNumber: phone, FullName: strings.ToUpper(username[:1]) + username[1:], Password: "pw-" + username,
	})
	if err != nil {
		t.Fatalf("failed to register %s: %v", username, err)
	}
	return s
}

func (e *testEnv) connect(t *testing.T, username, phone, code string) *Session {
	t.Helper()
	s, err := e.auth.ConnectWithCode(context.Background(), models.CodeRegistration{
		Registration: models.Registration{Username: username, PhoneNumber: phone, Password: "pw-" + username},
		Code:         code,
	})
	if err != nil {
		t.Fatalf("failed to connect %s: %v", username, err)
	}
	return s
}
