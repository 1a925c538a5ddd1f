package middleware

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/mmynk/wattcount/internal/models"
	"github.com/mmynk/wattcount/internal/service"
)

type fakeResolver struct {
	tokens  map[string]*service.Session
	current *service.Session
}

func (f *fakeResolver) Resume(_ context.Context, token string) (*service.Session, error) {
	s, ok := f.tokens[token]
	if !ok {
		return nil, models.ErrInvalidToken
	}
	return s, nil
}

func (f *fakeResolver) CurrentSession(context.Context) (*service.Session, error) {
	return f.current, nil
}

func session(id string, role models.Role) *service.Session {
	return &service.Session{Token: "tok-" + id, User: models.Profile{ID: id, Role: role}}
}

func TestRequireAuth(t *testing.T) {
	resolver := &fakeResolver{
		tokens:  map[string]*service.Session{"tok-p1": session("p1", models.RolePrimary)},
		current: session("m1", models.RoleMember),
	}

	tests := []struct {
		name     string
		resolver *fakeResolver
		token    string
		wantUser string
		wantRole models.Role
		wantErr  error
	}{
		{name: "presented token", resolver: resolver, token: "tok-p1", wantUser: "p1", wantRole: models.RolePrimary},
		{name: "stored session", resolver: resolver, wantUser: "m1", wantRole: models.RoleMember},
		{name: "unknown token", resolver: resolver, token: "nope", wantErr: models.ErrInvalidToken},
		{name: "no session", resolver: &fakeResolver{}, wantErr: ErrMissingToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser string
			var gotRole models.Role
			h := Chain(func(ctx context.Context) error {
				gotUser, gotRole = GetUserID(ctx), GetRole(ctx)
				return nil
			}, RequireAuth(tt.resolver, tt.token))

			err := h(context.Background())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if !errors.Is(err, models.ErrAuth) {
					t.Errorf("expected auth kind, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotUser != tt.wantUser || gotRole != tt.wantRole {
				t.Errorf("got %s/%s, want %s/%s", gotUser, gotRole, tt.wantUser, tt.wantRole)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	called := false
	h := Chain(func(ctx context.Context) error {
		called = true
		if id := GetUserID(ctx); id != "" {
			t.Errorf("expected no user, got %q", id)
		}
		return nil
	}, OptionalAuth(&fakeResolver{}, ""))

	if err := h(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected handler to run")
	}
}

func TestRequirePrimary(t *testing.T) {
	resolver := &fakeResolver{tokens: map[string]*service.Session{
		"tok-p1": session("p1", models.RolePrimary),
		"tok-m1": session("m1", models.RoleMember),
	}}
	noop := func(context.Context) error { return nil }

	if err := Chain(noop, RequireAuth(resolver, "tok-p1"), RequirePrimary())(context.Background()); err != nil {
		t.Errorf("primary rejected: %v", err)
	}
	err := Chain(noop, RequireAuth(resolver, "tok-m1"), RequirePrimary())(context.Background())
	if !errors.Is(err, models.ErrForbidden) {
		t.Errorf("expected ErrForbidden for member, got %v", err)
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Interceptor {
		return func(next Handler) Handler {
			return func(ctx context.Context) error {
				order = append(order, name)
				return next(ctx)
			}
		}
	}
	h := Chain(func(context.Context) error { order = append(order, "handler"); return nil }, mark("a"), mark("b"))
	if err := h(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(order, ","); got != "a,b,handler" {
		t.Errorf("order = %s", got)
	}
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLogging(t *testing.T) {
	resolver := &fakeResolver{current: session("p1", models.RolePrimary)}

	tests := []struct {
		name    string
		handler Handler
		want    []string
	}{
		{
			name:    "success records caller",
			handler: func(context.Context) error { return nil },
			want:    []string{"level=INFO", "Command ok", "operation=bills.list", "user_id=p1", "duration_ms="},
		},
		{
			name:    "persistence failure",
			handler: func(context.Context) error { return fmt.Errorf("%w: disk full", models.ErrPersistence) },
			want:    []string{"level=ERROR", "Command error", "disk full"},
		},
		{
			name:    "validation failure",
			handler: func(context.Context) error { return models.ErrInvalidAmount },
			want:    []string{"level=WARN", "Command error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)
			h := Chain(tt.handler, Logging("bills.list"), RequireAuth(resolver, ""))
			_ = h(context.Background())

			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("log %q missing %q", out, w)
				}
			}
		})
	}
}

func TestLoggingWithoutSession(t *testing.T) {
	buf := captureLogs(t)
	h := Chain(func(context.Context) error { return nil }, Logging("login"))
	if err := h(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `user_id=""`) {
		t.Errorf("expected empty user_id, got %q", buf.String())
	}
}
