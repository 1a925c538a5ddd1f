package auth

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mmynk/wattcount/internal/models"
)

// legacyTokenPrefix marks tokens of the form "token_<userID>".
const legacyTokenPrefix = "token_"

// Claims identify the user a session token was issued to.
type Claims struct {
	UserID string `json:"userId"`

	// Timestamp is the issue time in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// TokenCodec issues and parses session tokens.
type TokenCodec interface {
	Issue(userID string, at time.Time) (string, error)
	Parse(token string) (*Claims, error)
}

// NewTokenCodec returns signed JWTs when secret is set and unsigned JSON
// tokens otherwise.
func NewTokenCodec(secret string, ttl time.Duration) TokenCodec {
	if secret == "" {
		return PlainTokens{}
	}
	return NewJWTTokens(secret, ttl)
}

// PlainTokens encodes claims as unsigned JSON, e.g.
// {"userId":"…","timestamp":1715774400000}. Anyone able to write the session
// slot can impersonate any user; the token only records who logged in.
type PlainTokens struct{}

func (PlainTokens) Issue(userID string, at time.Time) (string, error) {
	b, err := json.Marshal(Claims{UserID: userID, Timestamp: at.UnixMilli()})
	if err != nil {
		return "", fmt.Errorf("failed to encode token: %w", err)
	}
	return string(b), nil
}

// Parse also accepts legacy "token_<userID>" tokens.
func (PlainTokens) Parse(token string) (*Claims, error) {
	if id, ok := strings.CutPrefix(token, legacyTokenPrefix); ok {
		if id == "" {
			return nil, models.ErrInvalidToken
		}
		return &Claims{UserID: id}, nil
	}

	var claims Claims
	if err := json.Unmarshal([]byte(token), &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		return nil, models.ErrInvalidToken
	}
	return &claims, nil
}
