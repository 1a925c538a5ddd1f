package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mmynk/wattcount/internal/models"
)

// JWTTokens handles JWT token generation and validation.
type JWTTokens struct {
	secretKey     []byte
	tokenDuration time.Duration
}

type jwtClaims struct {
	Timestamp int64 `json:"timestamp"`
	jwt.RegisteredClaims
}

// NewJWTTokens creates a JWT codec with the given secret and token duration.
// A zero duration issues tokens that never expire.
func NewJWTTokens(secretKey string, tokenDuration time.Duration) *JWTTokens {
	return &JWTTokens{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
	}
}

// Issue creates a signed token for userID.
func (m *JWTTokens) Issue(userID string, at time.Time) (string, error) {
	claims := &jwtClaims{
		Timestamp: at.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(at),
			NotBefore: jwt.NewNumericDate(at),
		},
	}
	if m.tokenDuration > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(at.Add(m.tokenDuration))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Parse validates the signature and expiry and returns the claims.
func (m *JWTTokens) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwtClaims{},
		func(token *jwt.Token) (interface{}, error) {
			// Verify the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, models.ErrInvalidToken
	}
	return &Claims{UserID: claims.Subject, Timestamp: claims.Timestamp}, nil
}
