package app

import (
	"crypto/rand"
	"fmt"
	"time"

	"cyberhunt/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const adminIssuer = "cyberhunt"

// AdminGate is the admin screen's credential check. It compares plaintext
// credentials and hands out a non-expiring token so the logged-in state
// survives across requests. It is a UI affordance, not a trust boundary.
type AdminGate struct {
	username string
	password string
	secret   []byte
	now      func() time.Time
}

// NewAdminGate builds the gate. An empty secret gets a random per-process key,
// which logs every admin out on restart.
func NewAdminGate(username, password, secret string) (*AdminGate, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("admin secret: %w", err)
		}
	}
	return &AdminGate{
		username: username,
		password: password,
		secret:   key,
		now:      time.Now,
	}, nil
}

// Login checks the credentials and returns a bearer token on success.
func (g *AdminGate) Login(username, password string) (string, error) {
	if username != g.username || password != g.password {
		return "", domain.ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:   adminIssuer,
		Subject:  username,
		IssuedAt: jwt.NewNumericDate(g.now()),
	})
	return token.SignedString(g.secret)
}

// Verify accepts tokens issued by Login for the configured username.
func (g *AdminGate) Verify(raw string) error {
	if raw == "" {
		return domain.ErrUnauthorized
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return g.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(adminIssuer))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if claims.Subject != g.username {
		return domain.ErrUnauthorized
	}
	return nil
}
