// Package auth issues and verifies bearer tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired is returned by Verify for a well-formed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned by Verify for every other rejection.
	ErrTokenInvalid = errors.New("token invalid")
)

// Identity is the verified caller carried by a token.
type Identity struct {
	UserID   uint
	Username string
	Email    string
}

// Claims is the JWT payload issued by TokenManager.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// Issuer creates signed tokens.
type Issuer interface {
	Issue(id Identity, remember bool) (string, time.Time, error)
}

// Verifier checks signed tokens.
type Verifier interface {
	Verify(token string) (Identity, error)
}

// TokenConfig configures a TokenManager.
type TokenConfig struct {
	Secret      string
	Issuer      string
	Audience    string
	TTL         time.Duration
	RememberTTL time.Duration
}

// TokenManager issues and verifies HS256 tokens.
type TokenManager struct {
	cfg TokenConfig
	now func() time.Time
}

// NewTokenManager returns a TokenManager for cfg.
func NewTokenManager(cfg TokenConfig) *TokenManager {
	return &TokenManager{cfg: cfg, now: time.Now}
}

// Issue signs a token for id. remember selects the long-lived expiry window.
func (m *TokenManager) Issue(id Identity, remember bool) (string, time.Time, error) {
	if m.cfg.Secret == "" {
		return "", time.Time{}, errors.New("JWT secret not configured")
	}

	ttl := m.cfg.TTL
	if remember {
		ttl = m.cfg.RememberTTL
	}

	now := m.now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		Username: id.Username,
		Email:    id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(id.UserID), 10),
			Issuer:    m.cfg.Issuer,
			Audience:  jwt.ClaimStrings{m.cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        generateJTI(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a token. It returns ErrTokenExpired for an
// expired token and ErrTokenInvalid for anything else that fails.
func (m *TokenManager) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, ErrTokenInvalid
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(m.cfg.Secret), nil
	},
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithAudience(m.cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return Identity{}, fmt.Errorf("%w: bad subject %q", ErrTokenInvalid, claims.Subject)
	}

	return Identity{
		UserID:   uint(userID),
		Username: claims.Username,
		Email:    claims.Email,
	}, nil
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func generateJTI(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8])
}
