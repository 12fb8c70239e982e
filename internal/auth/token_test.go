package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokenConfig() TokenConfig {
	return TokenConfig{
		Secret:      "test-secret-at-least-32-characters-long",
		Issuer:      "pulse-api",
		Audience:    "pulse-client",
		TTL:         time.Hour,
		RememberTTL: 30 * 24 * time.Hour,
	}
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	m := NewTokenManager(testTokenConfig())
	id := Identity{UserID: 42, Username: "alice", Email: "a@x.com"}

	token, expiresAt, err := m.Issue(id, false)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	got, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTokenManager_RememberUsesLongWindow(t *testing.T) {
	m := NewTokenManager(testTokenConfig())

	_, expiresAt, err := m.Issue(Identity{UserID: 1, Username: "alice"}, true)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), expiresAt, 5*time.Second)
}

func TestTokenManager_Verify(t *testing.T) {
	cfg := testTokenConfig()
	m := NewTokenManager(cfg)
	valid, _, err := m.Issue(Identity{UserID: 7, Username: "bob"}, false)
	require.NoError(t, err)

	expiredManager := NewTokenManager(cfg)
	expiredManager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := expiredManager.Issue(Identity{UserID: 7, Username: "bob"}, false)
	require.NoError(t, err)

	otherSecret := cfg
	otherSecret.Secret = "a-completely-different-secret-value!!"
	forged, _, err := NewTokenManager(otherSecret).Issue(Identity{UserID: 7}, false)
	require.NoError(t, err)

	otherIssuer := cfg
	otherIssuer.Issuer = "someone-else"
	wrongIssuer, _, err := NewTokenManager(otherIssuer).Issue(Identity{UserID: 7}, false)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "7",
		"iss": cfg.Issuer,
		"aud": cfg.Audience,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "not-a-number",
		"iss": cfg.Issuer,
		"aud": cfg.Audience,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(cfg.Secret))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"valid", valid, nil},
		{"expired", expired, ErrTokenExpired},
		{"empty", "", ErrTokenInvalid},
		{"garbage", "not.a.token", ErrTokenInvalid},
		{"wrong secret", forged, ErrTokenInvalid},
		{"wrong issuer", wrongIssuer, ErrTokenInvalid},
		{"none algorithm", noneToken, ErrTokenInvalid},
		{"non numeric subject", badSubject, ErrTokenInvalid},
		{"tampered", strings.TrimSuffix(valid, valid[len(valid)-2:]) + "xx", ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := m.Verify(tt.token)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, uint(7), id.UserID)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTokenManager_VerifyBeyond32BitIDs(t *testing.T) {
	m := NewTokenManager(testTokenConfig())
	id := Identity{UserID: uint(1) << 32, Username: "big", Email: "big@x.com"}

	token, _, err := m.Issue(id, false)
	require.NoError(t, err)

	got, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTokenManager_IssueWithoutSecret(t *testing.T) {
	cfg := testTokenConfig()
	cfg.Secret = ""
	_, _, err := NewTokenManager(cfg).Issue(Identity{UserID: 1}, false)
	assert.Error(t, err)
}

func TestBcryptHasher(t *testing.T) {
	h := &BcryptHasher{Cost: 4}

	hash, err := h.Hash("pw123")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", hash)

	assert.NoError(t, h.Compare(hash, "pw123"))
	assert.ErrorIs(t, h.Compare(hash, "wrong"), ErrPasswordMismatch)
}
