package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/account-service/internal/domain"
)

const (
	testAccessSecret  = "test-access-secret"
	testRefreshSecret = "test-refresh-secret"
)

func newTestManager() *TokenManager {
	return NewTokenManager(testAccessSecret, testRefreshSecret, 15*time.Minute, 7*24*time.Hour)
}

func testUser() *domain.User {
	return &domain.User{
		ID:    "user-123",
		Name:  "Alice",
		Email: "alice@example.com",
		Role:  domain.RoleUser,
	}
}

func signExpired(t *testing.T, secret string, user *domain.User) string {
	t.Helper()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	tm := newTestManager()
	user := testUser()

	for _, kind := range []domain.TokenKind{domain.TokenKindAccess, domain.TokenKindRefresh} {
		tok, expiresAt, err := tm.Issue(user, kind)
		require.NoError(t, err)
		assert.True(t, expiresAt.After(time.Now()))

		claims, err := tm.Verify(tok, kind)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, user.Email, claims.Email)
		assert.Equal(t, domain.RoleUser, claims.Role)
	}
}

func TestIssuePair_DistinctExpiries(t *testing.T) {
	t.Parallel()

	tm := newTestManager()
	pair, err := tm.IssuePair(testUser())
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.True(t, pair.RefreshExpiresAt.After(pair.AccessExpiresAt))
}

func TestVerify_WrongKindRejected(t *testing.T) {
	t.Parallel()

	tm := newTestManager()
	access, _, err := tm.Issue(testUser(), domain.TokenKindAccess)
	require.NoError(t, err)

	// Signed with the access secret, presented as a refresh token.
	_, err = tm.Verify(access, domain.TokenKindRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	tm := newTestManager()
	expired := signExpired(t, testAccessSecret, testUser())

	_, err := tm.Verify(expired, domain.TokenKindAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	tm := newTestManager()
	for _, tok := range []string{"", "not.a.jwt", "a.b"} {
		_, err := tm.Verify(tok, domain.TokenKindAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	t.Parallel()

	other := NewTokenManager("other-secret", "other-refresh", time.Minute, time.Hour)
	tok, _, err := other.Issue(testUser(), domain.TokenKindAccess)
	require.NoError(t, err)

	_, err = newTestManager().Verify(tok, domain.TokenKindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_UnknownKind(t *testing.T) {
	t.Parallel()

	tm := newTestManager()
	_, _, err := tm.Issue(testUser(), domain.TokenKind("session"))
	assert.Error(t, err)
}
