package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/account-service/internal/domain"
)

// Verification failure kinds. Callers rely on the distinction: an expired
// access token should prompt a refresh, anything else is rejected outright.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// TokenManager issues and verifies signed access and refresh tokens. Each
// kind carries its own secret and lifetime.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// Claims describes the JWT payload. The role claim is authoritative for
// authorization checks on the request it arrived with.
type Claims struct {
	UserID string      `json:"uid"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Issue builds and signs a token of the given kind for the user.
func (tm *TokenManager) Issue(user *domain.User, kind domain.TokenKind) (string, time.Time, error) {
	secret, ttl, err := tm.material(kind)
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// IssuePair mints an access and a refresh token for the user.
func (tm *TokenManager) IssuePair(user *domain.User) (*domain.TokenPair, error) {
	access, accessExp, err := tm.Issue(user, domain.TokenKindAccess)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := tm.Issue(user, domain.TokenKindRefresh)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Verify validates a token of the given kind and returns its claims.
// Returns ErrTokenExpired when the signature is good but the token is past
// expiry, ErrInvalidToken for anything else. No clock leeway is granted.
func (tm *TokenManager) Verify(tokenStr string, kind domain.TokenKind) (*Claims, error) {
	secret, _, err := tm.material(kind)
	if err != nil {
		return nil, err
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (tm *TokenManager) material(kind domain.TokenKind) ([]byte, time.Duration, error) {
	switch kind {
	case domain.TokenKindAccess:
		return tm.accessSecret, tm.accessTTL, nil
	case domain.TokenKindRefresh:
		return tm.refreshSecret, tm.refreshTTL, nil
	default:
		return nil, 0, errors.New("unknown token kind")
	}
}
