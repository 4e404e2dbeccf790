package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distinguishes access tokens from refresh tokens. Carried in the
// "type" claim so one kind can never be presented where the other is expected.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims extends JWT standard claims with the ClassKit token type.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"type"`
}

// TokenPair bundles the two tokens returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"` // always "bearer"
	ExpiresIn    int    `json:"expires_in"` // access token lifetime in seconds
}

// TokenService issues and validates signed JWTs. Tokens are stateless:
// validation is signature plus claims only, no storage lookup, so logout
// is advisory and tokens remain valid until expiry.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService creates a TokenService signing with the given secret.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// AccessTTL returns the configured access token lifetime.
func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}

// IssueAccess creates a signed access token for the given subject.
func (s *TokenService) IssueAccess(subject string) (string, error) {
	return s.issue(subject, TokenTypeAccess, s.accessTTL)
}

// IssueRefresh creates a signed refresh token for the given subject.
func (s *TokenService) IssueRefresh(subject string) (string, error) {
	return s.issue(subject, TokenTypeRefresh, s.refreshTTL)
}

// IssuePair creates a fresh access/refresh token pair for the subject.
func (s *TokenService) IssuePair(subject string) (*TokenPair, error) {
	access, err := s.IssueAccess(subject)
	if err != nil {
		return nil, err
	}
	refresh, err := s.IssueRefresh(subject)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(s.accessTTL.Seconds()),
	}, nil
}

func (s *TokenService) issue(subject string, typ TokenType, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		TokenType: typ,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing %s token: %w", typ, err)
	}
	return signed, nil
}

// Validate parses a token and checks signature, expiry, subject, and that
// the "type" claim matches the expected kind. Every failure mode returns
// ErrTokenInvalid with no further detail: callers (and clients) must not
// be able to tell a forged token from an expired one or a wrong-type one.
func (s *TokenService) Validate(tokenString string, expected TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.Subject == "" || claims.TokenType != expected {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
