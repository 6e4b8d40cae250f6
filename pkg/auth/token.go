package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/valumind/auth/pkg/domain"
)

const (
	// Default token lifetimes
	DefaultStandardTokenTTL = 7 * 24 * time.Hour
	DefaultStepUpTokenTTL   = 10 * time.Minute
)

// TokenConfig holds token signing configuration.
type TokenConfig struct {
	Secret      []byte
	Issuer      string
	StandardTTL time.Duration
	StepUpTTL   time.Duration
}

// Claims are the signed facts embedded in a bearer token. SteppedUp marks a
// token minted after a fresh OTP challenge; it is additive on top of the
// standard identity, never a separate one.
type Claims struct {
	jwt.RegisteredClaims
	SteppedUp bool `json:"stepped_up,omitempty"`
}

// UserID parses the subject claim as the numeric user ID.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidToken
	}
	return id, nil
}

// TokenService mints and verifies bearer tokens. Tokens are stateless and
// self-describing so any service instance can validate them without a
// shared session store.
type TokenService struct {
	config TokenConfig
	now    func() time.Time
}

// NewTokenService creates a new token service.
func NewTokenService(config TokenConfig) *TokenService {
	if config.StandardTTL == 0 {
		config.StandardTTL = DefaultStandardTokenTTL
	}
	if config.StepUpTTL == 0 {
		config.StepUpTTL = DefaultStepUpTokenTTL
	}
	return &TokenService{
		config: config,
		now:    time.Now,
	}
}

// StepUpTTL returns the configured step-up token lifetime.
func (s *TokenService) StepUpTTL() time.Duration {
	return s.config.StepUpTTL
}

// IssueStandard mints a long-lived token proving basic authentication.
func (s *TokenService) IssueStandard(userID int64) (string, error) {
	return s.issue(userID, s.config.StandardTTL, false)
}

// IssueStepUp mints a short-lived token additionally proving a fresh
// out-of-band challenge was completed. The short lifetime bounds the blast
// radius of a leaked elevated token.
func (s *TokenService) IssueStepUp(userID int64) (string, error) {
	return s.issue(userID, s.config.StepUpTTL, true)
}

func (s *TokenService) issue(userID int64, ttl time.Duration, steppedUp bool) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    s.config.Issuer,
		},
		SteppedUp: steppedUp,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.config.Secret)
}

// Verify parses and signature-checks a token, returning its claims.
// Every failure mode (bad signature, foreign algorithm, malformed
// structure, missing or past expiry, non-numeric subject) collapses to
// domain.ErrInvalidToken so callers cannot distinguish which check failed.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.config.Secret, nil
	})
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	if _, err := claims.UserID(); err != nil {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}
