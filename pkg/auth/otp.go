package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/valumind/auth/pkg/domain"
)

const (
	// Default challenge parameters
	DefaultOTPLength = 6
	DefaultOTPTTL    = 10 * time.Minute
)

// OTPStore persists one-time codes. Implementations must enforce the
// one-live-code-per-user invariant in Save and make Consume a single
// atomic delete of the exactly-matching row.
type OTPStore interface {
	// Save inserts the code, replacing any outstanding code for the same
	// user in one atomic operation.
	Save(ctx context.Context, code *domain.OneTimeCode) error
	// Consume deletes the row matching (userID, code) and returns it.
	// Returns domain.ErrOTPInvalid when no row matches; a non-matching
	// stored code must be left untouched.
	Consume(ctx context.Context, userID int64, code string) (*domain.OneTimeCode, error)
}

// OTPConfig holds one-time code parameters.
type OTPConfig struct {
	CodeLength int
	TTL        time.Duration
}

// OTPService generates, persists, and redeems one-time codes.
type OTPService struct {
	config OTPConfig
	store  OTPStore
	now    func() time.Time
}

// NewOTPService creates a new OTP service.
func NewOTPService(config OTPConfig, store OTPStore) *OTPService {
	if config.CodeLength == 0 {
		config.CodeLength = DefaultOTPLength
	}
	if config.TTL == 0 {
		config.TTL = DefaultOTPTTL
	}
	return &OTPService{
		config: config,
		store:  store,
		now:    time.Now,
	}
}

// IssueCode generates a fresh code for the user and stores it, replacing
// any outstanding code. The returned code is the only copy; it is never
// logged or persisted in plaintext anywhere else.
func (s *OTPService) IssueCode(ctx context.Context, userID int64) (*domain.OneTimeCode, error) {
	value, err := GenerateNumericCode(s.config.CodeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	now := s.now()
	code := &domain.OneTimeCode{
		ID:        uuid.New(),
		UserID:    userID,
		Code:      value,
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.TTL),
	}

	if err := s.store.Save(ctx, code); err != nil {
		return nil, fmt.Errorf("failed to store code: %w", err)
	}

	return code, nil
}

// RedeemCode consumes the stored code for the user if the submitted value
// matches exactly. Redemption is one-shot: a successful redemption deletes
// the row, so the same code can never be redeemed twice and two concurrent
// redemptions cannot both succeed. A wrong guess leaves the stored code in
// place. An expired match is deleted and reported as expired.
func (s *OTPService) RedeemCode(ctx context.Context, userID int64, submitted string) error {
	if submitted == "" {
		return domain.ErrOTPInvalid
	}

	code, err := s.store.Consume(ctx, userID, submitted)
	if err != nil {
		if errors.Is(err, domain.ErrOTPInvalid) {
			return domain.ErrOTPInvalid
		}
		return fmt.Errorf("failed to consume code: %w", err)
	}

	if code.Expired(s.now()) {
		return domain.ErrOTPExpired
	}

	return nil
}

// GenerateNumericCode returns a fixed-length numeric code with each digit
// drawn independently from crypto/rand. Drawing per digit avoids the
// modulo bias of reducing raw bytes.
func GenerateNumericCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid code length %d", length)
	}

	ten := big.NewInt(10)
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
