package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/valumind/auth/pkg/domain"
)

// Mailer delivers one-time codes out of band.
type Mailer interface {
	SendOTPEmail(to, code string, validity time.Duration) error
}

// UserGetter looks up users in the credential store.
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// StepUpService orchestrates the step-up protocol: it is the only
// component that turns a valid standard session into a freshly-proven
// elevated one.
type StepUpService struct {
	otp    *OTPService
	tokens *TokenService
	mailer Mailer
	users  UserGetter
}

// NewStepUpService creates a new step-up service.
func NewStepUpService(otp *OTPService, tokens *TokenService, mailer Mailer, users UserGetter) *StepUpService {
	return &StepUpService{
		otp:    otp,
		tokens: tokens,
		mailer: mailer,
		users:  users,
	}
}

// Initiate creates a one-time code for the user and emails it. Any
// outstanding code for the user is replaced. A delivery failure is
// surfaced to the caller; because issuance replaces rather than adds, a
// failed delivery never leaves two conflicting codes behind.
func (s *StepUpService) Initiate(ctx context.Context, userID int64) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	code, err := s.otp.IssueCode(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.mailer.SendOTPEmail(user.Email, code.Code, time.Until(code.ExpiresAt)); err != nil {
		return fmt.Errorf("failed to deliver code: %w", err)
	}

	return nil
}

// Verify redeems the submitted code and, only on success, mints a step-up
// token for the user. Invalid and expired codes pass through as their
// distinct sentinel errors so callers can answer with distinguishable
// messages.
func (s *StepUpService) Verify(ctx context.Context, userID int64, code string) (string, error) {
	if err := s.otp.RedeemCode(ctx, userID, code); err != nil {
		return "", err
	}

	token, err := s.tokens.IssueStepUp(userID)
	if err != nil {
		return "", fmt.Errorf("failed to mint step-up token: %w", err)
	}

	return token, nil
}
