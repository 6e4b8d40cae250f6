package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valumind/auth/pkg/domain"
)

// --- mocks ---

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendOTPEmail(to, code string, validity time.Duration) error {
	return m.Called(to, code, validity).Error(0)
}

type mockUserGetter struct{ mock.Mock }

func (m *mockUserGetter) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- builder ---

func newStepUpService(store OTPStore, mailer Mailer, users UserGetter) (*StepUpService, *TokenService) {
	tokens := newTestTokenService()
	otp := NewOTPService(OTPConfig{}, store)
	return NewStepUpService(otp, tokens, mailer, users), tokens
}

func testUser() *domain.User {
	return &domain.User{ID: 7, Email: "alice@example.com", IsVerified: true}
}

// --- Initiate ---

func TestInitiate_SendsCodeByEmail(t *testing.T) {
	store := newMemOTPStore()
	users := &mockUserGetter{}
	users.On("GetByID", mock.Anything, int64(7)).Return(testUser(), nil)

	mailer := &mockMailer{}
	mailer.On("SendOTPEmail", "alice@example.com", mock.Anything, mock.Anything).Return(nil)

	svc, _ := newStepUpService(store, mailer, users)
	require.NoError(t, svc.Initiate(context.Background(), 7))

	stored := store.get(7)
	require.NotNil(t, stored, "a live code must exist after initiate")

	// The emailed code is the stored code.
	mailer.AssertCalled(t, "SendOTPEmail", "alice@example.com", stored.Code, mock.Anything)
}

func TestInitiate_UnknownUser(t *testing.T) {
	users := &mockUserGetter{}
	users.On("GetByID", mock.Anything, int64(404)).Return(nil, domain.ErrUserNotFound)

	svc, _ := newStepUpService(newMemOTPStore(), &mockMailer{}, users)
	err := svc.Initiate(context.Background(), 404)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestInitiate_DeliveryFailureSurfaces(t *testing.T) {
	store := newMemOTPStore()
	users := &mockUserGetter{}
	users.On("GetByID", mock.Anything, int64(7)).Return(testUser(), nil)

	mailer := &mockMailer{}
	mailer.On("SendOTPEmail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	svc, _ := newStepUpService(store, mailer, users)
	err := svc.Initiate(context.Background(), 7)
	require.Error(t, err, "delivery failure must not report success")

	// Issuance replaces rather than adds, so a failed delivery still
	// leaves at most one row behind.
	require.NotNil(t, store.get(7))
}

// --- Verify ---

func TestVerify_MintsStepUpTokenOnSuccess(t *testing.T) {
	store := newMemOTPStore()
	users := &mockUserGetter{}
	users.On("GetByID", mock.Anything, int64(7)).Return(testUser(), nil)

	mailer := &mockMailer{}
	mailer.On("SendOTPEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc, tokens := newStepUpService(store, mailer, users)
	require.NoError(t, svc.Initiate(context.Background(), 7))

	code := store.get(7)
	token, err := svc.Verify(context.Background(), 7, code.Code)
	require.NoError(t, err)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	require.True(t, claims.SteppedUp)

	userID, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, int64(7), userID)
}

func TestVerify_InvalidCodeMintsNothing(t *testing.T) {
	store := newMemOTPStore()
	users := &mockUserGetter{}
	users.On("GetByID", mock.Anything, int64(7)).Return(testUser(), nil)

	mailer := &mockMailer{}
	mailer.On("SendOTPEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc, _ := newStepUpService(store, mailer, users)
	require.NoError(t, svc.Initiate(context.Background(), 7))

	token, err := svc.Verify(context.Background(), 7, "000000")
	require.ErrorIs(t, err, domain.ErrOTPInvalid)
	require.Empty(t, token)

	// The challenge survives a wrong guess; the real code still works.
	code := store.get(7)
	require.NotNil(t, code)
	_, err = svc.Verify(context.Background(), 7, code.Code)
	require.NoError(t, err)
}
