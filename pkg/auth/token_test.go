package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/valumind/auth/pkg/domain"
)

func newTestTokenService() *TokenService {
	return NewTokenService(TokenConfig{
		Secret: []byte("test-secret-key-at-least-32-chars!!"),
		Issuer: "test",
	})
}

func TestIssueStandard_VerifyRoundtrip(t *testing.T) {
	svc := newTestTokenService()

	token, err := svc.IssueStandard(42)
	if err != nil {
		t.Fatalf("IssueStandard failed: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	userID, err := claims.UserID()
	if err != nil {
		t.Fatalf("UserID failed: %v", err)
	}
	if userID != 42 {
		t.Errorf("UserID = %d, want 42", userID)
	}
	if claims.SteppedUp {
		t.Error("standard token must not carry the stepped_up claim")
	}
}

func TestIssueStepUp_VerifyRoundtrip(t *testing.T) {
	svc := newTestTokenService()

	token, err := svc.IssueStepUp(42)
	if err != nil {
		t.Fatalf("IssueStepUp failed: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !claims.SteppedUp {
		t.Error("step-up token must carry the stepped_up claim")
	}
}

func TestVerify_StepUpExpiryBoundary(t *testing.T) {
	svc := newTestTokenService()

	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	token, err := svc.IssueStepUp(7)
	if err != nil {
		t.Fatalf("IssueStepUp failed: %v", err)
	}

	// One second before expiry: accepted
	svc.now = func() time.Time { return issuedAt.Add(10*time.Minute - time.Second) }
	if _, err := svc.Verify(token); err != nil {
		t.Errorf("Verify at 9m59s failed: %v", err)
	}

	// One second past expiry: rejected
	svc.now = func() time.Time { return issuedAt.Add(10*time.Minute + time.Second) }
	if _, err := svc.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("Verify at 10m01s = %v, want ErrInvalidToken", err)
	}
}

func TestVerify_ElevationIsAdditive(t *testing.T) {
	svc := newTestTokenService()

	standard, err := svc.IssueStandard(99)
	if err != nil {
		t.Fatalf("IssueStandard failed: %v", err)
	}
	elevated, err := svc.IssueStepUp(99)
	if err != nil {
		t.Fatalf("IssueStepUp failed: %v", err)
	}

	standardClaims, err := svc.Verify(standard)
	if err != nil {
		t.Fatalf("Verify(standard) failed: %v", err)
	}
	elevatedClaims, err := svc.Verify(elevated)
	if err != nil {
		t.Fatalf("Verify(elevated) failed: %v", err)
	}

	if standardClaims.Subject != elevatedClaims.Subject {
		t.Errorf("subjects differ: %q vs %q; elevation must not change identity",
			standardClaims.Subject, elevatedClaims.Subject)
	}
}

func TestVerify_Rejections(t *testing.T) {
	svc := newTestTokenService()

	goodToken, err := svc.IssueStandard(1)
	if err != nil {
		t.Fatalf("IssueStandard failed: %v", err)
	}

	otherSecret := NewTokenService(TokenConfig{
		Secret: []byte("a-completely-different-secret-key!!"),
		Issuer: "test",
	})
	foreignToken, err := otherSecret.IssueStandard(1)
	if err != nil {
		t.Fatalf("IssueStandard failed: %v", err)
	}

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build alg=none token: %v", err)
	}

	noExpToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
	}).SignedString([]byte("test-secret-key-at-least-32-chars!!"))
	if err != nil {
		t.Fatalf("failed to build no-exp token: %v", err)
	}

	badSubjectToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "not-a-number",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret-key-at-least-32-chars!!"))
	if err != nil {
		t.Fatalf("failed to build bad-subject token: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"tampered signature", goodToken[:len(goodToken)-2] + "xx"},
		{"wrong secret", foreignToken},
		{"alg none", noneToken},
		{"missing exp", noExpToken},
		{"non-numeric subject", badSubjectToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Verify(tt.token); !errors.Is(err, domain.ErrInvalidToken) {
				t.Errorf("Verify = %v, want ErrInvalidToken", err)
			}
		})
	}
}
