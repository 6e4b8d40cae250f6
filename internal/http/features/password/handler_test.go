package password

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/valumind/auth/pkg/auth"
	"github.com/valumind/auth/pkg/domain"
)

type fakeUserStore struct {
	byEmail map[string]*domain.User
}

func (s *fakeUserStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func newLoginHandler(t *testing.T) (*Handler, *auth.TokenService) {
	t.Helper()

	hash, err := auth.HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	store := &fakeUserStore{byEmail: map[string]*domain.User{
		"rita@example.com": {
			ID:           7,
			Email:        "rita@example.com",
			PasswordHash: hash,
			IsVerified:   true,
		},
	}}

	tokens := auth.NewTokenService(auth.TokenConfig{
		Secret: []byte("test-secret-key-at-least-32-chars!!"),
		Issuer: "test",
	})
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewHandler(logger, auth.NewPasswordService(store), tokens), tokens
}

func doLogin(handler *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.Login(rec, req)
	return rec
}

func TestLogin_Success(t *testing.T) {
	handler, tokens := newLoginHandler(t)

	rec := doLogin(handler, `{"email":"rita@example.com","password":"correct horse battery staple"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("Success = false, want true")
	}
	if resp.User.ID != 7 || resp.User.Email != "rita@example.com" {
		t.Errorf("user = %+v, want id 7 / rita@example.com", resp.User)
	}

	claims, err := tokens.Verify(resp.Token)
	if err != nil {
		t.Fatalf("issued token did not verify: %v", err)
	}
	if claims.SteppedUp {
		t.Error("login token is stepped up, want a standard token")
	}
	id, err := claims.UserID()
	if err != nil || id != 7 {
		t.Errorf("token subject = %d (err %v), want 7", id, err)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	handler, _ := newLoginHandler(t)

	cases := []struct {
		name string
		body string
	}{
		{"unknown email", `{"email":"nobody@example.com","password":"correct horse battery staple"}`},
		{"wrong password", `{"email":"rita@example.com","password":"wrong"}`},
	}

	var bodies []string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doLogin(handler, tc.body)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
			if !strings.Contains(rec.Body.String(), "Invalid credentials") {
				t.Errorf("body = %s, want Invalid credentials", rec.Body.String())
			}
			bodies = append(bodies, rec.Body.String())
		})
	}

	// Unknown email and wrong password must be indistinguishable.
	if len(bodies) == 2 && bodies[0] != bodies[1] {
		t.Errorf("rejection bodies differ: %q vs %q", bodies[0], bodies[1])
	}
}

func TestLogin_BadRequestBody(t *testing.T) {
	handler, _ := newLoginHandler(t)

	cases := []struct {
		name string
		body string
	}{
		{"not json", "not json"},
		{"missing fields", `{}`},
		{"missing password", `{"email":"rita@example.com"}`},
		{"invalid email", `{"email":"not-an-email","password":"x"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doLogin(handler, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}
