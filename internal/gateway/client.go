package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// AuthClient relays step-up protocol calls to the auth service. The
// caller's bearer token travels with the relayed request so the auth
// service performs its own authentication; the gateway never vouches for
// a caller it has not verified.
type AuthClient struct {
	baseURL string
	http    *http.Client
}

// NewAuthClient creates a client for the auth service at baseURL.
func NewAuthClient(baseURL string) *AuthClient {
	return &AuthClient{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// AuthResult carries the auth service's response status and raw JSON body
// so non-2xx responses can pass through to the client unchanged.
type AuthResult struct {
	Status int
	Body   json.RawMessage
}

// InitiateStepUp relays a step-up initiation.
func (c *AuthClient) InitiateStepUp(ctx context.Context, bearer string) (*AuthResult, error) {
	return c.post(ctx, "/v1/auth/step-up/initiate", bearer, nil)
}

// VerifyStepUp relays a step-up verification.
func (c *AuthClient) VerifyStepUp(ctx context.Context, bearer, otp string) (*AuthResult, error) {
	payload := map[string]string{"otp": otp}
	return c.post(ctx, "/v1/auth/step-up/verify", bearer, payload)
}

// Health checks auth service reachability.
func (c *AuthClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth service unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func (c *AuthClient) post(ctx context.Context, path, bearer string, payload interface{}) (*AuthResult, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth service request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read auth service response: %w", err)
	}

	return &AuthResult{Status: resp.StatusCode, Body: data}, nil
}
