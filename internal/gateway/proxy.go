package gateway

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/valumind/auth/internal/httputil"
)

// Forwarder relays an approved request to the downstream OCR service and
// passes its response through unmodified. It runs strictly after the
// step-up guard; it performs no authorization of its own.
type Forwarder struct {
	logger  *slog.Logger
	baseURL string
	http    *http.Client
}

// NewForwarder creates a forwarder for the OCR service at baseURL.
func NewForwarder(logger *slog.Logger, baseURL string) *Forwarder {
	return &Forwarder{
		logger:  logger,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Analyze forwards the request body to the OCR service's analysis endpoint
// and streams the response back.
func (f *Forwarder) Analyze(w http.ResponseWriter, r *http.Request) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, f.baseURL+"/analysis", r.Body)
	if err != nil {
		f.logger.Error("failed to build downstream request", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "OCR analysis failed")
		return
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		f.logger.Error("downstream request failed", "error", err)
		httputil.Error(w, http.StatusBadGateway, "OCR service unavailable")
		return
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		f.logger.Warn("failed to relay downstream response", "error", err)
	}
}

// Health checks OCR service reachability.
func (f *Forwarder) Health(r *http.Request) error {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, f.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return nil
}
