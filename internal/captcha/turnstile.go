// Package captcha verifies Cloudflare Turnstile tokens submitted with
// public forms.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const siteverifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// Verifier decides whether a form submission came from a human.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

// Turnstile calls the siteverify endpoint.  With an empty secret every
// token is accepted, which keeps local development working without keys.
type Turnstile struct {
	secret   string
	endpoint string
	client   *http.Client
}

// NewTurnstile returns a Turnstile verifier for the given secret key.
func NewTurnstile(secret string) *Turnstile {
	return &Turnstile{
		secret:   secret,
		endpoint: siteverifyURL,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify posts the token to siteverify and reports whether Cloudflare
// accepted it.
func (t *Turnstile) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if t.secret == "" {
		return true, nil
	}
	if strings.TrimSpace(token) == "" {
		return false, nil
	}

	form := url.Values{"secret": {t.secret}, "response": {token}}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("turnstile: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("turnstile: status %d", resp.StatusCode)
	}

	var out siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("turnstile: decode: %w", err)
	}
	return out.Success, nil
}
