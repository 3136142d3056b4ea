package riot

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	statusEndpoint           = "/lol/status/v4/platform-data"
	defaultValidationTimeout = 10 * time.Second
)

// KeyValidator checks a credential against the lightweight platform status
// endpoint before a crawl spends its budget.
type KeyValidator struct {
	httpClient *http.Client
	baseURL    string
	platform   string
}

// KeyValidatorOption configures a KeyValidator
type KeyValidatorOption func(*KeyValidator)

// WithBaseURL replaces the platform host (tests).
func WithBaseURL(u string) KeyValidatorOption {
	return func(v *KeyValidator) { v.baseURL = strings.TrimRight(u, "/") }
}

// WithPlatform selects the platform host checked, na1 by default.
func WithPlatform(platform string) KeyValidatorOption {
	return func(v *KeyValidator) { v.platform = platform }
}

func WithTimeout(timeout time.Duration) KeyValidatorOption {
	return func(v *KeyValidator) { v.httpClient.Timeout = timeout }
}

func NewKeyValidator(opts ...KeyValidatorOption) *KeyValidator {
	v := &KeyValidator{
		httpClient: &http.Client{Timeout: defaultValidationTimeout},
		platform:   "na1",
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.baseURL == "" {
		v.baseURL = PlatformURL(v.platform)
	}
	return v
}

// ValidateKey returns (true, nil) for an accepted key, (false, nil) for a
// rejected one (401/403) and (false, err) when validity cannot be decided.
func (v *KeyValidator) ValidateKey(ctx context.Context, apiKey string) (bool, error) {
	if apiKey == "" {
		return false, fmt.Errorf("API key cannot be empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+statusEndpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Riot-Token", apiKey)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return false, nil
	default:
		return false, &UpstreamError{Status: resp.StatusCode, URL: req.URL.String()}
	}
}
