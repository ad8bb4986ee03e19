package verifier

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const DefaultSiteVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// Result is the subset of the site-verify answer the service acts on.
type Result struct {
	Success    bool     `json:"success"`
	Score      *float64 `json:"score,omitempty"`
	Action     string   `json:"action,omitempty"`
	Hostname   string   `json:"hostname,omitempty"`
	ErrorCodes []string `json:"error-codes,omitempty"`
}

// Passed rejects failed checks and any reported score below minScore. A missing score is not a failure.
func (r Result) Passed(minScore float64) bool {
	if !r.Success {
		return false
	}
	return r.Score == nil || *r.Score >= minScore
}

type Verifier interface {
	Verify(ctx context.Context, token string) (*Result, error)
}

type RecaptchaVerifier struct {
	client *resty.Client
	url    string
	secret string
}

func NewRecaptchaVerifier(url, secret string, timeout time.Duration) *RecaptchaVerifier {
	if url == "" {
		url = DefaultSiteVerifyURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &RecaptchaVerifier{
		client: client,
		url:    url,
		secret: secret,
	}
}

func (v *RecaptchaVerifier) Verify(ctx context.Context, token string) (*Result, error) {
	if token == "" {
		return &Result{Success: false, ErrorCodes: []string{"missing-input-response"}}, nil
	}

	var result Result
	resp, err := v.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"secret":   v.secret,
			"response": token,
		}).
		ForceContentType("application/json").
		SetResult(&result).
		Post(v.url)
	if err != nil {
		return nil, fmt.Errorf("site verify request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("site verify returned status %d", resp.StatusCode())
	}

	log.Debug().
		Bool("success", result.Success).
		Strs("error_codes", result.ErrorCodes).
		Msg("recaptcha verification finished")

	return &result, nil
}
