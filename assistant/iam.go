// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// refreshMargin renews a token this long before IAM says it expires
const refreshMargin = time.Minute

// IAMTokenSource exchanges an IBM Cloud API key for bearer tokens and
// reuses each token until shortly before it expires.
type IAMTokenSource struct {
	url    string
	apiKey string
	client *http.Client
	now    func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func NewIAMTokenSource(iamURL, apiKey string, client *http.Client) *IAMTokenSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &IAMTokenSource{
		url:    iamURL,
		apiKey: apiKey,
		client: client,
		now:    time.Now,
	}
}

type iamResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Token returns a valid bearer token, fetching a new one when needed
func (s *IAMTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Before(s.expiry.Add(-refreshMargin)) {
		return s.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "urn:ibm:params:oauth:grant-type:apikey")
	form.Set("apikey", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: token request: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read token response: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token status %d: %s", ErrUpstream, resp.StatusCode, truncate(body))
	}

	var tok iamResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("%w: failed to parse token response: %v", ErrUpstream, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: token response without access_token", ErrUpstream)
	}

	s.token = tok.AccessToken
	s.expiry = s.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	slog.Debug("iam token refreshed", "expires_in", tok.ExpiresIn)

	return s.token, nil
}
