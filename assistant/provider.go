// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielhkuo/smartecoq/cliparse"
)

// DefaultMaxTokens caps every completion
const DefaultMaxTokens = 200

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	ErrNotConfigured = errors.New("assistant provider not configured")
	ErrUpstream      = errors.New("assistant provider failed")
	ErrEmptyReply    = errors.New("assistant provider returned no text")
)

// Message is one turn of a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider relays a conversation to a hosted language model
type Provider interface {
	Name() string
	Complete(ctx context.Context, messages []Message, maxTokens int) (string, error)
}

// FromConfig builds the provider selected in cfg.
// It returns ErrNotConfigured when no API key is set.
func FromConfig(ctx context.Context, cfg cliparse.Config) (Provider, error) {
	if cfg.ChatAPIKey == "" {
		return nil, ErrNotConfigured
	}

	client := &http.Client{Timeout: 60 * time.Second}
	switch cfg.ChatProvider {
	case "openai":
		return NewOpenAI(cfg.ChatAPIKey, cfg.ChatBaseURL, cfg.ChatModel, client), nil
	case "watsonx":
		if cfg.WatsonxProjectID == "" {
			return nil, fmt.Errorf("%w: WATSONX_PROJECT_ID required", ErrNotConfigured)
		}
		tokens := NewIAMTokenSource(cfg.IAMURL, cfg.ChatAPIKey, client)
		return NewWatsonx(cfg.ChatBaseURL, cfg.WatsonxProjectID, cfg.ChatModel, tokens, client), nil
	case "gemini":
		g, err := NewGemini(ctx, cfg.ChatAPIKey, cfg.ChatModel, cfg.ChatBaseURL)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	return nil, fmt.Errorf("unknown assistant provider %q", cfg.ChatProvider)
}
