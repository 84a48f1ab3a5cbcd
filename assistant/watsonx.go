// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultWatsonxURL   = "https://eu-de.ml.cloud.ibm.com"
	defaultWatsonxModel = "meta-llama/llama-3-3-70b-instruct"
	watsonxVersion      = "2023-05-29"
)

// Watsonx uses IBM watsonx.ai text generation. The API takes a single
// prompt, so conversations are flattened into a transcript.
type Watsonx struct {
	baseURL   string
	projectID string
	model     string
	tokens    *IAMTokenSource
	client    *http.Client
}

func NewWatsonx(baseURL, projectID, model string, tokens *IAMTokenSource, client *http.Client) *Watsonx {
	if baseURL == "" {
		baseURL = defaultWatsonxURL
	}
	if model == "" {
		model = defaultWatsonxModel
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Watsonx{
		baseURL:   strings.TrimRight(baseURL, "/"),
		projectID: projectID,
		model:     model,
		tokens:    tokens,
		client:    client,
	}
}

func (w *Watsonx) Name() string {
	return "watsonx"
}

type watsonxParameters struct {
	DecodingMethod    string `json:"decoding_method"`
	MaxNewTokens      int    `json:"max_new_tokens"`
	MinNewTokens      int    `json:"min_new_tokens"`
	RepetitionPenalty int    `json:"repetition_penalty"`
}

type watsonxRequest struct {
	Input      string            `json:"input"`
	Parameters watsonxParameters `json:"parameters"`
	ModelID    string            `json:"model_id"`
	ProjectID  string            `json:"project_id"`
}

type watsonxResponse struct {
	Results []struct {
		GeneratedText string `json:"generated_text"`
	} `json:"results"`
}

func (w *Watsonx) Complete(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	token, err := w.tokens.Token(ctx)
	if err != nil {
		return "", err
	}

	jsonData, err := json.Marshal(watsonxRequest{
		Input: transcript(messages),
		Parameters: watsonxParameters{
			DecodingMethod:    "greedy",
			MaxNewTokens:      maxTokens,
			MinNewTokens:      0,
			RepetitionPenalty: 1,
		},
		ModelID:   w.model,
		ProjectID: w.projectID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := w.baseURL + "/ml/v1/text/generation?version=" + watsonxVersion
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, truncate(body))
	}

	var genResp watsonxResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %v", ErrUpstream, err)
	}
	if len(genResp.Results) == 0 || strings.TrimSpace(genResp.Results[0].GeneratedText) == "" {
		return "", ErrEmptyReply
	}

	return strings.TrimSpace(genResp.Results[0].GeneratedText), nil
}

// transcript renders a conversation as one prompt. A lone user message is
// sent as is.
func transcript(messages []Message) string {
	if len(messages) == 1 && messages[0].Role == RoleUser {
		return messages[0].Content
	}

	var b strings.Builder
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			b.WriteString(m.Content)
			b.WriteString("\n\n")
		case RoleAssistant:
			b.WriteString("Assistant: ")
			b.WriteString(m.Content)
			b.WriteString("\n")
		default:
			b.WriteString("User: ")
			b.WriteString(m.Content)
			b.WriteString("\n")
		}
	}
	b.WriteString("Assistant:")
	return b.String()
}
