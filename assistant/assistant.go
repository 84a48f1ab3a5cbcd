// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/danielhkuo/smartecoq/models"
)

const eventPrompt = `You are the assistant of an outdoor event. Answer visitors' questions about
the event, queues, food stands and recycling. Keep answers short and practical.`

const recyclingPrompt = `You are a specialized recycling assistant with deep knowledge of waste sorting.
Your goal is to provide accurate, practical advice that helps users correctly dispose of items.
Always prioritize environmental safety and proper waste separation.

You are a recycling expert assistant. Using the provided recycling guidelines, analyze these items: %s Context (recycling guidelines):
%s
For each item, provide a structured analysis:
1. Item Name:
- Correct Bin: [Specify the exact bin color/type]
- Preparation Required: [List any cleaning/preparation steps]
- Reason: [Explain why this bin is correct]
- Special Notes: [Any warnings, alternatives, or important details]
Guidelines for your response:
- Separate each item with a blank line
- Be specific about bin colors and types
- If an item isn't in the guidelines, recommend the safest disposal method
- Mention if items need to be clean, disassembled, or specially prepared
- Include any relevant warnings about contamination or hazardous materials
- If an item has multiple components, explain how to separate them
Please format your response clearly and concisely for each item.`

// Assistant answers event questions and gives recycling advice
type Assistant struct {
	provider   Provider
	guidelines string
	maxTokens  int
}

// New creates an assistant. A nil provider makes every call fail with
// ErrNotConfigured.
func New(provider Provider, guidelines string) *Assistant {
	return &Assistant{
		provider:   provider,
		guidelines: guidelines,
		maxTokens:  DefaultMaxTokens,
	}
}

// Configured reports whether a provider is attached
func (a *Assistant) Configured() bool {
	return a.provider != nil
}

// Chat relays the conversation so far plus the new message
func (a *Assistant) Chat(ctx context.Context, history []models.ChatMessage, message string) (string, error) {
	if a.provider == nil {
		return "", ErrNotConfigured
	}

	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: eventPrompt})
	for _, m := range history {
		messages = append(messages, Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, Message{Role: RoleUser, Content: message})

	reply, err := a.provider.Complete(ctx, messages, a.maxTokens)
	if err != nil {
		slog.Warn("assistant chat failed", "provider", a.provider.Name(), "error", err)
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// Advise asks for per-item disposal instructions and tags each block of
// the answer with the bin it mentions.
func (a *Assistant) Advise(ctx context.Context, items string) (models.RecyclingResponse, error) {
	if a.provider == nil {
		return models.RecyclingResponse{}, ErrNotConfigured
	}

	prompt := fmt.Sprintf(recyclingPrompt, items, a.guidelines)
	reply, err := a.provider.Complete(ctx, []Message{{Role: RoleUser, Content: prompt}}, a.maxTokens)
	if err != nil {
		slog.Warn("recycling advice failed", "provider", a.provider.Name(), "error", err)
		return models.RecyclingResponse{}, err
	}

	return models.RecyclingResponse{
		Items:  items,
		Advice: SplitAdvice(reply),
	}, nil
}

// SplitAdvice breaks an answer into blank-line separated blocks
func SplitAdvice(reply string) []models.RecyclingAdvice {
	advice := []models.RecyclingAdvice{}
	for _, block := range strings.Split(reply, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		advice = append(advice, models.RecyclingAdvice{
			Text: block,
			Bin:  ClassifyBin(block),
		})
	}
	return advice
}
