// Package llm оборачивает хостинговые текстовые модели и строит поверх них оценку вакансий.
package llm

import (
	"context"
	"fmt"
)

// Completer один запрос-ответ к текстовой модели
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"

	DefaultAnthropicModel = "claude-3-haiku-20240307"
	DefaultOpenAIModel    = "gpt-4o-mini"
)

// NewCompleter выбирает провайдера. Пустой ключ означает демо-режим: вернется nil.
func NewCompleter(provider, apiKey, model string) (Completer, error) {
	if apiKey == "" {
		return nil, nil
	}

	switch provider {
	case "", ProviderAnthropic:
		if model == "" {
			model = DefaultAnthropicModel
		}
		return NewAnthropicClient(apiKey, model), nil
	case ProviderOpenAI:
		if model == "" {
			model = DefaultOpenAIModel
		}
		return NewOpenAIClient(apiKey, model), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", provider)
	}
}
