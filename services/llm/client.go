// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm abstracts the text generation backends used by the
// synthesis pipeline.
package llm

import (
	"context"
	"fmt"
	"strings"
)

type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopK        *int     `json:"top_k"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// LLMClient defines the standard interface for any LLM backend
type LLMClient interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// NewClient resolves a model spec to a backend client.
//
// Supported specs:
//   - "mock": deterministic offline backend for tests and dry runs
//   - "openai:MODEL": OpenAI chat completions with the given model
func NewClient(model string) (LLMClient, error) {
	switch {
	case model == "" || model == "mock":
		return NewMockClient(), nil
	case strings.HasPrefix(model, "openai:"):
		return NewOpenAIClient(strings.TrimPrefix(model, "openai:"))
	default:
		return nil, fmt.Errorf("unknown model spec %q (use \"mock\" or \"openai:MODEL\")", model)
	}
}
