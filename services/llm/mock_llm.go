// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"context"
	"strings"
)

// MockClient is a deterministic offline backend.
//
// It inspects the prompt to decide which task is being generated and
// returns a fixed, well-formed JSON object for it. Useful for tests
// and for exercising the pipeline without provider credentials.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

// Generate implements the LLMClient interface
func (m *MockClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch {
	case strings.Contains(prompt, "options") && strings.Contains(prompt, "answer"):
		return `{"question": "ما عاصمة دولة عربية تطل على الخليج وتتميز بمعمار حديث؟", ` +
			`"options": ["A. الدوحة", "B. الرياض", "C. جدة", "D. المنامة"], "answer": "A"}`, nil
	case strings.Contains(prompt, "sentiment") && strings.Contains(prompt, "text"):
		return `{"text": "تجربة رائعة في المطعم اليوم؛ خدمة سريعة وطعام لذيذ وأسعار مناسبة.", ` +
			`"sentiment": "positive"}`, nil
	default:
		return `{"input": "الولد ذهبت إلى المدرسة مبكرًا.", ` +
			`"correction": "الولد ذهب إلى المدرسة مبكرًا.", ` +
			`"explanation": "الفعل يجب أن يطابق الفاعل في التذكير والإفراد."}`, nil
	}
}
