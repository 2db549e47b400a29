// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package schema

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// ExtractJSON pulls a JSON object out of raw model output.
//
// Models frequently wrap their JSON in markdown code fences or prose.
// The extraction is best-effort: first a fenced block, then the
// outermost brace-delimited substring, finally the input unchanged.
func ExtractJSON(raw string) string {
	if m := fenceRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

// ParseItem parses raw model output into a validated task item.
//
// On unparseable output the raw text is preserved as a wrapped record
// via WrapRaw by the caller; ParseItem itself returns the error so the
// scheduler can count the attempt as failed.
func ParseItem(task Task, raw string) (any, error) {
	payload := []byte(ExtractJSON(raw))

	switch task {
	case TaskExams:
		var it ExamItem
		if err := json.Unmarshal(payload, &it); err != nil {
			return nil, fmt.Errorf("parsing exam item: %w", err)
		}
		if err := it.Validate(); err != nil {
			return nil, err
		}
		return it, nil
	case TaskSentiment:
		var it SentimentItem
		if err := json.Unmarshal(payload, &it); err != nil {
			return nil, fmt.Errorf("parsing sentiment item: %w", err)
		}
		if err := it.Validate(); err != nil {
			return nil, err
		}
		return it, nil
	case TaskGrammar:
		var it GrammarItem
		if err := json.Unmarshal(payload, &it); err != nil {
			return nil, fmt.Errorf("parsing grammar item: %w", err)
		}
		if err := it.Validate(); err != nil {
			return nil, err
		}
		return it, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTask, task)
	}
}

// WrapRaw builds the fallback record for output that never parsed.
// Kept for the audit trail rather than discarded silently.
func WrapRaw(raw string) map[string]string {
	return map[string]string{"raw_text": raw}
}

// PrimaryText returns the item field used for length, purity, and
// similarity checks: question for exams, text for sentiment, input
// for grammar.
func PrimaryText(item any) string {
	switch it := item.(type) {
	case ExamItem:
		return it.Question
	case *ExamItem:
		return it.Question
	case SentimentItem:
		return it.Text
	case *SentimentItem:
		return it.Text
	case GrammarItem:
		return it.Input
	case *GrammarItem:
		return it.Input
	case map[string]any:
		for _, key := range []string{"text", "question", "input"} {
			if v, ok := it[key].(string); ok && v != "" {
				return v
			}
		}
	}
	return ""
}
