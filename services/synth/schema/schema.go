// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package schema defines the generation tasks and their item shapes.
//
// Three tasks are supported: multiple-choice exam questions, short
// sentiment-labeled texts, and grammar corrections. Each task has a
// structured item type with its own validation rules. Items are
// immutable once accepted by the scheduler.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Task identifies a generation task.
type Task string

const (
	// TaskExams generates multiple-choice exam questions.
	TaskExams Task = "exams"

	// TaskSentiment generates sentiment-labeled short texts.
	TaskSentiment Task = "sentiment"

	// TaskGrammar generates grammar correction pairs.
	TaskGrammar Task = "grammar"
)

// Sentinel errors for the schema package.
var (
	// ErrUnknownTask indicates an unrecognized task name.
	ErrUnknownTask = errors.New("unknown task")

	// ErrInvalidItem indicates a structurally invalid item.
	ErrInvalidItem = errors.New("invalid item")
)

// AnswerLetters is the canonical label order for exam answers.
var AnswerLetters = []string{"A", "B", "C", "D"}

// ParseTask validates and converts a task name.
func ParseTask(s string) (Task, error) {
	switch Task(strings.ToLower(strings.TrimSpace(s))) {
	case TaskExams:
		return TaskExams, nil
	case TaskSentiment:
		return TaskSentiment, nil
	case TaskGrammar:
		return TaskGrammar, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTask, s)
	}
}

// ExamItem is one multiple-choice exam question.
//
// Options carry their letter prefix ("A. ..."), matching the wire
// format the generator returns and the reference corpora use.
type ExamItem struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
	Notes    string   `json:"notes,omitempty"`
}

// Validate checks the structural rules for an exam item: non-empty
// question, exactly four options, and an answer in A-D.
func (it ExamItem) Validate() error {
	if strings.TrimSpace(it.Question) == "" {
		return fmt.Errorf("%w: empty question", ErrInvalidItem)
	}
	if len(it.Options) != 4 {
		return fmt.Errorf("%w: need exactly 4 options, got %d", ErrInvalidItem, len(it.Options))
	}
	if !isAnswerLetter(it.Answer) {
		return fmt.Errorf("%w: answer must be one of A,B,C,D, got %q", ErrInvalidItem, it.Answer)
	}
	return nil
}

// SentimentItem is one sentiment-labeled text.
type SentimentItem struct {
	Text      string `json:"text"`
	Sentiment string `json:"sentiment"`
}

// Validate checks the item and normalizes the sentiment label to
// lowercase.
func (it *SentimentItem) Validate() error {
	if strings.TrimSpace(it.Text) == "" {
		return fmt.Errorf("%w: empty text", ErrInvalidItem)
	}
	norm := strings.ToLower(strings.TrimSpace(it.Sentiment))
	switch norm {
	case "positive", "negative", "neutral":
		it.Sentiment = norm
		return nil
	default:
		return fmt.Errorf("%w: sentiment must be positive|negative|neutral, got %q", ErrInvalidItem, it.Sentiment)
	}
}

// GrammarItem is one grammar correction pair with explanation.
type GrammarItem struct {
	Input       string `json:"input"`
	Correction  string `json:"correction"`
	Explanation string `json:"explanation"`
}

// Validate checks that all three fields are present.
func (it GrammarItem) Validate() error {
	if strings.TrimSpace(it.Input) == "" || strings.TrimSpace(it.Correction) == "" {
		return fmt.Errorf("%w: missing input or correction", ErrInvalidItem)
	}
	if strings.TrimSpace(it.Explanation) == "" {
		return fmt.Errorf("%w: missing explanation", ErrInvalidItem)
	}
	return nil
}

// Record wraps one item with its provenance for the request pipeline.
//
// The persisted wire format is line-delimited JSON:
//
//	{"persona": "...", "source_id": "...", "model": "...", "synthetic": {...}}
type Record struct {
	Persona   string `json:"persona,omitempty"`
	SourceID  string `json:"source_id,omitempty"`
	Model     string `json:"model,omitempty"`
	Synthetic any    `json:"synthetic"`
}

func isAnswerLetter(s string) bool {
	for _, l := range AnswerLetters {
		if s == l {
			return true
		}
	}
	return false
}
