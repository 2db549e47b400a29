// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package fidelity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/datasynth/services/synth/schema"
)

func TestEvaluateStyle_Exams(t *testing.T) {
	items := []map[string]any{
		{"question": "كلمة كلمة كلمة كلمة", "answer": "A"},
		{"question": "كلمة كلمة", "answer": "B"},
		{"question": "كلمة كلمة كلمة", "answer": "A"},
	}

	got, err := EvaluateStyle(schema.TaskExams, items)
	require.NoError(t, err)
	style, ok := got.(ExamStyle)
	require.True(t, ok)

	assert.Equal(t, 3, style.NumItems)
	assert.Equal(t, map[string]int{"A": 2, "B": 1}, style.AnswerDistribution)
	assert.Equal(t, 3.0, style.AvgQuestionWords)
	assert.Equal(t, 1.0, style.QuestionLengthStdev) // sample stdev of 4,2,3
}

func TestEvaluateStyle_Sentiment(t *testing.T) {
	items := []map[string]any{
		{"text": "نص", "sentiment": "positive"},
		{"text": "نص", "sentiment": "positive"},
		{"text": "نص", "sentiment": "negative"},
		{"text": "نص"},
	}

	got, err := EvaluateStyle(schema.TaskSentiment, items)
	require.NoError(t, err)
	style := got.(SentimentStyle)

	assert.Equal(t, 4, style.NumItems)
	assert.Equal(t, map[string]int{"positive": 2, "negative": 1}, style.SentimentDistribution)
	assert.Equal(t, 1, style.MissingSentiments)
}

func TestEvaluateStyle_Grammar(t *testing.T) {
	items := []map[string]any{
		{"input": "جملة فيها خطأ"},
	}

	got, err := EvaluateStyle(schema.TaskGrammar, items)
	require.NoError(t, err)
	style := got.(GrammarStyle)

	assert.Equal(t, 1, style.NumItems)
	assert.Equal(t, 3.0, style.AvgInputWords)
	assert.Equal(t, 0.0, style.InputLengthStdev) // single item
}

func TestEvaluateStyle_UnknownTask(t *testing.T) {
	_, err := EvaluateStyle(schema.Task("poetry"), nil)
	assert.ErrorIs(t, err, schema.ErrUnknownTask)
}

func TestEvaluateStyle_EmptyBatch(t *testing.T) {
	got, err := EvaluateStyle(schema.TaskExams, nil)
	require.NoError(t, err)
	style := got.(ExamStyle)
	assert.Zero(t, style.NumItems)
	assert.Equal(t, 0.0, style.AvgQuestionWords)
}
