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
	"fmt"
	"math"
	"strings"

	"github.com/AleutianAI/datasynth/services/synth/schema"
)

// ExamStyle summarizes a generated exam batch.
type ExamStyle struct {
	NumItems            int            `json:"num_items"`
	AnswerDistribution  map[string]int `json:"answer_distribution"`
	AvgQuestionWords    float64        `json:"avg_question_words"`
	QuestionLengthStdev float64        `json:"question_length_stdev"`
}

// SentimentStyle summarizes a generated sentiment batch.
type SentimentStyle struct {
	NumItems              int            `json:"num_items"`
	SentimentDistribution map[string]int `json:"sentiment_distribution"`
	MissingSentiments     int            `json:"missing_sentiments"`
}

// GrammarStyle summarizes a generated grammar batch.
type GrammarStyle struct {
	NumItems         int     `json:"num_items"`
	AvgInputWords    float64 `json:"avg_input_words"`
	InputLengthStdev float64 `json:"input_length_stdev"`
}

// EvaluateStyle computes per-task style statistics for one batch.
// The report shape depends on the task, so the result is returned as
// a JSON-serializable value.
func EvaluateStyle(task schema.Task, items []map[string]any) (any, error) {
	switch task {
	case schema.TaskExams:
		return examStyle(items), nil
	case schema.TaskSentiment:
		return sentimentStyle(items), nil
	case schema.TaskGrammar:
		return grammarStyle(items), nil
	default:
		return nil, fmt.Errorf("%w: %q", schema.ErrUnknownTask, task)
	}
}

func examStyle(items []map[string]any) ExamStyle {
	dist := make(map[string]int)
	lengths := make([]int, 0, len(items))
	for _, it := range items {
		ans, _ := it["answer"].(string)
		dist[ans]++
		q, _ := it["question"].(string)
		lengths = append(lengths, len(strings.Fields(q)))
	}
	mean, stdev := meanAndSampleStdev(lengths)
	return ExamStyle{
		NumItems:            len(items),
		AnswerDistribution:  dist,
		AvgQuestionWords:    round2(mean),
		QuestionLengthStdev: round2(stdev),
	}
}

func sentimentStyle(items []map[string]any) SentimentStyle {
	dist := make(map[string]int)
	missing := 0
	for _, it := range items {
		s, _ := it["sentiment"].(string)
		if s == "" {
			missing++
			continue
		}
		dist[s]++
	}
	return SentimentStyle{
		NumItems:              len(items),
		SentimentDistribution: dist,
		MissingSentiments:     missing,
	}
}

func grammarStyle(items []map[string]any) GrammarStyle {
	lengths := make([]int, 0, len(items))
	for _, it := range items {
		in, _ := it["input"].(string)
		lengths = append(lengths, len(strings.Fields(in)))
	}
	mean, stdev := meanAndSampleStdev(lengths)
	return GrammarStyle{
		NumItems:         len(items),
		AvgInputWords:    round2(mean),
		InputLengthStdev: round2(stdev),
	}
}

// meanAndSampleStdev uses the n-1 denominator; a single-item batch
// has zero deviation.
func meanAndSampleStdev(lengths []int) (float64, float64) {
	if len(lengths) == 0 {
		return 0.0, 0.0
	}
	sum := 0
	for _, n := range lengths {
		sum += n
	}
	mean := float64(sum) / float64(len(lengths))
	if len(lengths) < 2 {
		return mean, 0.0
	}
	variance := 0.0
	for _, n := range lengths {
		d := float64(n) - mean
		variance += d * d
	}
	return mean, math.Sqrt(variance / float64(len(lengths)-1))
}
