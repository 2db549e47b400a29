// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package quality

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AleutianAI/datasynth/services/synth/schema"
	"github.com/AleutianAI/datasynth/services/synth/store"
)

// DefaultDedupThreshold is the normalized Levenshtein similarity at
// which an item counts as a duplicate of an earlier one.
const DefaultDedupThreshold = 0.93

// ttrThreshold is the minimum type-token ratio for exam and sentiment
// texts during cleaning.
const ttrThreshold = 0.18

// DuplicateFilter removes near-copies from a stream of items.
//
// # Description
//
// Each item is canonicalized to a sorted-key JSON string and compared
// against the canonical form of every item kept so far; a normalized
// Levenshtein similarity at or above the threshold drops it. The scan
// is linear and first-seen wins, so output depends on input order.
//
// This is the strict removal path. The ClusterReporter is the
// diagnostic one; the two never share state.
//
// # Thread Safety
//
// DuplicateFilter mutates internal state on every Keep call and is
// NOT safe for concurrent use.
type DuplicateFilter struct {
	threshold float64
	seen      []string
}

// NewDuplicateFilter creates a filter. A non-positive threshold falls
// back to DefaultDedupThreshold.
func NewDuplicateFilter(threshold float64) *DuplicateFilter {
	if threshold <= 0 {
		threshold = DefaultDedupThreshold
	}
	return &DuplicateFilter{threshold: threshold}
}

// Keep reports whether the item survives deduplication, recording its
// canonical form when it does.
func (f *DuplicateFilter) Keep(item map[string]any) bool {
	s := Canonicalize(item)
	for _, prev := range f.seen {
		if NormalizedSimilarity(s, prev) >= f.threshold {
			return false
		}
	}
	f.seen = append(f.seen, s)
	return true
}

// Canonicalize renders an item as a deterministic JSON string.
//
// encoding/json sorts map keys at every nesting level, and HTML
// escaping is disabled so Arabic text stays byte-stable.
func Canonicalize(item map[string]any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(item); err != nil {
		return fmt.Sprintf("%v", item)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// NormalizedSimilarity returns 1 - dist/maxLen over runes, where dist
// is the Levenshtein edit distance. Two empty strings score 1.0.
func NormalizedSimilarity(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(ra, rb))/float64(longest)
}

// levenshtein computes edit distance with a two-row DP over runes.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// CleanStats accounts for every item dropped during a cleaning pass.
type CleanStats struct {
	Input      int `json:"input"`
	BadSchema  int `json:"bad_schema"`
	BadLength  int `json:"bad_length"`
	LowTTR     int `json:"low_ttr"`
	Duplicates int `json:"duplicates"`
	Kept       int `json:"kept"`
}

// Clean runs the post-generation cleaning pipeline over raw items:
// schema validation, task-specific word-length bounds, a type-token
// ratio floor for exam and sentiment texts, then strict
// deduplication. Unparseable lines count as schema failures.
func Clean(task schema.Task, lines []store.Line, threshold float64) ([]map[string]any, CleanStats) {
	stats := CleanStats{Input: len(lines)}
	filter := NewDuplicateFilter(threshold)
	kept := make([]map[string]any, 0, len(lines))

	for _, line := range lines {
		if line.ParseErr || !validShape(task, line.Obj) {
			stats.BadSchema++
			continue
		}
		if !lengthOK(task, line.Obj) {
			stats.BadLength++
			continue
		}
		if !ttrOK(task, line.Obj) {
			stats.LowTTR++
			continue
		}
		if !filter.Keep(line.Obj) {
			stats.Duplicates++
			continue
		}
		kept = append(kept, line.Obj)
	}
	stats.Kept = len(kept)
	return kept, stats
}

func validShape(task schema.Task, item map[string]any) bool {
	raw, err := json.Marshal(item)
	if err != nil {
		return false
	}
	_, err = schema.ParseItem(task, string(raw))
	return err == nil
}

func lengthOK(task schema.Task, item map[string]any) bool {
	switch task {
	case schema.TaskSentiment:
		n := wordCount(item["text"])
		return n >= 20 && n <= 70
	case schema.TaskExams:
		n := wordCount(item["question"])
		return n >= 5 && n <= 60
	case schema.TaskGrammar:
		n := wordCount(item["input"])
		return n >= 3 && n <= 60
	}
	return true
}

func ttrOK(task schema.Task, item map[string]any) bool {
	if task != schema.TaskExams && task != schema.TaskSentiment {
		return true
	}
	text := normalizeField(item["text"])
	if text == "" {
		text = normalizeField(item["question"])
	}
	toks := strings.Fields(text)
	if len(toks) == 0 {
		return false
	}
	unique := make(map[string]bool, len(toks))
	for _, t := range toks {
		unique[t] = true
	}
	return float64(len(unique))/float64(len(toks)) >= ttrThreshold
}

func wordCount(v any) int {
	s, _ := v.(string)
	return len(strings.Fields(s))
}
