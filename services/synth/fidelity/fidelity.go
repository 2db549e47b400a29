// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package fidelity measures how closely a synthetic batch tracks a
// real reference set: length and answer distributions, vocabulary
// overlap, downstream utility, and memorization risk.
package fidelity

import (
	"math"
	"sort"
	"strings"
)

// PrivacyThreshold is the token-overlap Jaccard at which a synthetic
// item counts as too close to a real one.
const PrivacyThreshold = 0.8

// LengthStats compares word-length distributions of the two sets.
type LengthStats struct {
	SyntheticMeanLen float64 `json:"synthetic_mean_len"`
	SyntheticStdLen  float64 `json:"synthetic_std_len"`
	RealMeanLen      float64 `json:"real_mean_len"`
	RealStdLen       float64 `json:"real_std_len"`
	MeanLenAbsDiff   float64 `json:"mean_len_abs_diff"`
}

// AnswerBalance compares answer-letter distributions.
type AnswerBalance struct {
	Synthetic  map[string]float64 `json:"synthetic"`
	Real       map[string]float64 `json:"real"`
	L1Distance float64            `json:"l1_distance"`
}

// Vocabulary compares lexical diversity and overlap.
type Vocabulary struct {
	SyntheticTTR       float64 `json:"synthetic_ttr"`
	RealTTR            float64 `json:"real_ttr"`
	VocabJaccard       float64 `json:"vocab_jaccard"`
	SyntheticVocabSize int     `json:"synthetic_vocab_size"`
	RealVocabSize      int     `json:"real_vocab_size"`
}

// Report is the combined fidelity comparison.
type Report struct {
	Length        LengthStats   `json:"length"`
	AnswerBalance AnswerBalance `json:"answer_balance"`
	Vocabulary    Vocabulary    `json:"vocabulary"`
}

// UtilityReport is the train-on-synthetic, test-on-real result.
// Accuracy is nil when the guardrails fire; Note says why.
type UtilityReport struct {
	SyntheticToRealAccuracy *float64 `json:"synthetic_to_real_accuracy"`
	Note                    string   `json:"note,omitempty"`
}

// PrivacyReport summarizes nearest-real-item token overlap.
type PrivacyReport struct {
	MaxOverlap         *float64 `json:"max_overlap"`
	MeanOverlap        *float64 `json:"mean_overlap,omitempty"`
	ShareOverThreshold *float64 `json:"share_over_threshold"`
	Threshold          float64  `json:"threshold"`
	Note               string   `json:"note,omitempty"`
}

// Check compares a synthetic batch against real reference items.
//
// # Description
//
// Three views: word-length mean and standard deviation per set, L1
// distance between answer-letter distributions, and vocabulary
// type-token ratios plus Jaccard overlap of the two vocabularies.
func Check(synthetic, real []map[string]any) Report {
	synMean, synStd := lengthStats(synthetic)
	realMean, realStd := lengthStats(real)

	synAns := answerDistribution(synthetic)
	realAns := answerDistribution(real)

	synVocab := vocabSet(synthetic)
	realVocab := vocabSet(real)
	inter := 0
	for w := range synVocab {
		if realVocab[w] {
			inter++
		}
	}
	union := len(synVocab) + len(realVocab) - inter
	if union == 0 {
		union = 1
	}

	return Report{
		Length: LengthStats{
			SyntheticMeanLen: round2(synMean),
			SyntheticStdLen:  round2(synStd),
			RealMeanLen:      round2(realMean),
			RealStdLen:       round2(realStd),
			MeanLenAbsDiff:   round2(math.Abs(synMean - realMean)),
		},
		AnswerBalance: AnswerBalance{
			Synthetic:  synAns,
			Real:       realAns,
			L1Distance: round3(l1Distance(synAns, realAns)),
		},
		Vocabulary: Vocabulary{
			SyntheticTTR:       round3(typeTokenRatio(synthetic)),
			RealTTR:            round3(typeTokenRatio(real)),
			VocabJaccard:       round3(float64(inter) / float64(union)),
			SyntheticVocabSize: len(synVocab),
			RealVocabSize:      len(realVocab),
		},
	}
}

// Utility trains a bag-of-words classifier on synthetic items and
// scores it on real ones (TSTR). Items without a usable answer letter
// are skipped; with fewer than 2 classes, 10 training items, or 5
// test items the result is a note instead of a number.
func Utility(synthetic, real []map[string]any) UtilityReport {
	var trainTexts, trainLabels, testTexts, testLabels []string
	for _, it := range synthetic {
		if label := answerLabel(it); label != "" {
			trainTexts = append(trainTexts, primaryText(it))
			trainLabels = append(trainLabels, label)
		}
	}
	for _, it := range real {
		if label := answerLabel(it); label != "" {
			testTexts = append(testTexts, primaryText(it))
			testLabels = append(testLabels, label)
		}
	}

	if distinctLabels(trainLabels) < 2 || len(trainTexts) < 10 ||
		distinctLabels(testLabels) < 2 || len(testTexts) < 5 {
		return UtilityReport{
			Note: "Insufficient label variety or sample size for reliable TSTR (need >=2 classes and enough samples).",
		}
	}

	clf := newTextClassifier()
	clf.fit(trainTexts, trainLabels)

	correct := 0
	for i, text := range testTexts {
		if clf.predict(text) == testLabels[i] {
			correct++
		}
	}
	acc := round4(float64(correct) / float64(len(testTexts)))
	return UtilityReport{SyntheticToRealAccuracy: &acc}
}

// Privacy approximates re-identification risk: for each synthetic
// item, the token-set Jaccard to its nearest real item. Reports the
// maximum, the mean, and the share at or above PrivacyThreshold.
func Privacy(synthetic, real []map[string]any) PrivacyReport {
	if len(real) == 0 {
		return PrivacyReport{Threshold: PrivacyThreshold, Note: "No real data provided."}
	}

	realSets := make([]map[string]bool, 0, len(real))
	for _, it := range real {
		realSets = append(realSets, tokenSet(primaryText(it)))
	}

	maxOverlap := 0.0
	sum := 0.0
	over := 0
	n := len(synthetic)
	for _, it := range synthetic {
		best := nearestOverlap(tokenSet(primaryText(it)), realSets)
		if best > maxOverlap {
			maxOverlap = best
		}
		sum += best
		if best >= PrivacyThreshold {
			over++
		}
	}

	mean := 0.0
	share := 0.0
	if n > 0 {
		mean = sum / float64(n)
		share = float64(over) / float64(n)
	}

	maxR := round3(maxOverlap)
	meanR := round3(mean)
	shareR := round3(share)
	return PrivacyReport{
		MaxOverlap:         &maxR,
		MeanOverlap:        &meanR,
		ShareOverThreshold: &shareR,
		Threshold:          PrivacyThreshold,
	}
}

func nearestOverlap(tokens map[string]bool, realSets []map[string]bool) float64 {
	if len(tokens) == 0 {
		return 0.0
	}
	best := 0.0
	for _, r := range realSets {
		inter := 0
		for t := range tokens {
			if r[t] {
				inter++
			}
		}
		union := len(tokens) + len(r) - inter
		if union == 0 {
			continue
		}
		if j := float64(inter) / float64(union); j > best {
			best = j
		}
	}
	return best
}

// primaryText prefers the sentiment text field, then the exam
// question.
func primaryText(item map[string]any) string {
	if s, ok := item["text"].(string); ok && s != "" {
		return s
	}
	if s, ok := item["question"].(string); ok {
		return s
	}
	return ""
}

func answerLabel(item map[string]any) string {
	s, _ := item["answer"].(string)
	s = strings.TrimSpace(s)
	switch s {
	case "A", "B", "C", "D":
		return s
	}
	return ""
}

// vocabSet unions the whitespace-token sets of every item's primary
// text.
func vocabSet(items []map[string]any) map[string]bool {
	set := make(map[string]bool)
	for _, it := range items {
		for t := range tokenSet(primaryText(it)) {
			set[t] = true
		}
	}
	return set
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(text) {
		set[t] = true
	}
	return set
}

// lengthStats returns the mean and population standard deviation of
// per-item word counts.
func lengthStats(items []map[string]any) (float64, float64) {
	if len(items) == 0 {
		return 0.0, 0.0
	}
	lengths := make([]float64, 0, len(items))
	sum := 0.0
	for _, it := range items {
		n := float64(len(strings.Fields(primaryText(it))))
		lengths = append(lengths, n)
		sum += n
	}
	mean := sum / float64(len(lengths))
	variance := 0.0
	for _, n := range lengths {
		d := n - mean
		variance += d * d
	}
	return mean, math.Sqrt(variance / float64(len(lengths)))
}

// answerDistribution returns A-D shares over labeled items. All four
// letters are always present so distributions stay comparable.
func answerDistribution(items []map[string]any) map[string]float64 {
	counts := map[string]int{"A": 0, "B": 0, "C": 0, "D": 0}
	total := 0
	for _, it := range items {
		if label := answerLabel(it); label != "" {
			counts[label]++
			total++
		}
	}
	if total == 0 {
		total = 1
	}
	dist := make(map[string]float64, 4)
	for k, v := range counts {
		dist[k] = float64(v) / float64(total)
	}
	return dist
}

func l1Distance(p, q map[string]float64) float64 {
	keys := make(map[string]bool)
	for k := range p {
		keys[k] = true
	}
	for k := range q {
		keys[k] = true
	}
	sum := 0.0
	for k := range keys {
		sum += math.Abs(p[k] - q[k])
	}
	return sum
}

func typeTokenRatio(items []map[string]any) float64 {
	unique := make(map[string]bool)
	total := 0
	for _, it := range items {
		for _, t := range strings.Fields(primaryText(it)) {
			unique[t] = true
			total++
		}
	}
	if total == 0 {
		return 0.0
	}
	return float64(len(unique)) / float64(total)
}

func distinctLabels(labels []string) int {
	set := make(map[string]bool)
	for _, l := range labels {
		set[l] = true
	}
	return len(set)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }

func round3(x float64) float64 { return math.Round(x*1000) / 1000 }

func round4(x float64) float64 { return math.Round(x*10000) / 10000 }
