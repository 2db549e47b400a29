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
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/AleutianAI/datasynth/services/synth/store"
)

// previewRunes is how much of a flagged question the CSV keeps.
const previewRunes = 120

// ValidatorConfig holds the thresholds for a validation pass.
type ValidatorConfig struct {
	// ArabicRatio is the minimum fraction of Arabic-script runes in a
	// question. Default: 0.90.
	ArabicRatio float64 `json:"arabic_ratio"`

	// MinLen and MaxLen bound question length in runes.
	// Defaults: 10 and 600.
	MinLen int `json:"min_len"`
	MaxLen int `json:"max_len"`

	// DupShingle and DupJaccard parameterize the duplicate-cluster
	// report. Defaults: 5 and 0.90.
	DupShingle int     `json:"dup_shingle"`
	DupJaccard float64 `json:"dup_jaccard"`

	// SampleFlags caps how many flagged rows are kept. Default: 200.
	SampleFlags int `json:"sample_flags"`
}

// DefaultValidatorConfig returns the standard thresholds.
func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{
		ArabicRatio: 0.90,
		MinLen:      10,
		MaxLen:      600,
		DupShingle:  DefaultShingleWidth,
		DupJaccard:  0.90,
		SampleFlags: 200,
	}
}

// FlagRow is one problem sample destined for the flagged CSV.
type FlagRow struct {
	Idx     int
	Issue   string
	Preview string
}

// Diversity holds corpus-level distinct-n word ratios.
type Diversity struct {
	Distinct2 float64 `json:"distinct2"`
	Distinct3 float64 `json:"distinct3"`
}

// PersonaCount is one persona with its item count.
type PersonaCount struct {
	Persona string `json:"persona"`
	Count   int    `json:"count"`
}

// PersonaStats summarizes how evenly personas cover the batch.
type PersonaStats struct {
	UniquePersonas int            `json:"unique_personas"`
	MeanPerPersona float64        `json:"mean_per_persona"`
	StdPerPersona  float64        `json:"std_per_persona"`
	Top5Personas   []PersonaCount `json:"top5_personas"`
}

// Report is the aggregate quality report for one batch.
type Report struct {
	Total              int             `json:"total"`
	ParseErrors        int             `json:"parse_errors"`
	BadSchema          int             `json:"bad_schema"`
	AnswerNotInOptions int             `json:"answer_not_in_options"`
	LowArabicRatio     int             `json:"low_arabic_ratio"`
	TooShort           int             `json:"too_short"`
	TooLong            int             `json:"too_long"`
	DupClusters        int             `json:"dup_clusters"`
	DupClusterExamples [][]int         `json:"dup_cluster_examples"`
	Diversity          Diversity       `json:"diversity"`
	PersonaStats       PersonaStats    `json:"persona_stats"`
	Config             ValidatorConfig `json:"config"`
}

// Validator runs structural and distributional checks over a batch.
//
// # Description
//
// Each row is checked for schema shape (question, answer, options),
// answer membership, Arabic-script purity, and length bounds; every
// violation produces a flagged row. Corpus-level passes add duplicate
// clusters, distinct-n diversity, and persona balance. Rows may be
// flat items or request records carrying the item under "synthetic".
//
// # Thread Safety
//
// Validator is immutable after creation and safe for concurrent use.
type Validator struct {
	config ValidatorConfig
}

// NewValidator creates a validator, applying defaults for zero-valued
// config fields.
func NewValidator(config ValidatorConfig) *Validator {
	defaults := DefaultValidatorConfig()
	if config.ArabicRatio <= 0 {
		config.ArabicRatio = defaults.ArabicRatio
	}
	if config.MinLen <= 0 {
		config.MinLen = defaults.MinLen
	}
	if config.MaxLen <= 0 {
		config.MaxLen = defaults.MaxLen
	}
	if config.DupShingle <= 0 {
		config.DupShingle = defaults.DupShingle
	}
	if config.DupJaccard <= 0 {
		config.DupJaccard = defaults.DupJaccard
	}
	if config.SampleFlags <= 0 {
		config.SampleFlags = defaults.SampleFlags
	}
	return &Validator{config: config}
}

// Validate checks a batch and returns the report plus flagged rows.
//
// Inputs:
//   - lines: JSONL rows in file order; parse failures are counted,
//     not skipped.
//
// Outputs:
//   - *Report: Aggregate counts, clusters, diversity, persona stats.
//   - []FlagRow: Problem samples, de-duplicated by (idx, issue) and
//     capped at SampleFlags.
func (v *Validator) Validate(lines []store.Line) (*Report, []FlagRow) {
	report := &Report{Config: v.config, DupClusterExamples: [][]int{}}
	var flags []FlagRow
	var questions []string
	var clusterable []IndexedText
	personaCounts := make(map[string]int)

	for _, line := range lines {
		report.Total++
		if line.ParseErr {
			report.ParseErrors++
			flags = append(flags, FlagRow{Idx: line.Idx, Issue: "json_parse_error"})
			continue
		}

		item := line.Obj
		if syn, ok := item["synthetic"].(map[string]any); ok {
			item = syn
		}
		if persona, ok := line.Obj["persona"].(string); ok && persona != "" {
			personaCounts[persona]++
		}

		q := normalizeField(item["question"])
		ans := normalizeField(item["answer"])
		opts, hasOpts := item["options"]
		preview := truncateRunes(q, previewRunes)

		schemaOK := true
		if q == "" || ans == "" {
			report.BadSchema++
			schemaOK = false
			flags = append(flags, FlagRow{Idx: line.Idx, Issue: "missing_question_or_answer", Preview: preview})
		}
		optList, isList := opts.([]any)
		if hasOpts && opts != nil && !isList {
			report.BadSchema++
			schemaOK = false
			flags = append(flags, FlagRow{Idx: line.Idx, Issue: "options_not_list", Preview: preview})
		}

		if schemaOK && isList {
			found := false
			for _, o := range optList {
				if normalizeField(o) == ans {
					found = true
					break
				}
			}
			if !found {
				report.AnswerNotInOptions++
				flags = append(flags, FlagRow{Idx: line.Idx, Issue: "answer_not_in_options", Preview: preview})
			}
		}

		if q != "" {
			ratio := ArabicRatio(q)
			if ratio < v.config.ArabicRatio {
				report.LowArabicRatio++
				flags = append(flags, FlagRow{
					Idx:     line.Idx,
					Issue:   fmt.Sprintf("low_arabic_ratio(%.2f)", ratio),
					Preview: preview,
				})
			}
		}

		qlen := utf8.RuneCountInString(q)
		if qlen < v.config.MinLen {
			report.TooShort++
			flags = append(flags, FlagRow{Idx: line.Idx, Issue: fmt.Sprintf("too_short(%d)", qlen), Preview: preview})
		}
		if qlen > v.config.MaxLen {
			report.TooLong++
			flags = append(flags, FlagRow{Idx: line.Idx, Issue: fmt.Sprintf("too_long(%d)", qlen), Preview: preview})
		}

		questions = append(questions, q)
		if q != "" {
			clusterable = append(clusterable, IndexedText{Idx: line.Idx, Text: q})
		}
	}

	reporter := NewClusterReporter(ClusterConfig{
		ShingleWidth: v.config.DupShingle,
		Threshold:    v.config.DupJaccard,
	})
	clusters := reporter.Cluster(clusterable)
	report.DupClusters = len(clusters)
	for _, c := range clusters[:minInt(len(clusters), 5)] {
		report.DupClusterExamples = append(report.DupClusterExamples, c[:minInt(len(c), 5)])
	}

	report.Diversity = Diversity{
		Distinct2: round4(DistinctN(questions, 2)),
		Distinct3: round4(DistinctN(questions, 3)),
	}
	report.PersonaStats = personaStats(personaCounts)

	return report, dedupeFlags(flags, v.config.SampleFlags)
}

// ArabicRatio returns the fraction of runes in the Arabic script
// blocks (letters, supplements, extensions, and both digit sets).
// An empty string scores 0.0.
func ArabicRatio(s string) float64 {
	total := 0
	arabic := 0
	for _, r := range s {
		total++
		if isArabicRune(r) {
			arabic++
		}
	}
	if total == 0 {
		return 0.0
	}
	return float64(arabic) / float64(total)
}

func isArabicRune(r rune) bool {
	switch {
	case r >= 0x0600 && r <= 0x06FF:
		return true
	case r >= 0x0750 && r <= 0x077F:
		return true
	case r >= 0x08A0 && r <= 0x08FF:
		return true
	case r >= 0x06F0 && r <= 0x06F9:
		return true
	}
	return false
}

// DistinctN computes the ratio of unique word n-grams to total word
// n-grams across the corpus. Texts with fewer than n words are
// skipped; an n-gram-free corpus scores 0.0.
func DistinctN(texts []string, n int) float64 {
	unique := make(map[string]bool)
	total := 0
	for _, t := range texts {
		toks := strings.Fields(t)
		if len(toks) < n {
			continue
		}
		total += len(toks) - n + 1
		for i := 0; i+n <= len(toks); i++ {
			unique[strings.Join(toks[i:i+n], " ")] = true
		}
	}
	if total == 0 {
		return 0.0
	}
	return float64(len(unique)) / float64(total)
}

// FlagCSVRows renders flagged rows for store.WriteCSV.
func FlagCSVRows(flags []FlagRow) (header []string, rows [][]string) {
	header = []string{"idx", "issue", "preview"}
	rows = make([][]string, 0, len(flags))
	for _, f := range flags {
		rows = append(rows, []string{fmt.Sprintf("%d", f.Idx), f.Issue, f.Preview})
	}
	return header, rows
}

func personaStats(counts map[string]int) PersonaStats {
	stats := PersonaStats{Top5Personas: []PersonaCount{}}
	stats.UniquePersonas = len(counts)
	if len(counts) == 0 {
		return stats
	}

	sum := 0
	all := make([]PersonaCount, 0, len(counts))
	for persona, n := range counts {
		sum += n
		all = append(all, PersonaCount{Persona: persona, Count: n})
	}
	mean := float64(sum) / float64(len(counts))

	variance := 0.0
	for _, pc := range all {
		d := float64(pc.Count) - mean
		variance += d * d
	}
	variance /= float64(len(counts))

	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Persona < all[j].Persona
	})

	stats.MeanPerPersona = round2(mean)
	stats.StdPerPersona = round2(math.Sqrt(variance))
	stats.Top5Personas = all[:minInt(len(all), 5)]
	return stats
}

func dedupeFlags(flags []FlagRow, limit int) []FlagRow {
	type key struct {
		idx   int
		issue string
	}
	seen := make(map[key]bool)
	unique := make([]FlagRow, 0, len(flags))
	for _, f := range flags {
		k := key{idx: f.Idx, issue: f.Issue}
		if seen[k] {
			continue
		}
		seen[k] = true
		unique = append(unique, f)
	}
	if len(unique) > limit {
		unique = unique[:limit]
	}
	return unique
}

func normalizeField(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }

func round4(x float64) float64 { return math.Round(x*10000) / 10000 }

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
