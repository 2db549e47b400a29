// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package seed bounds the influence of a reference sample on
// generated output.
//
// A small set of reference items steers the style of generation (via
// a textual guidance prefix) without leaking content: generated items
// that overlap too heavily with any seed are rejected. The guard owns
// its seeds for the lifetime of one run; they are immutable once
// loaded.
package seed

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"

	"github.com/AleutianAI/datasynth/services/synth/schema"
	"github.com/AleutianAI/datasynth/services/synth/store"
)

// Constraint bounds seed usage for one generation run.
type Constraint struct {
	// MaxSeeds caps how many reference items are loaded. Default: 10.
	MaxSeeds int

	// MinSeedDiversity is the similarity ceiling between seeds
	// themselves. Recorded in the audit; not currently enforced.
	MinSeedDiversity float64

	// MaxGenerationSimilarity rejects generated items whose token
	// Jaccard similarity to any seed meets or exceeds this value.
	// Default: 0.7.
	MaxGenerationSimilarity float64
}

// DefaultConstraint returns the standard seed constraint.
func DefaultConstraint() Constraint {
	return Constraint{
		MaxSeeds:                10,
		MinSeedDiversity:        0.8,
		MaxGenerationSimilarity: 0.7,
	}
}

// Example is one loaded reference item with derived attributes.
type Example struct {
	Question  string
	Options   []string
	TokenLen  int
	TopicHint string
	raw       map[string]any
}

// Guard gates generated items against a loaded reference sample.
//
// Not safe for concurrent use; the scheduler is single-threaded by
// design and each run owns its guard.
type Guard struct {
	constraint Constraint
	seeds      []Example
	rng        *rand.Rand
}

// NewGuard creates a guard with the given constraint.
//
// rng may be nil, in which case seed selection uses an unseeded
// source. Tests pass a fixed-seed source for reproducibility.
func NewGuard(constraint Constraint, rng *rand.Rand) *Guard {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	if constraint.MaxSeeds <= 0 {
		constraint.MaxSeeds = DefaultConstraint().MaxSeeds
	}
	if constraint.MaxGenerationSimilarity <= 0 {
		constraint.MaxGenerationSimilarity = DefaultConstraint().MaxGenerationSimilarity
	}
	return &Guard{constraint: constraint, rng: rng}
}

// Load reads at most MaxSeeds items at random from a JSONL reference
// set.
//
// Items failing the minimal task shape check (for exams: non-empty
// question and an option list of at least 3 entries) are silently
// dropped, not substituted.
//
// Outputs:
//   - int: Number of seeds loaded.
//   - error: Non-nil if the file cannot be read.
func (g *Guard) Load(path string, task schema.Task) (int, error) {
	lines, err := store.ReadLines(path)
	if err != nil {
		return 0, fmt.Errorf("loading seed set: %w", err)
	}

	candidates := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		if !line.ParseErr {
			candidates = append(candidates, line.Obj)
		}
	}
	g.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	g.seeds = g.seeds[:0]
	for _, obj := range candidates {
		if len(g.seeds) >= g.constraint.MaxSeeds {
			break
		}
		ex, ok := validateShape(obj, task)
		if !ok {
			continue
		}
		g.seeds = append(g.seeds, ex)
	}
	return len(g.seeds), nil
}

// validateShape performs the minimal task-specific shape check.
func validateShape(obj map[string]any, task schema.Task) (Example, bool) {
	switch task {
	case schema.TaskExams:
		question, _ := obj["question"].(string)
		if strings.TrimSpace(question) == "" {
			return Example{}, false
		}
		rawOpts, ok := obj["options"].([]any)
		if !ok || len(rawOpts) < 3 {
			return Example{}, false
		}
		opts := make([]string, 0, len(rawOpts))
		for _, o := range rawOpts {
			if s, ok := o.(string); ok {
				opts = append(opts, s)
			}
		}
		return Example{
			Question:  question,
			Options:   opts,
			TokenLen:  len(strings.Fields(question)),
			TopicHint: topicHint(question),
			raw:       obj,
		}, true
	default:
		text := schema.PrimaryText(obj)
		if strings.TrimSpace(text) == "" {
			return Example{}, false
		}
		return Example{
			Question:  text,
			TokenLen:  len(strings.Fields(text)),
			TopicHint: topicHint(text),
			raw:       obj,
		}, true
	}
}

// Count returns the number of loaded seeds.
func (g *Guard) Count() int {
	return len(g.seeds)
}

// StyleGuidance derives a textual style prefix from the loaded
// seeds.
//
// The guidance describes average question length, observed topics,
// and option-label formatting. It carries no literal seed content.
// Returns "" when no seeds are loaded.
func (g *Guard) StyleGuidance() string {
	if len(g.seeds) == 0 {
		return ""
	}

	totalLen := 0
	topics := make([]string, 0, 3)
	seenTopic := make(map[string]bool)
	optionFormat := "letter_dot"

	for _, s := range g.seeds {
		totalLen += s.TokenLen
		if !seenTopic[s.TopicHint] && len(topics) < 3 {
			seenTopic[s.TopicHint] = true
			topics = append(topics, s.TopicHint)
		}
		for _, opt := range s.Options {
			if strings.HasPrefix(opt, "A-") {
				optionFormat = "letter_dash"
			}
		}
	}
	avgLen := totalLen / len(g.seeds)

	var b strings.Builder
	fmt.Fprintf(&b, "[Style Guide based on %d seed examples]\n", len(g.seeds))
	fmt.Fprintf(&b, "- Question length: %d ± 5 words\n", avgLen)
	fmt.Fprintf(&b, "- Subjects to cover: %s\n", strings.Join(topics, ", "))
	fmt.Fprintf(&b, "- Option format: Use %s format\n", optionFormat)
	b.WriteString("- Maintain similar complexity level as seed examples\n")
	b.WriteString("- DO NOT copy any specific content from seeds")
	return b.String()
}

// Validate reports whether a generated item is acceptably distant
// from every loaded seed.
//
// Similarity is Jaccard over whitespace token sets of the primary
// texts. Returns false when similarity to any seed meets or exceeds
// MaxGenerationSimilarity. Trivially true with no seeds loaded.
func (g *Guard) Validate(item any) bool {
	if len(g.seeds) == 0 {
		return true
	}
	text := schema.PrimaryText(item)
	tokens := tokenSet(text)
	for _, s := range g.seeds {
		if tokenJaccard(tokens, tokenSet(s.Question)) >= g.constraint.MaxGenerationSimilarity {
			return false
		}
	}
	return true
}

// auditDoc is the JSON shape of the seed audit artifact.
type auditDoc struct {
	SeedCount   int               `json:"seed_count"`
	Constraints auditConstraints  `json:"constraints"`
	SeedsUsed   []auditSeedRecord `json:"seeds_used"`
}

type auditConstraints struct {
	MaxSeeds                int     `json:"max_seeds"`
	MinSeedDiversity        float64 `json:"min_seed_diversity"`
	MaxGenerationSimilarity float64 `json:"max_generation_similarity"`
}

type auditSeedRecord struct {
	Preview   string `json:"preview"`
	TopicHint string `json:"topic_hint"`
	Hash      string `json:"hash"`
}

// ExportAudit writes the seed audit artifact.
//
// The per-seed hash exists for traceability of which seeds steered a
// run, not for exact-copy detection.
func (g *Guard) ExportAudit(path string) error {
	doc := auditDoc{
		SeedCount: len(g.seeds),
		Constraints: auditConstraints{
			MaxSeeds:                g.constraint.MaxSeeds,
			MinSeedDiversity:        g.constraint.MinSeedDiversity,
			MaxGenerationSimilarity: g.constraint.MaxGenerationSimilarity,
		},
		SeedsUsed: make([]auditSeedRecord, 0, len(g.seeds)),
	}
	for _, s := range g.seeds {
		doc.SeedsUsed = append(doc.SeedsUsed, auditSeedRecord{
			Preview:   preview(s.Question, 50),
			TopicHint: s.TopicHint,
			Hash:      contentHash(s.raw),
		})
	}
	return store.WriteJSON(path, doc)
}

// preview truncates text to at most n runes, appending an ellipsis
// when truncated.
func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

// contentHash computes an FNV-64 hash over the canonical JSON of a
// seed object. encoding/json sorts map keys, so the hash is stable.
func contentHash(obj map[string]any) string {
	data, err := json.Marshal(obj)
	if err != nil {
		return ""
	}
	h := fnv.New64a()
	h.Write(data)
	return fmt.Sprintf("%016x", h.Sum64())
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(text) {
		set[tok] = true
	}
	return set
}

func tokenJaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	inter := 0
	for tok := range a {
		if b[tok] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0.0
	}
	return float64(inter) / float64(union)
}
