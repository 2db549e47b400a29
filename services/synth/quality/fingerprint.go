// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package quality scores and filters generated item batches.
//
// It contains two independent duplicate-detection paths: a cheap
// bucketed cluster reporter for human review, and a strict linear-scan
// filter that actually removes near-copies. The structural and
// distributional validator producing the quality report also lives
// here.
package quality

import (
	"hash/fnv"
	"strings"
)

// DefaultShingleWidth is the character n-gram width for fingerprints.
const DefaultShingleWidth = 5

// Fingerprint is the shingle set of one normalized text.
//
// Recomputed per run, never persisted.
type Fingerprint map[string]bool

// Shingle computes the character-shingle fingerprint of a text.
//
// Whitespace runs are collapsed to single spaces first. Texts shorter
// than the shingle width degrade to a single-element set containing
// the whole text; an empty text yields an empty set.
func Shingle(text string, width int) Fingerprint {
	if width <= 0 {
		width = DefaultShingleWidth
	}
	normalized := strings.Join(strings.Fields(text), " ")
	runes := []rune(normalized)

	fp := make(Fingerprint)
	if len(runes) == 0 {
		return fp
	}
	if len(runes) < width {
		fp[normalized] = true
		return fp
	}
	for i := 0; i+width <= len(runes); i++ {
		fp[string(runes[i:i+width])] = true
	}
	return fp
}

// Jaccard computes set-overlap similarity between two fingerprints.
//
// Two empty sets are considered identical (1.0); one empty set scores
// 0.0 against anything non-empty.
func (fp Fingerprint) Jaccard(other Fingerprint) float64 {
	if len(fp) == 0 && len(other) == 0 {
		return 1.0
	}
	if len(fp) == 0 || len(other) == 0 {
		return 0.0
	}
	inter := 0
	for s := range fp {
		if other[s] {
			inter++
		}
	}
	union := len(fp) + len(other) - inter
	if union == 0 {
		return 0.0
	}
	return float64(inter) / float64(union)
}

// BucketSignature computes the coarse bucket key for a fingerprint.
//
// The key is the FNV-64a hash of the lexicographically smallest
// shingle, a single-row LSH band. Near-duplicates almost always share
// their minimum shingle and therefore share a bucket; unrelated texts
// rarely do. Over-grouping only costs pairwise comparisons, since
// cluster membership is still decided by the Jaccard threshold. Items
// with different signatures are never pairwise-compared.
func (fp Fingerprint) BucketSignature() uint64 {
	min := ""
	first := true
	for s := range fp {
		if first || s < min {
			min = s
			first = false
		}
	}

	h := fnv.New64a()
	h.Write([]byte(min))
	return h.Sum64()
}
