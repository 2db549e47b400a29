// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scheduler drives quota-balanced generation of synthetic
// items against an LLM backend.
package scheduler

import (
	"math"
	"sort"

	"github.com/AleutianAI/datasynth/services/synth/schema"
)

// QuotaPlan maps each answer letter to the number of items it must
// receive. The values always sum to the requested batch size.
type QuotaPlan map[string]int

// Plan apportions n items across the answer letters by largest
// remainder.
//
// # Description
//
// The target distribution is normalized over A-D (missing letters
// count as zero; an all-zero distribution becomes uniform). Each
// letter gets the floor of its exact share, then the leftover units
// go one at a time to the letters with the largest fractional parts,
// ties broken in canonical A-D order. The result reconciles to
// exactly n.
func Plan(dist map[string]float64, n int) QuotaPlan {
	if n < 0 {
		n = 0
	}

	total := 0.0
	for _, l := range schema.AnswerLetters {
		if v := dist[l]; v > 0 {
			total += v
		}
	}

	shares := make(map[string]float64, len(schema.AnswerLetters))
	for _, l := range schema.AnswerLetters {
		if total > 0 {
			v := dist[l]
			if v < 0 {
				v = 0
			}
			shares[l] = v / total
		} else {
			shares[l] = 1.0 / float64(len(schema.AnswerLetters))
		}
	}

	plan := make(QuotaPlan, len(shares))
	type frac struct {
		letter string
		part   float64
	}
	fracs := make([]frac, 0, len(shares))
	assigned := 0
	for _, l := range schema.AnswerLetters {
		exact := shares[l] * float64(n)
		base := int(math.Floor(exact))
		plan[l] = base
		assigned += base
		fracs = append(fracs, frac{letter: l, part: exact - float64(base)})
	}

	// Canonical order in, stable sort by fractional part: ties keep
	// A-D order.
	sort.SliceStable(fracs, func(i, j int) bool {
		return fracs[i].part > fracs[j].part
	})
	for i := 0; i < n-assigned; i++ {
		plan[fracs[i%len(fracs)].letter]++
	}
	return plan
}

// order returns the letters sorted by descending quota, ties in
// canonical order. The scheduler cycles through this order.
func (p QuotaPlan) order() []string {
	letters := make([]string, len(schema.AnswerLetters))
	copy(letters, schema.AnswerLetters)
	sort.SliceStable(letters, func(i, j int) bool {
		return p[letters[i]] > p[letters[j]]
	})
	return letters
}

// Total returns the batch size the plan accounts for.
func (p QuotaPlan) Total() int {
	sum := 0
	for _, v := range p {
		sum += v
	}
	return sum
}
