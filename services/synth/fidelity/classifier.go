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
	"math"
	"strings"
)

// textClassifier is a multinomial naive Bayes model over word
// unigrams and bigrams with add-one smoothing. It exists only to
// score TSTR; it is not a general classifier.
type textClassifier struct {
	classDocs    map[string]int
	featureCount map[string]map[string]int
	featureTotal map[string]int
	vocab        map[string]bool
	totalDocs    int
}

func newTextClassifier() *textClassifier {
	return &textClassifier{
		classDocs:    make(map[string]int),
		featureCount: make(map[string]map[string]int),
		featureTotal: make(map[string]int),
		vocab:        make(map[string]bool),
	}
}

// features emits word unigrams and adjacent bigrams.
func features(text string) []string {
	toks := strings.Fields(text)
	out := make([]string, 0, 2*len(toks))
	out = append(out, toks...)
	for i := 0; i+1 < len(toks); i++ {
		out = append(out, toks[i]+" "+toks[i+1])
	}
	return out
}

func (c *textClassifier) fit(texts, labels []string) {
	for i, text := range texts {
		label := labels[i]
		c.classDocs[label]++
		c.totalDocs++
		if c.featureCount[label] == nil {
			c.featureCount[label] = make(map[string]int)
		}
		for _, f := range features(text) {
			c.featureCount[label][f]++
			c.featureTotal[label]++
			c.vocab[f] = true
		}
	}
}

// predict returns the highest-scoring class, breaking ties by
// lexicographic class order so results are deterministic.
func (c *textClassifier) predict(text string) string {
	feats := features(text)
	vocabSize := float64(len(c.vocab))

	best := ""
	bestScore := math.Inf(-1)
	for _, class := range sortedKeys(c.classDocs) {
		score := math.Log(float64(c.classDocs[class]) / float64(c.totalDocs))
		denom := float64(c.featureTotal[class]) + vocabSize
		for _, f := range feats {
			if !c.vocab[f] {
				continue
			}
			score += math.Log((float64(c.featureCount[class][f]) + 1.0) / denom)
		}
		if score > bestScore {
			best = class
			bestScore = score
		}
	}
	return best
}
