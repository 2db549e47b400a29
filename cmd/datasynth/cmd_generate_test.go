// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnswerDist(t *testing.T) {
	t.Run("empty string yields nil", func(t *testing.T) {
		dist, err := parseAnswerDist("")
		require.NoError(t, err)
		assert.Nil(t, dist)
	})

	t.Run("parses letters and weights", func(t *testing.T) {
		dist, err := parseAnswerDist("A=0.4, b=0.3,C=0.3")
		require.NoError(t, err)
		assert.Equal(t, map[string]float64{"A": 0.4, "B": 0.3, "C": 0.3}, dist)
	})

	t.Run("rejects entry without separator", func(t *testing.T) {
		_, err := parseAnswerDist("A0.4")
		assert.Error(t, err)
	})

	t.Run("rejects non-numeric weight", func(t *testing.T) {
		_, err := parseAnswerDist("A=heavy")
		assert.Error(t, err)
	})
}

func TestFirstFloat(t *testing.T) {
	assert.Equal(t, 0.5, firstFloat(0.5, 0.9))
	assert.Equal(t, 0.9, firstFloat(0, 0.9))
}

func TestFirstInt(t *testing.T) {
	assert.Equal(t, 25, firstInt(25, 10))
	assert.Equal(t, 10, firstInt(0, 10))
}
