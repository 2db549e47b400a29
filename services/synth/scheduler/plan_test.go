// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlan(t *testing.T) {
	t.Run("uniform default", func(t *testing.T) {
		plan := Plan(nil, 10)
		// 2.5 each; fractional ties resolve in canonical order.
		assert.Equal(t, QuotaPlan{"A": 3, "B": 3, "C": 2, "D": 2}, plan)
		assert.Equal(t, 10, plan.Total())
	})

	t.Run("exact split", func(t *testing.T) {
		plan := Plan(map[string]float64{"A": 0.25, "B": 0.25, "C": 0.25, "D": 0.25}, 8)
		assert.Equal(t, QuotaPlan{"A": 2, "B": 2, "C": 2, "D": 2}, plan)
	})

	t.Run("skewed with remainder", func(t *testing.T) {
		plan := Plan(map[string]float64{"A": 0.5, "B": 0.5}, 5)
		assert.Equal(t, QuotaPlan{"A": 3, "B": 2, "C": 0, "D": 0}, plan)
		assert.Equal(t, 5, plan.Total())
	})

	t.Run("unnormalized weights", func(t *testing.T) {
		plan := Plan(map[string]float64{"A": 2, "B": 1, "C": 1}, 4)
		assert.Equal(t, QuotaPlan{"A": 2, "B": 1, "C": 1, "D": 0}, plan)
	})

	t.Run("negative weights ignored", func(t *testing.T) {
		plan := Plan(map[string]float64{"A": -1, "B": 1}, 4)
		assert.Equal(t, QuotaPlan{"A": 0, "B": 4, "C": 0, "D": 0}, plan)
	})

	t.Run("all-zero distribution falls back to uniform", func(t *testing.T) {
		plan := Plan(map[string]float64{"A": 0, "B": 0}, 4)
		assert.Equal(t, QuotaPlan{"A": 1, "B": 1, "C": 1, "D": 1}, plan)
	})

	t.Run("zero samples", func(t *testing.T) {
		assert.Equal(t, 0, Plan(nil, 0).Total())
	})

	t.Run("reconciles for awkward sizes", func(t *testing.T) {
		for n := 1; n <= 17; n++ {
			assert.Equal(t, n, Plan(map[string]float64{"A": 0.37, "B": 0.33, "C": 0.2, "D": 0.1}, n).Total())
		}
	})
}

func TestQuotaPlanOrder(t *testing.T) {
	t.Run("descending quota", func(t *testing.T) {
		plan := QuotaPlan{"A": 0, "B": 3, "C": 1, "D": 0}
		assert.Equal(t, []string{"B", "C", "A", "D"}, plan.order())
	})

	t.Run("ties keep canonical order", func(t *testing.T) {
		plan := QuotaPlan{"A": 1, "B": 1, "C": 1, "D": 1}
		assert.Equal(t, []string{"A", "B", "C", "D"}, plan.order())
	})
}
