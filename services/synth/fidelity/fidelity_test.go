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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exam(question, answer string) map[string]any {
	return map[string]any{"question": question, "answer": answer}
}

func TestCheck_IdenticalSets(t *testing.T) {
	items := []map[string]any{
		exam("ما عاصمة قطر الحبيبة؟", "A"),
		exam("ما عاصمة السعودية الكبرى؟", "B"),
	}

	report := Check(items, items)

	assert.Equal(t, report.Length.SyntheticMeanLen, report.Length.RealMeanLen)
	assert.Equal(t, 0.0, report.Length.MeanLenAbsDiff)
	assert.Equal(t, 0.0, report.AnswerBalance.L1Distance)
	assert.Equal(t, 1.0, report.Vocabulary.VocabJaccard)
	assert.Equal(t, report.Vocabulary.SyntheticVocabSize, report.Vocabulary.RealVocabSize)
}

func TestCheck_AnswerBalance(t *testing.T) {
	synthetic := []map[string]any{exam("س واحد", "A"), exam("س اثنان", "A")}
	real := []map[string]any{exam("س ثلاثة", "C"), exam("س أربعة", "D")}

	report := Check(synthetic, real)

	assert.Equal(t, 1.0, report.AnswerBalance.Synthetic["A"])
	assert.Equal(t, 0.5, report.AnswerBalance.Real["C"])
	assert.Equal(t, 0.5, report.AnswerBalance.Real["D"])
	// |1-0| + |0-0.5| + |0-0.5| = 2.0 over A, C, D.
	assert.Equal(t, 2.0, report.AnswerBalance.L1Distance)
}

func TestCheck_VocabularyOverlap(t *testing.T) {
	synthetic := []map[string]any{exam("الشمس تشرق صباحا", "A")}
	real := []map[string]any{exam("الشمس تغيب مساء", "B")}

	report := Check(synthetic, real)

	assert.Equal(t, 3, report.Vocabulary.SyntheticVocabSize)
	assert.Equal(t, 3, report.Vocabulary.RealVocabSize)
	// One shared token out of five distinct.
	assert.Equal(t, 0.2, report.Vocabulary.VocabJaccard)
}

func TestCheck_EmptySets(t *testing.T) {
	report := Check(nil, nil)
	assert.Equal(t, 0.0, report.Length.SyntheticMeanLen)
	assert.Equal(t, 0.0, report.Vocabulary.SyntheticTTR)
	assert.Zero(t, report.Vocabulary.SyntheticVocabSize)
}

func TestUtility_Guardrails(t *testing.T) {
	t.Run("too few training items", func(t *testing.T) {
		synthetic := []map[string]any{exam("س", "A"), exam("ص", "B")}
		real := []map[string]any{exam("س", "A"), exam("ص", "B")}
		report := Utility(synthetic, real)
		assert.Nil(t, report.SyntheticToRealAccuracy)
		assert.NotEmpty(t, report.Note)
	})

	t.Run("single class", func(t *testing.T) {
		var synthetic, real []map[string]any
		for i := 0; i < 20; i++ {
			synthetic = append(synthetic, exam(fmt.Sprintf("سؤال رقم %d", i), "A"))
			real = append(real, exam(fmt.Sprintf("سؤال رقم %d", i), "A"))
		}
		report := Utility(synthetic, real)
		assert.Nil(t, report.SyntheticToRealAccuracy)
	})

	t.Run("unlabeled items skipped", func(t *testing.T) {
		report := Utility(
			[]map[string]any{exam("س", "E"), exam("ص", "")},
			[]map[string]any{exam("س", "A")},
		)
		assert.Nil(t, report.SyntheticToRealAccuracy)
	})
}

func TestUtility_SeparableClasses(t *testing.T) {
	// Class A questions talk about capitals, class B about planets.
	// Train and test vocabularies line up, so TSTR should be perfect.
	var synthetic, real []map[string]any
	for i := 0; i < 10; i++ {
		synthetic = append(synthetic,
			exam(fmt.Sprintf("ما عاصمة الدولة رقم %d في الخليج", i), "A"),
			exam(fmt.Sprintf("ما الكوكب رقم %d في المجموعة الشمسية", i), "B"),
		)
	}
	for i := 10; i < 15; i++ {
		real = append(real,
			exam(fmt.Sprintf("ما عاصمة الدولة رقم %d في الخليج", i), "A"),
			exam(fmt.Sprintf("ما الكوكب رقم %d في المجموعة الشمسية", i), "B"),
		)
	}

	report := Utility(synthetic, real)
	require.NotNil(t, report.SyntheticToRealAccuracy)
	assert.Equal(t, 1.0, *report.SyntheticToRealAccuracy)
}

func TestPrivacy(t *testing.T) {
	t.Run("no real data", func(t *testing.T) {
		report := Privacy([]map[string]any{exam("س", "A")}, nil)
		assert.Nil(t, report.MaxOverlap)
		assert.Nil(t, report.ShareOverThreshold)
		assert.Equal(t, PrivacyThreshold, report.Threshold)
		assert.NotEmpty(t, report.Note)
	})

	t.Run("verbatim copy flagged", func(t *testing.T) {
		real := []map[string]any{
			exam("ما هي عاصمة دولة قطر؟", "A"),
			exam("ما الكوكب الأقرب إلى الشمس؟", "B"),
		}
		synthetic := []map[string]any{
			exam("ما هي عاصمة دولة قطر؟", "A"),       // exact copy
			exam("أي نهر يمر في القاهرة الكبرى؟", "C"), // novel
		}

		report := Privacy(synthetic, real)
		require.NotNil(t, report.MaxOverlap)
		assert.Equal(t, 1.0, *report.MaxOverlap)
		require.NotNil(t, report.ShareOverThreshold)
		assert.Equal(t, 0.5, *report.ShareOverThreshold)
	})

	t.Run("disjoint vocabulary", func(t *testing.T) {
		report := Privacy(
			[]map[string]any{exam("كلمات مختلفة تماما هنا", "A")},
			[]map[string]any{exam("نص آخر بلا تقاطع", "B")},
		)
		require.NotNil(t, report.MaxOverlap)
		assert.Equal(t, 0.0, *report.MaxOverlap)
	})
}
