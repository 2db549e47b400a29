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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/datasynth/services/synth/schema"
	"github.com/AleutianAI/datasynth/services/synth/store"
)

func TestNormalizedSimilarity(t *testing.T) {
	t.Run("identical", func(t *testing.T) {
		assert.Equal(t, 1.0, NormalizedSimilarity("نص", "نص"))
	})

	t.Run("both empty", func(t *testing.T) {
		assert.Equal(t, 1.0, NormalizedSimilarity("", ""))
	})

	t.Run("one empty", func(t *testing.T) {
		assert.Equal(t, 0.0, NormalizedSimilarity("نص", ""))
	})

	t.Run("known distance", func(t *testing.T) {
		// kitten -> sitting: 3 edits over max length 7.
		assert.InDelta(t, 1.0-3.0/7.0, NormalizedSimilarity("kitten", "sitting"), 1e-9)
	})

	t.Run("rune based", func(t *testing.T) {
		// One rune substitution over 5 runes, not a byte-level
		// comparison.
		assert.InDelta(t, 1.0-1.0/5.0, NormalizedSimilarity("مدرسة", "مدرسه"), 1e-9)
	})
}

func TestCanonicalize(t *testing.T) {
	t.Run("key order independent", func(t *testing.T) {
		a := map[string]any{"question": "س", "answer": "أ"}
		b := map[string]any{"answer": "أ", "question": "س"}
		assert.Equal(t, Canonicalize(a), Canonicalize(b))
	})

	t.Run("arabic not escaped", func(t *testing.T) {
		s := Canonicalize(map[string]any{"q": "سؤال"})
		assert.Contains(t, s, "سؤال")
	})
}

func longExam(question string) map[string]any {
	return map[string]any{
		"question": question,
		"options":  []any{"A. الدوحة", "B. الرياض", "C. جدة", "D. المنامة"},
		"answer":   "A",
	}
}

func TestDuplicateFilter(t *testing.T) {
	base := longExam("ما هي عاصمة دولة قطر الواقعة على الخليج العربي؟")
	nearDup := longExam("ما هي عاصمة دولة قطر الواقعة على الخليج العربي اليوم؟")
	distinct := longExam("أي من الكواكب التالية هو الأقرب إلى الشمس في المجموعة الشمسية؟")

	t.Run("first seen wins", func(t *testing.T) {
		sim := NormalizedSimilarity(Canonicalize(base), Canonicalize(nearDup))
		require.GreaterOrEqual(t, sim, DefaultDedupThreshold)

		f := NewDuplicateFilter(0)
		assert.True(t, f.Keep(base))
		assert.False(t, f.Keep(nearDup))
		assert.True(t, f.Keep(distinct))
	})

	t.Run("order changes the survivor", func(t *testing.T) {
		f := NewDuplicateFilter(0)
		assert.True(t, f.Keep(nearDup))
		assert.False(t, f.Keep(base))
	})

	t.Run("exact duplicate dropped", func(t *testing.T) {
		f := NewDuplicateFilter(0)
		assert.True(t, f.Keep(base))
		assert.False(t, f.Keep(longExam("ما هي عاصمة دولة قطر الواقعة على الخليج العربي؟")))
	})
}

func TestClean(t *testing.T) {
	valid := longExam("ما هي عاصمة دولة قطر الواقعة على الخليج العربي؟")
	tooShort := longExam("ما العاصمة؟")
	lowTTR := longExam("سؤال سؤال سؤال سؤال سؤال سؤال")
	nearDup := longExam("ما هي عاصمة دولة قطر الواقعة على الخليج العربي اليوم؟")
	badShape := map[string]any{"raw_text": "رفض النموذج الإجابة"}

	lines := []store.Line{
		{Idx: 1, Obj: valid},
		{Idx: 2, ParseErr: true},
		{Idx: 3, Obj: badShape},
		{Idx: 4, Obj: tooShort},
		{Idx: 5, Obj: lowTTR},
		{Idx: 6, Obj: nearDup},
	}

	kept, stats := Clean(schema.TaskExams, lines, 0)

	assert.Equal(t, 6, stats.Input)
	assert.Equal(t, 2, stats.BadSchema) // parse error + raw wrapper
	assert.Equal(t, 1, stats.BadLength)
	assert.Equal(t, 1, stats.LowTTR)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 1, stats.Kept)
	require.Len(t, kept, 1)
	assert.Equal(t, valid, kept[0])
}

func TestClean_GrammarSkipsTTR(t *testing.T) {
	item := map[string]any{
		"input":       "هو يذهبون إلى المدرسة كل يوم",
		"correction":  "هو يذهب إلى المدرسة كل يوم",
		"explanation": "الفعل يطابق المفرد",
	}
	kept, stats := Clean(schema.TaskGrammar, []store.Line{{Idx: 1, Obj: item}}, 0)
	assert.Equal(t, 1, stats.Kept)
	assert.Len(t, kept, 1)
}
