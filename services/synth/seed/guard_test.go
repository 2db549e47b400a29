// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package seed

import (
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/datasynth/services/synth/schema"
)

func writeSeedFile(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seeds.jsonl")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0640))
	return path
}

func newTestGuard(c Constraint) *Guard {
	return NewGuard(c, rand.New(rand.NewSource(42)))
}

func TestGuard_LoadDropsInvalidSeeds(t *testing.T) {
	path := writeSeedFile(t, []string{
		`{"question": "ما عاصمة مصر في التاريخ الحديث؟", "options": ["A. القاهرة", "B. الرياض", "C. بغداد"]}`,
		`{"question": "", "options": ["A. x", "B. y", "C. z"]}`,
		`{"question": "سؤال بلا خيارات"}`,
		`{"question": "سؤال بخيارين فقط", "options": ["A. x", "B. y"]}`,
		`broken json line`,
	})

	g := newTestGuard(DefaultConstraint())
	n, err := g.Load(path, schema.TaskExams)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only the well-shaped seed survives")
	assert.Equal(t, 1, g.Count())
}

func TestGuard_LoadCapsAtMaxSeeds(t *testing.T) {
	var lines []string
	for i := 0; i < 20; i++ {
		obj := map[string]any{
			"question": "سؤال عن التاريخ رقم مختلف في كل مرة",
			"options":  []string{"A. أ", "B. ب", "C. ج", "D. د"},
		}
		data, _ := json.Marshal(obj)
		lines = append(lines, string(data))
	}

	g := newTestGuard(Constraint{MaxSeeds: 5, MaxGenerationSimilarity: 0.7})
	n, err := g.Load(writeSeedFile(t, lines), schema.TaskExams)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestGuard_LoadMissingFile(t *testing.T) {
	g := newTestGuard(DefaultConstraint())
	_, err := g.Load(filepath.Join(t.TempDir(), "absent.jsonl"), schema.TaskExams)
	assert.Error(t, err)
}

func TestGuard_StyleGuidance(t *testing.T) {
	path := writeSeedFile(t, []string{
		`{"question": "متى وقعت معركة حطين في التاريخ الإسلامي؟", "options": ["A. أ", "B. ب", "C. ج", "D. د"]}`,
		`{"question": "ما هي وحدة قياس الطاقة في الفيزياء؟", "options": ["A. أ", "B. ب", "C. ج", "D. د"]}`,
	})

	g := newTestGuard(DefaultConstraint())
	_, err := g.Load(path, schema.TaskExams)
	require.NoError(t, err)

	guidance := g.StyleGuidance()
	assert.Contains(t, guidance, "[Style Guide based on 2 seed examples]")
	assert.Contains(t, guidance, "± 5 words")
	assert.Contains(t, guidance, "letter_dot")
	assert.Contains(t, guidance, "DO NOT copy")

	// No literal seed content in the guidance
	assert.NotContains(t, guidance, "حطين")
	assert.NotContains(t, guidance, "الطاقة")
}

func TestGuard_StyleGuidanceEmptyWithoutSeeds(t *testing.T) {
	g := newTestGuard(DefaultConstraint())
	assert.Equal(t, "", g.StyleGuidance())
}

func TestGuard_ValidateRejectsNearCopies(t *testing.T) {
	path := writeSeedFile(t, []string{
		`{"question": "ما هي عاصمة جمهورية مصر العربية الحديثة اليوم؟", "options": ["A. أ", "B. ب", "C. ج", "D. د"]}`,
	})

	g := newTestGuard(DefaultConstraint())
	_, err := g.Load(path, schema.TaskExams)
	require.NoError(t, err)

	// Identical question: similarity 1.0 >= 0.7, rejected
	copyItem := schema.ExamItem{
		Question: "ما هي عاصمة جمهورية مصر العربية الحديثة اليوم؟",
		Options:  []string{"A. أ", "B. ب", "C. ج", "D. د"},
		Answer:   "A",
	}
	assert.False(t, g.Validate(copyItem))

	// Unrelated question passes
	fresh := schema.ExamItem{
		Question: "كم عدد كواكب المجموعة الشمسية المعروفة؟",
		Options:  []string{"A. أ", "B. ب", "C. ج", "D. د"},
		Answer:   "B",
	}
	assert.True(t, g.Validate(fresh))
}

func TestGuard_ValidateTrueWithoutSeeds(t *testing.T) {
	g := newTestGuard(DefaultConstraint())
	assert.True(t, g.Validate(schema.ExamItem{Question: "أي سؤال"}))
}

func TestGuard_ExportAudit(t *testing.T) {
	seedPath := writeSeedFile(t, []string{
		`{"question": "متى وقعت معركة حطين في التاريخ الإسلامي بالتحديد وما نتائجها على المنطقة؟", "options": ["A. أ", "B. ب", "C. ج", "D. د"]}`,
	})

	g := newTestGuard(DefaultConstraint())
	_, err := g.Load(seedPath, schema.TaskExams)
	require.NoError(t, err)

	auditPath := filepath.Join(t.TempDir(), "audit.json")
	require.NoError(t, g.ExportAudit(auditPath))

	data, err := os.ReadFile(auditPath)
	require.NoError(t, err)

	var doc struct {
		SeedCount   int `json:"seed_count"`
		Constraints struct {
			MaxSeeds                int     `json:"max_seeds"`
			MaxGenerationSimilarity float64 `json:"max_generation_similarity"`
		} `json:"constraints"`
		SeedsUsed []struct {
			Preview   string `json:"preview"`
			TopicHint string `json:"topic_hint"`
			Hash      string `json:"hash"`
		} `json:"seeds_used"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, 1, doc.SeedCount)
	assert.Equal(t, 10, doc.Constraints.MaxSeeds)
	assert.InDelta(t, 0.7, doc.Constraints.MaxGenerationSimilarity, 1e-9)
	require.Len(t, doc.SeedsUsed, 1)
	assert.Equal(t, "history", doc.SeedsUsed[0].TopicHint)
	assert.NotEmpty(t, doc.SeedsUsed[0].Hash)
	assert.LessOrEqual(t, len([]rune(doc.SeedsUsed[0].Preview)), 53, "preview is truncated")
}

func TestTopicHint(t *testing.T) {
	tests := []struct {
		question string
		want     string
	}{
		{"سؤال عن التاريخ القديم", "history"},
		{"ما هي الطاقة الحركية؟", "physics"},
		{"أين تقع سلسلة جبال الأطلس جغرافيا؟", "geography"},
		{"سؤال عام بدون كلمات مفتاحية", "general"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, topicHint(tt.question), tt.question)
	}
}

func TestTokenJaccard(t *testing.T) {
	a := tokenSet("المدرسة قريبة من المنزل")
	b := tokenSet("المدرسة قريبة جدا من المنزل")
	sim := tokenJaccard(a, b)
	assert.Greater(t, sim, 0.7)
	assert.Less(t, sim, 1.0)

	assert.Equal(t, 0.0, tokenJaccard(tokenSet(""), b))
	assert.Equal(t, 1.0, tokenJaccard(a, a))
}
