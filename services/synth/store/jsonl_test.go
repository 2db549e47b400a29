// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0640))
	return path
}

func TestReadLines(t *testing.T) {
	path := writeFile(t, `{"question": "q1"}
not json at all

{"question": "q2"}
`)

	lines, err := ReadLines(path)
	require.NoError(t, err)
	require.Len(t, lines, 3, "blank line skipped, bad line kept")

	assert.Equal(t, 1, lines[0].Idx)
	assert.Equal(t, "q1", lines[0].Obj["question"])

	assert.Equal(t, 2, lines[1].Idx)
	assert.True(t, lines[1].ParseErr)

	// Blank line advanced the index
	assert.Equal(t, 4, lines[2].Idx)
	assert.Equal(t, "q2", lines[2].Obj["question"])
}

func TestReadLines_MissingFile(t *testing.T) {
	_, err := ReadLines(filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.Error(t, err)
}

func TestWriteJSONL_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "out.jsonl")
	items := []any{
		map[string]any{"question": "ما عاصمة مصر؟"},
		map[string]any{"question": "من كتب المتنبي؟"},
	}
	require.NoError(t, WriteJSONL(path, items))

	lines, err := ReadLines(path)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "ما عاصمة مصر؟", lines[0].Obj["question"])
}

func TestWriteJSONL_NoHTMLEscaping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	require.NoError(t, WriteJSONL(path, []any{map[string]any{"q": "a < b"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "a < b")
	assert.NotContains(t, string(data), `<`)
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.csv")
	err := WriteCSV(path, []string{"idx", "issue", "preview"}, [][]string{
		{"3", "too_short(4)", "نص"},
	})
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"idx", "issue", "preview"}, rows[0])
	assert.Equal(t, "too_short(4)", rows[1][1])
}

func TestExport_AttachesMetadata(t *testing.T) {
	in := writeFile(t, `{"question": "q1"}
{"question": "q2"}
`)
	out := filepath.Join(t.TempDir(), "exported.jsonl")

	n, err := Export(in, out, ExportMeta{Task: "exams", Persona: "teacher"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines, err := ReadLines(out)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "exams", lines[0].Obj["_task"])
	assert.Equal(t, "teacher", lines[0].Obj["_persona"])

	batch, ok := lines[0].Obj["_batch_id"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, batch)
	assert.Equal(t, batch, lines[1].Obj["_batch_id"], "one batch id per export run")
}
