// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store persists pipeline artifacts as line-delimited JSON
// and tabular CSV.
package store

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Line is one row of a JSONL file.
//
// Idx is 1-based, matching how quality reports reference items.
// ParseErr marks lines that failed to decode; they are kept so the
// validator can count and flag them instead of dropping them.
type Line struct {
	Idx      int
	Obj      map[string]any
	ParseErr bool
}

// ReadLines reads a JSONL file into generic rows.
//
// Blank lines are skipped but still advance the index, so indices
// stay stable against the raw file.
func ReadLines(path string) ([]Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var lines []Line
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	idx := 0
	for scanner.Scan() {
		idx++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil {
			lines = append(lines, Line{Idx: idx, ParseErr: true})
			continue
		}
		lines = append(lines, Line{Idx: idx, Obj: obj})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}

// WriteJSONL writes items to a JSONL file, creating parent
// directories as needed.
func WriteJSONL(path string, items []any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("encoding item: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return nil
}

// WriteJSON writes one document as indented JSON (reports, audits).
func WriteJSON(path string, doc any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling document: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0640); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes rows under the given header, creating parent
// directories as needed.
func WriteCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// ExportMeta tags every exported row with dataset metadata.
type ExportMeta struct {
	Task    string
	Persona string
	BatchID string
}

// Export re-writes an item stream with export metadata attached.
//
// An empty BatchID gets a fresh UUID so every export run is traceable
// back to its batch.
func Export(inPath, outPath string, meta ExportMeta) (int, error) {
	lines, err := ReadLines(inPath)
	if err != nil {
		return 0, err
	}
	if meta.BatchID == "" {
		meta.BatchID = uuid.NewString()
	}

	items := make([]any, 0, len(lines))
	for _, line := range lines {
		if line.ParseErr {
			continue
		}
		line.Obj["_task"] = meta.Task
		if meta.Persona != "" {
			line.Obj["_persona"] = meta.Persona
		}
		line.Obj["_batch_id"] = meta.BatchID
		items = append(items, line.Obj)
	}
	if err := WriteJSONL(outPath, items); err != nil {
		return 0, err
	}
	return len(items), nil
}
