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
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/datasynth/cmd/datasynth/config"
	"github.com/AleutianAI/datasynth/services/synth/quality"
	"github.com/AleutianAI/datasynth/services/synth/schema"
	"github.com/AleutianAI/datasynth/services/synth/store"
)

func runQuality(cmd *cobra.Command, args []string) {
	lines, err := store.ReadLines(inputPath)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	qc := config.Global.Quality
	validator := quality.NewValidator(quality.ValidatorConfig{
		ArabicRatio: firstFloat(arabicRatio, qc.ArabicRatio),
		MinLen:      firstInt(minLen, qc.MinLen),
		MaxLen:      firstInt(maxLen, qc.MaxLen),
		DupShingle:  firstInt(dupShingle, qc.DupShingle),
		DupJaccard:  firstFloat(dupJaccard, qc.DupJaccard),
		SampleFlags: firstInt(sampleFlags, qc.SampleFlags),
	})
	report, flags := validator.Validate(lines)

	reportPath := reportJSONPath
	if reportPath == "" {
		reportPath = filepath.Join(config.Global.OutputDir, "quality_report.json")
	}
	if err := store.WriteJSON(reportPath, report); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}

	csvPath := flagCSVPath
	if csvPath == "" {
		csvPath = filepath.Join(config.Global.OutputDir, "flagged_samples.csv")
	}
	header, rows := quality.FlagCSVRows(flags)
	if err := store.WriteCSV(csvPath, header, rows); err != nil {
		log.Fatalf("Failed to write flagged samples: %v", err)
	}

	fmt.Printf("Quality report -> %s\n", reportPath)
	fmt.Printf("Flagged samples (%d rows) -> %s\n", len(rows), csvPath)
}

func runClean(cmd *cobra.Command, args []string) {
	task, err := schema.ParseTask(taskName)
	if err != nil {
		log.Fatalf("Invalid task: %v", err)
	}

	lines, err := store.ReadLines(inputPath)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	threshold := dedupThreshold
	if threshold == 0 {
		threshold = config.Global.Quality.DedupThreshold
	}
	kept, stats := quality.Clean(task, lines, threshold)

	out := outputPath
	if out == "" {
		out = filepath.Join(config.Global.OutputDir, fmt.Sprintf("%s_clean.jsonl", task))
	}
	items := make([]any, 0, len(kept))
	for _, it := range kept {
		items = append(items, it)
	}
	if err := store.WriteJSONL(out, items); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}

	fmt.Printf("Cleaned %d -> %d items (%d bad schema, %d bad length, %d low TTR, %d duplicates) -> %s\n",
		stats.Input, stats.Kept, stats.BadSchema, stats.BadLength, stats.LowTTR, stats.Duplicates, out)
}

func firstFloat(flag, fallback float64) float64 {
	if flag > 0 {
		return flag
	}
	return fallback
}

func firstInt(flag, fallback int) int {
	if flag > 0 {
		return flag
	}
	return fallback
}
