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
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	taskName       string
	numSamples     int
	modelSpec      string
	inputPath      string
	outputPath     string
	seedPath       string
	personaFile    string
	answerDist     string
	temperature    float32
	topP           float32
	maxAttempts    int
	reportJSONPath string
	flagCSVPath    string
	arabicRatio    float64
	minLen         int
	maxLen         int
	dupShingle     int
	dupJaccard     float64
	sampleFlags    int
	dedupThreshold float64
	syntheticPath  string
	realPath       string
	exportPersona  string
	exportBatchID  string

	rootCmd = &cobra.Command{
		Use:   "datasynth",
		Short: "A cli to generate and QA synthetic Arabic exam datasets",
		Long: `Datasynth generates quota-balanced synthetic Arabic items
				(exam questions, sentiment texts, grammar corrections) against an
				LLM backend and runs the quality pipeline over the results.`,
	}

	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Generate a batch of synthetic items with answer-quota balancing",
		Run:   runGenerate, // Defined in cmd_generate.go
	}

	cleanCmd = &cobra.Command{
		Use:   "clean",
		Short: "Validate, length-filter, and deduplicate a raw batch",
		Run:   runClean, // Defined in cmd_quality.go
	}

	qualityCmd = &cobra.Command{
		Use:   "quality",
		Short: "Run structural and distributional quality checks on a batch",
		Run:   runQuality, // Defined in cmd_quality.go
	}

	evaluateCmd = &cobra.Command{
		Use:   "evaluate",
		Short: "Compute per-task style statistics for a batch",
		Run:   runEvaluate, // Defined in cmd_evaluate.go
	}

	fidelityCmd = &cobra.Command{
		Use:   "fidelity",
		Short: "Compare a synthetic batch against real reference data",
		Run:   runFidelity, // Defined in cmd_evaluate.go
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Re-write a batch with task, persona, and batch-id metadata",
		Run:   runExport, // Defined in cmd_export.go
	}
)

// init runs when the Go program starts
func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&taskName, "task", "exams", "Task to generate: exams, sentiment, or grammar")
	generateCmd.Flags().IntVar(&numSamples, "num-samples", 10, "Number of items to generate")
	generateCmd.Flags().StringVar(&modelSpec, "model", "", "Backend spec ('mock' or 'openai:MODEL'); empty uses the config default")
	generateCmd.Flags().StringVar(&outputPath, "out", "", "Output JSONL path; empty derives <output_dir>/<task>_raw.jsonl")
	generateCmd.Flags().StringVar(&seedPath, "seed-file", "", "JSONL reference set for the seed constraint guard")
	generateCmd.Flags().StringVar(&personaFile, "persona-file", "", "File whose content replaces the task prompt template")
	generateCmd.Flags().StringVar(&answerDist, "answer-dist", "",
		"Target answer distribution, e.g. 'A=0.4,B=0.3,C=0.2,D=0.1'; empty is uniform")
	generateCmd.Flags().Float32Var(&temperature, "temperature", 0, "Sampling temperature; 0 uses the config default")
	generateCmd.Flags().Float32Var(&topP, "top-p", 0, "Nucleus sampling cutoff; 0 uses the config default")
	generateCmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "Total LLM attempt budget; 0 means 10x the batch size")

	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVar(&taskName, "task", "exams", "Task the batch belongs to")
	cleanCmd.Flags().StringVar(&inputPath, "input", "", "Raw batch JSONL path")
	cleanCmd.Flags().StringVar(&outputPath, "out", "", "Cleaned JSONL path; empty derives <output_dir>/<task>_clean.jsonl")
	cleanCmd.Flags().Float64Var(&dedupThreshold, "dedup-threshold", 0, "Normalized Levenshtein similarity that drops an item; 0 uses the config default")
	cleanCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(qualityCmd)
	qualityCmd.Flags().StringVar(&inputPath, "input", "", "Batch JSONL path")
	qualityCmd.Flags().StringVar(&reportJSONPath, "report-json", "", "Report path; empty derives <output_dir>/quality_report.json")
	qualityCmd.Flags().StringVar(&flagCSVPath, "flag-csv", "", "Flagged samples path; empty derives <output_dir>/flagged_samples.csv")
	qualityCmd.Flags().Float64Var(&arabicRatio, "arabic-ratio", 0, "Minimum Arabic character ratio; 0 uses the config default")
	qualityCmd.Flags().IntVar(&minLen, "min-len", 0, "Minimum question length in runes; 0 uses the config default")
	qualityCmd.Flags().IntVar(&maxLen, "max-len", 0, "Maximum question length in runes; 0 uses the config default")
	qualityCmd.Flags().IntVar(&dupShingle, "dup-shingle", 0, "Character n-gram width for duplicate detection; 0 uses the config default")
	qualityCmd.Flags().Float64Var(&dupJaccard, "dup-jaccard", 0, "Jaccard threshold for duplicate clusters; 0 uses the config default")
	qualityCmd.Flags().IntVar(&sampleFlags, "sample-flags", 0, "Maximum flagged samples to export; 0 uses the config default")
	qualityCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringVar(&taskName, "task", "exams", "Task the batch belongs to")
	evaluateCmd.Flags().StringVar(&inputPath, "input", "", "Batch JSONL path")
	evaluateCmd.Flags().StringVar(&reportJSONPath, "report-json", "", "Optional report path; empty prints to stdout")
	evaluateCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(fidelityCmd)
	fidelityCmd.Flags().StringVar(&syntheticPath, "synthetic", "", "Synthetic batch JSONL path")
	fidelityCmd.Flags().StringVar(&realPath, "real", "", "Real reference JSONL path")
	fidelityCmd.Flags().StringVar(&reportJSONPath, "report-json", "", "Optional report path; empty prints to stdout")
	fidelityCmd.MarkFlagRequired("synthetic")
	fidelityCmd.MarkFlagRequired("real")

	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&taskName, "task", "exams", "Task recorded in the export metadata")
	exportCmd.Flags().StringVar(&inputPath, "input", "", "Batch JSONL path")
	exportCmd.Flags().StringVar(&outputPath, "out", "", "Export JSONL path; empty derives <output_dir>/<task>_export.jsonl")
	exportCmd.Flags().StringVar(&exportPersona, "persona", "", "Persona recorded in the export metadata")
	exportCmd.Flags().StringVar(&exportBatchID, "batch-id", "", "Batch id; empty generates a fresh UUID")
	exportCmd.MarkFlagRequired("input")
}
