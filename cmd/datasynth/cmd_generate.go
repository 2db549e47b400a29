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
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/datasynth/cmd/datasynth/config"
	"github.com/AleutianAI/datasynth/services/llm"
	"github.com/AleutianAI/datasynth/services/synth/scheduler"
	"github.com/AleutianAI/datasynth/services/synth/schema"
	"github.com/AleutianAI/datasynth/services/synth/seed"
	"github.com/AleutianAI/datasynth/services/synth/store"
)

func runGenerate(cmd *cobra.Command, args []string) {
	task, err := schema.ParseTask(taskName)
	if err != nil {
		log.Fatalf("Invalid task: %v", err)
	}

	spec := modelSpec
	if spec == "" {
		spec = config.Global.Model
	}
	client, err := llm.NewClient(spec)
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	dist, err := parseAnswerDist(answerDist)
	if err != nil {
		log.Fatalf("Invalid --answer-dist: %v", err)
	}

	persona := ""
	if personaFile != "" {
		data, err := os.ReadFile(personaFile)
		if err != nil {
			log.Fatalf("Failed to read persona file: %v", err)
		}
		persona = string(data)
	}

	var guard *seed.Guard
	auditPath := ""
	if seedPath != "" {
		guard = seed.NewGuard(seed.DefaultConstraint(), nil)
		n, err := guard.Load(seedPath, task)
		if err != nil {
			log.Fatalf("Failed to load seeds: %v", err)
		}
		fmt.Printf("Loaded %d seed examples from %s\n", n, seedPath)
		auditPath = filepath.Join(config.Global.OutputDir, fmt.Sprintf("%s_seeds_audit.json", task))
	}

	gen := config.Global.Generation
	temp := temperature
	if temp == 0 {
		temp = gen.Temperature
	}
	tp := topP
	if tp == 0 {
		tp = gen.TopP
	}

	s, err := scheduler.New(scheduler.Config{
		Task:               task,
		NumSamples:         numSamples,
		TargetDistribution: dist,
		PersonaOverride:    persona,
		Temperature:        temp,
		TopP:               tp,
		MaxTotalAttempts:   maxAttempts,
		RequestsPerSecond:  gen.RequestsPerSecond,
		SeedAuditPath:      auditPath,
	}, client, guard, logger)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	result, err := s.Run(context.Background())
	if err != nil {
		log.Fatalf("Generation failed: %v", err)
	}

	out := outputPath
	if out == "" {
		out = filepath.Join(config.Global.OutputDir, fmt.Sprintf("%s_raw.jsonl", task))
	}
	if err := store.WriteJSONL(out, result.Items); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}

	if len(result.Failures) > 0 {
		errPath := filepath.Join(config.Global.OutputDir, fmt.Sprintf("%s_errors.jsonl", task))
		records := make([]any, 0, len(result.Failures))
		for _, f := range result.Failures {
			records = append(records, f)
		}
		if err := store.WriteJSONL(errPath, records); err != nil {
			log.Fatalf("Failed to write error records: %v", err)
		}
		fmt.Printf("Preserved %d unparseable responses -> %s\n", len(result.Failures), errPath)
	}

	fmt.Printf("Generated %d/%d samples -> %s (run %s)\n",
		len(result.Items), numSamples, out, result.RunID)
	if result.Incomplete {
		fmt.Printf("WARNING: attempt budget exhausted after %d attempts; batch is partial\n",
			result.State.Attempts)
	}
}

// parseAnswerDist parses "A=0.4,B=0.3" into letter shares.
func parseAnswerDist(s string) (map[string]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	dist := make(map[string]float64)
	for _, part := range strings.Split(s, ",") {
		letter, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			return nil, fmt.Errorf("malformed entry %q", part)
		}
		letter = strings.ToUpper(strings.TrimSpace(letter))
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed weight in %q: %w", part, err)
		}
		dist[letter] = v
	}
	return dist, nil
}
