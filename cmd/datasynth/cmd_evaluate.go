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
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/datasynth/services/synth/fidelity"
	"github.com/AleutianAI/datasynth/services/synth/schema"
	"github.com/AleutianAI/datasynth/services/synth/store"
)

// fidelityDoc bundles the three comparison views into one artifact.
type fidelityDoc struct {
	Fidelity fidelity.Report        `json:"fidelity"`
	Utility  fidelity.UtilityReport `json:"utility"`
	Privacy  fidelity.PrivacyReport `json:"privacy"`
}

func runEvaluate(cmd *cobra.Command, args []string) {
	task, err := schema.ParseTask(taskName)
	if err != nil {
		log.Fatalf("Invalid task: %v", err)
	}

	items, err := loadItems(inputPath)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	report, err := fidelity.EvaluateStyle(task, items)
	if err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}
	emitReport(report, "Style report")
}

func runFidelity(cmd *cobra.Command, args []string) {
	synthetic, err := loadItems(syntheticPath)
	if err != nil {
		log.Fatalf("Failed to read synthetic batch: %v", err)
	}
	real, err := loadItems(realPath)
	if err != nil {
		log.Fatalf("Failed to read real data: %v", err)
	}

	doc := fidelityDoc{
		Fidelity: fidelity.Check(synthetic, real),
		Utility:  fidelity.Utility(synthetic, real),
		Privacy:  fidelity.Privacy(synthetic, real),
	}
	emitReport(doc, "Fidelity report")
}

// loadItems reads a JSONL batch, unwrapping request records to their
// synthetic payload and skipping unparseable lines.
func loadItems(path string) ([]map[string]any, error) {
	lines, err := store.ReadLines(path)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		if line.ParseErr {
			continue
		}
		item := line.Obj
		if syn, ok := item["synthetic"].(map[string]any); ok {
			item = syn
		}
		items = append(items, item)
	}
	return items, nil
}

// emitReport writes the report to --report-json when set, otherwise
// pretty-prints it to stdout.
func emitReport(doc any, label string) {
	if reportJSONPath != "" {
		if err := store.WriteJSON(reportJSONPath, doc); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
		fmt.Printf("%s -> %s\n", label, reportJSONPath)
		return
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		log.Fatalf("Failed to render report: %v", err)
	}
	fmt.Println(string(data))
}
