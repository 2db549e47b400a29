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
	"github.com/AleutianAI/datasynth/services/synth/schema"
	"github.com/AleutianAI/datasynth/services/synth/store"
)

func runExport(cmd *cobra.Command, args []string) {
	task, err := schema.ParseTask(taskName)
	if err != nil {
		log.Fatalf("Invalid task: %v", err)
	}

	out := outputPath
	if out == "" {
		out = filepath.Join(config.Global.OutputDir, fmt.Sprintf("%s_export.jsonl", task))
	}

	meta := store.ExportMeta{
		Task:    string(task),
		Persona: exportPersona,
		BatchID: exportBatchID,
	}
	n, err := store.Export(inputPath, out, meta)
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	fmt.Printf("Exported %d records to %s\n", n, out)
}
