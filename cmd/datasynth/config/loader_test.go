// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_CreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "datasynth.yaml")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	// The file now exists and a second load sees the same content.
	_, err = os.Stat(path)
	require.NoError(t, err)
	again, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datasynth.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: openai:gpt-4o-mini\n"), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "openai:gpt-4o-mini", cfg.Model)
	// Unset sections fall back to defaults.
	assert.Equal(t, DefaultConfig().Quality, cfg.Quality)
	assert.Equal(t, DefaultConfig().Generation, cfg.Generation)
}

func TestLoadFrom_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datasynth.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: [unclosed\n"), 0o600))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}
