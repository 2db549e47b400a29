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

type DatasynthConfig struct {
	// Model is the default backend spec, e.g. "mock" or
	// "openai:gpt-4o-mini". Flags override it per command.
	Model string `yaml:"model"`

	// OutputDir is where artifacts land unless a flag says otherwise.
	OutputDir string `yaml:"output_dir"`

	Logging    LoggingConfig    `yaml:"logging"`
	Generation GenerationConfig `yaml:"generation"`
	Quality    QualityConfig    `yaml:"quality"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
	JSON  bool   `yaml:"json"`
}

type GenerationConfig struct {
	Temperature       float32 `yaml:"temperature"`
	TopP              float32 `yaml:"top_p"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

type QualityConfig struct {
	ArabicRatio    float64 `yaml:"arabic_ratio"`
	MinLen         int     `yaml:"min_len"`
	MaxLen         int     `yaml:"max_len"`
	DupShingle     int     `yaml:"dup_shingle"`
	DupJaccard     float64 `yaml:"dup_jaccard"`
	SampleFlags    int     `yaml:"sample_flags"`
	DedupThreshold float64 `yaml:"dedup_threshold"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() DatasynthConfig {
	return DatasynthConfig{
		Model:     "mock",
		OutputDir: "outputs",
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "~/.datasynth/logs",
		},
		Generation: GenerationConfig{
			Temperature:       0.7,
			TopP:              0.95,
			RequestsPerSecond: 2.0,
		},
		Quality: QualityConfig{
			ArabicRatio:    0.90,
			MinLen:         10,
			MaxLen:         600,
			DupShingle:     5,
			DupJaccard:     0.90,
			SampleFlags:    200,
			DedupThreshold: 0.93,
		},
	}
}
