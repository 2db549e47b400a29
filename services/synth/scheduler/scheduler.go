// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/datasynth/pkg/logging"
	"github.com/AleutianAI/datasynth/pkg/retry"
	"github.com/AleutianAI/datasynth/services/llm"
	"github.com/AleutianAI/datasynth/services/synth/prompts"
	"github.com/AleutianAI/datasynth/services/synth/schema"
	"github.com/AleutianAI/datasynth/services/synth/seed"
)

// ErrTooSimilar marks a generation rejected by the seed guard.
var ErrTooSimilar = errors.New("generated content too similar to seed data")

// attemptBudgetFactor sets the default total-attempt budget as a
// multiple of the requested batch size.
const attemptBudgetFactor = 10

// maxPacingJitter bounds the random delay added between calls.
const maxPacingJitter = 250 * time.Millisecond

// Config parameterizes one generation run.
type Config struct {
	// Task selects the item shape to generate.
	Task schema.Task

	// NumSamples is the batch size to produce.
	NumSamples int

	// TargetDistribution sets answer-letter shares for exam
	// generation. Empty means uniform.
	TargetDistribution map[string]float64

	// PersonaOverride replaces the task's default prompt template.
	PersonaOverride string

	// Temperature and TopP are passed through to the backend.
	// Zero values fall back to 0.7 and 0.95.
	Temperature float32
	TopP        float32

	// MaxTotalAttempts bounds LLM calls across the whole run so a
	// misbehaving backend cannot loop forever. Zero means
	// attemptBudgetFactor times NumSamples.
	MaxTotalAttempts int

	// RequestsPerSecond paces backend calls. Zero means 2.
	RequestsPerSecond float64

	// Retry configures per-item retry. Zero value means
	// retry.DefaultConfig().
	Retry retry.Config

	// SeedAuditPath, when set and a guard is active, receives the
	// seed audit artifact at the start of the run.
	SeedAuditPath string
}

// State tracks run progress: accepted items per letter and the total
// LLM attempts spent. It is an explicit value so callers can inspect
// partial progress after an incomplete run.
type State struct {
	Produced map[string]int
	Attempts int
}

// NewState returns a zeroed state covering all answer letters.
func NewState() State {
	produced := make(map[string]int, len(schema.AnswerLetters))
	for _, l := range schema.AnswerLetters {
		produced[l] = 0
	}
	return State{Produced: produced}
}

// Result is the outcome of one run.
type Result struct {
	// RunID uniquely identifies the run in logs and artifacts.
	RunID string

	// Items holds accepted items in acceptance order.
	Items []any

	// Failures holds raw-wrapped model output for attempts whose
	// final retry still failed to parse, preserved for the error
	// artifact instead of discarded.
	Failures []map[string]string

	// State is the final scheduler state.
	State State

	// Incomplete is true when the attempt budget ran out before the
	// batch filled.
	Incomplete bool
}

// Scheduler generates a quota-balanced batch of items.
//
// # Description
//
// Letters are visited cyclically in descending-quota order; filled
// letters are skipped. Every attempt builds the prompt (with seed
// style guidance when a guard is loaded), calls the backend through
// the retry helper, parses and validates the response, gates it
// against the seeds, and for exams remaps the answer onto the target
// letter. A total attempt budget turns a stuck run into a partial
// result instead of an endless loop.
//
// # Thread Safety
//
// A Scheduler must not be shared across goroutines; Run mutates the
// pacing and random state.
type Scheduler struct {
	config  Config
	client  llm.LLMClient
	guard   *seed.Guard
	logger  *logging.Logger
	limiter *rate.Limiter
	rng     *rand.Rand
}

// New creates a scheduler.
//
// Inputs:
//   - config: Run parameters; zero fields take defaults.
//   - client: Backend used for every generation call. Must not be nil.
//   - guard: Optional seed constraint guard; nil disables gating.
//   - logger: Optional logger; nil uses the package default.
func New(config Config, client llm.LLMClient, guard *seed.Guard, logger *logging.Logger) (*Scheduler, error) {
	if client == nil {
		return nil, errors.New("scheduler: nil LLM client")
	}
	if config.NumSamples <= 0 {
		return nil, fmt.Errorf("scheduler: invalid batch size %d", config.NumSamples)
	}
	if _, err := schema.ParseTask(string(config.Task)); err != nil {
		return nil, err
	}
	if config.Temperature == 0 {
		config.Temperature = 0.7
	}
	if config.TopP == 0 {
		config.TopP = 0.95
	}
	if config.MaxTotalAttempts <= 0 {
		config.MaxTotalAttempts = attemptBudgetFactor * config.NumSamples
	}
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 2.0
	}
	if config.Retry == (retry.Config{}) {
		config.Retry = retry.DefaultConfig()
	}
	if err := config.Retry.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Scheduler{
		config:  config,
		client:  client,
		guard:   guard,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Run executes the generation loop until the batch fills, the
// attempt budget runs out, or the context is canceled.
func (s *Scheduler) Run(ctx context.Context) (Result, error) {
	plan := Plan(s.config.TargetDistribution, s.config.NumSamples)
	order := plan.order()
	result := Result{RunID: uuid.NewString(), State: NewState()}

	guidance := ""
	if s.guard != nil && s.guard.Count() > 0 {
		guidance = s.guard.StyleGuidance()
		if s.config.SeedAuditPath != "" {
			if err := s.guard.ExportAudit(s.config.SeedAuditPath); err != nil {
				return result, fmt.Errorf("exporting seed audit: %w", err)
			}
			s.logger.Info("seed audit exported",
				"run_id", result.RunID, "path", s.config.SeedAuditPath)
		}
	}

	s.logger.Info("generation started",
		"run_id", result.RunID,
		"task", string(s.config.Task),
		"num_samples", s.config.NumSamples,
		"quotas", plan,
		"max_attempts", s.config.MaxTotalAttempts)

	idx := 0
	for len(result.Items) < s.config.NumSamples {
		if result.State.Attempts >= s.config.MaxTotalAttempts {
			result.Incomplete = true
			s.logger.Warn("attempt budget exhausted",
				"run_id", result.RunID,
				"accepted", len(result.Items),
				"attempts", result.State.Attempts)
			break
		}

		letter := order[idx%len(order)]
		idx++
		if result.State.Produced[letter] >= plan[letter] {
			continue
		}

		if err := s.pace(ctx); err != nil {
			return result, err
		}

		item, rawFail, attempts, err := s.generateOne(ctx, letter, guidance)
		result.State.Attempts += attempts
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			if rawFail != "" {
				result.Failures = append(result.Failures, schema.WrapRaw(rawFail))
			}
			s.logger.Warn("generation attempt failed",
				"run_id", result.RunID,
				"target_letter", letter,
				"error", err)
			continue
		}

		if exam, ok := item.(schema.ExamItem); ok && exam.Answer != letter {
			item = remapAnswer(exam, letter)
		}
		result.Items = append(result.Items, item)
		result.State.Produced[letter]++

		if len(result.Items)%10 == 0 {
			s.logger.Info("generation progress",
				"run_id", result.RunID,
				"accepted", len(result.Items),
				"requested", s.config.NumSamples)
		}
	}

	s.logger.Info("generation finished",
		"run_id", result.RunID,
		"accepted", len(result.Items),
		"requested", s.config.NumSamples,
		"attempts", result.State.Attempts,
		"incomplete", result.Incomplete)
	return result, nil
}

// generateOne performs one retried generation attempt for the target
// letter. It returns the accepted item, the raw model output when the
// final attempt failed to parse, and the number of LLM calls consumed.
func (s *Scheduler) generateOne(ctx context.Context, letter, guidance string) (any, string, int, error) {
	prompt, err := prompts.Build(s.config.Task, s.config.PersonaOverride, guidance, letter)
	if err != nil {
		return nil, "", 0, err
	}

	params := llm.GenerationParams{
		Temperature: &s.config.Temperature,
		TopP:        &s.config.TopP,
	}

	var item any
	var rawFail string
	res, err := retry.Do(ctx, s.config.Retry, func(ctx context.Context, attempt int) error {
		rawFail = ""
		raw, err := s.client.Generate(ctx, prompt, params)
		if err != nil {
			return err
		}
		parsed, err := schema.ParseItem(s.config.Task, raw)
		if err != nil {
			rawFail = raw
			return err
		}
		if s.guard != nil && !s.guard.Validate(parsed) {
			return ErrTooSimilar
		}
		item = parsed
		return nil
	})
	if err != nil {
		return nil, rawFail, res.Attempts, err
	}
	return item, "", res.Attempts, nil
}

// pace waits for the rate limiter plus a small random jitter so
// request timing does not form a fixed cadence. The jitter scales
// with the configured rate and stays negligible at high rates.
func (s *Scheduler) pace(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	bound := time.Duration(float64(time.Second) / (4 * s.config.RequestsPerSecond))
	if bound > maxPacingJitter {
		bound = maxPacingJitter
	}
	if bound <= 0 {
		return nil
	}
	jitter := time.Duration(s.rng.Int63n(int64(bound)))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(jitter):
		return nil
	}
}
