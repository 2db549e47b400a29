// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package prompts holds the generation prompt templates.
package prompts

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/datasynth/services/synth/schema"
)

// targetLetterPlaceholder is substituted rather than rendered through
// a template engine: the surrounding JSON braces would otherwise need
// escaping everywhere.
const targetLetterPlaceholder = "{target_answer_letter}"

const ExamsTeacherPrompt = `[Role: Experienced Arabic high school teacher]
Write a multiple-choice exam question in Arabic for a high school subject.
Subjects: history, science, mathematics, literature, or geography (rotate for diversity).

Constraints:
- Question length: 15-35 words, must be a complete sentence in academic style
- Use varied and academic vocabulary; include at least one subject-specific term
- Avoid repetitive phrasing and simple factual recall questions
- Options must be concise, plausible, and semantically distinct
- At least one option should represent a common misconception
- At least one option should be a near-miss (close but incorrect)
- The correct answer MUST be letter {target_answer_letter}
- Question style should resemble real exam papers, with some requiring reasoning or comparison, not only recall
Return ONLY a valid JSON object:
{
  "question": "...",
  "options": ["A. ...", "B. ...", "C. ...", "D. ..."],
  "answer": "{target_answer_letter}"
}`

const SentimentPrompt = `[Role: Arabic Twitter user / restaurant customer]
Generate a short text (30-50 words) expressing a clear sentiment (positive, negative, or neutral).
Label the sentiment explicitly.
Return ONLY a valid JSON object:
{
  "text": "...",
  "sentiment": "positive | negative | neutral"
}`

const GrammarQAPrompt = `[Role: Arabic learner]
Write a sentence with one or more grammar mistakes.

[Role: Arabic teacher]
Correct the sentence and explain the mistake.
Return ONLY a valid JSON object:
{
  "input": "...(incorrect sentence)",
  "correction": "...(corrected sentence)",
  "explanation": "..."
}`

// Build renders the prompt for one generation attempt.
//
// Inputs:
//   - task: The generation task.
//   - personaOverride: Optional replacement for the whole template.
//   - styleGuidance: Optional style prefix from the seed guard.
//   - targetLetter: Target answer letter for exam generation.
//
// Outputs:
//   - string: The fully rendered prompt.
//   - error: Non-nil for an unknown task.
func Build(task schema.Task, personaOverride, styleGuidance, targetLetter string) (string, error) {
	var base string
	switch task {
	case schema.TaskExams:
		tmpl := ExamsTeacherPrompt
		if personaOverride != "" {
			tmpl = personaOverride
		}
		if targetLetter == "" {
			targetLetter = "A"
		}
		base = strings.ReplaceAll(tmpl, targetLetterPlaceholder, targetLetter)
	case schema.TaskSentiment:
		base = SentimentPrompt
		if personaOverride != "" {
			base = personaOverride
		}
	case schema.TaskGrammar:
		base = GrammarQAPrompt
		if personaOverride != "" {
			base = personaOverride
		}
	default:
		return "", fmt.Errorf("%w: %q", schema.ErrUnknownTask, task)
	}

	if styleGuidance != "" {
		base = styleGuidance + "\n\n" + base
	}
	return base, nil
}
