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
	"fmt"
	"strings"

	"github.com/AleutianAI/datasynth/services/synth/schema"
)

// remapAnswer rebinds an exam item's correct option to the target
// letter.
//
// # Description
//
// Options are expected as "L. text". The text bound to the stated
// correct letter moves to the target letter; the remaining texts keep
// their relative order on the remaining letters. The answer field
// becomes the target letter. Items whose options cannot be parsed,
// or whose stated answer matches no option, come back unchanged.
func remapAnswer(item schema.ExamItem, target string) schema.ExamItem {
	answer := strings.TrimSpace(item.Answer)

	type option struct {
		letter string
		text   string
	}
	parsed := make([]option, 0, len(item.Options))
	correctIdx := -1
	for i, opt := range item.Options {
		letter, text, found := strings.Cut(opt, ".")
		if !found {
			return item
		}
		letter = strings.TrimSpace(letter)
		text = strings.TrimSpace(text)
		parsed = append(parsed, option{letter: letter, text: text})
		if letter == answer && correctIdx < 0 {
			correctIdx = i
		}
	}
	if correctIdx < 0 {
		return item
	}

	remaining := make([]string, 0, len(schema.AnswerLetters)-1)
	for _, l := range schema.AnswerLetters {
		if l != target {
			remaining = append(remaining, l)
		}
	}

	// Index-based skip so distractors sharing the correct option's
	// text survive the rebuild.
	newOptions := []string{fmt.Sprintf("%s. %s", target, parsed[correctIdx].text)}
	for i, opt := range parsed {
		if i == correctIdx {
			continue
		}
		newOptions = append(newOptions, fmt.Sprintf("%s. %s", remaining[0], opt.text))
		remaining = remaining[1:]
	}

	return schema.ExamItem{
		Question: item.Question,
		Options:  newOptions,
		Answer:   target,
		Notes:    item.Notes,
	}
}
