// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package seed

import "strings"

// topicKeyword maps an Arabic keyword to a heuristic topic tag.
// Ordered: the first matching keyword wins.
type topicKeyword struct {
	keyword string
	topic   string
}

var topicKeywords = []topicKeyword{
	{"فيزياء", "physics"},
	{"كهرباء", "physics"},
	{"طاقة", "physics"},
	{"أحياء", "biology"},
	{"خلية", "biology"},
	{"كروموسوم", "biology"},
	{"علوم", "science"},
	{"تجربة", "science"},
	{"دين", "islamic"},
	{"القرآن", "islamic"},
	{"حديث", "islamic"},
	{"تاريخ", "history"},
	{"جغراف", "geography"},
	{"أدب", "literature"},
	{"شعر", "literature"},
	{"مجتمع", "social"},
	{"اقتصاد", "social"},
}

// topicHint guesses a topic tag from question text by keyword
// matching. Best-effort, used only for audit display; defaults to
// "general" when nothing matches.
func topicHint(question string) string {
	q := strings.ToLower(question)
	for _, tk := range topicKeywords {
		if strings.Contains(q, tk.keyword) {
			return tk.topic
		}
	}
	return "general"
}
