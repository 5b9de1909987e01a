package models

import (
	"regexp"
	"strings"
)

var (
	questionPunctuation = regexp.MustCompile(`[?!.]+`)
	questionWhitespace  = regexp.MustCompile(`\s+`)
)

// Question is a user's free-text question in raw and normalized form.
type Question struct {
	Raw        string
	Normalized string
}

// NewQuestion trims raw and derives its normalized form.
func NewQuestion(raw string) Question {
	raw = strings.TrimSpace(raw)
	return Question{Raw: raw, Normalized: NormalizeQuestion(raw)}
}

// IsEmpty reports whether the question has no content after trimming.
func (q Question) IsEmpty() bool {
	return q.Raw == ""
}

// NormalizeQuestion lowercases s, strips ? ! and . characters and collapses
// runs of whitespace to a single space.
func NormalizeQuestion(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = questionPunctuation.ReplaceAllString(s, "")
	return questionWhitespace.ReplaceAllString(s, " ")
}
