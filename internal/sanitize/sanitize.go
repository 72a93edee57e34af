package sanitize

import (
	"regexp"
	"strings"
)

// Sanitizer strips platform markup (mentions, channel tags, custom emoji)
// from inbound text before it is used for history lookups or prompting.
type Sanitizer struct {
	patterns []*regexp.Regexp
}

// Chat platforms wrap mentions and tags in angle brackets,
// e.g. <@12345>, <#channel>, <:emoji:67890>.
var defaultPatterns = []string{
	`<[^>]+>`,
}

// New creates a sanitizer with the default markup patterns.
func New() *Sanitizer {
	s := &Sanitizer{}
	for _, p := range defaultPatterns {
		s.patterns = append(s.patterns, regexp.MustCompile(p))
	}
	return s
}

// Clean removes markup from text and trims surrounding whitespace.
func (s *Sanitizer) Clean(text string) string {
	for _, p := range s.patterns {
		text = p.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}
