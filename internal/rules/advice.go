package rules

import (
	"regexp"
	"strings"
)

var (
	sourceLinePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i).*ILD\s*진료지침.*\n?`),
		regexp.MustCompile(`(?i).*ILD\+.*진료지침.*\(2023.*\).*?\n?`),
	}
	blankRun = regexp.MustCompile(`\n{3,}`)
)

// StripSources removes guideline citation lines from advice before display and
// collapses runs of blank lines.
func StripSources(advice string) string {
	if advice == "" {
		return advice
	}
	for _, p := range sourceLinePatterns {
		advice = p.ReplaceAllString(advice, "")
	}
	return strings.TrimSpace(blankRun.ReplaceAllString(advice, "\n\n"))
}
