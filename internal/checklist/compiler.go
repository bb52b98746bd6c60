// Package checklist turns outpatient checklist answers into note text and
// assembles SOAP notes from rule snippets.
package checklist

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/pulmo-helper/internal/domain"
)

// Trailer closes every compiled note.
const Trailer = "환자 P/E 및 검사 결과 확인하였으며, 검사 결과 설명하고, 경과 악화 시 병원 내원할 것 설명함"

// Value is a tri-state checklist answer.
type Value string

// Answers. The zero value is Unanswered.
const (
	Unanswered Value = ""
	Yes        Value = "yes"
	No         Value = "no"
)

// ParseValue accepts yes/no in a few spellings; anything else is Unanswered.
func ParseValue(s string) Value {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "+", "1", "true":
		return Yes
	case "no", "n", "-", "0", "false":
		return No
	default:
		return Unanswered
	}
}

// Selection is a snapshot of checklist answers keyed by item label.
type Selection struct {
	Items    map[string]Value `json:"items"`
	MMRC     *int             `json:"mmrc,omitempty"`
	FollowUp string           `json:"follow_up,omitempty"`
}

// Validate checks the single-choice fields.
func (s Selection) Validate() error {
	if s.MMRC != nil && (*s.MMRC < 0 || *s.MMRC > 4) {
		return domain.NewValidationError("mmrc", "mMRC must be between 0 and 4", *s.MMRC)
	}
	if fu := strings.TrimSpace(s.FollowUp); fu != "" && !slices.Contains(FollowUpChoices, fu) {
		return domain.NewValidationError("follow_up", "unknown follow-up interval", s.FollowUp)
	}
	return nil
}

var koreanGloss = regexp.MustCompile(`\s*\([^)]*[가-힣][^)]*\)`)

// CleanLabel removes parenthetical glosses that contain Hangul and trims the rest.
func CleanLabel(label string) string {
	return strings.TrimSpace(koreanGloss.ReplaceAllString(label, ""))
}

// SectionLine renders the answered items of one section, or "" when none are.
func SectionLine(sec Section, sel Selection) string {
	var chosen []string
	for _, item := range sec.Items {
		v := sel.Items[item]
		if v != Yes && v != No {
			continue
		}
		cleaned := CleanLabel(item)
		if cleaned == "" {
			continue
		}
		if v == Yes {
			chosen = append(chosen, cleaned+" +")
		} else {
			chosen = append(chosen, cleaned+" -")
		}
	}
	if sec.MMRC && sel.MMRC != nil && *sel.MMRC >= 0 && *sel.MMRC <= 4 {
		chosen = append(chosen, fmt.Sprintf("mMRC %d", *sel.MMRC))
	}
	if fu := strings.TrimSpace(sel.FollowUp); sec.FollowUp && fu != "" {
		chosen = append(chosen, "OPD f/u "+fu)
	}
	return strings.Join(chosen, ", ")
}

// Compile renders sections in order, one line per answered section followed by
// a blank line, and always ends with the trailer.
func Compile(sections []Section, sel Selection) string {
	var lines []string
	for _, sec := range sections {
		if line := SectionLine(sec, sel); line != "" {
			lines = append(lines, line, "")
		}
	}
	base := strings.TrimRight(strings.Join(lines, "\n"), " \t\r\n")
	if base == "" {
		return Trailer + "\n"
	}
	return base + "\n\n" + Trailer + "\n"
}

// CompileTemplate compiles the sections of a named template.
func CompileTemplate(template string, sel Selection) string {
	return Compile(SectionsFor(template), sel)
}
