package checklist

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pulmo-helper/internal/domain"
)

// SOAP sections in render order.
const (
	Subjective = "S"
	Objective  = "O"
	Assessment = "A"
	PlanPart   = "P"
)

// SOAPSections lists the sections in render order.
var SOAPSections = []string{Subjective, Objective, Assessment, PlanPart}

const snippetLimit = 140

// Snippet condenses a rule to "name: first advice line" for pasting into a note.
// The advice line is cut at 140 characters.
func Snippet(r domain.Rule) string {
	name := strings.TrimSpace(r.Name)
	advice := strings.TrimSpace(r.Advice)
	if advice == "" {
		return name
	}
	first := strings.TrimSpace(strings.SplitN(advice, "\n", 2)[0])
	if runes := []rune(first); len(runes) > snippetLimit {
		first = strings.TrimRight(string(runes[:snippetLimit]), " \t") + "…"
	}
	if name == "" {
		return first
	}
	return name + ": " + first
}

// Note holds the snippets of each SOAP section.
type Note struct {
	sections map[string][]string
}

// NewNote returns an empty note.
func NewNote() *Note {
	return &Note{sections: make(map[string][]string, len(SOAPSections))}
}

func checkSection(section string) error {
	for _, s := range SOAPSections {
		if s == section {
			return nil
		}
	}
	return domain.NewValidationError("section", "section must be one of S, O, A, P", section)
}

// Add appends text to a section.
func (n *Note) Add(section, text string) error {
	if err := checkSection(section); err != nil {
		return err
	}
	n.sections[section] = append(n.sections[section], text)
	return nil
}

// AddRule appends the snippet of r to a section.
func (n *Note) AddRule(section string, r domain.Rule) error {
	return n.Add(section, Snippet(r))
}

// Remove deletes the item at index i of a section.
func (n *Note) Remove(section string, i int) error {
	if err := checkSection(section); err != nil {
		return err
	}
	items := n.sections[section]
	if i < 0 || i >= len(items) {
		return fmt.Errorf("section %s has no item %d: %w", section, i, domain.ErrInvalidInput)
	}
	n.sections[section] = append(items[:i], items[i+1:]...)
	return nil
}

// Move swaps item i with its neighbour delta positions away. Moves past either
// end are ignored.
func (n *Note) Move(section string, i, delta int) error {
	if err := checkSection(section); err != nil {
		return err
	}
	items := n.sections[section]
	j := i + delta
	if i < 0 || i >= len(items) || j < 0 || j >= len(items) {
		return nil
	}
	items[i], items[j] = items[j], items[i]
	return nil
}

// Items returns a copy of a section's items.
func (n *Note) Items(section string) []string {
	return append([]string(nil), n.sections[section]...)
}

// Clear empties every section.
func (n *Note) Clear() {
	n.sections = make(map[string][]string, len(SOAPSections))
}

// Render prints every section header with its items as a bullet list.
func (n *Note) Render() string {
	parts := make([]string, 0, len(SOAPSections))
	for _, sec := range SOAPSections {
		var b strings.Builder
		b.WriteString(sec + ":\n")
		for i, item := range n.sections[sec] {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("- " + item)
		}
		parts = append(parts, strings.TrimRight(b.String(), " \t\r\n"))
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n")) + "\n"
}

var (
	whitespace  = regexp.MustCompile(`\s+`)
	diseaseKeys = []string{"copd", "결핵", "tb", "폐암", "lung cancer", "asthma", "천식", "ild", "interstitial"}
)

// MatchTemplate loosely matches a note template to a rule category. A blank
// template matches everything and a blank category matches nothing.
func MatchTemplate(template, category string) bool {
	if template == "" {
		return true
	}
	if category == "" {
		return false
	}
	t := strings.ToLower(strings.TrimSpace(template))
	c := strings.ToLower(strings.TrimSpace(category))
	if t == c {
		return true
	}

	all := true
	for _, tok := range whitespace.Split(t, -1) {
		if tok != "" && !strings.Contains(c, tok) {
			all = false
			break
		}
	}
	if all {
		return true
	}

	if strings.Contains(c, t) || strings.Contains(t, c) {
		return true
	}
	for _, key := range diseaseKeys {
		if strings.Contains(t, key) && strings.Contains(c, key) {
			return true
		}
	}
	return false
}

// RulesForTemplate keeps the rules whose category matches template.
func RulesForTemplate(rules []domain.Rule, template string) []domain.Rule {
	var out []domain.Rule
	for _, r := range rules {
		if MatchTemplate(template, r.Category) {
			out = append(out, r)
		}
	}
	return out
}
