package rules

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/pulmo-helper/internal/domain"
)

// Entry pairs a rule with the handle the repository issued for it.
type Entry struct {
	Handle Handle      `json:"handle"`
	Rule   domain.Rule `json:"rule"`
}

// View is an ordered, derived listing of entries. Index i of a view maps back to
// its owning record through HandleAt.
type View []Entry

// HandleAt returns the handle displayed at position i.
func (v View) HandleAt(i int) (Handle, bool) {
	if i < 0 || i >= len(v) {
		return "", false
	}
	return v[i].Handle, true
}

// Rules returns the rules of the view in order.
func (v View) Rules() []domain.Rule {
	out := make([]domain.Rule, len(v))
	for i, e := range v {
		out[i] = e.Rule.Clone()
	}
	return out
}

// caseFold folds case and leaves the code point sequence otherwise alone. A
// Caser is not safe for concurrent use, so each call builds its own.
func caseFold(s string) string {
	return cases.Fold().String(s)
}

// fold also composes to NFC so decomposed Hangul from some spreadsheet exports
// compares equal to typed text.
func fold(s string) string {
	return caseFold(norm.NFC.String(s))
}

// containsFolded reports whether text contains query ignoring case. It matches
// on the raw sequence or on the composed one, so a query that splits a
// decomposed character still finds it.
func containsFolded(text, query string) bool {
	return strings.Contains(caseFold(text), caseFold(query)) ||
		strings.Contains(fold(text), fold(query))
}

// Categories returns the "all" sentinel followed by the distinct categories,
// ordered case-insensitively.
func Categories(entries []Entry) []string {
	seen := make(map[string]struct{}, len(entries))
	var cats []string
	for _, e := range entries {
		if _, ok := seen[e.Rule.Category]; ok {
			continue
		}
		seen[e.Rule.Category] = struct{}{}
		cats = append(cats, e.Rule.Category)
	}
	sort.SliceStable(cats, func(i, j int) bool {
		return strings.ToLower(cats[i]) < strings.ToLower(cats[j])
	})
	return append([]string{domain.AllCategories}, cats...)
}

// FilterByCategory returns a copy of every entry for the sentinel or a blank
// category and otherwise the entries whose category matches exactly.
func FilterByCategory(entries []Entry, category string) []Entry {
	if category == "" || category == domain.AllCategories {
		return append([]Entry(nil), entries...)
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Rule.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// Search keeps entries whose name, keywords and advice contain query,
// case-insensitively. A blank query returns entries as given.
func Search(entries []Entry, query string) []Entry {
	q := strings.TrimSpace(query)
	if q == "" {
		return entries
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if containsFolded(searchText(e.Rule), q) {
			out = append(out, e)
		}
	}
	return out
}

func searchText(r domain.Rule) string {
	return r.Name + " " + strings.Join(r.Keywords, " ") + " " + r.Advice
}

// SortByName returns a copy of entries ordered by name, case-insensitively.
// Equal names keep their relative order.
func SortByName(entries []Entry) View {
	out := append(View(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Rule.Name) < strings.ToLower(out[j].Rule.Name)
	})
	return out
}

// Query applies the category filter, then the search, then the name ordering.
func Query(entries []Entry, category, query string) View {
	return SortByName(Search(FilterByCategory(entries, category), query))
}

// FindByName resolves a rule name against a view: an exact trimmed match wins,
// otherwise the first entry whose name contains name case-insensitively.
func FindByName(view View, name string) (Entry, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Entry{}, false
	}
	for _, e := range view {
		if strings.TrimSpace(e.Rule.Name) == name {
			return e, true
		}
	}
	for _, e := range view {
		if containsFolded(e.Rule.Name, name) {
			return e, true
		}
	}
	return Entry{}, false
}

// HasName reports whether any entry carries exactly the trimmed name.
func HasName(entries []Entry, name string) bool {
	name = strings.TrimSpace(name)
	for _, e := range entries {
		if strings.TrimSpace(e.Rule.Name) == name {
			return true
		}
	}
	return false
}
