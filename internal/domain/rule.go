package domain

import "strings"

// AllCategories is the category sentinel meaning "no category filter".
const AllCategories = "전체"

// Rule is one category/name/keywords/advice record of the guidance table.
type Rule struct {
	Category string   `json:"category"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
	Advice   string   `json:"advice"`
}

// Clone returns a deep copy so callers never share the keyword slice.
func (r Rule) Clone() Rule {
	out := r
	if r.Keywords != nil {
		out.Keywords = append([]string(nil), r.Keywords...)
	}
	return out
}

// Validate checks that category and name are non-empty after trimming.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.Category) == "" {
		return NewValidationError("category", "category is required", r.Category)
	}
	if strings.TrimSpace(r.Name) == "" {
		return NewValidationError("name", "name is required", r.Name)
	}
	return nil
}

// Label renders the rule the way rule lists show it.
func (r Rule) Label() string {
	return "[" + r.Category + "] " + r.Name
}

// ParseKeywords splits a comma separated cell into trimmed non-empty tokens.
func ParseKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinKeywords is the inverse of ParseKeywords for storage.
func JoinKeywords(keywords []string) string {
	return strings.Join(keywords, ",")
}
