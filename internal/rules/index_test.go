package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"

	"github.com/pulmo-helper/internal/domain"
)

func sampleEntries() []Entry {
	return toEntries([]domain.Rule{
		{Category: "ILD", Name: "IPF 진단 치료", Keywords: []string{"nintedanib", "pirfenidone"}, Advice: "항섬유화제 고려"},
		{Category: "copd", Name: "GOLD group E", Keywords: []string{"LABA", "LAMA"}, Advice: "triple therapy"},
		{Category: "ILD", Name: "HP 진단 치료", Keywords: []string{"antigen"}, Advice: "Antigen avoidance"},
		{Category: "Asthma", Name: "asthma step 4", Advice: "medium dose ICS-LABA"},
		{Category: "폐암", Name: "Stage IA1", Advice: "수술적 절제"},
	})
}

func names(v []Entry) []string {
	out := make([]string, len(v))
	for i, e := range v {
		out[i] = e.Rule.Name
	}
	return out
}

func TestCategories(t *testing.T) {
	cats := Categories(sampleEntries())
	assert.Equal(t, []string{domain.AllCategories, "Asthma", "copd", "ILD", "폐암"}, cats)

	assert.Equal(t, []string{domain.AllCategories}, Categories(nil))
}

func TestFilterByCategory(t *testing.T) {
	entries := sampleEntries()

	t.Run("sentinel returns everything", func(t *testing.T) {
		got := FilterByCategory(entries, domain.AllCategories)
		assert.Len(t, got, len(entries))
	})

	t.Run("blank returns everything", func(t *testing.T) {
		assert.Len(t, FilterByCategory(entries, ""), len(entries))
	})

	t.Run("exact case-sensitive match", func(t *testing.T) {
		assert.Equal(t, []string{"IPF 진단 치료", "HP 진단 치료"}, names(FilterByCategory(entries, "ILD")))
		assert.Empty(t, FilterByCategory(entries, "ild"))
		assert.Empty(t, FilterByCategory(entries, "COPD"))
	})

	t.Run("sentinel result is a copy", func(t *testing.T) {
		got := FilterByCategory(entries, domain.AllCategories)
		got[0].Rule.Name = "changed"
		assert.Equal(t, "IPF 진단 치료", entries[0].Rule.Name)
	})
}

func TestSearch(t *testing.T) {
	entries := sampleEntries()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"matches name", "gold", []string{"GOLD group E"}},
		{"matches keyword case-insensitively", "lama", []string{"GOLD group E"}},
		{"matches advice", "AVOIDANCE", []string{"HP 진단 치료"}},
		{"matches Hangul", "진단", []string{"IPF 진단 치료", "HP 진단 치료"}},
		{"query is trimmed", "  ics-laba ", []string{"asthma step 4"}},
		{"no match", "sarcoidosis", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(Search(entries, tt.query)))
		})
	}

	t.Run("blank query returns input", func(t *testing.T) {
		got := Search(entries, "   ")
		assert.Equal(t, entries, got)
	})

	t.Run("decomposed Hangul matches composed query", func(t *testing.T) {
		decomposed := toEntries([]domain.Rule{{Category: "ILD", Name: norm.NFD.String("진단"), Advice: ""}})
		assert.Len(t, Search(decomposed, "진단"), 1)
	})
}

func TestSearchFindsAnyNameSubstring(t *testing.T) {
	entries := append(sampleEntries(), toEntries([]domain.Rule{
		{Category: "etc", Name: "Cafe\u0301 rule", Advice: "decomposed accent"},
	})...)
	for _, e := range entries {
		runes := []rune(e.Rule.Name)
		for i := 0; i < len(runes); i++ {
			for j := i + 1; j <= len(runes); j++ {
				sub := string(runes[i:j])
				if len([]rune(sub)) > 0 && sub != " " {
					assert.Contains(t, names(Search(entries, sub)), e.Rule.Name, "query %q", sub)
				}
			}
		}
	}
}

func TestSearchDecomposedName(t *testing.T) {
	entries := toEntries([]domain.Rule{{Category: "etc", Name: "Cafe\u0301 rule"}})

	for _, q := range []string{"Cafe", "cafe", "\u0301 r", "Caf\u00e9", "CAFE\u0301 RULE"} {
		assert.Len(t, Query(entries, "", q), 1, "query %q", q)
	}
	assert.Empty(t, Query(entries, "", "Cafes"))

	e, ok := FindByName(SortByName(entries), "caf\u00e9")
	require.True(t, ok)
	assert.Equal(t, "Cafe\u0301 rule", e.Rule.Name)
}

func TestSortByName(t *testing.T) {
	v := SortByName(sampleEntries())
	assert.Equal(t, []string{"asthma step 4", "GOLD group E", "HP 진단 치료", "IPF 진단 치료", "Stage IA1"}, names(v))
}

func TestQueryAppliesOrderAfterFilters(t *testing.T) {
	v := Query(sampleEntries(), "ILD", "치료")
	assert.Equal(t, []string{"HP 진단 치료", "IPF 진단 치료"}, names(v))

	h, ok := v.HandleAt(1)
	require.True(t, ok)
	assert.NotEmpty(t, h)
	_, ok = v.HandleAt(2)
	assert.False(t, ok)
}

func TestFindByName(t *testing.T) {
	v := SortByName(sampleEntries())

	e, ok := FindByName(v, " Stage IA1 ")
	require.True(t, ok)
	assert.Equal(t, "Stage IA1", e.Rule.Name)

	e, ok = FindByName(v, "ipf")
	require.True(t, ok, "falls back to case-insensitive contains")
	assert.Equal(t, "IPF 진단 치료", e.Rule.Name)

	_, ok = FindByName(v, "Stage IVB")
	assert.False(t, ok)

	_, ok = FindByName(v, "  ")
	assert.False(t, ok)
}

func TestFindByNamePrefersExactOverContains(t *testing.T) {
	v := SortByName(toEntries([]domain.Rule{
		{Category: "ILD", Name: "ILD 급성악화 – 감별진단"},
		{Category: "ILD", Name: "ILD 급성악화"},
	}))
	e, ok := FindByName(v, "ILD 급성악화")
	require.True(t, ok)
	assert.Equal(t, "ILD 급성악화", e.Rule.Name)
}
