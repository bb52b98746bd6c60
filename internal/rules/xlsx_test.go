package rules

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulmo-helper/internal/domain"
	"github.com/pulmo-helper/internal/sheet"
)

func createTestXLSXStore(t *testing.T, sheets ...sheet.Sheet) (*XLSXStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.xlsx")
	if len(sheets) > 0 {
		require.NoError(t, sheet.WriteAtomic(path, sheets...))
	}
	store, err := NewXLSXStore(path, WithXLSXLogger(quietLogger()))
	require.NoError(t, err)
	return store, path
}

func TestXLSXStoreCreatesHeaderOnlyWorkbook(t *testing.T) {
	store, path := createTestXLSXStore(t)

	rules, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rules)

	r, err := sheet.NewReader(1)
	require.NoError(t, err)
	book, err := r.Read(path)
	require.NoError(t, err)
	ws, ok := book.Lookup(DefaultSheet)
	require.True(t, ok)
	assert.Equal(t, [][]string{Header}, ws.Rows)

	created, err := store.Ensure()
	require.NoError(t, err)
	assert.False(t, created)
}

func TestXLSXStoreLoadParsesRows(t *testing.T) {
	store, _ := createTestXLSXStore(t, sheet.Sheet{Name: "rules", Rows: [][]string{
		{"name", " category ", "advice", "keywords"},
		{"IPF 진단 치료", "ILD", "line1\nline2", " ipf , uip,, "},
		{"", "ILD", "no name"},
		{"orphan", "   "},
		{},
		{"GOLD", "COPD"},
	}})

	rules, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Rule{
		{Category: "ILD", Name: "IPF 진단 치료", Keywords: []string{"ipf", "uip"}, Advice: "line1\nline2"},
		{Category: "COPD", Name: "GOLD", Keywords: []string{}, Advice: ""},
	}, rules)
}

func TestXLSXStoreMissingHeader(t *testing.T) {
	store, _ := createTestXLSXStore(t, sheet.Sheet{Name: "rules", Rows: [][]string{
		{"category", "name", "advice"},
		{"ILD", "IPF", "x"},
	}})

	rules, err := store.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrMalformedSchema)
	assert.Nil(t, rules)
}

func TestXLSXStoreCorruptWorkbook(t *testing.T) {
	store, path := createTestXLSXStore(t)
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0644))

	_, err := store.Load(context.Background())
	assert.Error(t, err)
}

func TestXLSXStoreFallsBackToActiveSheet(t *testing.T) {
	store, _ := createTestXLSXStore(t, sheet.Sheet{Name: "Sheet1", Rows: [][]string{
		{"category", "name", "keywords", "advice"},
		{"ILD", "IPF", "", ""},
	}})

	rules, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "IPF", rules[0].Name)
}

func TestXLSXStoreSaveReplacesContent(t *testing.T) {
	store, _ := createTestXLSXStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []domain.Rule{
		{Category: "a", Name: "one"}, {Category: "a", Name: "two"}, {Category: "b", Name: "three"},
	}))
	require.NoError(t, store.Save(ctx, []domain.Rule{
		{Category: "c", Name: "only", Keywords: []string{"k1", "k2"}},
	}))

	rules, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Rule{{Category: "c", Name: "only", Keywords: []string{"k1", "k2"}, Advice: ""}}, rules)
}
