package rules

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulmo-helper/internal/domain"
)

func createTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "rules.db"), quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_EmptyOnCreate(t *testing.T) {
	store := createTestSQLiteStore(t)

	rules, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestSQLiteStore_SaveLoadRoundTrip(t *testing.T) {
	store := createTestSQLiteStore(t)
	ctx := context.Background()

	want := []domain.Rule{
		{Category: "ILD", Name: "IPF 진단 치료", Keywords: []string{"ipf", "uip"}, Advice: "1. HRCT\n2. MDD"},
		{Category: "COPD", Name: "GOLD", Keywords: []string{}, Advice: ""},
		{Category: "ILD", Name: "HP 진단 치료", Keywords: []string{"antigen"}, Advice: "회피"},
	}
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got, "stored order is preserved")

	require.NoError(t, store.Save(ctx, want[:1]))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want[:1], got, "save replaces rather than appends")
}

func TestSQLiteStore_ReopenRunsNoMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.db")
	ctx := context.Background()

	first, err := NewSQLiteStore(path, quietLogger())
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, []domain.Rule{{Category: "a", Name: "b"}}))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(path, quietLogger())
	require.NoError(t, err)
	defer second.Close()

	rules, err := second.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, rules, 1)
}

func TestSQLiteStore_LoadSkipsBlankRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"category", "name", "keywords", "advice"}).
		AddRow("ILD", "IPF", "ipf,uip", "x").
		AddRow(" ", "blank category", "", "").
		AddRow("ILD", "", "", "")
	mock.ExpectQuery("SELECT category, name, keywords, advice FROM rules").WillReturnRows(rows)

	store, err := NewSQLiteStoreFromDB(db, quietLogger())
	require.NoError(t, err)

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Rule{{Category: "ILD", Name: "IPF", Keywords: []string{"ipf", "uip"}, Advice: "x"}}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_LoadQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT category").WillReturnError(errors.New("no such table: rules"))

	store, err := NewSQLiteStoreFromDB(db, quietLogger())
	require.NoError(t, err)

	_, err = store.Load(context.Background())
	assert.ErrorContains(t, err, "no such table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_SaveRollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM rules").WillReturnResult(sqlmock.NewResult(0, 3))
	prep := mock.ExpectPrepare("INSERT INTO rules")
	prep.ExpectExec().WithArgs(0, "ILD", "IPF", "", "").WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs(1, "COPD", "GOLD", "", "").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	store, err := NewSQLiteStoreFromDB(db, quietLogger())
	require.NoError(t, err)

	err = store.Save(context.Background(), []domain.Rule{
		{Category: "ILD", Name: "IPF"},
		{Category: "COPD", Name: "GOLD"},
	})
	assert.ErrorContains(t, err, "GOLD")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_RequiresDB(t *testing.T) {
	_, err := NewSQLiteStoreFromDB(nil, nil)
	assert.Error(t, err)
}

func TestMigrationRunnerVersion(t *testing.T) {
	store := createTestSQLiteStore(t)

	runner, err := NewMigrationRunner(store.db, quietLogger())
	require.NoError(t, err)
	version, dirty, err := runner.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
	assert.NoError(t, runner.Up(), "second up is a no-op")
}

func TestMigrationRunnerDown(t *testing.T) {
	store := createTestSQLiteStore(t)
	runner, err := NewMigrationRunner(store.db, quietLogger())
	require.NoError(t, err)

	tableCount := func() int {
		var n int
		require.NoError(t, store.db.QueryRow(
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'rules'`).Scan(&n))
		return n
	}

	require.NoError(t, runner.Down())
	version, dirty, err := runner.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.False(t, dirty)
	assert.Equal(t, 0, tableCount())

	assert.NoError(t, runner.Down(), "rolling back an empty schema is a no-op")

	require.NoError(t, runner.Up())
	version, _, err = runner.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.Equal(t, 1, tableCount())
}
