package rules

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/pulmo-helper/internal/domain"
)

// SQLiteStore implements Store on a flat SQLite table with the same four columns
// as the workbook, plus a position column preserving row order.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	logger *logrus.Logger
}

// NewSQLiteStore opens (creating if needed) the database at dbPath and migrates it.
func NewSQLiteStore(dbPath string, logger *logrus.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	runner, err := NewMigrationRunner(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := runner.Up(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath, logger: logger}, nil
}

// NewSQLiteStoreFromDB wraps an already migrated handle.
func NewSQLiteStoreFromDB(db *sql.DB, logger *logrus.Logger) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Load returns every stored rule ordered by position.
func (s *SQLiteStore) Load(ctx context.Context) ([]domain.Rule, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT category, name, keywords, advice FROM rules ORDER BY position, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	var out []domain.Rule
	for rows.Next() {
		var category, name, keywords, advice string
		if err := rows.Scan(&category, &name, &keywords, &advice); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		category, name = strings.TrimSpace(category), strings.TrimSpace(name)
		if category == "" || name == "" {
			continue
		}
		out = append(out, domain.Rule{
			Category: category,
			Name:     name,
			Keywords: domain.ParseKeywords(keywords),
			Advice:   advice,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}
	return out, nil
}

// Save replaces the table content inside one transaction.
func (s *SQLiteStore) Save(ctx context.Context, rules []domain.Rule) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM rules"); err != nil {
		return fmt.Errorf("failed to clear rules: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO rules (position, category, name, keywords, advice) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rules {
		if _, err := stmt.ExecContext(ctx, i, r.Category, r.Name, domain.JoinKeywords(r.Keywords), r.Advice); err != nil {
			return fmt.Errorf("failed to insert rule %q: %w", r.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rules: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"path":  s.dbPath,
		"rules": len(rules),
	}).Info("Rules saved")
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
