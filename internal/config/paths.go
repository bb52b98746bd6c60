package config

import (
	"os"
	"path/filepath"

	"github.com/pulmo-helper/internal/domain"
)

// DefaultDataDir returns ~/.pulmo-helper, or ./.pulmo-helper when the home
// directory is unknown.
func DefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".pulmo-helper"
	}
	return filepath.Join(homeDir, ".pulmo-helper")
}

// resolvePaths anchors relative workbook and database paths at the data directory.
func resolvePaths(c *domain.Config) {
	for _, p := range []*string{
		&c.Rules.XLSXPath,
		&c.Rules.SQLitePath,
		&c.Trial.StatusPath,
		&c.Trial.CriteriaPath,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(c.DataDir, *p)
		}
	}
}

// ExportDir returns the directory for rule exports.
func (m *Manager) ExportDir() string {
	return filepath.Join(m.config.DataDir, "exports")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (m *Manager) EnsureDataDir() error {
	if err := os.MkdirAll(m.config.DataDir, 0755); err != nil {
		return err
	}
	return os.MkdirAll(m.ExportDir(), 0755)
}
