// Package rules owns the guidance rule table: persistence backends, the
// in-memory repository with edit handles, and the category/search index.
package rules

import (
	"context"

	"github.com/pulmo-helper/internal/domain"
)

// Header is the required header row of the flat rule table, in write order.
var Header = []string{"category", "name", "keywords", "advice"}

// Store persists the full rule list. Save always replaces the stored set.
type Store interface {
	// Load returns every valid row in stored order. Rows with a blank category
	// or name are dropped.
	Load(ctx context.Context) ([]domain.Rule, error)
	// Save replaces the stored rule set with rules.
	Save(ctx context.Context, rules []domain.Rule) error
	// Close releases resources held by the store.
	Close() error
}
