package rules

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pulmo-helper/internal/domain"
)

// Handle identifies a rule inside one Repository for the lifetime of the process.
// Handles are issued on load or add and are never persisted.
type Handle string

func newHandle() Handle {
	return Handle(uuid.NewString())
}

// Repository owns the in-memory rule list and its backing Store.
// All methods are safe for concurrent use.
type Repository struct {
	mu      sync.RWMutex
	store   Store
	entries []Entry
	dirty   bool
	logger  *logrus.Logger
}

// RepositoryOption is a functional option for Repository.
type RepositoryOption func(*Repository)

// WithLogger sets the repository's logger.
func WithLogger(logger *logrus.Logger) RepositoryOption {
	return func(r *Repository) {
		r.logger = logger
	}
}

// WithRules seeds the repository without touching the store.
func WithRules(rules []domain.Rule) RepositoryOption {
	return func(r *Repository) {
		r.entries = toEntries(rules)
	}
}

// NewRepository creates an empty repository over store.
func NewRepository(store Store, opts ...RepositoryOption) *Repository {
	r := &Repository{
		store:  store,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func toEntries(rules []domain.Rule) []Entry {
	out := make([]Entry, 0, len(rules))
	for _, rule := range rules {
		out = append(out, Entry{Handle: newHandle(), Rule: rule.Clone()})
	}
	return out
}

// Load replaces the in-memory list with the store content. On failure the
// repository is left empty and the error is returned for the caller to report.
func (r *Repository) Load(ctx context.Context) error {
	loaded, err := r.store.Load(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.dirty = false
	if err != nil {
		r.entries = nil
		r.logger.WithError(err).Error("Failed to load rules")
		return fmt.Errorf("failed to load rules: %w", err)
	}
	r.entries = toEntries(loaded)
	r.logger.WithField("rules", len(r.entries)).Info("Rules loaded")
	return nil
}

// Save writes the full list back to the store.
func (r *Repository) Save(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Save(ctx, r.rulesLocked()); err != nil {
		r.logger.WithError(err).Error("Failed to save rules")
		return err
	}
	r.dirty = false
	return nil
}

// normalize applies editor semantics: trimmed category and name, keywords
// re-tokenized, trailing newlines removed from advice.
func normalize(rule domain.Rule) (domain.Rule, error) {
	if err := rule.Validate(); err != nil {
		return domain.Rule{}, err
	}
	out := domain.Rule{
		Category: strings.TrimSpace(rule.Category),
		Name:     strings.TrimSpace(rule.Name),
		Keywords: domain.ParseKeywords(domain.JoinKeywords(rule.Keywords)),
		Advice:   strings.TrimRight(rule.Advice, "\n"),
	}
	return out, nil
}

// Add appends a validated rule and returns its handle.
func (r *Repository) Add(rule domain.Rule) (Handle, error) {
	rule, err := normalize(rule)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	h := newHandle()
	r.entries = append(r.entries, Entry{Handle: h, Rule: rule})
	r.dirty = true

	r.logger.WithFields(logrus.Fields{
		"category": rule.Category,
		"name":     rule.Name,
	}).Debug("Rule added")
	return h, nil
}

// Edit replaces the rule identified by h in place.
func (r *Repository) Edit(h Handle, rule domain.Rule) error {
	rule, err := normalize(rule)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexLocked(h)
	if i < 0 {
		return fmt.Errorf("edit %s: %w", h, domain.ErrRuleNotFound)
	}
	r.entries[i].Rule = rule
	r.dirty = true
	return nil
}

// Delete removes the rule identified by h.
func (r *Repository) Delete(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexLocked(h)
	if i < 0 {
		return fmt.Errorf("delete %s: %w", h, domain.ErrRuleNotFound)
	}
	r.entries = append(r.entries[:i], r.entries[i+1:]...)
	r.dirty = true
	return nil
}

// Get returns a copy of the rule identified by h.
func (r *Repository) Get(h Handle) (domain.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexLocked(h)
	if i < 0 {
		return domain.Rule{}, fmt.Errorf("get %s: %w", h, domain.ErrRuleNotFound)
	}
	return r.entries[i].Rule.Clone(), nil
}

func (r *Repository) indexLocked(h Handle) int {
	for i, e := range r.entries {
		if e.Handle == h {
			return i
		}
	}
	return -1
}

func (r *Repository) rulesLocked() []domain.Rule {
	out := make([]domain.Rule, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Rule.Clone()
	}
	return out
}

// Rules returns a copy of the rules in storage order.
func (r *Repository) Rules() []domain.Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rulesLocked()
}

// Entries returns a copy of the entries in storage order.
func (r *Repository) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		out[i] = Entry{Handle: e.Handle, Rule: e.Rule.Clone()}
	}
	return out
}

// Len returns the number of rules held.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Dirty reports whether there are edits not yet saved.
func (r *Repository) Dirty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dirty
}

// Categories returns the current category index.
func (r *Repository) Categories() []string {
	return Categories(r.Entries())
}

// Query returns the sorted view for a category and search text.
func (r *Repository) Query(category, query string) View {
	return Query(r.Entries(), category, query)
}

// Find looks a rule up by name. With preferCategory set and present, that
// category is searched first; the whole table is the fallback.
func (r *Repository) Find(name, preferCategory string) (Entry, bool) {
	entries := r.Entries()
	if preferCategory != "" && preferCategory != domain.AllCategories {
		if e, ok := FindByName(Query(entries, preferCategory, ""), name); ok {
			return e, true
		}
	}
	return FindByName(Query(entries, domain.AllCategories, ""), name)
}

// HasName reports whether a rule with exactly this trimmed name exists.
func (r *Repository) HasName(name string) bool {
	return HasName(r.Entries(), name)
}

// Close closes the backing store.
func (r *Repository) Close() error {
	return r.store.Close()
}
