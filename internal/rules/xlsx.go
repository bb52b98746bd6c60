package rules

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pulmo-helper/internal/domain"
	"github.com/pulmo-helper/internal/sheet"
)

// DefaultSheet is the worksheet name written for new rule workbooks.
const DefaultSheet = "rules"

// XLSXStore implements Store on a single-sheet xlsx workbook.
type XLSXStore struct {
	path      string
	sheetName string
	reader    *sheet.Reader
	logger    *logrus.Logger
}

// XLSXOption is a functional option for XLSXStore.
type XLSXOption func(*XLSXStore)

// WithSheetName overrides the worksheet name.
func WithSheetName(name string) XLSXOption {
	return func(s *XLSXStore) {
		if name != "" {
			s.sheetName = name
		}
	}
}

// WithReader shares a workbook reader (and its cache) with the store.
func WithReader(r *sheet.Reader) XLSXOption {
	return func(s *XLSXStore) {
		s.reader = r
	}
}

// WithXLSXLogger sets the store's logger.
func WithXLSXLogger(logger *logrus.Logger) XLSXOption {
	return func(s *XLSXStore) {
		s.logger = logger
	}
}

// NewXLSXStore creates a store for the workbook at path.
func NewXLSXStore(path string, opts ...XLSXOption) (*XLSXStore, error) {
	s := &XLSXStore{
		path:      path,
		sheetName: DefaultSheet,
		logger:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.reader == nil {
		r, err := sheet.NewReader(sheet.DefaultCacheSize, sheet.WithLogger(s.logger))
		if err != nil {
			return nil, err
		}
		s.reader = r
	}
	return s, nil
}

// Path returns the workbook location.
func (s *XLSXStore) Path() string {
	return s.path
}

// Ensure creates a header-only workbook when none exists at the store path.
func (s *XLSXStore) Ensure() (bool, error) {
	if _, err := os.Stat(s.path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("failed to stat %s: %w", s.path, err)
	}
	if err := sheet.WriteAtomic(s.path, sheet.Sheet{Name: s.sheetName, Rows: [][]string{Header}}); err != nil {
		return false, fmt.Errorf("failed to create rules workbook: %w", err)
	}
	s.logger.WithField("path", s.path).Info("Created empty rules workbook")
	return true, nil
}

// Load reads the rule sheet. A missing workbook is created first. A header row
// lacking any required column fails with domain.ErrMalformedSchema.
func (s *XLSXStore) Load(ctx context.Context) ([]domain.Rule, error) {
	if _, err := s.Ensure(); err != nil {
		return nil, err
	}

	book, err := s.reader.Read(s.path)
	if err != nil {
		return nil, err
	}
	ws, ok := book.Lookup(s.sheetName)
	if !ok {
		ws, ok = book.ActiveSheet()
	}
	if !ok {
		return nil, fmt.Errorf("%s has no worksheets: %w", s.path, domain.ErrMalformedSchema)
	}

	return parseRows(ws.Rows)
}

func parseRows(rows [][]string) ([]domain.Rule, error) {
	columns := map[string]int{}
	if len(rows) > 0 {
		for i, h := range rows[0] {
			if h = strings.TrimSpace(h); h != "" {
				if _, dup := columns[h]; !dup {
					columns[h] = i
				}
			}
		}
	}
	for _, key := range Header {
		if _, ok := columns[key]; !ok {
			return nil, fmt.Errorf("column %q missing from header row: %w", key, domain.ErrMalformedSchema)
		}
	}

	out := make([]domain.Rule, 0, len(rows))
	for _, row := range rows[min(1, len(rows)):] {
		category := strings.TrimSpace(sheet.Cell(row, columns["category"]))
		name := strings.TrimSpace(sheet.Cell(row, columns["name"]))
		if category == "" || name == "" {
			continue
		}
		out = append(out, domain.Rule{
			Category: category,
			Name:     name,
			Keywords: domain.ParseKeywords(sheet.Cell(row, columns["keywords"])),
			Advice:   sheet.Cell(row, columns["advice"]),
		})
	}
	return out, nil
}

// Save writes a fresh workbook holding rules and atomically replaces the target.
func (s *XLSXStore) Save(ctx context.Context, rules []domain.Rule) error {
	rows := make([][]string, 0, len(rules)+1)
	rows = append(rows, Header)
	for _, r := range rules {
		rows = append(rows, []string{r.Category, r.Name, domain.JoinKeywords(r.Keywords), r.Advice})
	}

	if err := sheet.WriteAtomic(s.path, sheet.Sheet{Name: s.sheetName, Rows: rows}); err != nil {
		return fmt.Errorf("failed to save rules: %w", err)
	}
	s.reader.Invalidate(s.path)

	s.logger.WithFields(logrus.Fields{
		"path":  s.path,
		"rules": len(rules),
	}).Info("Rules saved")
	return nil
}

// Close is a no-op; workbooks are not held open between calls.
func (s *XLSXStore) Close() error {
	return nil
}
