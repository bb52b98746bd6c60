// Package sheet reads and writes the xlsx workbooks backing the rule table,
// the trial status messages and the trial criteria reference.
package sheet

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/pulmo-helper/internal/domain"
)

// DefaultCacheSize is used when the configured workbook cache size is not positive.
const DefaultCacheSize = 16

// Sheet is one worksheet as rows of cell strings. Rows may be ragged.
type Sheet struct {
	Name string
	Rows [][]string
}

// Workbook is the parsed content of an xlsx file.
type Workbook struct {
	Path   string
	Active string
	Sheets []Sheet
}

// Lookup returns the sheet with the given name.
func (w *Workbook) Lookup(name string) (Sheet, bool) {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return Sheet{}, false
}

// ActiveSheet returns the sheet that was active when the file was saved,
// or the first sheet.
func (w *Workbook) ActiveSheet() (Sheet, bool) {
	if s, ok := w.Lookup(w.Active); ok {
		return s, true
	}
	if len(w.Sheets) > 0 {
		return w.Sheets[0], true
	}
	return Sheet{}, false
}

// Cell returns row[i] or "" when the row is shorter.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

type cachedWorkbook struct {
	modTime time.Time
	size    int64
	book    *Workbook
}

// Reader parses workbooks and keeps recently read ones in an LRU cache.
// A cached entry is reused only while the file's mtime and size are unchanged.
type Reader struct {
	cache  *lru.Cache[string, cachedWorkbook]
	logger *logrus.Logger
}

// ReaderOption is a functional option for Reader.
type ReaderOption func(*Reader)

// WithLogger sets the reader's logger.
func WithLogger(logger *logrus.Logger) ReaderOption {
	return func(r *Reader) {
		r.logger = logger
	}
}

// NewReader creates a Reader caching up to size workbooks.
func NewReader(size int, opts ...ReaderOption) (*Reader, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, cachedWorkbook](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create workbook cache: %w", err)
	}
	r := &Reader{cache: cache, logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Read parses every sheet of the workbook at path. An absent file yields an
// error wrapping domain.ErrMissingResource.
func (r *Reader) Read(path string) (*Workbook, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("workbook %s: %w", path, domain.ErrMissingResource)
		}
		return nil, fmt.Errorf("failed to stat workbook %s: %w", path, err)
	}

	if hit, ok := r.cache.Get(path); ok && hit.modTime.Equal(info.ModTime()) && hit.size == info.Size() {
		r.logger.WithField("path", path).Debug("Workbook cache hit")
		return hit.book, nil
	}

	book, err := readFile(path)
	if err != nil {
		return nil, err
	}
	r.cache.Add(path, cachedWorkbook{modTime: info.ModTime(), size: info.Size(), book: book})

	r.logger.WithFields(logrus.Fields{
		"path":   path,
		"sheets": len(book.Sheets),
	}).Debug("Workbook loaded")
	return book, nil
}

// Invalidate drops any cached copy of path.
func (r *Reader) Invalidate(path string) {
	r.cache.Remove(path)
}

func readFile(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	book := &Workbook{
		Path:   path,
		Active: f.GetSheetName(f.GetActiveSheetIndex()),
	}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q of %s: %w", name, path, err)
		}
		book.Sheets = append(book.Sheets, Sheet{Name: name, Rows: rows})
	}
	return book, nil
}

// WriteAtomic writes sheets to a fresh workbook at path. The workbook is built in
// a temporary file in the same directory and renamed over the target, so the target
// is either fully replaced or left untouched.
func WriteAtomic(path string, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("workbook %s: at least one sheet is required", path)
	}

	f := excelize.NewFile()
	defer f.Close()

	defaultName := f.GetSheetName(0)
	for i, s := range sheets {
		switch {
		case i > 0:
			if _, err := f.NewSheet(s.Name); err != nil {
				return fmt.Errorf("failed to add sheet %q: %w", s.Name, err)
			}
		case s.Name != defaultName:
			if err := f.SetSheetName(defaultName, s.Name); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", s.Name, err)
			}
		}
		for j, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, j+1)
			if err != nil {
				return err
			}
			values := make([]interface{}, len(row))
			for k, v := range row {
				values[k] = v
			}
			if err := f.SetSheetRow(s.Name, cell, &values); err != nil {
				return fmt.Errorf("failed to write row %d of sheet %q: %w", j+1, s.Name, err)
			}
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create temp workbook: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := f.Write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to flush workbook: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
