package trial

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/pulmo-helper/internal/domain"
	"github.com/pulmo-helper/internal/sheet"
)

// Strategy names how a sheet's columns were located.
type Strategy string

const (
	// StrategyHeader matched the first row against known header substrings.
	StrategyHeader Strategy = "header"
	// StrategyOrdinal used fixed positions 0, 1 and 2 and read every row as data.
	StrategyOrdinal Strategy = "ordinal"
)

var (
	titleHeaders     = []string{"title", "topic", "연구", "제목"}
	inclusionHeaders = []string{"inclusion", "선정"}
	exclusionHeaders = []string{"exclusion", "제외"}
)

// Columns locates the title, inclusion and exclusion columns of a sheet.
// A column absent under the header strategy is -1.
type Columns struct {
	Title     int      `json:"title"`
	Inclusion int      `json:"inclusion"`
	Exclusion int      `json:"exclusion"`
	Strategy  Strategy `json:"strategy"`
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// ResolveColumns tries the header row first. When no title column is
// recognised it falls back to ordinal positions.
func ResolveColumns(header []string) Columns {
	cols := Columns{Title: -1, Inclusion: -1, Exclusion: -1, Strategy: StrategyHeader}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case h == "":
		case cols.Title < 0 && containsAny(h, titleHeaders):
			cols.Title = i
		case cols.Inclusion < 0 && containsAny(h, inclusionHeaders):
			cols.Inclusion = i
		case cols.Exclusion < 0 && containsAny(h, exclusionHeaders):
			cols.Exclusion = i
		}
	}
	if cols.Title >= 0 {
		return cols
	}
	return Columns{Title: 0, Inclusion: 1, Exclusion: 2, Strategy: StrategyOrdinal}
}

// Criterion is one study row.
type Criterion struct {
	Sheet     string   `json:"sheet"`
	Title     string   `json:"title"`
	Inclusion string   `json:"inclusion"`
	Exclusion string   `json:"exclusion"`
	Cells     []string `json:"cells,omitempty"`
}

// SheetInfo reports how one sheet was parsed.
type SheetInfo struct {
	Name     string   `json:"name"`
	Strategy Strategy `json:"strategy"`
	Rows     int      `json:"rows"`
}

// Criteria is the parsed criteria workbook.
type Criteria struct {
	Missing bool        `json:"missing"`
	Sheets  []SheetInfo `json:"sheets"`
	Items   []Criterion `json:"items"`
}

// MissingCriteriaNotice is shown when no criteria workbook is present.
const MissingCriteriaNotice = "상세 기준 파일(criteria.xlsx)이 없습니다."

func cell(row []string, i int) string {
	return strings.TrimSpace(sheet.Cell(row, i))
}

// ParseSheet resolves the columns of ws and returns its rows with a title.
func ParseSheet(ws sheet.Sheet) ([]Criterion, SheetInfo) {
	info := SheetInfo{Name: ws.Name}
	if len(ws.Rows) == 0 {
		info.Strategy = StrategyOrdinal
		return nil, info
	}

	cols := ResolveColumns(ws.Rows[0])
	info.Strategy = cols.Strategy
	data := ws.Rows
	if cols.Strategy == StrategyHeader {
		data = data[1:]
	}

	var out []Criterion
	for _, row := range data {
		title := cell(row, cols.Title)
		if title == "" {
			continue
		}
		cells := make([]string, len(row))
		for i := range row {
			cells[i] = cell(row, i)
		}
		out = append(out, Criterion{
			Sheet:     ws.Name,
			Title:     title,
			Inclusion: cell(row, cols.Inclusion),
			Exclusion: cell(row, cols.Exclusion),
			Cells:     cells,
		})
	}
	info.Rows = len(out)
	return out, info
}

// LoadCriteria parses every sheet of the criteria workbook. A missing workbook
// is not an error; it yields an empty result flagged Missing.
func (l *Loader) LoadCriteria(path string) (*Criteria, error) {
	book, err := l.reader.Read(path)
	if err != nil {
		if errors.Is(err, domain.ErrMissingResource) {
			l.logger.WithField("path", path).Info("Criteria workbook not found")
			return &Criteria{Missing: true}, nil
		}
		return &Criteria{}, fmt.Errorf("failed to read criteria workbook: %w", err)
	}

	c := &Criteria{}
	for _, ws := range book.Sheets {
		items, info := ParseSheet(ws)
		c.Items = append(c.Items, items...)
		c.Sheets = append(c.Sheets, info)

		l.logger.WithFields(logrus.Fields{
			"sheet":    info.Name,
			"strategy": info.Strategy,
			"rows":     info.Rows,
		}).Debug("Criteria sheet parsed")
	}
	return c, nil
}

// foldText builds a fresh Caser per call; a Caser is not safe for concurrent use.
func foldText(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// containsText matches on the case-folded raw text or on its NFC form.
func containsText(text, query string) bool {
	return strings.Contains(cases.Fold().String(text), cases.Fold().String(query)) ||
		strings.Contains(foldText(text), foldText(query))
}

func (c Criterion) matches(q string) bool {
	fields := append([]string{c.Sheet, c.Title, c.Inclusion, c.Exclusion}, c.Cells...)
	for _, f := range fields {
		if containsText(f, q) {
			return true
		}
	}
	return false
}

// Search returns the criteria with any field containing query, ignoring case.
// A blank query returns every item.
func (c *Criteria) Search(query string) []Criterion {
	q := strings.TrimSpace(query)
	if q == "" {
		return append([]Criterion(nil), c.Items...)
	}
	var out []Criterion
	for _, item := range c.Items {
		if item.matches(q) {
			out = append(out, item)
		}
	}
	return out
}
