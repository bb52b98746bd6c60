// Package trial assigns respiratory patients to registries and sponsored
// trials from the status workbook, and searches the study criteria workbook.
package trial

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pulmo-helper/internal/domain"
	"github.com/pulmo-helper/internal/sheet"
)

// Status message keys.
const (
	KeyCOPDSevere      = "copd_sit_severe"
	KeyCOPDMaintenance = "copd_sit_maint"
	KeyCOPDBE          = "copd_sit_be"
	KeyAsthmaEos       = "asthma_eos"
	KeyAsthmaRhinitis  = "asthma_rhinitis"
	KeyAsthmaBio       = "asthma_bio"
	KeyEtcBE           = "etc_be"
	KeyEtcCough        = "etc_cough"
	KeyEtcAcute        = "etc_acute"
	KeyEtcIPF          = "etc_ipf"
)

// DefaultStatus is shown for any key the status workbook does not provide.
var DefaultStatus = map[string]string{
	KeyCOPDSevere:      "데이터 없음 (엑셀 확인 필요)",
	KeyCOPDMaintenance: "데이터 없음 (엑셀 확인 필요)",
	KeyCOPDBE:          "데이터 없음 (엑셀 확인 필요)",
	KeyAsthmaEos:       "Areteia 등 (데이터 없음)",
	KeyAsthmaRhinitis:  "대원제약 등 (데이터 없음)",
	KeyAsthmaBio:       "Sanofi 등 (데이터 없음)",
	KeyEtcBE:           "데이터 없음",
	KeyEtcCough:        "데이터 없음",
	KeyEtcAcute:        "데이터 없음",
	KeyEtcIPF:          "데이터 없음",
}

// Status maps message keys to display text.
type Status map[string]string

// Get returns the message for key, or "" when unknown.
func (s Status) Get(key string) string { return s[key] }

func defaults() Status {
	out := make(Status, len(DefaultStatus))
	for k, v := range DefaultStatus {
		out[k] = v
	}
	return out
}

// Loader reads the trial workbooks.
type Loader struct {
	reader *sheet.Reader
	logger *logrus.Logger
}

// LoaderOption is a functional option for Loader.
type LoaderOption func(*Loader)

// WithLogger sets the loader's logger.
func WithLogger(logger *logrus.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader over a shared workbook reader.
func NewLoader(reader *sheet.Reader, opts ...LoaderOption) *Loader {
	l := &Loader{reader: reader, logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadStatus reads the key/value rows of the active sheet. Values keep their
// line breaks as blank-line separated paragraphs. A missing or unreadable
// workbook yields the defaults; keys absent from the sheet are filled in from
// them.
func (l *Loader) LoadStatus(path string) Status {
	book, err := l.reader.Read(path)
	if err != nil {
		entry := l.logger.WithField("path", path).WithError(err)
		if errors.Is(err, domain.ErrMissingResource) {
			entry.Info("Status workbook not found, using defaults")
		} else {
			entry.Error("Failed to read status workbook, using defaults")
		}
		return defaults()
	}

	status := Status{}
	if ws, ok := book.ActiveSheet(); ok {
		for _, row := range ws.Rows {
			key := strings.TrimSpace(sheet.Cell(row, 0))
			if key == "" {
				continue
			}
			// A listed key with a blank value clears its default.
			status[key] = strings.ReplaceAll(sheet.Cell(row, 1), "\n", "\n\n")
		}
	}
	for k, v := range DefaultStatus {
		if _, ok := status[k]; !ok {
			status[k] = v
		}
	}

	l.logger.WithFields(logrus.Fields{
		"path": path,
		"keys": len(status),
	}).Debug("Status workbook loaded")
	return status
}
