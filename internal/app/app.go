// Package app assembles the rule repository, workbook reader, trial loader and
// advisor from configuration. Both command line front ends share it.
package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pulmo-helper/internal/config"
	"github.com/pulmo-helper/internal/domain"
	"github.com/pulmo-helper/internal/rules"
	"github.com/pulmo-helper/internal/service"
	"github.com/pulmo-helper/internal/sheet"
	"github.com/pulmo-helper/internal/trial"
)

// App holds the wired components.
type App struct {
	Config  *domain.Config
	Logger  *logrus.Logger
	Reader  *sheet.Reader
	Rules   *rules.Repository
	Advisor *service.Advisor
	Trials  *trial.Loader

	// LoadErr is the error of the initial rule load. The repository is empty
	// when it is set; calculators and trial lookups keep working.
	LoadErr error
}

// OpenStore opens the configured rule backend.
func OpenStore(cfg domain.RulesConfig, reader *sheet.Reader, logger *logrus.Logger) (rules.Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		store, err := rules.NewSQLiteStore(cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendXLSX, "":
		store, err := rules.NewXLSXStore(cfg.XLSXPath,
			rules.WithSheetName(cfg.Sheet),
			rules.WithReader(reader),
			rules.WithXLSXLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, domain.NewValidationError("rules.backend", "unknown rules backend", cfg.Backend)
	}
}

// New wires every component and loads the rule table.
func New(ctx context.Context, cfg *domain.Config, logger *logrus.Logger) (*App, error) {
	reader, err := sheet.NewReader(cfg.Cache.MaxWorkbooks, sheet.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	store, err := OpenStore(cfg.Rules, reader, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open rule store: %w", err)
	}

	repo := rules.NewRepository(store, rules.WithLogger(logger))
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Reader:  reader,
		Rules:   repo,
		Advisor: service.NewAdvisor(repo, logger),
		Trials:  trial.NewLoader(reader, trial.WithLogger(logger)),
	}
	a.LoadErr = repo.Load(ctx)

	logger.WithFields(logrus.Fields{
		"backend": cfg.Rules.Backend,
		"rules":   repo.Len(),
	}).Info("Helper initialized")
	return a, nil
}

// Status reads the trial status workbook.
func (a *App) Status() trial.Status {
	return a.Trials.LoadStatus(a.Config.Trial.StatusPath)
}

// Criteria reads the trial criteria workbook.
func (a *App) Criteria() (*trial.Criteria, error) {
	return a.Trials.LoadCriteria(a.Config.Trial.CriteriaPath)
}

// Close releases the rule store.
func (a *App) Close() error {
	return a.Rules.Close()
}
