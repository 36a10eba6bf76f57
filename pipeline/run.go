package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/teranos/libref/config"
	"github.com/teranos/libref/errors"
	"github.com/teranos/libref/logger"
	"github.com/teranos/libref/nav"
)

// Mode selects the stages of a run.
type Mode struct {
	Clear    bool
	Generate bool
	Nav      bool
}

// FullRun clears, generates and updates navigation.
var FullRun = Mode{Clear: true, Generate: true, Nav: true}

// ForConfig applies output.clear: when it is false a generation overwrites
// pages in place instead of clearing first. Clear-only runs are kept.
func (m Mode) ForConfig(cfg *config.Config) Mode {
	if m.Generate && !cfg.Output.Clear {
		m.Clear = false
	}
	return m
}

// Run executes the selected stages against the configured output
// directory and manifest. Hooks run after a generation.
func (p *Pipeline) Run(ctx context.Context, mode Mode) (*Report, error) {
	report := NewReport(uuid.New().String())
	ctx = logger.WithRunID(ctx, report.RunID)
	log := logger.LoggerFromContext(ctx).Named("pipeline")
	defer func() { report.Duration = time.Since(report.Started) }()

	outDir := p.cfg.Path(p.cfg.Output.Dir)
	log.Infow("Starting run",
		logger.FieldDir, outDir,
		"clear", mode.Clear,
		"generate", mode.Generate,
		"nav", mode.Nav,
	)

	// open before clearing so a library that fails to open leaves the pages
	if mode.Generate {
		if err := p.Open(ctx); err != nil {
			return report, err
		}
	}

	if mode.Clear {
		n, err := Clear(outDir, p.cfg.Categories.Ordered())
		report.Cleared = n
		if err != nil {
			return report, err
		}
		log.Infow("Cleared output", logger.FieldDir, outDir, logger.FieldCount, n)
	}

	if mode.Generate {
		if err := p.Generate(ctx, outDir, report); err != nil {
			return report, err
		}
	}

	if mode.Nav {
		manifest := p.cfg.Path(p.cfg.Manifest.Path)
		res, err := p.UpdateNav(manifest, outDir)
		switch {
		case errors.Is(err, errors.ErrGroupNotFound):
			log.Warnw("Navigation group not found, manifest left unchanged",
				logger.FieldPath, manifest,
				logger.FieldError, err,
				"hints", errors.FlattenHints(err),
			)
		case err != nil:
			return report, err
		}
		report.Nav = res
	}

	if mode.Generate && len(p.cfg.Hooks.PostGenerate) > 0 {
		p.runHooks(ctx, outDir, report)
	}
	return report, nil
}

// UpdateNav rewrites the navigation group of the manifest at manifestPath
// from the pages in outDir. A missing group is reported as an error
// wrapping errors.ErrGroupNotFound together with an unchanged Result.
func (p *Pipeline) UpdateNav(manifestPath, outDir string) (*nav.Result, error) {
	return p.updater.Update(manifestPath, outDir)
}
