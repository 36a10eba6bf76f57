package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/teranos/libref/config"
	"github.com/teranos/libref/errors"
	"github.com/teranos/libref/logger"
	"github.com/teranos/libref/render"
)

// Generate writes one page per documented class into outDir. Classes whose
// file is missing, does not parse or no longer defines them are logged,
// recorded in the report and skipped. Any other error stops the run.
func (p *Pipeline) Generate(ctx context.Context, outDir string, report *Report) error {
	s, release, err := p.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	log := logger.LoggerFromContext(ctx).Named("pipeline")

	for _, cat := range p.cfg.Categories.Ordered() {
		dir := filepath.Join(outDir, cat.Dir)
		if err := os.MkdirAll(dir, config.DefaultDirPermissions); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}

		for _, entry := range p.documented(s, cat.Name) {
			if err := ctx.Err(); err != nil {
				return err
			}

			rec, err := p.extractEntry(ctx, s, entry)
			if err != nil {
				if !errors.IsSkippable(err) {
					return errors.Wrapf(err, "extract %s", entry.Name)
				}
				log.Warnw("Skipping class",
					logger.FieldClass, entry.Name,
					logger.FieldFile, entry.Path,
					logger.FieldError, err,
				)
				report.skip(entry.Name, err)
				continue
			}

			doc := p.render(s, rec, entry)
			path := filepath.Join(dir, render.FileName(rec.Name))
			if err := os.WriteFile(path, []byte(doc), config.DefaultFilePermissions); err != nil {
				return errors.Wrapf(err, "write %s", path)
			}
			report.Generated[cat.Name]++
			report.Bytes += int64(len(doc))

			log.Debugw("Wrote page",
				logger.FieldClass, rec.Name,
				logger.FieldCategory, cat.Name,
				logger.FieldPath, path,
				logger.FieldSize, len(doc),
			)
		}
		log.Infow("Generated category",
			logger.FieldCategory, cat.Name,
			logger.FieldCount, report.Generated[cat.Name],
		)
	}

	if p.store != nil {
		report.CacheHits, report.CacheMisses = p.store.Stats()
	}
	return nil
}
