// Package library locates the Python component library and indexes its
// classes by category.
package library

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/teranos/libref/config"
	"github.com/teranos/libref/logger"
)

// Library is an opened, indexed library source.
type Library struct {
	*Index
	Source *Source
	// Revision is zero when the checkout is not a git repository.
	Revision Revision
	Version  string
}

// Open resolves the configured source, checks its version constraint,
// reads its git revision and indexes it. Close releases fetched sources.
func Open(ctx context.Context, cfg *config.Config) (*Library, error) {
	log := logger.ComponentLogger("library")

	src, err := Resolve(ctx, cfg.Library.Source, cfg.Library.Subdir, cfg.Root, log)
	if err != nil {
		return nil, err
	}
	lib := &Library{Source: src}

	if cfg.Library.Pyproject != "" {
		// relative to the fetched tree, or to the project root for local sources
		path := cfg.Library.Pyproject
		switch {
		case src.Fetched && !filepath.IsAbs(path):
			path = filepath.Join(src.Checkout, path)
		case !src.Fetched:
			path = cfg.Path(path)
		}
		lib.Version, err = CheckVersion(path, cfg.Library.VersionConstraint)
		if err != nil {
			src.Cleanup()
			return nil, err
		}
	}

	if rev, err := ReadRevision(src.Checkout); err == nil {
		lib.Revision = rev
	} else {
		log.Debugw("Library is not a git checkout", logger.FieldDir, src.Checkout, logger.FieldReason, err)
	}

	lib.Index, err = Scan(ctx, src.Dir, cfg.Categories.Ordered())
	if err != nil {
		src.Cleanup()
		return nil, err
	}

	log.Infow("Opened library",
		logger.FieldSource, src.Input,
		logger.FieldVersion, lib.Version,
		logger.FieldRevision, lib.Revision.Short(),
	)
	return lib, nil
}

// Close removes any temporary checkout.
func (l *Library) Close() {
	l.Source.Cleanup()
}

// SourceURL links to the definition of e in the library repository, or
// returns "" when the repository URL or revision is unknown.
func (l *Library) SourceURL(repoURL string, e *Entry) string {
	if repoURL == "" || l.Revision.Hash == "" {
		return ""
	}
	return repoURL + "/blob/" + l.Revision.Hash + "/" + l.Revision.RepoPath(e.Path) + fmt.Sprintf("#L%d", e.Line)
}
