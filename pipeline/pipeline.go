// Package pipeline runs a generation: clear the output directory, extract
// and render every library class, write the pages, update the navigation
// manifest and run post-generate hooks.
package pipeline

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/libref/cache"
	"github.com/teranos/libref/config"
	"github.com/teranos/libref/db"
	"github.com/teranos/libref/errors"
	"github.com/teranos/libref/extract"
	"github.com/teranos/libref/library"
	"github.com/teranos/libref/logger"
	"github.com/teranos/libref/nav"
	"github.com/teranos/libref/render"
)

// Pipeline holds the configured stages. The library and cache are opened
// on first use, so clearing and manifest updates work without them.
//
// A Pipeline is safe for concurrent use. Operations that read the opened
// library hold mu for reading, so Reload and Close wait for them.
type Pipeline struct {
	cfg      *config.Config
	renderer *render.Renderer
	updater  *nav.Updater
	logger   *zap.SugaredLogger

	mu    sync.RWMutex
	sess  *session
	conn  *sql.DB
	store *cache.Store
}

// session is everything derived from one scan of the library.
type session struct {
	lib       *library.Library
	extractor *extract.Extractor
	globals   *extract.GlobalAttributes
}

// New creates a pipeline for cfg.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		renderer: render.New(render.OptionsFromConfig(cfg)),
		updater:  nav.New(nav.OptionsFromConfig(cfg)),
		logger:   logger.ComponentLogger("pipeline"),
	}
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() *config.Config {
	return p.cfg
}

// Open resolves and indexes the library, opens the cache when enabled and
// reads the global attributes. Calling it again is a no-op.
func (p *Pipeline) Open(ctx context.Context) error {
	_, release, err := p.acquire(ctx)
	if err != nil {
		return err
	}
	release()
	return nil
}

// acquire returns the open session, opening it first when needed. The
// session stays valid until release is called.
func (p *Pipeline) acquire(ctx context.Context) (*session, func(), error) {
	for {
		p.mu.RLock()
		if s := p.sess; s != nil {
			return s, p.mu.RUnlock, nil
		}
		p.mu.RUnlock()

		p.mu.Lock()
		if p.sess == nil {
			if err := p.open(ctx); err != nil {
				p.mu.Unlock()
				return nil, nil, err
			}
		}
		p.mu.Unlock()
	}
}

// open must be called with mu held for writing.
func (p *Pipeline) open(ctx context.Context) error {
	lib, err := library.Open(ctx, p.cfg)
	if err != nil {
		return err
	}
	s := &session{
		lib:       lib,
		extractor: extract.New(extract.OptionsFromConfig(p.cfg), lib.Index),
	}

	if p.cfg.Cache.Enabled && p.store == nil {
		p.openCache(ctx)
	}

	s.globals = p.loadGlobals(ctx, s.extractor)
	p.sess = s
	return nil
}

func (p *Pipeline) openCache(ctx context.Context) {
	path := p.cfg.Cache.Path
	if path != db.Memory {
		path = p.cfg.Path(path)
	}
	conn, err := db.OpenWithMigrations(path, p.logger)
	if err != nil {
		p.logger.Warnw("Extraction cache unavailable, continuing without it",
			logger.FieldPath, path,
			logger.FieldError, err,
		)
		return
	}
	p.conn = conn
	p.store = cache.NewStore(conn)

	if days := p.cfg.Cache.MaxAgeDays; days > 0 {
		cutoff := time.Now().AddDate(0, 0, -days)
		n, err := p.store.Prune(ctx, cutoff)
		if err != nil {
			p.logger.Warnw("Cache prune failed", logger.FieldPath, path, logger.FieldError, err)
		} else if n > 0 {
			p.logger.Infow("Pruned stale cache entries", logger.FieldPath, path, logger.FieldCount, n)
		}
	}
}

// Reload drops the indexed library so the next Open rescans it. It waits
// for operations using the current library to finish. The cache stays
// open.
func (p *Pipeline) Reload() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.drop()
}

func (p *Pipeline) drop() {
	if p.sess != nil {
		p.sess.lib.Close()
		p.sess = nil
	}
}

// Close releases the library checkout and the cache database.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.drop()
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
		p.store = nil
	}
}

// Library returns the opened library, or nil before Open.
func (p *Pipeline) Library() *library.Library {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.sess == nil {
		return nil
	}
	return p.sess.lib
}

func (p *Pipeline) loadGlobals(ctx context.Context, ex *extract.Extractor) *extract.GlobalAttributes {
	path := p.cfg.Library.AttributesFile
	if path == "" {
		return nil
	}
	path = p.cfg.Path(path)
	globals, err := ex.ExtractGlobals(ctx, path, p.cfg.Library.AttributesClass)
	if err != nil {
		p.logger.Warnw("Global attributes unavailable, pages will omit them",
			logger.FieldFile, path,
			logger.FieldError, err,
		)
		return nil
	}
	return globals
}

// Record extracts the class called name, using the cache when enabled.
func (p *Pipeline) Record(ctx context.Context, name string) (*extract.ClassRecord, error) {
	s, release, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	rec, _, err := p.record(ctx, s, name)
	return rec, err
}

func (p *Pipeline) record(ctx context.Context, s *session, name string) (*extract.ClassRecord, *library.Entry, error) {
	entry, ok := s.lib.Lookup(name)
	if !ok {
		return nil, nil, errors.WithHint(errors.Wrapf(errors.ErrClassNotFound, "%s in library", name),
			"class names are case sensitive; run 'libref inspect' with a name listed by the mcp list_classes tool")
	}
	rec, err := p.extractEntry(ctx, s, entry)
	return rec, entry, err
}

func (p *Pipeline) extractEntry(ctx context.Context, s *session, entry *library.Entry) (*extract.ClassRecord, error) {
	var rec *extract.ClassRecord
	var err error
	if p.store != nil {
		rec, err = p.store.Extract(ctx, s.extractor, entry.Path, entry.Name)
	} else {
		rec, err = s.extractor.ExtractFile(ctx, entry.Path, entry.Name)
	}
	if err != nil {
		return nil, err
	}
	rec.Category = entry.Category
	rec.SourceFile = entry.File
	return rec, nil
}

// Document renders the page for class name as it would be written.
func (p *Pipeline) Document(ctx context.Context, name string) (string, error) {
	s, release, err := p.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()
	rec, entry, err := p.record(ctx, s, name)
	if err != nil {
		return "", err
	}
	return p.render(s, rec, entry), nil
}

func (p *Pipeline) render(s *session, rec *extract.ClassRecord, entry *library.Entry) string {
	source := ""
	if p.cfg.Render.SourceLinks {
		source = s.lib.SourceURL(p.cfg.Library.RepoURL, entry)
	}
	return p.renderer.RenderWithSource(rec, s.globals, source)
}

// Documented returns the entries of a category that get a page, sorted by
// name. Traits are limited to the functional trait list.
func (p *Pipeline) Documented(ctx context.Context, category string) ([]*library.Entry, error) {
	s, release, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return p.documented(s, category), nil
}

func (p *Pipeline) documented(s *session, category string) []*library.Entry {
	var out []*library.Entry
	for _, e := range s.lib.Classes(category) {
		if category == config.CategoryTrait && !p.renderer.IsFunctionalTrait(e.Name) {
			continue
		}
		out = append(out, e)
	}
	return out
}
