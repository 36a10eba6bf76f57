package library

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/libref/config"
	"github.com/teranos/libref/errors"
	"github.com/teranos/libref/logger"
	"github.com/teranos/libref/pysrc"
)

// Entry is one top-level class found while scanning the library.
type Entry struct {
	Name      string
	Path      string // absolute path of the defining file
	File      string // Path relative to the library root, slash separated
	Bases     []string
	Docstring string
	Line      int
	Category  string // "" when the class belongs to no category
}

// Index maps class names to their definitions and categories.
type Index struct {
	root       string
	entries    map[string]*Entry
	categories []config.Category
	logger     *zap.SugaredLogger
}

// Scan parses every *.py file under root and indexes its top-level
// classes. Files that fail to parse are logged and skipped. Categories are
// resolved through base classes, transitively across the library.
func Scan(ctx context.Context, root string, categories []config.Category) (*Index, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "library directory %s", root)
	}
	if !info.IsDir() {
		return nil, errors.WithHintf(errors.Newf("%s is not a directory", root),
			"set library.source to the directory holding the library's .py files")
	}

	ix := &Index{
		root:       root,
		entries:    map[string]*Entry{},
		categories: categories,
		logger:     logger.ComponentLogger("library"),
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || name == "__pycache__") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ".py" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", root)
	}
	sort.Strings(files)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ix.addFile(ctx, path)
	}
	ix.resolveCategories()

	ix.logger.Infow("Indexed library",
		logger.FieldDir, root,
		logger.FieldCount, len(ix.entries),
	)
	return ix, nil
}

func (ix *Index) addFile(ctx context.Context, path string) {
	f, err := pysrc.ParseFile(ctx, path)
	if err != nil {
		ix.logger.Warnw("Skipping unparsable library file",
			logger.FieldFile, path,
			logger.FieldError, err,
		)
		return
	}
	defer f.Close()

	for _, c := range f.TopLevelClasses() {
		if prev, ok := ix.entries[c.Name]; ok {
			ix.logger.Debugw("Duplicate class name, keeping first",
				logger.FieldClass, c.Name,
				logger.FieldFile, path,
				"kept", prev.Path,
			)
			continue
		}
		ix.entries[c.Name] = &Entry{
			Name:      c.Name,
			Path:      path,
			File:      ix.relPath(path),
			Bases:     c.Bases,
			Docstring: c.Docstring,
			Line:      c.Line,
		}
	}
}

func (ix *Index) resolveCategories() {
	for _, e := range ix.entries {
		for _, cat := range ix.categories {
			if ix.derivesFrom(e.Name, cat.Base, map[string]bool{}) {
				e.Category = cat.Name
				break
			}
		}
	}
}

// derivesFrom reports whether class reaches base through its base list.
// Base names not defined in the library (imports) only match literally.
func (ix *Index) derivesFrom(class, base string, seen map[string]bool) bool {
	if seen[class] {
		return false
	}
	seen[class] = true

	e, ok := ix.entries[class]
	if !ok {
		return false
	}
	for _, b := range e.Bases {
		if b == base || ix.derivesFrom(b, base, seen) {
			return true
		}
	}
	return false
}

// Root returns the scanned directory.
func (ix *Index) Root() string {
	return ix.root
}

// Len returns the number of indexed classes.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Lookup returns the entry for class name.
func (ix *Index) Lookup(name string) (*Entry, bool) {
	e, ok := ix.entries[name]
	return e, ok
}

// Docstring implements extract.DocLookup.
func (ix *Index) Docstring(name string) (string, bool) {
	e, ok := ix.entries[name]
	if !ok {
		return "", false
	}
	return e.Docstring, true
}

// Classes returns the entries of a category sorted by name.
func (ix *Index) Classes(category string) []*Entry {
	var out []*Entry
	for _, e := range ix.entries {
		if e.Category == category {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (ix *Index) relPath(path string) string {
	rel, err := filepath.Rel(ix.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
