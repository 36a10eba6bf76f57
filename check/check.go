// Package check reports whether the pages and manifest on disk match what
// a fresh generation would produce.
package check

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/teranos/libref/config"
	"github.com/teranos/libref/errors"
	"github.com/teranos/libref/pipeline"
)

// ChangeKind describes how an existing file differs from the fresh one.
type ChangeKind string

const (
	Modified ChangeKind = "modified"
	Missing  ChangeKind = "missing" // would be generated, not on disk
	Stale    ChangeKind = "stale"   // on disk, would not be generated
)

// Change is one differing file.
type Change struct {
	Path string // relative to the output directory, or the manifest path
	Kind ChangeKind
	Diff string // unified diff, existing -> fresh
}

// Result holds the outcome of a check.
type Result struct {
	UpToDate bool
	Changes  []Change
}

// Err returns ErrOutOfDate when the result found changes.
func (r *Result) Err() error {
	if r.UpToDate {
		return nil
	}
	return errors.WithHint(
		errors.Wrapf(errors.ErrOutOfDate, "%d files differ", len(r.Changes)),
		"run 'libref' to regenerate the reference")
}

// Run generates into a temporary directory and compares the result with
// the configured output directory and manifest.
func Run(ctx context.Context, p *pipeline.Pipeline) (*Result, error) {
	cfg := p.Config()

	tmp, err := os.MkdirTemp("", "libref-check-*")
	if err != nil {
		return nil, errors.Wrap(err, "create temp directory")
	}
	defer os.RemoveAll(tmp)

	fresh := filepath.Join(tmp, "out")
	if err := p.Generate(ctx, fresh, pipeline.NewReport("check")); err != nil {
		return nil, err
	}

	res, err := CompareDirectories(fresh, cfg.Path(cfg.Output.Dir), cfg.Categories.Ordered())
	if err != nil {
		return nil, err
	}

	change, err := checkManifest(p, cfg.Path(cfg.Manifest.Path), fresh, tmp)
	if err != nil {
		return nil, err
	}
	if change != nil {
		res.Changes = append(res.Changes, *change)
		res.UpToDate = false
	}
	return res, nil
}

// checkManifest updates a copy of the manifest against the fresh pages
// and diffs it with the original.
func checkManifest(p *pipeline.Pipeline, manifestPath, fresh, tmp string) (*Change, error) {
	original, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, errors.Wrap(err, "read manifest")
	}
	copyPath := filepath.Join(tmp, filepath.Base(manifestPath))
	if err := os.WriteFile(copyPath, original, config.DefaultFilePermissions); err != nil {
		return nil, errors.Wrap(err, "copy manifest")
	}
	res, err := p.UpdateNav(copyPath, fresh)
	if errors.Is(err, errors.ErrGroupNotFound) {
		// a run would leave the manifest alone as well
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !res.Changed {
		return nil, nil
	}
	updated, err := os.ReadFile(copyPath)
	if err != nil {
		return nil, errors.Wrap(err, "read updated manifest")
	}
	return &Change{
		Path: manifestPath,
		Kind: Modified,
		Diff: unifiedDiff(manifestPath, string(original), string(updated)),
	}, nil
}

// CompareDirectories compares the .mdx pages of each category directory
// in fresh with those in existing.
func CompareDirectories(fresh, existing string, categories []config.Category) (*Result, error) {
	var changes []Change
	for _, cat := range categories {
		diffs, err := compareDirectory(filepath.Join(fresh, cat.Dir), filepath.Join(existing, cat.Dir), cat.Dir)
		if err != nil {
			return nil, err
		}
		changes = append(changes, diffs...)
	}
	return &Result{UpToDate: len(changes) == 0, Changes: changes}, nil
}

func compareDirectory(freshDir, existingDir, rel string) ([]Change, error) {
	freshPages, err := pages(freshDir)
	if err != nil {
		return nil, err
	}
	existingPages, err := pages(existingDir)
	if err != nil {
		return nil, err
	}

	names := map[string]bool{}
	for name := range freshPages {
		names[name] = true
	}
	for name := range existingPages {
		names[name] = true
	}
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	var changes []Change
	for _, name := range sorted {
		path := rel + "/" + name
		want, inFresh := freshPages[name]
		have, inExisting := existingPages[name]
		switch {
		case !inExisting:
			changes = append(changes, Change{Path: path, Kind: Missing, Diff: unifiedDiff(path, "", want)})
		case !inFresh:
			changes = append(changes, Change{Path: path, Kind: Stale, Diff: unifiedDiff(path, have, "")})
		case have != want:
			changes = append(changes, Change{Path: path, Kind: Modified, Diff: unifiedDiff(path, have, want)})
		}
	}
	return changes, nil
}

// pages reads every .mdx file in dir. A missing directory has none.
func pages(dir string) (map[string]string, error) {
	out := map[string]string{}
	matches, err := filepath.Glob(filepath.Join(dir, "*.mdx"))
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", dir)
	}
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", path)
		}
		out[filepath.Base(path)] = string(data)
	}
	return out, nil
}

func unifiedDiff(path, a, b string) string {
	text, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	})
	return text
}

// Summary lists the changed files, one per line.
func (r *Result) Summary() string {
	var b strings.Builder
	for _, c := range r.Changes {
		b.WriteString(string(c.Kind))
		b.WriteString("  ")
		b.WriteString(c.Path)
		b.WriteString("\n")
	}
	return b.String()
}
