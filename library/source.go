package library

// Library source resolution.
// Uses hashicorp/go-getter so library.source may be:
//   - a local path: ./atopile/src/faebryk/library, ~/src/faebryk
//   - a git URL: https://github.com/atopile/atopile.git, git::https://...?ref=v0.3.0
//   - GitHub shorthand: github.com/atopile/atopile
//   - an archive: https://example.com/atopile.tar.gz

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter"
	"go.uber.org/zap"

	"github.com/teranos/libref/errors"
	"github.com/teranos/libref/logger"
)

// Source is a resolved library location on the local filesystem.
type Source struct {
	// Dir is the library directory, Subdir applied.
	Dir string
	// Checkout is the top of the local or fetched tree, used for the git
	// revision and for repository-relative source links.
	Checkout string
	// Input is the configured source as written.
	Input   string
	Fetched bool

	cleanup func()
}

// Cleanup removes a fetched source. Safe to call multiple times.
func (s *Source) Cleanup() {
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
}

// Resolve turns input into a local directory, fetching remote sources into
// a temporary directory. Relative local paths are taken from base, or from
// the working directory when base is empty. subdir is joined to the
// result.
func Resolve(ctx context.Context, input, subdir, base string, log *zap.SugaredLogger) (*Source, error) {
	if input == "" {
		return nil, errors.WithHint(errors.Wrap(errors.ErrUnsupportedSource, "library.source is empty"),
			"set library.source in libref.toml or LIBREF_LIBRARY_SOURCE")
	}

	pwd := base
	if pwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			wd = "."
		}
		pwd = wd
	}

	detected, err := getter.Detect(input, pwd, getter.Detectors)
	if err != nil {
		return nil, errors.WithHintf(errors.Wrapf(errors.ErrUnsupportedSource, "%s: %v", input, err),
			"use a local path, a git URL or an archive URL")
	}
	log.Debugw("go-getter detected source", logger.FieldSource, input, "detected", detected)

	parsed, err := url.Parse(detected)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUnsupportedSource, "%s: %v", detected, err)
	}

	if parsed.Scheme == "file" || parsed.Scheme == "" {
		local := input
		if parsed.Scheme == "file" {
			local = parsed.Path
		}
		local, err = expandPath(local, pwd)
		if err != nil {
			return nil, err
		}
		return finish(&Source{Dir: local, Checkout: local, Input: input}, subdir)
	}

	return fetch(ctx, input, detected, subdir, log)
}

func fetch(ctx context.Context, input, detected, subdir string, log *zap.SugaredLogger) (*Source, error) {
	tempDir, err := os.MkdirTemp("", "libref-src-*")
	if err != nil {
		return nil, errors.Wrap(err, "create temp directory")
	}
	// go-getter wants a destination that does not exist yet for dir mode
	dst := filepath.Join(tempDir, "src")

	log.Infow("Fetching library source", logger.FieldSource, input, logger.FieldDir, dst)

	client := &getter.Client{
		Ctx:     ctx,
		Src:     detected,
		Dst:     dst,
		Pwd:     tempDir,
		Mode:    getter.ClientModeDir,
		Getters: getter.Getters,
	}
	if err := client.Get(); err != nil {
		os.RemoveAll(tempDir)
		return nil, errors.Wrapf(err, "fetch %s", input)
	}

	src := &Source{
		Dir:      dst,
		Checkout: dst,
		Input:    input,
		Fetched:  true,
		cleanup: func() {
			log.Debugw("Removing fetched library source", logger.FieldDir, tempDir)
			os.RemoveAll(tempDir)
		},
	}
	resolved, err := finish(src, subdir)
	if err != nil {
		src.Cleanup()
		return nil, err
	}
	return resolved, nil
}

func finish(src *Source, subdir string) (*Source, error) {
	if subdir != "" {
		src.Dir = filepath.Join(src.Dir, filepath.FromSlash(subdir))
	}
	info, err := os.Stat(src.Dir)
	if err != nil {
		return nil, errors.WithHint(errors.Wrapf(err, "library directory"),
			"check library.source and library.subdir")
	}
	if !info.IsDir() {
		return nil, errors.Newf("library path %s is not a directory", src.Dir)
	}
	return src, nil
}

func expandPath(path, pwd string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "expand home directory")
		}
		path = filepath.Join(home, path[2:])
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(pwd, path)
	}
	return filepath.Clean(path), nil
}
