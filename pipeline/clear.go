package pipeline

import (
	"os"
	"path/filepath"

	"github.com/teranos/libref/config"
	"github.com/teranos/libref/errors"
)

// Clear removes the .mdx pages from each category directory under outDir,
// creating missing directories. Other files are left alone.
func Clear(outDir string, categories []config.Category) (int, error) {
	removed := 0
	for _, cat := range categories {
		dir := filepath.Join(outDir, cat.Dir)
		if err := os.MkdirAll(dir, config.DefaultDirPermissions); err != nil {
			return removed, errors.Wrapf(err, "create %s", dir)
		}
		pages, err := filepath.Glob(filepath.Join(dir, "*.mdx"))
		if err != nil {
			return removed, errors.Wrapf(err, "list %s", dir)
		}
		for _, page := range pages {
			if err := os.Remove(page); err != nil {
				return removed, errors.Wrapf(err, "remove %s", page)
			}
			removed++
		}
	}
	return removed, nil
}
