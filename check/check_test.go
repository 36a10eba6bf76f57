package check

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/libref/config"
	"github.com/teranos/libref/errors"
	libreftest "github.com/teranos/libref/internal/testing"
	"github.com/teranos/libref/pipeline"
)

var categories = config.CategoriesConfig{
	Component: config.CategoryConfig{Dir: "components"},
	Interface: config.CategoryConfig{Dir: "interfaces"},
	Trait:     config.CategoryConfig{Dir: "traits"},
}.Ordered()

func writePage(t *testing.T, dir, rel, content string) {
	libreftest.WriteFile(t, dir, rel, content)
}

func TestCompareDirectoriesIdentical(t *testing.T) {
	fresh, existing := t.TempDir(), t.TempDir()
	for _, dir := range []string{fresh, existing} {
		writePage(t, dir, "components/resistor.mdx", "---\ntitle: \"Resistor\"\n---\n\n")
		writePage(t, dir, "traits/can_bridge.mdx", "---\ntitle: \"can_bridge\"\n---\n\n")
	}
	writePage(t, existing, "components/notes.txt", "ignored")

	res, err := CompareDirectories(fresh, existing, categories)
	require.NoError(t, err)
	assert.True(t, res.UpToDate)
	assert.Empty(t, res.Changes)
	assert.NoError(t, res.Err())
}

func TestCompareDirectoriesReportsDiffs(t *testing.T) {
	fresh, existing := t.TempDir(), t.TempDir()
	writePage(t, fresh, "components/resistor.mdx", "---\ntitle: \"Resistor\"\n---\n\n## Parameters\n")
	writePage(t, existing, "components/resistor.mdx", "---\ntitle: \"Resistor\"\n---\n\n")
	writePage(t, fresh, "interfaces/electrical.mdx", "new\n")
	writePage(t, existing, "traits/gone.mdx", "old\n")

	res, err := CompareDirectories(fresh, existing, categories)
	require.NoError(t, err)
	require.False(t, res.UpToDate)
	require.Len(t, res.Changes, 3)

	assert.Equal(t, Change{Path: "components/resistor.mdx", Kind: Modified, Diff: res.Changes[0].Diff}, res.Changes[0])
	assert.Contains(t, res.Changes[0].Diff, "--- a/components/resistor.mdx")
	assert.Contains(t, res.Changes[0].Diff, "+++ b/components/resistor.mdx")
	assert.Contains(t, res.Changes[0].Diff, "+## Parameters")

	assert.Equal(t, Missing, res.Changes[1].Kind)
	assert.Equal(t, "interfaces/electrical.mdx", res.Changes[1].Path)
	assert.Equal(t, Stale, res.Changes[2].Kind)
	assert.Contains(t, res.Changes[2].Diff, "-old")

	assert.True(t, errors.Is(res.Err(), errors.ErrOutOfDate))
	assert.Equal(t, "modified  components/resistor.mdx\nmissing  interfaces/electrical.mdx\nstale  traits/gone.mdx\n", res.Summary())
}

func TestRunDetectsDriftUntilRegenerated(t *testing.T) {
	cfg := libreftest.UnpackProject(t, filepath.Join("testdata", "project.txtar"), "")
	ctx := context.Background()

	p := pipeline.New(cfg)
	defer p.Close()

	res, err := Run(ctx, p)
	require.NoError(t, err)
	assert.False(t, res.UpToDate)
	var paths []string
	for _, c := range res.Changes {
		paths = append(paths, c.Path)
	}
	assert.Equal(t, []string{"components/resistor.mdx", "interfaces/electrical.mdx", "docs.json"}, paths)
	assert.Regexp(t, `\n\+\s+"atopile/api-reference/components/resistor"`, res.Changes[2].Diff)

	_, err = p.Run(ctx, pipeline.FullRun)
	require.NoError(t, err)

	res, err = Run(ctx, p)
	require.NoError(t, err)
	assert.True(t, res.UpToDate, res.Summary())
}
