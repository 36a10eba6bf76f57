package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/tools/txtar"

	"github.com/teranos/libref/config"
	"github.com/teranos/libref/errors"
)

func unpack(t *testing.T, name string) string {
	t.Helper()
	ar, err := txtar.ParseFile(filepath.Join("testdata", name))
	require.NoError(t, err)

	dir := t.TempDir()
	for _, f := range ar.Files {
		path := filepath.Join(dir, filepath.FromSlash(f.Name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, f.Data, 0o644))
	}
	return dir
}

func testCategories() []config.Category {
	return config.CategoriesConfig{
		Component: config.CategoryConfig{Dir: "components", Group: "Components", Icon: "microchip", Base: "Module"},
		Interface: config.CategoryConfig{Dir: "interfaces", Group: "Interfaces", Icon: "right-left", Base: "ModuleInterface"},
		Trait:     config.CategoryConfig{Dir: "traits", Group: "Traits", Icon: "right-left", Base: "Trait"},
	}.Ordered()
}

func names(entries []*Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestScanCategories(t *testing.T) {
	dir := unpack(t, "index.txtar")
	ix, err := Scan(context.Background(), dir, testCategories())
	require.NoError(t, err)

	assert.Equal(t, []string{"Filter"}, names(ix.Classes(config.CategoryComponent)))
	assert.Equal(t, []string{"ElectricPower", "Power"}, names(ix.Classes(config.CategoryInterface)))
	assert.Equal(t, []string{"can_bridge", "can_bridge_defined"}, names(ix.Classes(config.CategoryTrait)))

	helper, ok := ix.Lookup("Helper")
	require.True(t, ok)
	assert.Empty(t, helper.Category)

	loop, ok := ix.Lookup("Loop")
	require.True(t, ok)
	assert.Empty(t, loop.Category, "cyclic bases resolve to no category")
}

func TestScanSkips(t *testing.T) {
	dir := unpack(t, "index.txtar")
	ix, err := Scan(context.Background(), dir, testCategories())
	require.NoError(t, err)

	_, ok := ix.Lookup("Response")
	assert.False(t, ok, "nested classes are not indexed")
	_, ok = ix.Lookup("Broken")
	assert.False(t, ok, "unparsable files are skipped")
	_, ok = ix.Lookup("Stale")
	assert.False(t, ok, "__pycache__ is skipped")

	assert.Equal(t, 8, ix.Len())
}

func TestDocstringLookup(t *testing.T) {
	dir := unpack(t, "index.txtar")
	ix, err := Scan(context.Background(), dir, testCategories())
	require.NoError(t, err)

	doc, ok := ix.Docstring("Filter")
	assert.True(t, ok)
	assert.Equal(t, "Frequency selective circuit.", doc)

	_, ok = ix.Docstring("Missing")
	assert.False(t, ok)

	e, _ := ix.Lookup("can_bridge")
	assert.Equal(t, "traits/can_bridge.py", e.File)
	assert.Equal(t, 4, e.Line)
}

func TestScanMissingDir(t *testing.T) {
	_, err := Scan(context.Background(), filepath.Join(t.TempDir(), "nope"), testCategories())
	assert.Error(t, err)
}

func TestResolveLocal(t *testing.T) {
	dir := unpack(t, "index.txtar")
	log := zap.NewNop().Sugar()

	src, err := Resolve(context.Background(), dir, "traits", "", log)
	require.NoError(t, err)
	defer src.Cleanup()

	assert.False(t, src.Fetched)
	assert.Equal(t, filepath.Join(dir, "traits"), src.Dir)
	assert.Equal(t, dir, src.Checkout)

	rel, err := Resolve(context.Background(), "traits", "", dir, log)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "traits"), rel.Dir, "relative sources resolve from base")

	_, err = Resolve(context.Background(), dir, "missing", "", log)
	assert.Error(t, err)

	_, err = Resolve(context.Background(), "", "", "", log)
	assert.True(t, errors.Is(err, errors.ErrUnsupportedSource))
}

func TestCheckVersion(t *testing.T) {
	dir := t.TempDir()
	pep621 := filepath.Join(dir, "pep621.toml")
	require.NoError(t, os.WriteFile(pep621, []byte("[project]\nname = \"atopile\"\nversion = \"0.3.12\"\n"), 0o644))
	poetry := filepath.Join(dir, "poetry.toml")
	require.NoError(t, os.WriteFile(poetry, []byte("[tool.poetry]\nname = \"faebryk\"\nversion = \"4.1.0\"\n"), 0o644))

	v, err := CheckVersion(pep621, ">= 0.3, < 0.4")
	require.NoError(t, err)
	assert.Equal(t, "0.3.12", v)

	v, err = CheckVersion(poetry, "")
	require.NoError(t, err)
	assert.Equal(t, "4.1.0", v)

	_, err = CheckVersion(poetry, "^5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not satisfy")
	assert.NotEmpty(t, errors.GetAllHints(err))

	_, err = CheckVersion(pep621, "not a constraint")
	assert.Error(t, err)
}

func TestReadRevision(t *testing.T) {
	dir := unpack(t, "index.txtar")

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("Filter.py")
	require.NoError(t, err)
	hash, err := wt.Commit("add filter", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	rev, err := ReadRevision(filepath.Join(dir, "traits"))
	require.NoError(t, err)
	assert.Equal(t, hash.String(), rev.Hash)
	assert.Len(t, rev.Short(), 12)
	assert.Equal(t, "traits/can_bridge.py", rev.RepoPath(filepath.Join(dir, "traits", "can_bridge.py")))

	lib := &Library{Revision: rev}
	e := &Entry{Path: filepath.Join(dir, "Filter.py"), Line: 4}
	assert.Equal(t,
		"https://github.com/atopile/atopile/blob/"+hash.String()+"/Filter.py#L4",
		lib.SourceURL("https://github.com/atopile/atopile", e))
	assert.Empty(t, lib.SourceURL("", e))

	_, err = ReadRevision(t.TempDir())
	assert.Error(t, err)
}
