// Package nav keeps the Library Reference section of a docs.json
// navigation manifest in sync with the pages on disk.
package nav

import (
	"bytes"
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tailscale/hujson"
	"go.uber.org/zap"

	"github.com/teranos/libref/config"
	"github.com/teranos/libref/errors"
	"github.com/teranos/libref/logger"
)

// Options locates the group to rewrite.
type Options struct {
	Tab        string
	Group      string
	PagePrefix string
	Categories []config.Category
}

// OptionsFromConfig builds Options from the manifest and category config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Tab:        cfg.Manifest.Tab,
		Group:      cfg.Manifest.Group,
		PagePrefix: cfg.Manifest.PagePrefix,
		Categories: cfg.Categories.Ordered(),
	}
}

// Result summarises one update.
type Result struct {
	GroupFound bool
	// Missing lists previously listed pages with no file on disk.
	Missing   []string
	OldCounts map[string]int // by category group name
	NewCounts map[string]int
	// Changed is false when the rewritten manifest is byte-identical.
	Changed bool
}

// Updater rewrites the manifest.
type Updater struct {
	opts   Options
	logger *zap.SugaredLogger
}

// New creates an Updater.
func New(opts Options) *Updater {
	return &Updater{opts: opts, logger: logger.ComponentLogger("nav")}
}

// navGroup is one category entry of the rewritten pages array.
type navGroup struct {
	Group string   `json:"group"`
	Pages []string `json:"pages"`
}

// Update loads the manifest at manifestPath, reports listed pages missing
// from outDir, replaces the group's pages with the pages present in outDir
// and writes the manifest back. Only the pages value changes; every other
// byte of the file, comments included, is kept.
//
// When the tab or group is absent nothing is written and the returned
// error wraps errors.ErrGroupNotFound alongside a Result with GroupFound
// unset.
func (u *Updater) Update(manifestPath, outDir string) (*Result, error) {
	original, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, errors.WithHint(errors.Wrapf(err, "read manifest"),
			"set manifest.path to the site's docs.json")
	}
	root, err := hujson.Parse(original)
	if err != nil {
		return nil, errors.Wrapf(err, "parse manifest %s", manifestPath)
	}

	res := &Result{OldCounts: map[string]int{}, NewCounts: map[string]int{}}

	group := u.findGroup(&root)
	if group == nil {
		return res, errors.WithHintf(
			errors.Wrapf(errors.ErrGroupNotFound, "%q in tab %q of %s", u.opts.Group, u.opts.Tab, manifestPath),
			"add a group named %q under navigation.tabs, or set manifest.tab and manifest.group", u.opts.Group)
	}
	res.GroupFound = true

	old := member(group, "pages")
	res.Missing = u.missing(old, outDir)
	for _, p := range res.Missing {
		u.logger.Warnw("Listed page has no file, dropping it", logger.FieldPath, p)
	}
	u.countOld(old, res.OldCounts)

	groups, err := u.pages(outDir, res.NewCounts)
	if err != nil {
		return nil, err
	}
	if err := setPages(group, groups); err != nil {
		return nil, err
	}

	out := root.Pack()
	res.Changed = !bytes.Equal(out, original)
	if err := os.WriteFile(manifestPath, out, config.DefaultFilePermissions); err != nil {
		return nil, errors.Wrapf(err, "write manifest %s", manifestPath)
	}

	for _, cat := range u.opts.Categories {
		u.logger.Infow("Updated navigation group",
			"group", cat.Group,
			logger.FieldOldCount, res.OldCounts[cat.Group],
			logger.FieldNewCount, res.NewCounts[cat.Group],
		)
	}
	return res, nil
}

// findGroup walks navigation.tabs[tab].groups[group].
func (u *Updater) findGroup(root *hujson.Value) *hujson.Value {
	tabs := member(member(root, "navigation"), "tabs")
	for _, tab := range elements(tabs) {
		if text(member(tab, "tab")) != u.opts.Tab {
			continue
		}
		for _, g := range elements(member(tab, "groups")) {
			if text(member(g, "group")) == u.opts.Group {
				return g
			}
		}
	}
	return nil
}

// setPages replaces the pages value of group, indenting the new array to
// match the line the pages key sits on.
func setPages(group *hujson.Value, groups []navGroup) error {
	obj := group.Value.(*hujson.Object)

	indent := ""
	idx := -1
	for i := range obj.Members {
		if text(&obj.Members[i].Name) == "pages" {
			idx = i
			before := string(obj.Members[i].Name.BeforeExtra)
			if nl := strings.LastIndexByte(before, '\n'); nl >= 0 {
				indent = before[nl+1:]
			}
			break
		}
	}

	data, err := json.MarshalIndent(groups, indent, "  ")
	if err != nil {
		return errors.Wrap(err, "encode navigation pages")
	}

	if idx < 0 {
		wrapped, err := hujson.Parse(append(append([]byte(`{"pages": `), data...), '}'))
		if err != nil {
			return errors.Wrap(err, "build navigation pages")
		}
		m := wrapped.Value.(*hujson.Object).Members[0]
		m.Name.BeforeExtra = hujson.Extra(" ")
		obj.Members = append(obj.Members, m)
		return nil
	}

	pages, err := hujson.Parse(data)
	if err != nil {
		return errors.Wrap(err, "build navigation pages")
	}
	obj.Members[idx].Value.Value = pages.Value
	return nil
}

// member returns the value of key when v is an object holding it.
func member(v *hujson.Value, key string) *hujson.Value {
	if v == nil {
		return nil
	}
	obj, ok := v.Value.(*hujson.Object)
	if !ok {
		return nil
	}
	for i := range obj.Members {
		if text(&obj.Members[i].Name) == key {
			return &obj.Members[i].Value
		}
	}
	return nil
}

// elements returns pointers to the elements of v when it is an array.
func elements(v *hujson.Value) []*hujson.Value {
	if v == nil {
		return nil
	}
	arr, ok := v.Value.(*hujson.Array)
	if !ok {
		return nil
	}
	out := make([]*hujson.Value, len(arr.Elements))
	for i := range arr.Elements {
		out[i] = &arr.Elements[i]
	}
	return out
}

// text returns the string v holds, or "" when it is not a string literal.
func text(v *hujson.Value) string {
	if v == nil {
		return ""
	}
	lit, ok := v.Value.(hujson.Literal)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(lit, &s); err != nil {
		return ""
	}
	return s
}

// missing returns listed page paths, at any nesting depth, whose .mdx file
// is absent. Paths outside the page prefix are not checked.
func (u *Updater) missing(pages *hujson.Value, outDir string) []string {
	var out []string
	prefix := strings.TrimSuffix(u.opts.PagePrefix, "/") + "/"
	walkPages(pages, func(p string) {
		rel, ok := strings.CutPrefix(p, prefix)
		if !ok {
			return
		}
		if _, err := os.Stat(filepath.Join(outDir, filepath.FromSlash(rel)+".mdx")); err != nil {
			out = append(out, p)
		}
	})
	return out
}

func (u *Updater) countOld(pages *hujson.Value, counts map[string]int) {
	for _, entry := range elements(pages) {
		name := text(member(entry, "group"))
		if name == "" {
			continue
		}
		n := 0
		walkPages(entry, func(string) { n++ })
		counts[name] = n
	}
}

// walkPages calls fn for every page path string under v: array elements
// and the "pages" arrays of nested groups.
func walkPages(v *hujson.Value, fn func(string)) {
	if v == nil {
		return
	}
	switch v.Value.(type) {
	case *hujson.Array:
		for _, e := range elements(v) {
			walkPages(e, fn)
		}
	case *hujson.Object:
		walkPages(member(v, "pages"), fn)
	default:
		if s := text(v); s != "" {
			fn(s)
		}
	}
}

// pages builds the replacement list, one group per category, from the
// .mdx files present.
func (u *Updater) pages(outDir string, counts map[string]int) ([]navGroup, error) {
	groups := make([]navGroup, 0, len(u.opts.Categories))
	for _, cat := range u.opts.Categories {
		stems, err := pageStems(filepath.Join(outDir, cat.Dir))
		if err != nil {
			return nil, err
		}
		paths := make([]string, len(stems))
		for i, stem := range stems {
			paths[i] = path.Join(u.opts.PagePrefix, cat.Dir, stem)
		}
		counts[cat.Group] = len(paths)
		groups = append(groups, navGroup{Group: cat.Group, Pages: paths})
	}
	return groups, nil
}

// pageStems lists the sorted stems of regular .mdx files in dir.
// A missing directory has no pages.
func pageStems(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", dir)
	}
	var stems []string
	for _, e := range entries {
		if !e.Type().IsRegular() || filepath.Ext(e.Name()) != ".mdx" {
			continue
		}
		stems = append(stems, strings.TrimSuffix(e.Name(), ".mdx"))
	}
	sort.Strings(stems)
	return stems, nil
}
