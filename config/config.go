package config

import (
	"path/filepath"
	"strings"
)

// Config is the complete libref configuration.
type Config struct {
	Library    LibraryConfig    `mapstructure:"library" toml:"library"`
	Output     OutputConfig     `mapstructure:"output" toml:"output"`
	Manifest   ManifestConfig   `mapstructure:"manifest" toml:"manifest"`
	Categories CategoriesConfig `mapstructure:"categories" toml:"categories"`
	Extract    ExtractConfig    `mapstructure:"extract" toml:"extract"`
	Render     RenderConfig     `mapstructure:"render" toml:"render"`
	Cache      CacheConfig      `mapstructure:"cache" toml:"cache"`
	Hooks      HooksConfig      `mapstructure:"hooks" toml:"hooks"`
	Watch      WatchConfig      `mapstructure:"watch" toml:"watch"`
	Preview    PreviewConfig    `mapstructure:"preview" toml:"preview"`

	// Root is the directory relative paths resolve against: where the
	// explicit or project config file lives. Empty means the working
	// directory.
	Root string `mapstructure:"-" toml:"-"`
}

// Path resolves a configured path against Root. Absolute and home
// relative paths are returned unchanged.
func (c *Config) Path(p string) string {
	if p == "" || c.Root == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "~") {
		return p
	}
	return filepath.Join(c.Root, p)
}

// LibraryConfig locates the Python component library.
type LibraryConfig struct {
	// Source is a local directory or any go-getter address
	// (git URL, archive, github.com/owner/repo).
	Source string `mapstructure:"source" toml:"source"`
	// Subdir selects the library directory inside a fetched source.
	Subdir string `mapstructure:"subdir" toml:"subdir"`
	// Namespace is the module alias classes are referenced through (F.Electrical).
	Namespace       string `mapstructure:"namespace" toml:"namespace"`
	AttributesFile  string `mapstructure:"attributes_file" toml:"attributes_file"`
	AttributesClass string `mapstructure:"attributes_class" toml:"attributes_class"`
	// RepoURL enables source links, e.g. https://github.com/atopile/atopile
	RepoURL string `mapstructure:"repo_url" toml:"repo_url"`
	// Pyproject is read for the library version; empty disables the check.
	Pyproject         string `mapstructure:"pyproject" toml:"pyproject"`
	VersionConstraint string `mapstructure:"version_constraint" toml:"version_constraint"`
}

// OutputConfig controls where documents are written.
type OutputConfig struct {
	Dir string `mapstructure:"dir" toml:"dir"`
	// Clear removes existing pages before a generation; false overwrites
	// in place and keeps orphans.
	Clear bool `mapstructure:"clear" toml:"clear"`
}

// ManifestConfig locates the navigation group rewritten after generation.
type ManifestConfig struct {
	Path       string `mapstructure:"path" toml:"path"`
	Tab        string `mapstructure:"tab" toml:"tab"`
	Group      string `mapstructure:"group" toml:"group"`
	PagePrefix string `mapstructure:"page_prefix" toml:"page_prefix"`
}

// CategoryConfig describes one document category.
type CategoryConfig struct {
	Dir   string `mapstructure:"dir" toml:"dir"`
	Group string `mapstructure:"group" toml:"group"`
	Icon  string `mapstructure:"icon" toml:"icon"`
	// Base is the root class every member of the category derives from.
	Base string `mapstructure:"base" toml:"base"`
}

// CategoriesConfig holds the three fixed categories.
type CategoriesConfig struct {
	Component CategoryConfig `mapstructure:"component" toml:"component"`
	Interface CategoryConfig `mapstructure:"interface" toml:"interface"`
	Trait     CategoryConfig `mapstructure:"trait" toml:"trait"`
}

// ExtractConfig names the conventions the extractor recognises.
type ExtractConfig struct {
	ParameterFactories     []string `mapstructure:"parameter_factories" toml:"parameter_factories"`
	ListFactories          []string `mapstructure:"list_factories" toml:"list_factories"`
	TraitFieldFactories    []string `mapstructure:"trait_field_factories" toml:"trait_field_factories"`
	PropertyDecorators     []string `mapstructure:"property_decorators" toml:"property_decorators"`
	RuntimeFieldDecorators []string `mapstructure:"runtime_field_decorators" toml:"runtime_field_decorators"`
	// TraitHeuristics enables return-expression pattern matching for
	// runtime fields missing from DeclaredTraits.
	TraitHeuristics bool `mapstructure:"trait_heuristics" toml:"trait_heuristics"`
	// DeclaredTraits maps runtime-field method names to trait classes.
	DeclaredTraits map[string]string `mapstructure:"declared_traits" toml:"declared_traits"`
}

// RenderConfig controls document content.
type RenderConfig struct {
	ExcludedAttributes   []string `mapstructure:"excluded_attributes" toml:"excluded_attributes"`
	FunctionalTraits     []string `mapstructure:"functional_traits" toml:"functional_traits"`
	IconTitleLimit       int      `mapstructure:"icon_title_limit" toml:"icon_title_limit"`
	DefaultParameterType string   `mapstructure:"default_parameter_type" toml:"default_parameter_type"`
	SourceLinks          bool     `mapstructure:"source_links" toml:"source_links"`
}

// CacheConfig configures the extraction cache database.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled"`
	Path    string `mapstructure:"path" toml:"path"`
	// MaxAgeDays prunes entries unused for longer when the cache opens.
	// Zero keeps everything.
	MaxAgeDays int `mapstructure:"max_age_days" toml:"max_age_days"`
}

// HooksConfig lists shell commands run after a successful generation.
type HooksConfig struct {
	PostGenerate   []string `mapstructure:"post_generate" toml:"post_generate"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds" toml:"timeout_seconds"`
}

// WatchConfig configures the source watcher.
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" toml:"debounce_ms"`
}

// PreviewConfig configures the preview server.
type PreviewConfig struct {
	Addr string `mapstructure:"addr" toml:"addr"`
}

// Category is a resolved category with its stable name.
type Category struct {
	Name string
	CategoryConfig
}

// Category names, in document order.
const (
	CategoryComponent = "component"
	CategoryInterface = "interface"
	CategoryTrait     = "trait"
)

// Ordered returns the categories in their fixed order.
func (c CategoriesConfig) Ordered() []Category {
	return []Category{
		{Name: CategoryComponent, CategoryConfig: c.Component},
		{Name: CategoryInterface, CategoryConfig: c.Interface},
		{Name: CategoryTrait, CategoryConfig: c.Trait},
	}
}

// Lookup returns the category with the given name.
func (c CategoriesConfig) Lookup(name string) (Category, bool) {
	for _, cat := range c.Ordered() {
		if cat.Name == name {
			return cat, true
		}
	}
	return Category{}, false
}
