package config

import "github.com/teranos/libref/errors"

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Library.Source == "" {
		return errors.WithHint(errors.New("library.source cannot be empty"),
			"point library.source at the faebryk library directory or a git URL")
	}
	if c.Library.Namespace == "" {
		return errors.New("library.namespace cannot be empty")
	}
	if c.Output.Dir == "" {
		return errors.New("output.dir cannot be empty")
	}
	if c.Manifest.Path == "" {
		return errors.New("manifest.path cannot be empty")
	}
	if c.Manifest.Tab == "" || c.Manifest.Group == "" {
		return errors.New("manifest.tab and manifest.group cannot be empty")
	}

	seen := map[string]string{}
	for _, cat := range c.Categories.Ordered() {
		if cat.Dir == "" {
			return errors.Newf("categories.%s.dir cannot be empty", cat.Name)
		}
		if cat.Base == "" {
			return errors.Newf("categories.%s.base cannot be empty", cat.Name)
		}
		if other, ok := seen[cat.Dir]; ok {
			return errors.Newf("categories.%s.dir %q is already used by %s", cat.Name, cat.Dir, other)
		}
		seen[cat.Dir] = cat.Name
	}

	if c.Render.IconTitleLimit < 0 {
		return errors.Newf("render.icon_title_limit must be >= 0, got %d", c.Render.IconTitleLimit)
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		return errors.New("cache.path cannot be empty when cache is enabled")
	}
	if c.Cache.MaxAgeDays < 0 {
		return errors.Newf("cache.max_age_days must be >= 0, got %d", c.Cache.MaxAgeDays)
	}
	if c.Hooks.TimeoutSeconds < 0 {
		return errors.Newf("hooks.timeout_seconds must be >= 0, got %d", c.Hooks.TimeoutSeconds)
	}
	if c.Watch.DebounceMS < 0 {
		return errors.Newf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS)
	}
	return nil
}
