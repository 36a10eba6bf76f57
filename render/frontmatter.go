package render

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teranos/libref/errors"
)

// FrontMatter is the YAML header of a page.
type FrontMatter struct {
	Title       string `yaml:"title"`
	Icon        string `yaml:"icon,omitempty"`
	Description string `yaml:"description"`
}

// ParseFrontMatter splits a page into its decoded header and body.
func ParseFrontMatter(doc string) (FrontMatter, string, error) {
	rest, ok := strings.CutPrefix(doc, "---\n")
	if !ok {
		return FrontMatter{}, doc, errors.New("page has no front matter")
	}
	header, body, ok := strings.Cut(rest, "\n---\n")
	if !ok {
		return FrontMatter{}, doc, errors.New("unterminated front matter")
	}

	var fm FrontMatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return FrontMatter{}, doc, errors.Wrap(err, "decode front matter")
	}
	return fm, strings.TrimPrefix(body, "\n"), nil
}
