// Package render turns ClassRecords into MDX reference pages.
package render

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/teranos/libref/config"
	"github.com/teranos/libref/extract"
)

// Options controls page content. Built once from config.
type Options struct {
	Categories           config.CategoriesConfig
	PagePrefix           string
	ExcludedAttributes   []string
	FunctionalTraits     []string
	IconTitleLimit       int
	DefaultParameterType string
}

// OptionsFromConfig builds Options from the render, manifest and category config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Categories:           cfg.Categories,
		PagePrefix:           cfg.Manifest.PagePrefix,
		ExcludedAttributes:   cfg.Render.ExcludedAttributes,
		FunctionalTraits:     cfg.Render.FunctionalTraits,
		IconTitleLimit:       cfg.Render.IconTitleLimit,
		DefaultParameterType: cfg.Render.DefaultParameterType,
	}
}

// Renderer renders pages. It holds no state besides its options, so
// rendering is deterministic.
type Renderer struct {
	opts Options
}

// New creates a Renderer.
func New(opts Options) *Renderer {
	if opts.DefaultParameterType == "" {
		opts.DefaultParameterType = "string"
	}
	return &Renderer{opts: opts}
}

// Render produces the page for rec. globals may be nil.
func (r *Renderer) Render(rec *extract.ClassRecord, globals *extract.GlobalAttributes) string {
	return r.RenderWithSource(rec, globals, "")
}

// RenderWithSource is Render with a link to the class definition placed
// after the front matter. An empty sourceURL adds nothing.
func (r *Renderer) RenderWithSource(rec *extract.ClassRecord, globals *extract.GlobalAttributes, sourceURL string) string {
	var b strings.Builder

	r.writeFrontMatter(&b, rec)
	if sourceURL != "" {
		fmt.Fprintf(&b, "[Source](%s)\n\n", sourceURL)
	}

	if len(rec.InitArgs) > 0 {
		b.WriteString("## Init Args\n\n")
		for _, arg := range rec.InitArgs {
			typ := arg.Type
			if typ == "" {
				typ = r.opts.DefaultParameterType
			}
			desc := ""
			if arg.Default != "" {
				desc = "Default: `" + arg.Default + "`"
			}
			writeField(&b, arg.Name, typ, desc)
		}
	}

	r.writeSection(&b, "Parameters", rec.FieldsOf(extract.KindParameter), func(f extract.FieldRecord) string {
		if f.Type == "" {
			return r.opts.DefaultParameterType
		}
		return f.Type
	})
	r.writeSection(&b, "Interfaces", rec.FieldsOf(extract.KindInterface), func(f extract.FieldRecord) string {
		if f.Multiplicity > 1 {
			return fmt.Sprintf("%s[%d]", f.Type, f.Multiplicity)
		}
		return f.Type
	})
	r.writeSection(&b, "Properties", rec.FieldsOf(extract.KindProperty), func(f extract.FieldRecord) string {
		return strings.TrimSpace(f.Type + " readonly")
	})

	if traits := r.functionalTraits(rec); len(traits) > 0 {
		b.WriteString("## Traits\n\n")
		for _, t := range traits {
			fmt.Fprintf(&b, "[%s](%s)\n\n", t.Type, r.TraitLink(t.Type))
			if desc := strings.TrimSpace(t.Description); desc != "" {
				b.WriteString(desc)
				b.WriteString("\n\n")
			}
		}
	}

	if rec.Category != config.CategoryTrait {
		r.writeGlobals(&b, globals)
	}

	for _, ex := range rec.Examples {
		fmt.Fprintf(&b, "<RequestExample>\n```%s Basic Usage\n%s\n```\n</RequestExample>\n", ex.Language, ex.Code)
	}

	return b.String()
}

func (r *Renderer) writeFrontMatter(b *strings.Builder, rec *extract.ClassRecord) {
	b.WriteString("---\n")
	fmt.Fprintf(b, "title: \"%s\"\n", escape(rec.Name))
	if icon := r.icon(rec); icon != "" {
		fmt.Fprintf(b, "icon: \"%s\"\n", escape(icon))
	}
	fmt.Fprintf(b, "description: \"%s\"\n", escape(Summary(rec.Docstring)))
	b.WriteString("---\n\n")
}

func (r *Renderer) icon(rec *extract.ClassRecord) string {
	if r.opts.IconTitleLimit > 0 && len(rec.Name) > r.opts.IconTitleLimit {
		return ""
	}
	cat, ok := r.opts.Categories.Lookup(rec.Category)
	if !ok {
		return ""
	}
	return cat.Icon
}

func (r *Renderer) writeSection(b *strings.Builder, title string, fields []extract.FieldRecord, typeOf func(extract.FieldRecord) string) {
	if len(fields) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	for _, f := range fields {
		writeField(b, f.Name, typeOf(f), f.Description)
	}
}

func (r *Renderer) writeGlobals(b *strings.Builder, globals *extract.GlobalAttributes) {
	if globals == nil {
		return
	}
	var attrs []extract.FieldRecord
	for _, a := range globals.Attributes {
		if !slices.Contains(r.opts.ExcludedAttributes, a.Name) {
			attrs = append(attrs, a)
		}
	}
	if len(attrs) == 0 {
		return
	}

	b.WriteString("## Global Attributes\n\n")
	if doc := strings.TrimSpace(globals.Docstring); doc != "" {
		b.WriteString(doc)
		b.WriteString("\n\n")
	}
	for _, a := range attrs {
		writeField(b, a.Name, a.Type, a.Description)
	}
}

func (r *Renderer) functionalTraits(rec *extract.ClassRecord) []extract.FieldRecord {
	traits := rec.FieldsOf(extract.KindTrait)
	if len(r.opts.FunctionalTraits) == 0 {
		return traits
	}
	var out []extract.FieldRecord
	for _, t := range traits {
		if slices.Contains(r.opts.FunctionalTraits, t.Type) {
			out = append(out, t)
		}
	}
	return out
}

// TraitLink is the site path of a trait's page.
func (r *Renderer) TraitLink(trait string) string {
	return "/" + path.Join(r.opts.PagePrefix, r.opts.Categories.Trait.Dir, Slug(trait))
}

// IsFunctionalTrait reports whether trait gets its own page.
func (r *Renderer) IsFunctionalTrait(trait string) bool {
	return len(r.opts.FunctionalTraits) == 0 || slices.Contains(r.opts.FunctionalTraits, trait)
}

// writeField writes one ParamField block. The block is always emitted;
// the description body only when non-empty.
func writeField(b *strings.Builder, name, typ, desc string) {
	typ = strings.ReplaceAll(typ, "'", `"`)
	desc = strings.TrimSpace(desc)
	if desc == "" {
		fmt.Fprintf(b, "<ParamField path='%s' type='%s'>\n</ParamField>\n\n", name, typ)
		return
	}
	fmt.Fprintf(b, "<ParamField path='%s' type='%s'>\n\n%s\n</ParamField>\n\n", name, typ, desc)
}

// Summary returns the first paragraph of doc on one line.
func Summary(doc string) string {
	doc = strings.TrimSpace(doc)
	if i := strings.Index(doc, "\n\n"); i >= 0 {
		doc = doc[:i]
	}
	return strings.Join(strings.Fields(doc), " ")
}

// escape makes s safe inside a double-quoted YAML scalar.
func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// Slug is the page file stem for a class.
func Slug(name string) string {
	return strings.ToLower(name)
}

// FileName is the page file name for a class.
func FileName(name string) string {
	return Slug(name) + ".mdx"
}
