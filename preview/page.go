package preview

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/teranos/libref/errors"
	"github.com/teranos/libref/render"
)

// Page is a generated document converted for the browser.
type Page struct {
	render.FrontMatter
	Body string // HTML
}

// Converter turns MDX pages into HTML. The documentation site's components
// are rewritten into plain elements.
type Converter struct {
	md goldmark.Markdown
}

// NewConverter creates a converter. Raw HTML passes through so the MDX
// components survive markdown conversion.
func NewConverter() *Converter {
	return &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Convert parses the front matter of doc and renders its body.
func (c *Converter) Convert(doc []byte) (*Page, error) {
	fm, body, err := render.ParseFrontMatter(string(doc))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := c.md.Convert([]byte(isolateBlocks(body)), &buf); err != nil {
		return nil, errors.Wrap(err, "convert markdown")
	}

	out, err := rewriteComponents(buf.String())
	if err != nil {
		return nil, err
	}
	return &Page{FrontMatter: fm, Body: out}, nil
}

var blockTags = []string{"ParamField", "RequestExample"}

// isolateBlocks puts blank lines inside wrapper component tags. Without
// them a closing tag joins the preceding paragraph and a fenced block
// after an opening tag is swallowed as raw HTML.
func isolateBlocks(body string) string {
	for _, tag := range blockTags {
		body = strings.ReplaceAll(body, "<"+tag+">\n", "<"+tag+">\n\n")
		body = strings.ReplaceAll(body, "\n</"+tag+">", "\n\n</"+tag+">")
	}
	return body
}

// rewriteComponents replaces ParamField and RequestExample elements.
func rewriteComponents(fragment string) (string, error) {
	nodes, err := nethtml.ParseFragment(strings.NewReader(fragment), &nethtml.Node{
		Type:     nethtml.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return "", errors.Wrap(err, "parse html")
	}
	root := &nethtml.Node{Type: nethtml.ElementNode, Data: "div"}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	doc := goquery.NewDocumentFromNode(root)

	doc.Find("paramfield").Each(func(_ int, s *goquery.Selection) {
		inner, _ := s.Html()
		var b strings.Builder
		b.WriteString(`<div class="param"><div class="param-head"><code>`)
		b.WriteString(nethtml.EscapeString(s.AttrOr("path", "")))
		b.WriteString(`</code> <span class="type">`)
		b.WriteString(nethtml.EscapeString(s.AttrOr("type", "")))
		b.WriteString(`</span></div>`)
		b.WriteString(strings.TrimSpace(inner))
		b.WriteString(`</div>`)
		s.ReplaceWithHtml(b.String())
	})
	doc.Find("requestexample").Each(func(_ int, s *goquery.Selection) {
		inner, _ := s.Html()
		s.ReplaceWithHtml(`<section class="example"><h3>Example</h3>` + strings.TrimSpace(inner) + `</section>`)
	})

	return doc.Html()
}
