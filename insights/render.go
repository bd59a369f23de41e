package insights

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

// Article bodies are stored as HTML from the rich-text editor; older rows
// may be Markdown. goldmark passes raw HTML through, so both render.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithUnsafe(),
	),
)

// RenderContent returns the body as HTML plus its visible text.
func RenderContent(content string) (string, string) {
	var buf bytes.Buffer
	rendered := content
	if err := md.Convert([]byte(content), &buf); err == nil {
		rendered = buf.String()
	}
	return rendered, PlainText(rendered)
}

// PlainText strips markup, script and style bodies. Block elements are
// separated by a space so adjacent paragraphs do not run together.
func PlainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("script, style").Remove()
	doc.Find("p, li, h1, h2, h3, h4, h5, h6, div, br, td, th, blockquote").AfterHtml(" ")
	return doc.Text()
}

func WordCount(text string) int {
	return len(strings.Fields(text))
}
