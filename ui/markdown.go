package ui

import (
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// renderMarkdown converts the markdown produced by the insight and chat
// services into an HTML fragment for the dashboard.
func renderMarkdown(src string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return string(markdown.ToHTML([]byte(src), p, renderer))
}
