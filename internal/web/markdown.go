package web

import (
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// md renders answer text. Raw HTML in the input is not passed through, so
// model output cannot inject markup into the page.
var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

func renderMarkdown(text string) template.HTML {
	var sb strings.Builder
	if err := md.Convert([]byte(text), &sb); err != nil {
		// Fall back to the escaped plain text.
		var esc strings.Builder
		template.HTMLEscape(&esc, []byte(text))
		return template.HTML(esc.String())
	}
	return template.HTML(sb.String())
}
