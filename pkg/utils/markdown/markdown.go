package markdown

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// ToHTML renders Markdown to HTML. Raw HTML in the input is dropped. If
// rendering fails the escaped input is returned.
func ToHTML(input string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(input), &buf); err != nil {
		return template.HTMLEscapeString(input)
	}
	return buf.String()
}
