package render

import (
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

// policy sanitizes rendered job descriptions and messages before they reach
// a template
var policy = bluemonday.UGCPolicy()

// Markdown converts markdown text to safe HTML for use in templates
func Markdown(markdown string) template.HTML {
	unsafe := blackfriday.Run([]byte(markdown))
	return template.HTML(policy.SanitizeBytes(unsafe))
}
