package common

import (
	"html"
	"regexp"
)

var htmlTag = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)

// StripHTML removes markup tags and unescapes entities, leaving plain text.
func StripHTML(text string) string {
	return html.UnescapeString(htmlTag.ReplaceAllString(text, ""))
}
