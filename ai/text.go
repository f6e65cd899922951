package ai

import (
	"strings"
	"unicode/utf8"
)

// PrepareText trims text and cuts it to at most maxChars runes for
// embedding. It returns "" for blank text, which callers should not embed.
func PrepareText(text string, maxChars int) string {
	text = strings.TrimSpace(text)
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	count := 0
	for i := range text {
		if count == maxChars {
			return strings.TrimSpace(text[:i])
		}
		count++
	}
	return text
}

// DocumentText joins a title and body into the text embedded for a document.
func DocumentText(title, body string) string {
	title, body = strings.TrimSpace(title), strings.TrimSpace(body)
	switch {
	case title == "":
		return body
	case body == "":
		return title
	}
	return title + "\n\n" + body
}
