package rank

import "unicode/utf8"

const ellipsis = "..."

// excerpt returns the first n runes of body, or of title when body is empty,
// with an ellipsis when text was cut. n <= 0 keeps the whole text.
func excerpt(title, body string, n int) string {
	text := body
	if text == "" {
		text = title
	}
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i] + ellipsis
		}
		count++
	}
	return text
}
