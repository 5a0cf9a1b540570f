package llm

import "strings"

// CleanOutput trims surrounding whitespace from generated text. The text itself is returned as written.
func CleanOutput(text string) string {
	return strings.TrimSpace(text)
}
