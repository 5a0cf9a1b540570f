package extract

// ResolveField evaluates locators in order against doc and returns the first non-empty text.
// If no locator yields text, or doc is nil, def is returned.
func ResolveField(doc Document, locators []string, def string) string {
	if doc == nil {
		return def
	}
	for _, locator := range locators {
		text, ok := doc.FirstText(locator)
		if ok && text != "" {
			return text
		}
	}
	return def
}

// MapDocument is an in-memory Document keyed by exact locator strings.
// It is useful where a page has already been reduced to locator/text pairs.
type MapDocument map[string]string

// FirstText implements Document.
func (m MapDocument) FirstText(locator string) (string, bool) {
	text, ok := m[locator]
	if !ok {
		return "", false
	}
	return NormalizeSpace(text), true
}
