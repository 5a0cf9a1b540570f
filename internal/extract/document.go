// Package extract resolves text fields from semi-structured markup using ordered fallback locators.
package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document is a queryable rendered page.
// FirstText finds the first element matching locator and returns its text.
// The bool is false when nothing matched or the locator is invalid.
type Document interface {
	FirstText(locator string) (string, bool)
}

// HTMLDocument is a Document backed by a parsed HTML tree.
type HTMLDocument struct {
	doc *goquery.Document
}

// NewHTMLDocument parses HTML from r.
func NewHTMLDocument(r io.Reader) (*HTMLDocument, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &HTMLDocument{doc: doc}, nil
}

// FromString parses an HTML string.
func FromString(html string) (*HTMLDocument, error) {
	return NewHTMLDocument(strings.NewReader(html))
}

// FirstText implements Document. Invalid CSS selectors match nothing.
func (d *HTMLDocument) FirstText(locator string) (string, bool) {
	if d == nil || d.doc == nil || strings.TrimSpace(locator) == "" {
		return "", false
	}
	sel := d.doc.Find(locator)
	if sel.Length() == 0 {
		return "", false
	}
	return NormalizeSpace(sel.First().Text()), true
}

// HTML returns the serialized document.
func (d *HTMLDocument) HTML() string {
	if d == nil || d.doc == nil {
		return ""
	}
	html, err := d.doc.Html()
	if err != nil {
		return ""
	}
	return html
}

// NormalizeSpace collapses inner whitespace runs into single spaces and trims the ends.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
