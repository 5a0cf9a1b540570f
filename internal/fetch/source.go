package fetch

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/jonathan/postsmith/internal/extract"
	"github.com/jonathan/postsmith/internal/types"
)

// Source names where the profile page comes from. Exactly one field should be set;
// HTML takes precedence over Path, and Path over URL.
type Source struct {
	Path string `json:"path,omitempty"`
	URL  string `json:"url,omitempty"`
	HTML string `json:"html,omitempty"`
}

// IsZero reports whether no source was given.
func (s Source) IsZero() bool {
	return strings.TrimSpace(s.Path) == "" && strings.TrimSpace(s.URL) == "" && s.HTML == ""
}

// LoadDocument loads and parses the page named by src.
func LoadDocument(ctx context.Context, src Source, opts *Options) (extract.Document, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	switch {
	case src.HTML != "":
		return parse("inline", src.HTML)
	case strings.TrimSpace(src.Path) != "":
		data, err := os.ReadFile(src.Path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, types.NewPreconditionError("page", "page file %s not found", src.Path)
			}
			return nil, &Error{URL: src.Path, Message: "failed to read page file", Cause: err}
		}
		return parse(src.Path, string(data))
	case strings.TrimSpace(src.URL) != "":
		pageURL := strings.TrimSpace(src.URL)
		if err := CheckPageURL(pageURL, opts.RequiredHost); err != nil {
			return nil, err
		}
		html, err := loadURL(ctx, pageURL, opts)
		if err != nil {
			return nil, err
		}
		return parse(pageURL, html)
	default:
		return nil, types.NewPreconditionError("page", "open a profile page first")
	}
}

func loadURL(ctx context.Context, pageURL string, opts *Options) (string, error) {
	if opts.UseBrowser {
		return Render(ctx, pageURL, opts)
	}
	result, err := URL(ctx, pageURL, opts)
	if err != nil {
		return "", err
	}
	return result.HTML, nil
}

func parse(origin, html string) (extract.Document, error) {
	doc, err := extract.FromString(html)
	if err != nil {
		return nil, &Error{URL: origin, Message: "failed to parse page", Cause: err}
	}
	return doc, nil
}
