package fetch

import (
	"net/url"
	"strings"

	"github.com/jonathan/postsmith/internal/types"
)

// MatchesHost reports whether urlStr points at host or one of its subdomains.
func MatchesHost(urlStr, host string) bool {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	got := strings.ToLower(parsed.Hostname())
	want := strings.ToLower(strings.TrimPrefix(host, "."))
	return got == want || strings.HasSuffix(got, "."+want)
}

// CheckPageURL validates a page URL before anything is loaded.
func CheckPageURL(urlStr, requiredHost string) error {
	parsed, err := url.Parse(strings.TrimSpace(urlStr))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return types.NewPreconditionError("page_url", "open a profile page first: %q is not a valid URL", urlStr)
	}
	if requiredHost != "" && !MatchesHost(urlStr, requiredHost) {
		return types.NewPreconditionError("page_url", "open a %s profile page first", requiredHost)
	}
	return nil
}
