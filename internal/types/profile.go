// Package types provides the shared data model used by extraction, prompt composition and generation.
package types

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultProfession is used when no headline could be extracted from the page.
	DefaultProfession = "Professional"
	// MaxAboutChars caps the biography carried into prompts.
	MaxAboutChars = 500
	// MaxArticleChars caps the article text embedded into comment prompts.
	MaxArticleChars = 2000
)

// Profile is the normalized professional summary of the person the content is written for.
// A resolved Profile always has a non-empty Profession; About may be empty.
type Profile struct {
	Profession string `json:"profession"`
	About      string `json:"about"`
}

// NewProfile normalizes raw extracted fields into a Profile.
func NewProfile(profession, about string) Profile {
	profession = strings.TrimSpace(profession)
	if profession == "" {
		profession = DefaultProfession
	}
	return Profile{
		Profession: profession,
		About:      Truncate(strings.TrimSpace(about), MaxAboutChars),
	}
}

// Truncate returns s cut to at most n characters (runes).
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
