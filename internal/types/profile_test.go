package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProfile_DefaultsProfession(t *testing.T) {
	p := NewProfile("   ", "Builds systems.")
	assert.Equal(t, DefaultProfession, p.Profession)
	assert.Equal(t, "Builds systems.", p.About)
}

func TestNewProfile_CapsAbout(t *testing.T) {
	p := NewProfile("Engineer", strings.Repeat("a", MaxAboutChars*2))
	assert.Len(t, p.About, MaxAboutChars)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "hi", Truncate("hi", 10))
	assert.Equal(t, "", Truncate("hi", 0))
}
