package profile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/postsmith/internal/extract"
	"github.com/jonathan/postsmith/internal/types"
)

func TestResolve_LegacyMarkup(t *testing.T) {
	html := `<html><body>
<div class="pv-text-details__left-panel"><div class="text-body-medium">Product Designer</div></div>
<section><div id="about"></div>
<div class="display-flex full-width"><div class="pv-shared-text-with-see-more"><span>Designs calm software.</span><span>hidden copy</span></div></div>
</section></body></html>`
	doc, err := extract.FromString(html)
	require.NoError(t, err)

	p := Resolve(doc)
	assert.Equal(t, "Product Designer", p.Profession)
	assert.Equal(t, "Designs calm software.", p.About)
}

func TestResolve_NewerMarkup(t *testing.T) {
	html := `<html><body>
<div class="text-body-medium">Data Scientist | ML</div>
<div id="about"></div>
<div><div class="inline-show-more-text"><span aria-hidden="true">I like models.</span></div></div>
</body></html>`
	doc, err := extract.FromString(html)
	require.NoError(t, err)

	p := Resolve(doc)
	assert.Equal(t, "Data Scientist | ML", p.Profession)
	assert.Equal(t, "I like models.", p.About)
}

func TestResolve_EmptyPageUsesDefaults(t *testing.T) {
	doc, err := extract.FromString("<html><body><p>nothing here</p></body></html>")
	require.NoError(t, err)

	p := Resolve(doc)
	assert.Equal(t, types.DefaultProfession, p.Profession)
	assert.Empty(t, p.About)
}

func TestResolve_CapsAbout(t *testing.T) {
	doc := extract.MapDocument{
		AboutLocators[1]: strings.Repeat("word ", 300),
	}

	p := Resolve(doc)
	assert.NotEmpty(t, p.Profession)
	assert.LessOrEqual(t, len([]rune(p.About)), types.MaxAboutChars)
}

func TestResolver_ExtraLocatorsTakePriority(t *testing.T) {
	doc := extract.MapDocument{
		".custom-headline":    "Founder",
		ProfessionLocators[0]: "Engineer",
	}

	r := NewResolver([]string{".custom-headline"}, nil)
	assert.Equal(t, "Founder", r.Resolve(doc).Profession)
	assert.Equal(t, "Engineer", Resolve(doc).Profession)
}

func TestResolve_NilDocument(t *testing.T) {
	p := Resolve(nil)
	assert.Equal(t, types.DefaultProfession, p.Profession)
	assert.Empty(t, p.About)
}
