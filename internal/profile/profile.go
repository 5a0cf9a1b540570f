// Package profile resolves a professional profile from a rendered profile page.
package profile

import (
	"github.com/jonathan/postsmith/internal/extract"
	"github.com/jonathan/postsmith/internal/types"
)

// ProfessionLocators are tried in order to find the headline. The list covers several
// markup revisions of the profile page, oldest first.
var ProfessionLocators = []string{
	".pv-text-details__left-panel .text-body-medium",
	".text-body-medium.break-words",
	"div.text-body-medium",
}

// AboutLocators are tried in order to find the biography section.
var AboutLocators = []string{
	"#about ~ .display-flex.full-width .pv-shared-text-with-see-more span:first-child",
	"#about .pv-about__summary-text span",
	`#about ~ div .inline-show-more-text span[aria-hidden="true"]`,
}

// Resolver resolves a Profile using configurable locator lists.
type Resolver struct {
	ProfessionLocators []string
	AboutLocators      []string
}

// NewResolver returns a Resolver that tries the extra locators before the built-in ones.
func NewResolver(extraProfession, extraAbout []string) *Resolver {
	return &Resolver{
		ProfessionLocators: concat(extraProfession, ProfessionLocators),
		AboutLocators:      concat(extraAbout, AboutLocators),
	}
}

// Resolve extracts the profile from doc. It never fails: missing fields fall back to
// the default profession and an empty about text.
func (r *Resolver) Resolve(doc extract.Document) types.Profile {
	professionLocators, aboutLocators := ProfessionLocators, AboutLocators
	if r != nil {
		if len(r.ProfessionLocators) > 0 {
			professionLocators = r.ProfessionLocators
		}
		if len(r.AboutLocators) > 0 {
			aboutLocators = r.AboutLocators
		}
	}

	profession := extract.ResolveField(doc, professionLocators, types.DefaultProfession)
	about := extract.ResolveField(doc, aboutLocators, "")
	return types.NewProfile(profession, about)
}

// Resolve extracts the profile from doc with the built-in locators.
func Resolve(doc extract.Document) types.Profile {
	var r *Resolver
	return r.Resolve(doc)
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
