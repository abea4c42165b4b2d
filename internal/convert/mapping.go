// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"strings"

	"github.com/pdiddy/deckconv/pkg/model"
)

// FallbackLaw is the Radioss law used for materials with no mapping.
const FallbackLaw = "LAW2"

// FallbackContact is the Radioss interface used for contacts with no mapping.
const FallbackContact = model.ContactType7

var materialLaws = map[string]string{
	"ELASTIC":                     "LAW2",
	"PLASTIC_KINEMATIC":           "LAW36",
	"PIECEWISE_LINEAR_PLASTICITY": "LAW36",
	"001":                         "LAW2",
	"003":                         "LAW36",
	"024":                         "LAW36",
}

// radiossLaws are the law tags the material table produces; only these
// pass through unchanged.
var radiossLaws = map[string]bool{"LAW2": true, "LAW36": true}

// radiossContacts are the interface types the writer and parser share.
var radiossContacts = map[model.ContactType]bool{
	model.ContactType2:  true,
	model.ContactType7:  true,
	model.ContactType11: true,
	model.ContactType19: true,
}

var contactTypes = map[string]model.ContactType{
	"AUTOMATIC":                    model.ContactType7,
	"AUTOMATIC_SURFACE_TO_SURFACE": model.ContactType7,
	"TIED_SURFACE_TO_SURFACE":      model.ContactType2,
	"NODES_TO_SURFACE":             model.ContactType11,
}

// MaterialLaw maps an LS-DYNA material keyword, with or without its MAT_
// prefix, to a Radioss law tag. The tags the table produces (LAW2, LAW36)
// map to themselves. Anything else, other LAWn tags included, returns
// FallbackLaw and false.
func MaterialLaw(keyword string) (string, bool) {
	k := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(keyword)), "MAT_")
	if radiossLaws[k] {
		return k, true
	}
	if law, ok := materialLaws[k]; ok {
		return law, true
	}
	return FallbackLaw, false
}

// ContactType maps an LS-DYNA contact keyword, with or without its
// CONTACT_ prefix, to a Radioss interface type. TYPE2, TYPE7, TYPE11 and
// TYPE19 map to themselves. Anything else returns FallbackContact and
// false.
func ContactType(keyword string) (model.ContactType, bool) {
	k := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(keyword)), "CONTACT_")
	if radiossContacts[model.ContactType(k)] {
		return model.ContactType(k), true
	}
	if t, ok := contactTypes[k]; ok {
		return t, true
	}
	return FallbackContact, false
}
