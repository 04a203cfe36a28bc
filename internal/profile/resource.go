// Package profile edits the personal information of the signed-in operator.
// The name and the birthday are saved separately; after each save the person
// is read again and merged into the page.
package profile

import (
	"github.com/podkrepi-bg/admin/internal/forms"
)

// Name is the route segment and translation prefix.
const Name = "profile"

// Sections of the page that are saved on their own.
const (
	SectionName     = "name"
	SectionBirthday = "birthday"
)

var sectionOrder = []string{SectionName, SectionBirthday}

var sectionFields = map[string][]string{
	SectionName:     {"firstName", "lastName"},
	SectionBirthday: {"birthday"},
}

// Fields returns the fields saved by section.
func Fields(section string) ([]string, bool) {
	f, ok := sectionFields[section]
	return f, ok
}

// Schema returns the personal information schema.
func Schema() *forms.Schema {
	return forms.NewSchema(Name,
		forms.Text("firstName").Required().Trim().PersonName().Max(50),
		forms.Text("lastName").Required().Trim().PersonName().Max(50),
		forms.Date("birthday").NotFuture(),
	)
}
