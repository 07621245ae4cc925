package metadata

import "strings"

// SelectionPolicy says which attributes of an entity get populated.
// Exactly one of the two modes is active.
type SelectionPolicy struct {
	RequiredOnly bool
	FormFields   []string // ordered logical names, form-fields mode
}

// RequiredOnlyPolicy selects the application-required attributes.
func RequiredOnlyPolicy() SelectionPolicy {
	return SelectionPolicy{RequiredOnly: true}
}

// FormFieldsPolicy selects the given fields in the given order. The raw value
// is the comma-separated list the popup sends; blanks are dropped.
func FormFieldsPolicy(raw string) SelectionPolicy {
	var names []string
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return SelectionPolicy{FormFields: names}
}

// Valid reports whether the policy names a usable mode.
func (p SelectionPolicy) Valid() bool {
	return p.RequiredOnly || len(p.FormFields) > 0
}
