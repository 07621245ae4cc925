package engine

import "dynaseed/internal/metadata"

// SelectFields resolves a selection policy against an entity's attribute
// metadata and returns the attributes to populate, in order.
//
// Required-only mode keeps the application-required attributes in metadata
// order. Form-fields mode walks the requested names in their given order and
// keeps each one whose metadata entry exists and is valid for create; the
// rest come back in skipped so the caller can emit a diagnostic. A field on a
// form that is not creatable (calculated, read-only) must not abort the run.
func SelectFields(attrs []metadata.Attribute, policy metadata.SelectionPolicy) (selected []metadata.Attribute, skipped []string) {
	if policy.RequiredOnly {
		for _, a := range attrs {
			if a.IsApplicationRequired() {
				selected = append(selected, a)
			}
		}
		return selected, nil
	}

	for _, name := range policy.FormFields {
		found := false
		for _, a := range attrs {
			if a.LogicalName == name && a.IsValidForCreate {
				selected = append(selected, a)
				found = true
				break
			}
		}
		if !found {
			skipped = append(skipped, name)
		}
	}
	return selected, skipped
}
