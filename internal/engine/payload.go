package engine

import (
	"context"
	"fmt"

	"dynaseed/internal/metadata"
)

// SynthesizedValue is one populated field heading into the creation payload.
type SynthesizedValue struct {
	Attribute metadata.Attribute
	Value     any
}

// BuildPayload assembles synthesized values into a creation payload. Plain
// fields map logical name to value; reference fields are rewritten to the
// navigation-property bind form:
//
//	"<navigationProperty>@odata.bind": "/<collection>(<id>)"
//
// resolving the navigation property and the referenced collection through the
// gateway. When the same target property is produced twice, the later field
// wins; no tie-break is promised.
func BuildPayload(ctx context.Context, gw Gateway, values []SynthesizedValue) (map[string]any, error) {
	payload := make(map[string]any, len(values))
	for i := range values {
		attr := &values[i].Attribute
		if !attr.IsReference() {
			payload[attr.LogicalName] = values[i].Value
			continue
		}

		id, ok := values[i].Value.(string)
		if !ok || id == "" {
			continue
		}
		referenced := referencedEntity(attr)
		if referenced == "" {
			continue
		}

		nav, err := gw.NavigationPropertyName(ctx, attr.LogicalName, referenced)
		if err != nil {
			return nil, err
		}
		collection, err := gw.CollectionName(ctx, referenced)
		if err != nil {
			return nil, err
		}
		payload[nav+"@odata.bind"] = fmt.Sprintf("/%s(%s)", collection, id)
	}
	return payload, nil
}

func referencedEntity(attr *metadata.Attribute) string {
	if attr.AttributeType == metadata.TypeCustomer {
		return customerRef
	}
	if len(attr.Targets) > 0 {
		return attr.Targets[0]
	}
	return ""
}
