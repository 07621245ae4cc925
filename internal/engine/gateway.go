package engine

import (
	"context"

	"dynaseed/internal/metadata"
)

// Gateway is the slice of the Dynamics Web API the engine consumes. The
// production implementation is dynamics.Client; tests substitute fakes so no
// synthesis rule needs a live environment.
type Gateway interface {
	AttributeMetadata(ctx context.Context, entity string) ([]metadata.Attribute, error)
	CollectionName(ctx context.Context, entity string) (string, error)
	NavigationPropertyName(ctx context.Context, referencingAttribute, referencedEntity string) (string, error)
	OptionSetValues(ctx context.Context, entity, attribute string) ([]metadata.Option, error)
	Forms(ctx context.Context, entity string) ([]metadata.Form, error)
	FormXML(ctx context.Context, formID string) (string, error)
	SampleRecordID(ctx context.Context, entity string) (string, error)
	CreateRecord(ctx context.Context, collection string, payload map[string]any) (string, error)
}
