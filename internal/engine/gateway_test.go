package engine

import (
	"context"
	"fmt"

	"dynaseed/internal/dynamics"
	"dynaseed/internal/metadata"
)

// fakeGateway satisfies Gateway from fixed data so pipeline tests run without
// a live environment. Creation calls are recorded for assertions.
type fakeGateway struct {
	attrs    []metadata.Attribute
	attrsErr error

	options    []metadata.Option
	optionsErr error

	sampleIDs   map[string]string // entity -> existing row id; absent means empty collection
	collections map[string]string // entity -> collection name
	navProps    map[string]string // "attr>entity" -> navigation property

	forms   []metadata.Form
	formXML map[string]string

	create  func(collection string, payload map[string]any) (string, error)
	created []createCall
}

type createCall struct {
	Collection string
	Payload    map[string]any
}

func (f *fakeGateway) AttributeMetadata(_ context.Context, _ string) ([]metadata.Attribute, error) {
	return f.attrs, f.attrsErr
}

func (f *fakeGateway) CollectionName(_ context.Context, entity string) (string, error) {
	if name, ok := f.collections[entity]; ok {
		return name, nil
	}
	return entity + "s", nil
}

func (f *fakeGateway) NavigationPropertyName(_ context.Context, referencingAttribute, referencedEntity string) (string, error) {
	if nav, ok := f.navProps[referencingAttribute+">"+referencedEntity]; ok {
		return nav, nil
	}
	return referencingAttribute, nil
}

func (f *fakeGateway) OptionSetValues(_ context.Context, _, _ string) ([]metadata.Option, error) {
	return f.options, f.optionsErr
}

func (f *fakeGateway) Forms(_ context.Context, _ string) ([]metadata.Form, error) {
	return f.forms, nil
}

func (f *fakeGateway) FormXML(_ context.Context, formID string) (string, error) {
	xml, ok := f.formXML[formID]
	if !ok {
		return "", fmt.Errorf("no form %s", formID)
	}
	return xml, nil
}

func (f *fakeGateway) SampleRecordID(_ context.Context, entity string) (string, error) {
	id, ok := f.sampleIDs[entity]
	if !ok {
		return "", dynamics.ErrNoCandidateRecords
	}
	return id, nil
}

func (f *fakeGateway) CreateRecord(_ context.Context, collection string, payload map[string]any) (string, error) {
	copied := make(map[string]any, len(payload))
	for k, v := range payload {
		copied[k] = v
	}
	f.created = append(f.created, createCall{Collection: collection, Payload: copied})
	if f.create != nil {
		return f.create(collection, payload)
	}
	return "abc-123", nil
}
