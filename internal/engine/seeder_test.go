package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"dynaseed/internal/dynamics"
	"dynaseed/internal/metadata"
)

func TestRun_RequiredOnly_SingleStringField(t *testing.T) {
	gw := &fakeGateway{
		attrs: []metadata.Attribute{
			{
				LogicalName: "lastname", AttributeType: metadata.TypeString, MaxLength: 50,
				IsValidForCreate: true, IsRequiredForForm: true, RequiredLevel: appRequired(),
			},
		},
		collections: map[string]string{"contact": "contacts"},
	}

	var results []RecordResult
	err := NewSeeder(gw).Run(context.Background(), Request{
		Entity:   "contact",
		Quantity: 1,
		Policy:   metadata.RequiredOnlyPolicy(),
	}, func(r RecordResult) { results = append(results, r) })
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(gw.created) != 1 {
		t.Fatalf("expected 1 creation, got %d", len(gw.created))
	}
	if gw.created[0].Collection != "contacts" {
		t.Fatalf("expected collection contacts, got %s", gw.created[0].Collection)
	}
	want := map[string]any{"lastname": "lastname"}
	if diff := cmp.Diff(want, gw.created[0].Payload); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}

	if len(results) != 1 || results[0].Err != nil || results[0].ID != "abc-123" {
		t.Fatalf("unexpected results: %+v", results)
	}
	if results[0].Response() != "abc-123" {
		t.Fatalf("expected the new record id, got %q", results[0].Response())
	}
}

func TestRun_FormFields_NonCreatableFieldExcluded(t *testing.T) {
	gw := &fakeGateway{
		attrs: []metadata.Attribute{
			{LogicalName: "firstname", AttributeType: metadata.TypeString, MaxLength: 50, IsValidForCreate: true},
			{LogicalName: "donotemail", AttributeType: metadata.TypeBoolean, IsValidForCreate: false},
		},
	}

	err := NewSeeder(gw).Run(context.Background(), Request{
		Entity: "contact",
		Policy: metadata.FormFieldsPolicy("firstname,donotemail"),
	}, func(RecordResult) {})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	payload := gw.created[0].Payload
	if _, ok := payload["donotemail"]; ok {
		t.Fatal("donotemail must be excluded: not valid for create")
	}
	if payload["firstname"] != "firstname" {
		t.Fatalf("expected synthesized firstname, got %v", payload)
	}
}

func TestRun_EmptyLookupCollectionOmitsField(t *testing.T) {
	gw := &fakeGateway{
		attrs: []metadata.Attribute{
			{LogicalName: "fullname", AttributeType: metadata.TypeString, MaxLength: 50, IsValidForCreate: true},
			{LogicalName: "parentaccountid", AttributeType: metadata.TypeLookup, Targets: []string{"account"}, IsValidForCreate: true},
		},
		// no sampleIDs: every referenced collection is empty
	}

	err := NewSeeder(gw).Run(context.Background(), Request{
		Entity: "contact",
		Policy: metadata.FormFieldsPolicy("fullname,parentaccountid"),
	}, func(RecordResult) {})
	if err != nil {
		t.Fatalf("empty lookup collection must not fail the run: %v", err)
	}

	want := map[string]any{"fullname": "fullname"}
	if diff := cmp.Diff(want, gw.created[0].Payload); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_SequentialResults_FailureDoesNotStopLoop(t *testing.T) {
	calls := 0
	gw := &fakeGateway{
		attrs: []metadata.Attribute{
			{LogicalName: "subject", AttributeType: metadata.TypeString, MaxLength: 50, IsValidForCreate: true},
		},
		create: func(string, map[string]any) (string, error) {
			calls++
			if calls == 2 {
				return "", &dynamics.CreationError{Status: 400, Message: "Invalid value"}
			}
			return fmt.Sprintf("id-%d", calls), nil
		},
	}

	var results []RecordResult
	err := NewSeeder(gw).Run(context.Background(), Request{
		Entity:   "task",
		Quantity: 3,
		Policy:   metadata.FormFieldsPolicy("subject"),
	}, func(r RecordResult) { results = append(results, r) })
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 per-iteration results, got %d", len(results))
	}
	if results[0].ID != "id-1" || results[2].ID != "id-3" {
		t.Fatalf("unexpected ids: %+v", results)
	}
	if results[1].Err == nil {
		t.Fatal("expected the second iteration to fail")
	}
	var creationErr *dynamics.CreationError
	if !errors.As(results[1].Err, &creationErr) {
		t.Fatalf("expected *dynamics.CreationError, got %T", results[1].Err)
	}
	if want := "Invalid value"; !strings.Contains(results[1].Response(), want) {
		t.Fatalf("response %q does not surface %q", results[1].Response(), want)
	}
}

func TestRun_InvalidPolicy(t *testing.T) {
	err := NewSeeder(&fakeGateway{}).Run(context.Background(), Request{Entity: "contact"}, func(RecordResult) {})
	if err == nil {
		t.Fatal("expected an error for a request with no selection policy")
	}
}

func TestRun_MetadataFailureAbortsBeforeAnyCreate(t *testing.T) {
	gw := &fakeGateway{attrsErr: &dynamics.MetadataError{Op: "fetch attributes for contact", Err: errors.New("HTTP 401")}}

	err := NewSeeder(gw).Run(context.Background(), Request{
		Entity: "contact",
		Policy: metadata.RequiredOnlyPolicy(),
	}, func(RecordResult) {})
	if err == nil {
		t.Fatal("expected metadata failure to abort the run")
	}
	if len(gw.created) != 0 {
		t.Fatalf("no creation may happen after a metadata failure, got %d", len(gw.created))
	}
}

func TestForms_IncludesExtractedFields(t *testing.T) {
	gw := &fakeGateway{
		forms: []metadata.Form{{ID: "f1", Name: "Information"}},
		formXML: map[string]string{
			"f1": `<form><tabs><tab><control id="c1" datafieldname="firstname"/><control id="c2" datafieldname="lastname"/></tab></tabs></form>`,
		},
	}

	forms, err := NewSeeder(gw).Forms(context.Background(), "contact")
	if err != nil {
		t.Fatalf("forms: %v", err)
	}
	if len(forms) != 1 {
		t.Fatalf("expected 1 form, got %d", len(forms))
	}
	if forms[0].FormXML == "" {
		t.Fatal("formxml must be carried along")
	}
	if diff := cmp.Diff([]string{"firstname", "lastname"}, forms[0].Fields); diff != "" {
		t.Fatalf("extracted fields mismatch (-want +got):\n%s", diff)
	}
}
