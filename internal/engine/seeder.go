package engine

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"dynaseed/internal/metadata"
)

// Request is the immutable context of one seeding invocation. Nothing here
// survives the invocation: metadata and lookup samples are re-fetched every
// time, so concurrent invocations cannot bleed into each other.
type Request struct {
	Entity   string
	Quantity int
	Policy   metadata.SelectionPolicy
}

// RecordResult is the outcome of one creation attempt within a run.
type RecordResult struct {
	Index int
	ID    string
	Err   error
}

// Response renders the result the way the popup consumes it: the new record
// id on success, a human-readable failure otherwise.
func (r RecordResult) Response() string {
	if r.Err != nil {
		return fmt.Sprintf("Unable to add record: %v", r.Err)
	}
	return r.ID
}

// Seeder runs the selection -> synthesis -> payload -> creation pipeline
// against one gateway.
type Seeder struct {
	gw Gateway
}

func NewSeeder(gw Gateway) *Seeder {
	return &Seeder{gw: gw}
}

// Forms lists the entity's main forms with formxml and the extracted ordered
// field names, ready for the field-selection UI.
func (s *Seeder) Forms(ctx context.Context, entity string) ([]metadata.Form, error) {
	forms, err := s.gw.Forms(ctx, entity)
	if err != nil {
		return nil, err
	}
	for i := range forms {
		formXML, err := s.gw.FormXML(ctx, forms[i].ID)
		if err != nil {
			return nil, err
		}
		forms[i].FormXML = formXML
		fields, err := metadata.ExtractFormFields(formXML)
		if err != nil {
			return nil, fmt.Errorf("parse formxml of %s: %w", forms[i].Name, err)
		}
		forms[i].Fields = fields
	}
	return forms, nil
}

// Run builds one payload for the request and posts it Quantity times,
// delivering each outcome through emit as it happens. The loop is sequential
// and non-transactional: record k failing neither rolls back 1..k-1 nor stops
// k+1..n, and nothing is retried.
func (s *Seeder) Run(ctx context.Context, req Request, emit func(RecordResult)) error {
	if !req.Policy.Valid() {
		return errors.New("no field selection policy: pick required-only or a form field list")
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}
	runID := "run_" + uuid.New().String()

	attrs, err := s.gw.AttributeMetadata(ctx, req.Entity)
	if err != nil {
		return err
	}

	selected, skipped := SelectFields(attrs, req.Policy)
	for _, name := range skipped {
		log.Printf("[%s] skipping %q: not in metadata or not valid for create", runID, name)
	}

	payload := make(map[string]any)
	if req.Policy.RequiredOnly {
		// Required string fields get their own name as a trivial non-empty
		// value; synthesis may overwrite below.
		for _, attr := range selected {
			if attr.AttributeType == metadata.TypeString {
				payload[attr.LogicalName] = attr.LogicalName
			}
		}
	}

	var values []SynthesizedValue
	for i := range selected {
		attr := &selected[i]
		value, err := SynthesizeValue(ctx, s.gw, req.Entity, attr)
		if err != nil {
			return fmt.Errorf("synthesize %s: %w", attr.LogicalName, err)
		}
		if value == nil {
			log.Printf("[%s] skipping %q: no value for type %q", runID, attr.LogicalName, attr.AttributeType)
			continue
		}
		values = append(values, SynthesizedValue{Attribute: *attr, Value: value})
	}

	built, err := BuildPayload(ctx, s.gw, values)
	if err != nil {
		return err
	}
	for k, v := range built {
		payload[k] = v
	}

	// One resolved collection name serves every record of the run.
	collection, err := s.gw.CollectionName(ctx, req.Entity)
	if err != nil {
		return err
	}

	log.Printf("[%s] creating %d %s record(s) with %d field(s)", runID, req.Quantity, req.Entity, len(payload))
	for i := 1; i <= req.Quantity; i++ {
		id, err := s.gw.CreateRecord(ctx, collection, payload)
		if err != nil {
			log.Printf("[%s] record %d/%d failed: %v", runID, i, req.Quantity, err)
		} else {
			log.Printf("[%s] record %d/%d created: %s", runID, i, req.Quantity, id)
		}
		emit(RecordResult{Index: i, ID: id, Err: err})
	}
	return nil
}
