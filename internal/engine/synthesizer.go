package engine

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strconv"
	"time"

	"dynaseed/internal/dynamics"
	"dynaseed/internal/metadata"
)

const (
	memoLength   = 140
	memoCharset  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	customerRef  = "contact" // Customer fields always bind against contacts
	phoneMinimum = 10_000_000_000 // smallest 11-digit number
)

// generator produces a synthetic value for one attribute. Returning a nil
// value with a nil error means the field is skipped.
type generator func(ctx context.Context, gw Gateway, entity string, attr *metadata.Attribute) (any, error)

// One generator per attribute type the Web API can report. Closed table:
// anything not listed here is skipped with a diagnostic, never an error.
var generators = map[string]generator{
	metadata.TypeString:   genString,
	metadata.TypeMemo:     genMemo,
	metadata.TypeDateTime: genDateTime,
	metadata.TypeBoolean:  genBoolean,
	metadata.TypeInteger:  genInteger,
	metadata.TypeDouble:   genDouble,
	metadata.TypeMoney:    genMoney,
	metadata.TypePicklist: genPicklist,
	metadata.TypeCustomer: genCustomer,
	metadata.TypeLookup:   genLookup,
}

// SynthesizeValue dispatches on the attribute's type. For Lookup, Customer
// and Picklist it consults the gateway; everything else is pure computation.
// Unrecognized types yield (nil, nil): the caller logs and moves on.
func SynthesizeValue(ctx context.Context, gw Gateway, entity string, attr *metadata.Attribute) (any, error) {
	gen, ok := generators[attr.AttributeType]
	if !ok {
		return nil, nil
	}
	return gen(ctx, gw, entity, attr)
}

func genString(_ context.Context, _ Gateway, _ string, attr *metadata.Attribute) (any, error) {
	switch attr.FormatValue() {
	case metadata.FormatEmail:
		return attr.LogicalName + strconv.FormatInt(time.Now().UnixMilli(), 10) + "@gmail.com", nil
	case metadata.FormatPhone:
		return strconv.FormatInt(phoneMinimum+rand.Int63n(9*phoneMinimum-1), 10), nil
	default:
		name := attr.LogicalName
		if attr.MaxLength > 0 && len(name) > attr.MaxLength {
			name = name[:attr.MaxLength]
		}
		return name, nil
	}
}

func genMemo(_ context.Context, _ Gateway, _ string, _ *metadata.Attribute) (any, error) {
	buf := make([]byte, memoLength)
	for i := range buf {
		buf[i] = memoCharset[rand.Intn(len(memoCharset))]
	}
	return string(buf), nil
}

func genDateTime(_ context.Context, _ Gateway, _ string, attr *metadata.Attribute) (any, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	if attr.FormatValue() == metadata.FormatDateOnly {
		return now[:10], nil
	}
	return now, nil
}

func genBoolean(_ context.Context, _ Gateway, _ string, _ *metadata.Attribute) (any, error) {
	return rand.Intn(2) == 0, nil
}

func genInteger(_ context.Context, _ Gateway, _ string, _ *metadata.Attribute) (any, error) {
	return rand.Intn(100) + 1, nil
}

func genDouble(_ context.Context, _ Gateway, _ string, _ *metadata.Attribute) (any, error) {
	return 1 + rand.Float64()*99, nil
}

func genMoney(_ context.Context, _ Gateway, _ string, _ *metadata.Attribute) (any, error) {
	return math.Round(rand.Float64()*500*100) / 100, nil
}

// genPicklist picks uniformly over the non-first options when more than one
// exists, else the sole one. The underlying Value is written, not the label.
func genPicklist(ctx context.Context, gw Gateway, entity string, attr *metadata.Attribute) (any, error) {
	options, err := gw.OptionSetValues(ctx, entity, attr.LogicalName)
	if err != nil {
		return nil, err
	}
	if len(options) == 0 {
		return nil, nil
	}
	idx := 0
	if len(options) > 1 {
		idx = 1 + rand.Intn(len(options)-1)
	}
	return options[idx].Value, nil
}

func genCustomer(ctx context.Context, gw Gateway, _ string, _ *metadata.Attribute) (any, error) {
	return sampleReference(ctx, gw, customerRef)
}

func genLookup(ctx context.Context, gw Gateway, _ string, attr *metadata.Attribute) (any, error) {
	if len(attr.Targets) == 0 {
		return nil, nil
	}
	return sampleReference(ctx, gw, attr.Targets[0])
}

// sampleReference resolves an existing row id of the referenced entity. An
// empty referenced collection means the field is skipped, not a failure.
func sampleReference(ctx context.Context, gw Gateway, entity string) (any, error) {
	id, err := gw.SampleRecordID(ctx, entity)
	if errors.Is(err, dynamics.ErrNoCandidateRecords) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return id, nil
}
