package forms

import (
	"net/url"

	"github.com/goliatone/go-labadmin/pkg/record"
	"github.com/goliatone/go-labadmin/pkg/schema"
)

// Decode converts submitted form values into a canonical record, applying
// per-kind coercion. Number fields keep the empty-string sentinel when
// cleared; an absent checkbox reads as false. Only schema fields are kept.
func Decode(t schema.Table, values url.Values) (record.Record, error) {
	out := make(record.Record, len(t.Fields))
	for _, f := range t.Fields {
		coerced, err := record.Coerce(f, values.Get(f.Name))
		if err != nil {
			return nil, err
		}
		out[f.Name] = coerced
	}
	return out, nil
}
