// Package record defines the flat field→value mapping the console works
// with, plus the coercion and normalization rules applied at its boundaries.
package record

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-labadmin/pkg/schema"
)

// Record is one row's field→value mapping. Values are scalars: float64,
// string, or bool. An empty string stands for "no value"; for number fields
// it is a sentinel distinct from 0 and must survive round-trips untouched.
type Record map[string]any

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Get returns the raw value for a field, nil when absent.
func (r Record) Get(field string) any {
	return r[field]
}

// Display renders a field for read-only output. nil becomes the empty
// string; everything else goes through fmt.Sprint.
func (r Record) Display(field string) string {
	return Display(r[field])
}

// Empty reports whether a field is absent, nil, or the empty-string
// sentinel. A numeric zero is NOT empty.
func (r Record) Empty(field string) bool {
	switch v := r[field].(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}

// Display renders a single value for read-only output.
func Display(v any) string {
	if v == nil {
		return ""
	}
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return fmt.Sprint(v)
}

// Coerce converts raw text input into the canonical value for a field.
// Number fields keep the empty-string sentinel when cleared and reject
// non-numeric text; boolean fields read browser checkbox conventions; every
// other kind passes the text through.
func Coerce(field schema.Field, raw string) (any, error) {
	switch field.Kind {
	case schema.KindNumber:
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return "", nil
		}
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, fmt.Errorf("record: %s must be a number", field.Name)
		}
		return n, nil
	case schema.KindBoolean:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "on", "true", "1", "yes":
			return true, nil
		default:
			return false, nil
		}
	default:
		return raw, nil
	}
}

// Aliases maps a canonical field name to the backend spellings that may
// carry its value. The canonical name itself always matches first.
type Aliases map[string][]string

// Normalize maps a raw backend payload onto canonical field names, applied
// once at the API boundary so display code never chases casing variants.
// Keys without an alias entry are kept as-is.
func Normalize(raw map[string]any, aliases Aliases) Record {
	if raw == nil {
		return Record{}
	}
	out := make(Record, len(raw))
	claimed := make(map[string]struct{})
	for canonical, variants := range aliases {
		if v, key, ok := lookupKey(raw, canonical); ok {
			out[canonical] = v
			claimed[key] = struct{}{}
			continue
		}
		for _, variant := range variants {
			if v, key, ok := lookupKey(raw, variant); ok {
				out[canonical] = v
				claimed[key] = struct{}{}
				break
			}
		}
	}
	for k, v := range raw {
		if _, ok := claimed[k]; ok {
			continue
		}
		if _, ok := out[k]; ok {
			continue
		}
		out[k] = v
	}
	return out
}

func lookupKey(raw map[string]any, key string) (any, string, bool) {
	if v, ok := raw[key]; ok {
		return v, key, true
	}
	for k, v := range raw {
		if strings.EqualFold(k, key) {
			return v, k, true
		}
	}
	return nil, "", false
}
