// Package schema declares table schemas for the lab database console.
//
// A Table is an ordered list of fields; the first declared field is the
// table's primary key. Field widgets are resolved once, when the field is
// declared, so renderers dispatch on a closed FieldKind instead of
// re-deriving widgets from names and type tags on every render.
package schema

import (
	"fmt"
	"strings"
)

// FieldKind is the closed set of widget kinds a field can resolve to.
type FieldKind string

const (
	KindText      FieldKind = "text"
	KindNumber    FieldKind = "number"
	KindDate      FieldKind = "date"
	KindBoolean   FieldKind = "boolean"
	KindEnum      FieldKind = "enum"
	KindMultiline FieldKind = "multiline"
)

// TypeTag is the declared type of a field before widget resolution.
type TypeTag string

const (
	TypeNumber  TypeTag = "number"
	TypeString  TypeTag = "string"
	TypeDate    TypeTag = "date"
	TypeBoolean TypeTag = "boolean"
)

// LevelOptions are the choices offered for LEVEL fields. This is a UI nudge
// only; the data model still accepts any string from the backend.
var LevelOptions = []string{"Undergraduate", "Masters", "PhD"}

// Field is a single declared column of a table.
type Field struct {
	Name    string
	Kind    FieldKind
	Options []string
}

// NewField resolves a declaration into a Field. Name triggers take precedence
// over the type tag: LEVEL becomes an enum, BIOGRAPHY multi-line text. An
// unknown tag falls back to free text.
func NewField(name string, tag TypeTag) Field {
	switch strings.ToUpper(name) {
	case "LEVEL":
		return Field{Name: name, Kind: KindEnum, Options: LevelOptions}
	case "BIOGRAPHY":
		return Field{Name: name, Kind: KindMultiline}
	}
	switch tag {
	case TypeNumber:
		return Field{Name: name, Kind: KindNumber}
	case TypeDate:
		return Field{Name: name, Kind: KindDate}
	case TypeBoolean:
		return Field{Name: name, Kind: KindBoolean}
	default:
		return Field{Name: name, Kind: KindText}
	}
}

// Table is an immutable, ordered schema for one table.
type Table struct {
	Name     string
	Fields   []Field
	ReadOnly bool
}

// PrimaryKey returns the table's identity field, the field at index 0.
func (t Table) PrimaryKey() Field {
	return t.Fields[0]
}

// Columns returns field names in declaration order.
func (t Table) Columns() []string {
	cols := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		cols[i] = f.Name
	}
	return cols
}

// Field looks a field up by name.
func (t Table) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Registry maps table names to schemas. It is built once and never mutated;
// components receive it explicitly instead of reaching for package state.
type Registry struct {
	tables map[string]Table
	order  []string
}

// NewRegistry builds a registry from table declarations. Every table needs a
// name and at least one field (the primary key); duplicate table or field
// names are configuration errors.
func NewRegistry(tables ...Table) (*Registry, error) {
	r := &Registry{tables: make(map[string]Table, len(tables))}
	for _, t := range tables {
		if strings.TrimSpace(t.Name) == "" {
			return nil, fmt.Errorf("schema: table name is required")
		}
		if len(t.Fields) == 0 {
			return nil, fmt.Errorf("schema: table %q declares no fields", t.Name)
		}
		if _, exists := r.tables[t.Name]; exists {
			return nil, fmt.Errorf("schema: table %q already registered", t.Name)
		}
		seen := make(map[string]struct{}, len(t.Fields))
		for _, f := range t.Fields {
			if strings.TrimSpace(f.Name) == "" {
				return nil, fmt.Errorf("schema: table %q declares an unnamed field", t.Name)
			}
			if _, dup := seen[f.Name]; dup {
				return nil, fmt.Errorf("schema: table %q declares field %q twice", t.Name, f.Name)
			}
			seen[f.Name] = struct{}{}
		}
		r.tables[t.Name] = t
		r.order = append(r.order, t.Name)
	}
	return r, nil
}

// MustNewRegistry panics on registration failure. Useful for init-time wiring.
func MustNewRegistry(tables ...Table) *Registry {
	r, err := NewRegistry(tables...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the schema for a table name. A missing schema is a fatal
// configuration error for callers; they must not render a table without one.
func (r *Registry) Lookup(name string) (Table, bool) {
	t, ok := r.tables[name]
	return t, ok
}

// Tables returns all schemas in registration order.
func (r *Registry) Tables() []Table {
	out := make([]Table, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tables[name])
	}
	return out
}

// Has reports whether a table is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.tables[name]
	return ok
}
