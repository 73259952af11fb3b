// Package openapi builds a table registry from an OpenAPI document, so a
// deployment can describe its tables in a spec file instead of recompiling
// the built-in declarations.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-labadmin/pkg/schema"
)

// Vendor extensions recognised on component schemas and their properties.
const (
	fieldOrderExtensionKey = "x-field-order"
	readOnlyExtensionKey   = "x-read-only"
	multilineExtensionKey  = "x-multiline"
)

// LoadRegistry parses raw OpenAPI (JSON or YAML) and converts every entry
// under components.schemas into a table. Property order in the document is
// not preserved by the parser, so a schema with more than one property must
// carry an x-field-order extension listing its fields; the first listed
// field is the primary key.
func LoadRegistry(ctx context.Context, raw []byte) (*schema.Registry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return nil, errors.New("openapi: document declares no component schemas")
	}

	names := make([]string, 0, len(doc.Components.Schemas))
	for name := range doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	tables := make([]schema.Table, 0, len(names))
	for _, name := range names {
		table, err := convertTable(name, doc.Components.Schemas[name])
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return schema.NewRegistry(tables...)
}

// LoadRegistryFromFile reads a spec file and delegates to LoadRegistry.
func LoadRegistryFromFile(ctx context.Context, path string) (*schema.Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("openapi: read %s: %w", path, err)
	}
	return LoadRegistry(ctx, raw)
}

func convertTable(name string, ref *openapi3.SchemaRef) (schema.Table, error) {
	if ref == nil || ref.Value == nil {
		return schema.Table{}, fmt.Errorf("openapi: schema %q has no value", name)
	}
	src := ref.Value
	if len(src.Properties) == 0 {
		return schema.Table{}, fmt.Errorf("openapi: schema %q declares no properties", name)
	}

	order, err := fieldOrder(name, src)
	if err != nil {
		return schema.Table{}, err
	}

	fields := make([]schema.Field, 0, len(order))
	for _, fieldName := range order {
		prop, ok := src.Properties[fieldName]
		if !ok {
			return schema.Table{}, fmt.Errorf("openapi: schema %q orders unknown field %q", name, fieldName)
		}
		fields = append(fields, convertField(fieldName, prop))
	}

	return schema.Table{
		Name:     name,
		Fields:   fields,
		ReadOnly: boolExtension(src.Extensions, readOnlyExtensionKey),
	}, nil
}

func fieldOrder(name string, src *openapi3.Schema) ([]string, error) {
	raw, ok := src.Extensions[fieldOrderExtensionKey]
	if !ok {
		if len(src.Properties) > 1 {
			return nil, fmt.Errorf("openapi: schema %q has multiple properties but no %s extension", name, fieldOrderExtensionKey)
		}
		for fieldName := range src.Properties {
			return []string{fieldName}, nil
		}
	}

	entries, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("openapi: schema %q: %s must be an array of field names", name, fieldOrderExtensionKey)
	}
	order := make([]string, 0, len(entries))
	for _, entry := range entries {
		fieldName, ok := entry.(string)
		if !ok || strings.TrimSpace(fieldName) == "" {
			return nil, fmt.Errorf("openapi: schema %q: %s entries must be non-empty strings", name, fieldOrderExtensionKey)
		}
		order = append(order, fieldName)
	}
	if len(order) != len(src.Properties) {
		return nil, fmt.Errorf("openapi: schema %q: %s lists %d fields, schema declares %d", name, fieldOrderExtensionKey, len(order), len(src.Properties))
	}
	return order, nil
}

func convertField(name string, ref *openapi3.SchemaRef) schema.Field {
	if ref == nil || ref.Value == nil {
		return schema.NewField(name, schema.TypeString)
	}
	src := ref.Value

	field := schema.NewField(name, typeTag(src))
	if boolExtension(src.Extensions, multilineExtensionKey) {
		field.Kind = schema.KindMultiline
		field.Options = nil
	}
	if len(src.Enum) > 0 && field.Kind != schema.KindMultiline {
		field.Kind = schema.KindEnum
		field.Options = enumOptions(src.Enum)
	}
	return field
}

func typeTag(src *openapi3.Schema) schema.TypeTag {
	switch firstSchemaType(src.Type) {
	case "number", "integer":
		return schema.TypeNumber
	case "boolean":
		return schema.TypeBoolean
	case "string":
		if src.Format == "date" || src.Format == "date-time" {
			return schema.TypeDate
		}
		return schema.TypeString
	default:
		return schema.TypeString
	}
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func enumOptions(values []any) []string {
	options := make([]string, 0, len(values))
	for _, value := range values {
		options = append(options, fmt.Sprintf("%v", value))
	}
	return options
}

func boolExtension(extensions map[string]any, key string) bool {
	value, ok := extensions[key]
	if !ok {
		return false
	}
	enabled, ok := value.(bool)
	return ok && enabled
}
