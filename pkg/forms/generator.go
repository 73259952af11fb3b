// Package forms turns table schemas into editable forms: widget resolution,
// value seeding, HTML rendering, submission decoding, and the submit flow
// shared by the console's modals and the terminal client.
package forms

import (
	"fmt"

	"github.com/goliatone/go-labadmin/pkg/forms/template"
	"github.com/goliatone/go-labadmin/pkg/record"
	"github.com/goliatone/go-labadmin/pkg/schema"
)

// FieldView is one editable field ready for rendering.
type FieldView struct {
	Name    string
	Kind    schema.FieldKind
	Options []string
	Value   string
	Checked bool
}

// Form is a complete editing surface for one table.
type Form struct {
	Table  string
	Title  string
	Action string
	Error  string
	Fields []FieldView
}

// Seed initializes form values for every schema field: the record's value
// when present, else an empty-string placeholder. Rendering therefore always
// receives a fully-populated record, for inserts and updates alike.
func Seed(t schema.Table, rec record.Record) record.Record {
	out := make(record.Record, len(t.Fields))
	for _, f := range t.Fields {
		if rec != nil {
			if v, ok := rec[f.Name]; ok && v != nil {
				out[f.Name] = v
				continue
			}
		}
		out[f.Name] = ""
	}
	return out
}

// Views produces the ordered field views for a table, one per schema field.
// No cross-field logic happens here.
func Views(t schema.Table, values record.Record) []FieldView {
	out := make([]FieldView, 0, len(t.Fields))
	for _, f := range t.Fields {
		view := FieldView{
			Name:    f.Name,
			Kind:    f.Kind,
			Options: f.Options,
		}
		v := values[f.Name]
		if f.Kind == schema.KindBoolean {
			view.Checked = truthy(v)
		} else {
			view.Value = record.Display(v)
		}
		out = append(out, view)
	}
	return out
}

// NewForm seeds and lays out a form in one step.
func NewForm(t schema.Table, rec record.Record, title, action string) Form {
	return Form{
		Table:  t.Name,
		Title:  title,
		Action: action,
		Fields: Views(t, Seed(t, rec)),
	}
}

// fieldTemplates is the closed widget dispatch: each kind resolves to its
// template exactly once, here, not per render.
var fieldTemplates = map[schema.FieldKind]string{
	schema.KindText:      "templates/fields/text",
	schema.KindNumber:    "templates/fields/number",
	schema.KindDate:      "templates/fields/date",
	schema.KindBoolean:   "templates/fields/boolean",
	schema.KindEnum:      "templates/fields/enum",
	schema.KindMultiline: "templates/fields/multiline",
}

// Option customises the generator.
type Option func(*Generator)

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer template.Renderer) Option {
	return func(g *Generator) {
		if renderer != nil {
			g.templates = renderer
		}
	}
}

// Generator renders forms to HTML using the embedded template bundle.
type Generator struct {
	templates template.Renderer
}

// NewGenerator constructs a generator, defaulting to the embedded templates.
func NewGenerator(options ...Option) (*Generator, error) {
	g := &Generator{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(g)
	}
	if g.templates == nil {
		engine, err := template.New(template.WithFS(TemplatesFS()))
		if err != nil {
			return nil, fmt.Errorf("forms: configure template renderer: %w", err)
		}
		g.templates = engine
	}
	return g, nil
}

// Render produces the form's HTML.
func (g *Generator) Render(form Form) (string, error) {
	fields := ""
	for _, field := range form.Fields {
		markup, err := g.renderField(field)
		if err != nil {
			return "", err
		}
		fields += markup
	}

	return g.templates.RenderTemplate("templates/form", map[string]any{
		"table":       form.Table,
		"title":       form.Title,
		"action":      form.Action,
		"error":       form.Error,
		"fields_html": fields,
	})
}

func (g *Generator) renderField(field FieldView) (string, error) {
	name, ok := fieldTemplates[field.Kind]
	if !ok {
		name = fieldTemplates[schema.KindText]
	}
	markup, err := g.templates.RenderTemplate(name, map[string]any{
		"name":    field.Name,
		"value":   field.Value,
		"checked": field.Checked,
		"options": field.Options,
	})
	if err != nil {
		return "", fmt.Errorf("forms: render field %q: %w", field.Name, err)
	}
	return markup, nil
}

// truthy mirrors loose boolean reads: absent, empty-string, zero, and false
// all read as unchecked.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != "" && t != "false" && t != "0"
	case float64:
		return t != 0
	case nil:
		return false
	default:
		return true
	}
}
