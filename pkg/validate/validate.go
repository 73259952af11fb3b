// Package validate holds the per-table structural validators run once per
// submit, before any network call. Only the first failure is surfaced.
package validate

import (
	"github.com/goliatone/go-labadmin/pkg/record"
	"github.com/goliatone/go-labadmin/pkg/schema"
)

// Result is the outcome of a validation pass.
type Result struct {
	OK         bool
	FirstError string
}

// Validator checks a record's shape at submit time.
type Validator interface {
	Check(rec record.Record) Result
}

// Func adapts a plain function to the Validator interface.
type Func func(rec record.Record) Result

func (f Func) Check(rec record.Record) Result { return f(rec) }

// acceptAll is the validator used when a table declares none.
type acceptAll struct{}

func (acceptAll) Check(record.Record) Result { return Result{OK: true} }

// AcceptAll returns a validator that passes every record.
func AcceptAll() Validator { return acceptAll{} }

type rule struct {
	field   string
	message string
	check   func(rec record.Record, field string) bool
}

// Rules is an ordered list of field checks; Check stops at the first
// failure.
type Rules struct {
	rules []rule
}

// NewRules returns an empty rule set.
func NewRules() *Rules {
	return &Rules{}
}

// Required adds a rule that fails when the field is absent, nil, or the
// empty-string sentinel.
func (r *Rules) Required(field, message string) *Rules {
	r.rules = append(r.rules, rule{
		field:   field,
		message: message,
		check: func(rec record.Record, field string) bool {
			return !rec.Empty(field)
		},
	})
	return r
}

// Check runs the rules in order and reports the first failure.
func (r *Rules) Check(rec record.Record) Result {
	for _, rl := range r.rules {
		if !rl.check(rec, rl.field) {
			return Result{FirstError: rl.message}
		}
	}
	return Result{OK: true}
}

// Provider resolves a validator per table name. ValidatorFor always returns
// a usable validator; tables without one accept everything.
type Provider struct {
	validators map[string]Validator
}

// NewProvider builds an empty provider.
func NewProvider() *Provider {
	return &Provider{validators: make(map[string]Validator)}
}

// Register binds a validator to a table name, replacing any previous one.
func (p *Provider) Register(table string, v Validator) *Provider {
	if v != nil {
		p.validators[table] = v
	}
	return p
}

// ValidatorFor returns the table's validator, or an accept-all default.
func (p *Provider) ValidatorFor(table string) Validator {
	if v, ok := p.validators[table]; ok {
		return v
	}
	return acceptAll{}
}

// DefaultProvider mirrors the lab database's submit-time checks: member,
// project, publication, and student records need a non-empty name or title.
func DefaultProvider() *Provider {
	return NewProvider().
		Register(schema.TableLabMember, NewRules().Required("NAME", "Name is required")).
		Register(schema.TableProject, NewRules().Required("TITLE", "Title is required")).
		Register(schema.TablePublication, NewRules().Required("TITLE", "Title is required")).
		Register(schema.TableStudent, NewRules().Required("NAME", "Name is required"))
}
