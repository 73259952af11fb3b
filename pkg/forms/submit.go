package forms

import (
	"context"

	"github.com/goliatone/go-labadmin/pkg/record"
	"github.com/goliatone/go-labadmin/pkg/validate"
)

// CommitFunc performs the actual mutation once validation passes.
type CommitFunc func(ctx context.Context, values record.Record) error

// ValidationError reports a structural check failure; the editing surface
// stays open and keeps its values so the user can correct and retry.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Submit runs the submit flow of an editing surface: the table's validator
// exactly once, before any network call, then the commit. Any error leaves
// the caller's values untouched for retry.
func Submit(ctx context.Context, v validate.Validator, values record.Record, commit CommitFunc) error {
	if v != nil {
		if res := v.Check(values); !res.OK {
			return &ValidationError{Message: res.FirstError}
		}
	}
	return commit(ctx, values)
}
