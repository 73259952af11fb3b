package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-labadmin/pkg/forms"
	"github.com/goliatone/go-labadmin/pkg/record"
	"github.com/goliatone/go-labadmin/pkg/schema"
	"github.com/goliatone/go-labadmin/pkg/tableview"
	"github.com/goliatone/go-labadmin/pkg/validate"
)

const (
	actionBrowse = "Browse rows"
	actionSelect = "Select row"
	actionInsert = "Insert row"
	actionUpdate = "Update selected row"
	actionDelete = "Delete selected row"
	actionBack   = "Back to tables"
	quitOption   = "Quit"
)

// Option customises a session.
type Option func(*Session)

// WithDriver swaps the prompt driver, e.g. for tests.
func WithDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// Session is one interactive run over the registry's tables. It drives the
// same per-table views as the web console, so mutation rules, validation,
// and reload behavior are identical across the two front ends.
type Session struct {
	registry   *schema.Registry
	views      map[string]*tableview.View
	tableNames []string
	driver     PromptDriver
}

// NewSession wires a session over every registered table.
func NewSession(registry *schema.Registry, api tableview.API, validators *validate.Provider, options ...Option) (*Session, error) {
	if registry == nil {
		return nil, errors.New("tui: registry is required")
	}
	if api == nil {
		return nil, errors.New("tui: api client is required")
	}
	if validators == nil {
		validators = validate.NewProvider()
	}

	s := &Session{
		registry: registry,
		views:    make(map[string]*tableview.View),
		driver:   newSurveyDriver(),
	}
	for _, table := range registry.Tables() {
		s.views[table.Name] = tableview.New(table, api, validators.ValidatorFor(table.Name))
		s.tableNames = append(s.tableNames, table.Name)
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s, nil
}

// Run loops over table selection until the user quits or aborts.
func (s *Session) Run(ctx context.Context) error {
	options := append(append([]string{}, s.tableNames...), quitOption)
	for {
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:  "Table",
			Options:  options,
			PageSize: len(options),
		})
		if err != nil {
			return translateAbort(err)
		}
		if idx < 0 || idx >= len(s.tableNames) {
			return nil
		}
		if err := s.runTable(ctx, s.views[s.tableNames[idx]]); err != nil {
			return err
		}
	}
}

func (s *Session) runTable(ctx context.Context, view *tableview.View) error {
	if err := view.Load(ctx); err != nil {
		if infoErr := s.driver.Info(ctx, err.Error()); infoErr != nil {
			return infoErr
		}
	} else if err := s.showRows(ctx, view); err != nil {
		return err
	}

	actions := []string{actionBrowse}
	if !view.Table().ReadOnly {
		actions = append(actions, actionSelect, actionInsert, actionUpdate, actionDelete)
	}
	actions = append(actions, actionBack)

	for {
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message: view.Table().Name,
			Options: actions,
		})
		if err != nil {
			return translateAbort(err)
		}
		if idx < 0 || actions[idx] == actionBack {
			return nil
		}

		var actionErr error
		switch actions[idx] {
		case actionBrowse:
			if actionErr = view.Load(ctx); actionErr == nil {
				actionErr = s.showRows(ctx, view)
			}
		case actionSelect:
			actionErr = s.selectRow(ctx, view)
		case actionInsert:
			actionErr = s.insertRow(ctx, view)
		case actionUpdate:
			actionErr = s.updateRow(ctx, view)
		case actionDelete:
			actionErr = s.deleteRow(ctx, view)
		}
		if actionErr != nil {
			if errors.Is(actionErr, ErrAborted) || errors.Is(actionErr, context.Canceled) {
				return actionErr
			}
			// Failures stay inside the table loop so the user can retry.
			if err := s.driver.Info(ctx, actionErr.Error()); err != nil {
				return err
			}
		}
	}
}

func (s *Session) showRows(ctx context.Context, view *tableview.View) error {
	snap := view.Snapshot()
	lines := []string{strings.Join(snap.Columns, " | ")}
	for i, row := range snap.Rows {
		cells := make([]string, len(snap.Columns))
		for j, col := range snap.Columns {
			cells[j] = row.Display(col)
		}
		line := strings.Join(cells, " | ")
		if i == snap.Selected {
			line = "> " + line
		}
		lines = append(lines, line)
	}
	if len(snap.Rows) == 0 {
		lines = append(lines, "(no rows)")
	}
	return s.driver.Info(ctx, strings.Join(lines, "\n"))
}

func (s *Session) selectRow(ctx context.Context, view *tableview.View) error {
	snap := view.Snapshot()
	if len(snap.Rows) == 0 {
		return s.driver.Info(ctx, "No rows to select")
	}
	pk := view.Table().PrimaryKey().Name
	options := make([]string, 0, len(snap.Rows))
	for _, row := range snap.Rows {
		options = append(options, row.Display(pk))
	}
	idx, err := s.driver.Select(ctx, SelectConfig{
		Message:      "Select " + pk,
		Options:      options,
		DefaultIndex: snap.Selected,
	})
	if err != nil {
		return translateAbort(err)
	}
	if idx >= 0 && idx < len(options) {
		view.Select(options[idx])
	}
	return nil
}

func (s *Session) insertRow(ctx context.Context, view *tableview.View) error {
	return s.editRow(ctx, view, nil, view.Insert)
}

func (s *Session) updateRow(ctx context.Context, view *tableview.View) error {
	selected, ok := view.Selected()
	if !ok {
		return fmt.Errorf("tui: no row selected in %s", view.Table().Name)
	}
	return s.editRow(ctx, view, selected, view.Update)
}

// editRow prompts the full record and submits it. A validation failure shows
// its message and reopens the prompts seeded with the rejected values, the
// same keep-your-edits loop the web form has.
func (s *Session) editRow(ctx context.Context, view *tableview.View, seed record.Record, commit func(context.Context, record.Record) error) error {
	values := forms.Seed(view.Table(), seed)
	for {
		edited, err := s.promptRecord(ctx, view.Table(), values)
		if err != nil {
			return err
		}
		err = commit(ctx, edited)
		var verr *forms.ValidationError
		if errors.As(err, &verr) {
			if infoErr := s.driver.Info(ctx, verr.Message); infoErr != nil {
				return infoErr
			}
			values = edited
			continue
		}
		return err
	}
}

func (s *Session) deleteRow(ctx context.Context, view *tableview.View) error {
	selected, ok := view.Selected()
	if !ok {
		return nil
	}
	pk := view.Table().PrimaryKey().Name
	confirmed, err := s.driver.Confirm(ctx, ConfirmConfig{
		Message: fmt.Sprintf("Delete %s %s?", view.Table().Name, selected.Display(pk)),
	})
	if err != nil {
		return translateAbort(err)
	}
	if !confirmed {
		return nil
	}
	return view.Delete(ctx)
}

// promptRecord walks the table's fields in declaration order, one prompt per
// field. Number fields re-prompt on non-numeric text; an empty answer keeps
// the no-value sentinel.
func (s *Session) promptRecord(ctx context.Context, table schema.Table, values record.Record) (record.Record, error) {
	out := values.Clone()
	for _, field := range table.Fields {
		value, err := s.promptField(ctx, field, out.Display(field.Name))
		if err != nil {
			return nil, err
		}
		out[field.Name] = value
	}
	return out, nil
}

func (s *Session) promptField(ctx context.Context, field schema.Field, current string) (any, error) {
	switch field.Kind {
	case schema.KindNumber:
		for {
			raw, err := s.driver.Input(ctx, InputConfig{Message: field.Name, Default: current})
			if err != nil {
				return nil, translateAbort(err)
			}
			value, err := record.Coerce(field, raw)
			if err != nil {
				if infoErr := s.driver.Info(ctx, err.Error()); infoErr != nil {
					return nil, infoErr
				}
				continue
			}
			return value, nil
		}
	case schema.KindBoolean:
		checked, err := s.driver.Confirm(ctx, ConfirmConfig{
			Message: field.Name,
			Default: strings.EqualFold(current, "true"),
		})
		if err != nil {
			return nil, translateAbort(err)
		}
		return checked, nil
	case schema.KindEnum:
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:      field.Name,
			Options:      field.Options,
			DefaultIndex: indexOf(field.Options, current),
		})
		if err != nil {
			return nil, translateAbort(err)
		}
		if idx < 0 || idx >= len(field.Options) {
			return "", nil
		}
		return field.Options[idx], nil
	case schema.KindMultiline:
		text, err := s.driver.TextArea(ctx, TextAreaConfig{Message: field.Name, Default: current})
		if err != nil {
			return nil, translateAbort(err)
		}
		return text, nil
	default:
		raw, err := s.driver.Input(ctx, InputConfig{Message: field.Name, Default: current})
		if err != nil {
			return nil, translateAbort(err)
		}
		return record.Coerce(field, raw)
	}
}

func translateAbort(err error) error {
	if err == nil {
		return nil
	}
	return translateSurveyErr(err)
}
