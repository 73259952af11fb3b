package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-labadmin/pkg/record"
	"github.com/goliatone/go-labadmin/pkg/schema"
	"github.com/goliatone/go-labadmin/pkg/validate"
)

var errScriptExhausted = errors.New("script exhausted")

// scriptedDriver replays canned answers and records every prompt it served.
type scriptedDriver struct {
	inputs    []string
	confirms  []bool
	selects   []int
	textareas []string

	infos         []string
	selectConfigs []SelectConfig
}

func (d *scriptedDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", errScriptExhausted
	}
	out := d.inputs[0]
	d.inputs = d.inputs[1:]
	return out, nil
}

func (d *scriptedDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	if len(d.confirms) == 0 {
		return false, errScriptExhausted
	}
	out := d.confirms[0]
	d.confirms = d.confirms[1:]
	return out, nil
}

func (d *scriptedDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	if len(d.selects) == 0 {
		return 0, errScriptExhausted
	}
	d.selectConfigs = append(d.selectConfigs, cfg)
	out := d.selects[0]
	d.selects = d.selects[1:]
	return out, nil
}

func (d *scriptedDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	if len(d.textareas) == 0 {
		return "", errScriptExhausted
	}
	out := d.textareas[0]
	d.textareas = d.textareas[1:]
	return out, nil
}

func (d *scriptedDriver) Info(ctx context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func (d *scriptedDriver) sawInfo(msg string) bool {
	for _, m := range d.infos {
		if m == msg {
			return true
		}
	}
	return false
}

type mutation struct {
	method string
	table  string
	id     string
	rec    record.Record
}

type scriptedAPI struct {
	rows      map[string][]record.Record
	mutations []mutation
}

func (f *scriptedAPI) Records(ctx context.Context, table string) ([]record.Record, error) {
	return f.rows[table], nil
}

func (f *scriptedAPI) Create(ctx context.Context, table string, rec record.Record) error {
	f.mutations = append(f.mutations, mutation{method: "create", table: table, rec: rec})
	return nil
}

func (f *scriptedAPI) Update(ctx context.Context, table, id string, rec record.Record) error {
	f.mutations = append(f.mutations, mutation{method: "update", table: table, id: id, rec: rec})
	return nil
}

func (f *scriptedAPI) Delete(ctx context.Context, table, id string) error {
	f.mutations = append(f.mutations, mutation{method: "delete", table: table, id: id})
	return nil
}

func newTestSession(t *testing.T, api *scriptedAPI, driver *scriptedDriver) *Session {
	t.Helper()
	s, err := NewSession(schema.Default(), api, validate.DefaultProvider(), WithDriver(driver))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

// Indices into the default registry's table list and the writable table's
// action list, as presented by the session's select prompts.
const (
	tableLabMember = 0
	tableGrant     = 2
	tableQuit      = 8

	writableInsert = 2
	writableDelete = 4
	writableBack   = 5
)

func TestSession_InsertRepromptsBadNumbersAndValidationFailures(t *testing.T) {
	api := &scriptedAPI{rows: map[string][]record.Record{}}
	driver := &scriptedDriver{
		selects: []int{tableLabMember, writableInsert, writableBack, tableQuit},
		inputs: []string{
			// First attempt: bad number re-prompts, empty NAME fails validation.
			"abc", "5", "", "Staff", "2024-01-02",
			// Second attempt, seeded with the rejected values.
			"5", "A. Lee", "Staff", "2024-01-02",
		},
	}
	s := newTestSession(t, api, driver)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if !driver.sawInfo("record: MID must be a number") {
		t.Fatalf("bad number input must report and re-prompt, infos: %v", driver.infos)
	}
	if !driver.sawInfo("Name is required") {
		t.Fatalf("validation failure must be shown, infos: %v", driver.infos)
	}

	if len(api.mutations) != 1 {
		t.Fatalf("expected exactly one create, got %+v", api.mutations)
	}
	created := api.mutations[0]
	if created.method != "create" || created.table != schema.TableLabMember {
		t.Fatalf("unexpected mutation: %+v", created)
	}
	if created.rec["MID"] != float64(5) || created.rec["NAME"] != "A. Lee" {
		t.Fatalf("unexpected created record: %+v", created.rec)
	}
}

func TestSession_ReadOnlyTableOffersNoMutations(t *testing.T) {
	api := &scriptedAPI{rows: map[string][]record.Record{
		schema.TableGrant: {{"GID": float64(1), "AMOUNT": float64(5000)}},
	}}
	driver := &scriptedDriver{
		// Pick GRANT, then Back (read-only action list), then Quit.
		selects: []int{tableGrant, 1, tableQuit},
	}
	s := newTestSession(t, api, driver)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	// The second select prompt is the GRANT action menu.
	if len(driver.selectConfigs) < 2 {
		t.Fatalf("expected an action menu prompt, got %d selects", len(driver.selectConfigs))
	}
	actions := driver.selectConfigs[1].Options
	for _, option := range actions {
		if option == actionSelect || option == actionInsert || option == actionUpdate || option == actionDelete {
			t.Fatalf("read-only table must not offer %q, actions: %v", option, actions)
		}
	}
	if len(api.mutations) != 0 {
		t.Fatalf("no mutations expected, got %+v", api.mutations)
	}
}

func TestSession_DeleteNeedsSelectionAndConfirmation(t *testing.T) {
	api := &scriptedAPI{rows: map[string][]record.Record{
		schema.TableLabMember: {{"MID": float64(7), "NAME": "A. Lee"}},
	}}
	driver := &scriptedDriver{
		selects: []int{
			tableLabMember,
			writableDelete, // no selection yet: no-op
			1, 0,           // Select row prompt, pick the only row
			writableDelete, // declined confirmation
			writableDelete, // confirmed
			writableBack,
			tableQuit,
		},
		confirms: []bool{false, true},
	}
	s := newTestSession(t, api, driver)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(api.mutations) != 1 {
		t.Fatalf("expected exactly one delete, got %+v", api.mutations)
	}
	if m := api.mutations[0]; m.method != "delete" || m.id != "7" {
		t.Fatalf("expected delete of MID 7, got %+v", m)
	}
}
