// Package tableview holds the server-side state of one table's grid: the
// loaded rows, the current selection, and the mutation flow around them.
//
// Every mutation is followed by a reload so the grid always shows the
// backend's canonical rows, never an optimistic local merge. Loads carry a
// generation number; a response from a superseded load is dropped instead of
// overwriting newer data.
package tableview

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-labadmin/pkg/forms"
	"github.com/goliatone/go-labadmin/pkg/record"
	"github.com/goliatone/go-labadmin/pkg/schema"
	"github.com/goliatone/go-labadmin/pkg/validate"
)

// ErrReadOnly rejects mutations on tables that only support browsing.
var ErrReadOnly = errors.New("tableview: table is read only")

// API is the slice of the lab client a view drives.
type API interface {
	Records(ctx context.Context, table string) ([]record.Record, error)
	Create(ctx context.Context, table string, rec record.Record) error
	Update(ctx context.Context, table, id string, rec record.Record) error
	Delete(ctx context.Context, table, id string) error
}

// View is the grid state for one table.
type View struct {
	table     schema.Table
	api       API
	validator validate.Validator

	mu         sync.Mutex
	rows       []record.Record
	selected   int
	generation uint64
}

// New builds a view over a table. A nil validator accepts every record.
func New(table schema.Table, api API, validator validate.Validator) *View {
	return &View{
		table:     table,
		api:       api,
		validator: validator,
		selected:  -1,
	}
}

// Table returns the view's schema.
func (v *View) Table() schema.Table {
	return v.table
}

// Load fetches the table's rows. A load that was superseded by a newer load
// or mutation before its response arrived leaves the state untouched. A
// failed load clears the rows, so the grid never shows stale data next to
// the error.
func (v *View) Load(ctx context.Context) error {
	gen := v.nextGeneration()
	rows, err := v.api.Records(ctx, v.table.Name)
	if err != nil {
		v.apply(gen, nil)
		return err
	}
	v.apply(gen, rows)
	return nil
}

func (v *View) nextGeneration() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.generation++
	return v.generation
}

// apply installs fetched rows if the load is still current, carrying the
// selection over by primary-key value.
func (v *View) apply(gen uint64, rows []record.Record) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation {
		return
	}

	selectedKey := ""
	if v.selected >= 0 && v.selected < len(v.rows) {
		selectedKey = v.rows[v.selected].Display(v.table.PrimaryKey().Name)
	}

	v.rows = rows
	v.selected = -1
	if selectedKey == "" {
		return
	}
	for i, row := range rows {
		if row.Display(v.table.PrimaryKey().Name) == selectedKey {
			v.selected = i
			return
		}
	}
}

// Select marks the row whose primary key displays as the given value.
// Read-only tables take no selection.
func (v *View) Select(key string) bool {
	if v.table.ReadOnly {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, row := range v.rows {
		if row.Display(v.table.PrimaryKey().Name) == key {
			v.selected = i
			return true
		}
	}
	return false
}

// Deselect clears the selection.
func (v *View) Deselect() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selected = -1
}

// Selected returns a copy of the selected row.
func (v *View) Selected() (record.Record, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected < 0 || v.selected >= len(v.rows) {
		return nil, false
	}
	return v.rows[v.selected].Clone(), true
}

// Snapshot is an immutable copy of the grid for rendering.
type Snapshot struct {
	Table    string
	Columns  []string
	Rows     []record.Record
	Selected int
	ReadOnly bool
}

// Snapshot copies the current grid state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	rows := make([]record.Record, len(v.rows))
	for i, row := range v.rows {
		rows[i] = row.Clone()
	}
	return Snapshot{
		Table:    v.table.Name,
		Columns:  v.table.Columns(),
		Rows:     rows,
		Selected: v.selected,
		ReadOnly: v.table.ReadOnly,
	}
}

// Insert validates and creates a new row, then reloads.
func (v *View) Insert(ctx context.Context, values record.Record) error {
	if v.table.ReadOnly {
		return fmt.Errorf("%s: %w", v.table.Name, ErrReadOnly)
	}
	err := forms.Submit(ctx, v.validator, values, func(ctx context.Context, rec record.Record) error {
		return v.api.Create(ctx, v.table.Name, rec)
	})
	if err != nil {
		return err
	}
	return v.Load(ctx)
}

// Update validates and replaces a row, then reloads. The row's identity is
// the primary-key value the submitted record carries; a missing or empty key
// fails locally, before validation and before any network call.
func (v *View) Update(ctx context.Context, values record.Record) error {
	if v.table.ReadOnly {
		return fmt.Errorf("%s: %w", v.table.Name, ErrReadOnly)
	}
	pk := v.table.PrimaryKey().Name
	id := values.Display(pk)
	if values.Empty(pk) || id == "" {
		return fmt.Errorf("tableview: %s update requires %s", v.table.Name, pk)
	}
	err := forms.Submit(ctx, v.validator, values, func(ctx context.Context, rec record.Record) error {
		return v.api.Update(ctx, v.table.Name, id, rec)
	})
	if err != nil {
		return err
	}
	return v.Load(ctx)
}

// Delete removes the selected row, then reloads. Without a selection it is
// a no-op.
func (v *View) Delete(ctx context.Context) error {
	if v.table.ReadOnly {
		return fmt.Errorf("%s: %w", v.table.Name, ErrReadOnly)
	}
	selected, ok := v.Selected()
	if !ok {
		return nil
	}
	id := selected.Display(v.table.PrimaryKey().Name)
	if id == "" {
		return fmt.Errorf("tableview: selected %s row has no %s", v.table.Name, v.table.PrimaryKey().Name)
	}
	if err := v.api.Delete(ctx, v.table.Name, id); err != nil {
		return err
	}
	v.Deselect()
	return v.Load(ctx)
}
