package tableview

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-labadmin/pkg/forms"
	"github.com/goliatone/go-labadmin/pkg/record"
	"github.com/goliatone/go-labadmin/pkg/schema"
	"github.com/goliatone/go-labadmin/pkg/validate"
)

type call struct {
	method string
	table  string
	id     string
	rec    record.Record
}

type fakeAPI struct {
	rows     []record.Record
	recordsF func(f *fakeAPI) ([]record.Record, error)
	err      error
	calls    []call
}

func (f *fakeAPI) Records(ctx context.Context, table string) ([]record.Record, error) {
	f.calls = append(f.calls, call{method: "records", table: table})
	if f.recordsF != nil {
		return f.recordsF(f)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeAPI) Create(ctx context.Context, table string, rec record.Record) error {
	f.calls = append(f.calls, call{method: "create", table: table, rec: rec})
	return f.err
}

func (f *fakeAPI) Update(ctx context.Context, table, id string, rec record.Record) error {
	f.calls = append(f.calls, call{method: "update", table: table, id: id, rec: rec})
	return f.err
}

func (f *fakeAPI) Delete(ctx context.Context, table, id string) error {
	f.calls = append(f.calls, call{method: "delete", table: table, id: id})
	return f.err
}

func mutationCalls(calls []call) []call {
	out := []call{}
	for _, c := range calls {
		if c.method != "records" {
			out = append(out, c)
		}
	}
	return out
}

func memberView(api *fakeAPI) *View {
	table, _ := schema.Default().Lookup(schema.TableLabMember)
	return New(table, api, validate.DefaultProvider().ValidatorFor(table.Name))
}

func TestView_LoadAndSnapshot(t *testing.T) {
	api := &fakeAPI{rows: []record.Record{
		{"MID": float64(1), "NAME": "A. Lee"},
		{"MID": float64(2), "NAME": "B. Cho"},
	}}
	v := memberView(api)

	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	snap := v.Snapshot()
	if snap.Table != schema.TableLabMember || snap.ReadOnly {
		t.Fatalf("unexpected snapshot header: %+v", snap)
	}
	if diff := cmp.Diff([]string{"MID", "NAME", "MTYPE", "JOINDATE"}, snap.Columns); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
	if len(snap.Rows) != 2 || snap.Selected != -1 {
		t.Fatalf("expected 2 rows and no selection, got %+v", snap)
	}

	// Snapshot rows are copies, not aliases of the view's state.
	snap.Rows[0]["NAME"] = "mutated"
	if got := v.Snapshot().Rows[0].Get("NAME"); got != "A. Lee" {
		t.Fatalf("snapshot must not alias internal rows, got %v", got)
	}
}

func TestView_SelectByPrimaryKey(t *testing.T) {
	api := &fakeAPI{rows: []record.Record{
		{"MID": float64(1), "NAME": "A. Lee"},
		{"MID": float64(2), "NAME": "B. Cho"},
	}}
	v := memberView(api)
	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if !v.Select("2") {
		t.Fatalf("expected to select MID 2")
	}
	selected, ok := v.Selected()
	if !ok || selected.Display("NAME") != "B. Cho" {
		t.Fatalf("unexpected selection: %v %v", selected, ok)
	}

	if v.Select("99") {
		t.Fatalf("selecting an absent key must fail")
	}
	v.Deselect()
	if _, ok := v.Selected(); ok {
		t.Fatalf("expected no selection after deselect")
	}
}

func TestView_StaleLoadIsDropped(t *testing.T) {
	api := &fakeAPI{}
	v := memberView(api)

	fresh := []record.Record{{"MID": float64(2), "NAME": "fresh"}}
	stale := []record.Record{{"MID": float64(1), "NAME": "stale"}}

	first := true
	api.recordsF = func(f *fakeAPI) ([]record.Record, error) {
		if first {
			first = false
			// A newer load completes while this one is still in flight.
			f.recordsF = nil
			f.rows = fresh
			if err := v.Load(context.Background()); err != nil {
				t.Fatalf("nested load: %v", err)
			}
			return stale, nil
		}
		return f.rows, nil
	}

	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	snap := v.Snapshot()
	if len(snap.Rows) != 1 || snap.Rows[0].Display("NAME") != "fresh" {
		t.Fatalf("stale response must not overwrite newer rows: %+v", snap.Rows)
	}
}

func TestView_FailedLoadClearsRows(t *testing.T) {
	api := &fakeAPI{rows: []record.Record{{"MID": float64(1), "NAME": "A. Lee"}}}
	v := memberView(api)
	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	api.err = errors.New("Failed to fetch records")
	if err := v.Load(context.Background()); err == nil {
		t.Fatalf("expected the load error to surface")
	}
	if rows := v.Snapshot().Rows; len(rows) != 0 {
		t.Fatalf("failed load must clear the grid, got %+v", rows)
	}
}

func TestView_InsertValidatesThenCreatesThenReloads(t *testing.T) {
	api := &fakeAPI{}
	v := memberView(api)

	err := v.Insert(context.Background(), record.Record{"MID": float64(3), "NAME": ""})
	var verr *forms.ValidationError
	if !errors.As(err, &verr) || verr.Message != "Name is required" {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if len(mutationCalls(api.calls)) != 0 {
		t.Fatalf("validation failure must not reach the API: %+v", api.calls)
	}

	api.rows = []record.Record{{"MID": float64(3), "NAME": "C. Diaz"}}
	if err := v.Insert(context.Background(), record.Record{"MID": float64(3), "NAME": "C. Diaz"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	muts := mutationCalls(api.calls)
	if len(muts) != 1 || muts[0].method != "create" {
		t.Fatalf("expected one create, got %+v", muts)
	}
	if last := api.calls[len(api.calls)-1]; last.method != "records" {
		t.Fatalf("insert must reload after the mutation, calls: %+v", api.calls)
	}
	if len(v.Snapshot().Rows) != 1 {
		t.Fatalf("reload must install the backend's rows")
	}
}

func TestView_UpdateKeyedBySubmittedPrimaryKey(t *testing.T) {
	api := &fakeAPI{rows: []record.Record{{"MID": float64(7), "NAME": "A. Lee"}}}
	v := memberView(api)
	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	v.Select("7")

	// A blanked key fails locally, before validation and the network.
	if err := v.Update(context.Background(), record.Record{"MID": "", "NAME": "X"}); err == nil {
		t.Fatalf("update without a primary key must fail")
	}
	if err := v.Update(context.Background(), record.Record{"NAME": "X"}); err == nil {
		t.Fatalf("update with the key absent must fail")
	}
	if len(mutationCalls(api.calls)) != 0 {
		t.Fatalf("a missing key must not reach the API: %+v", api.calls)
	}

	// The submitted record's key addresses the row, whatever is selected.
	if err := v.Update(context.Background(), record.Record{"MID": float64(8), "NAME": "A. Lee"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	muts := mutationCalls(api.calls)
	if len(muts) != 1 || muts[0].method != "update" || muts[0].id != "8" {
		t.Fatalf("expected update addressed by MID 8, got %+v", muts)
	}
}

func TestView_ReadOnlySelectionIsIgnored(t *testing.T) {
	api := &fakeAPI{rows: []record.Record{{"GID": float64(1), "AMOUNT": float64(5000)}}}
	table, _ := schema.Default().Lookup(schema.TableGrant)
	v := New(table, api, nil)
	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if v.Select("1") {
		t.Fatalf("selecting on a read-only table must be ignored")
	}
	if _, ok := v.Selected(); ok {
		t.Fatalf("read-only table must never report a selection")
	}
	if snap := v.Snapshot(); snap.Selected != -1 {
		t.Fatalf("snapshot must carry no selection, got %d", snap.Selected)
	}
}

func TestView_DeleteWithoutSelectionIsNoOp(t *testing.T) {
	api := &fakeAPI{rows: []record.Record{{"MID": float64(1), "NAME": "A. Lee"}}}
	v := memberView(api)
	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := v.Delete(context.Background()); err != nil {
		t.Fatalf("delete with no selection must be a no-op, got %v", err)
	}
	if len(mutationCalls(api.calls)) != 0 {
		t.Fatalf("no-op delete must not reach the API: %+v", api.calls)
	}

	v.Select("1")
	api.rows = nil
	if err := v.Delete(context.Background()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	muts := mutationCalls(api.calls)
	if len(muts) != 1 || muts[0].method != "delete" || muts[0].id != "1" {
		t.Fatalf("expected delete of MID 1, got %+v", muts)
	}
	if _, ok := v.Selected(); ok {
		t.Fatalf("selection must clear after delete")
	}
}

func TestView_ReadOnlyTableRejectsMutations(t *testing.T) {
	api := &fakeAPI{}
	table, _ := schema.Default().Lookup(schema.TableGrant)
	v := New(table, api, nil)

	if err := v.Insert(context.Background(), record.Record{"GID": float64(1)}); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly from insert, got %v", err)
	}
	if err := v.Update(context.Background(), record.Record{}); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly from update, got %v", err)
	}
	if err := v.Delete(context.Background()); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly from delete, got %v", err)
	}
	if len(api.calls) != 0 {
		t.Fatalf("read-only rejection must not reach the API: %+v", api.calls)
	}
}

func TestView_SelectionSurvivesReloadByKey(t *testing.T) {
	api := &fakeAPI{rows: []record.Record{
		{"MID": float64(1), "NAME": "A. Lee"},
		{"MID": float64(2), "NAME": "B. Cho"},
	}}
	v := memberView(api)
	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	v.Select("2")

	// The backend reorders rows; the selection follows the key.
	api.rows = []record.Record{
		{"MID": float64(2), "NAME": "B. Cho"},
		{"MID": float64(1), "NAME": "A. Lee"},
	}
	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if snap := v.Snapshot(); snap.Selected != 0 {
		t.Fatalf("selection must follow MID 2 to index 0, got %d", snap.Selected)
	}

	// The selected row disappears; the selection clears.
	api.rows = []record.Record{{"MID": float64(1), "NAME": "A. Lee"}}
	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, ok := v.Selected(); ok {
		t.Fatalf("selection must clear when the row is gone")
	}
}
