package labapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-labadmin/pkg/record"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(server.URL + "/api")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, server
}

func TestRecords(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/LAB_MEMBER" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]any{
			{"MID": 1, "NAME": "A. Lee"},
			{"MID": 2, "NAME": "B. Chen"},
		})
	}))

	rows, err := client.Records(context.Background(), "LAB_MEMBER")
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(rows) != 2 || rows[0].Display("NAME") != "A. Lee" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestRecords_NonArrayPayloadNormalizesToEmpty(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"unexpected": "shape"})
	}))

	rows, err := client.Records(context.Background(), "PROJECT")
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty set for non-array payload, got %v", rows)
	}
}

func TestSend_PrefersServerMessage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{"message": "duplicate primary key"})
	}))

	err := client.Create(context.Background(), "PROJECT", record.Record{"PID": 1})
	if err == nil {
		t.Fatalf("expected error")
	}
	if err.Error() != "duplicate primary key" {
		t.Fatalf("expected server message, got %q", err.Error())
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict {
		t.Fatalf("expected *Error with status 409, got %#v", err)
	}
}

func TestSend_FallsBackToFixedMessage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	err := client.Delete(context.Background(), "PROJECT", "7")
	if err == nil {
		t.Fatalf("expected error")
	}
	if err.Error() != "Failed to delete row" {
		t.Fatalf("expected fixed fallback message, got %q", err.Error())
	}
}

func TestMutations_MethodAndPath(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotBody = nil
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))

	ctx := context.Background()

	if err := client.Create(ctx, "EQUIPMENT", record.Record{"EID": float64(4)}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/EQUIPMENT" {
		t.Fatalf("create used %s %s", gotMethod, gotPath)
	}
	if gotBody["EID"] != float64(4) {
		t.Fatalf("create body: %v", gotBody)
	}

	if err := client.Update(ctx, "EQUIPMENT", "4", record.Record{"ENAME": "Laser"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/api/EQUIPMENT/4" {
		t.Fatalf("update used %s %s", gotMethod, gotPath)
	}

	if err := client.Delete(ctx, "EQUIPMENT", "4"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/api/EQUIPMENT/4" {
		t.Fatalf("delete used %s %s", gotMethod, gotPath)
	}
}

func TestRecords_AppliesAliasesOnAnalyticsPaths(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/lab_member/grant/12" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]any{
			{"mid": 3, "m_name": "C. Diaz", "jdate": "2021-09-01", "member_type": "PhD", "mentor_mid": 1},
		})
	}))

	rows, err := client.MembersOnGrant(context.Background(), "12")
	if err != nil {
		t.Fatalf("members on grant: %v", err)
	}
	want := []record.Record{{
		"MID":        float64(3),
		"NAME":       "C. Diaz",
		"JOINDATE":   "2021-09-01",
		"MTYPE":      "PhD",
		"MENTOR_MID": float64(1),
	}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("normalized rows mismatch (-want +got):\n%s", diff)
	}
}
