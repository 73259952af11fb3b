package console

import (
	"net/http"
	"net/url"

	"github.com/goliatone/go-labadmin/pkg/forms"
	"github.com/goliatone/go-labadmin/pkg/record"
	"github.com/goliatone/go-labadmin/pkg/schema"
	"github.com/goliatone/go-labadmin/pkg/tableview"
)

// rowView is one grid row prepared for the page template.
type rowView struct {
	Key      string   `json:"key"`
	Cells    []string `json:"cells"`
	Selected bool     `json:"selected"`
}

// tablePageState carries the per-request overrides of the table page: which
// editing surface shows an error and with which values.
type tablePageState struct {
	flash        string
	loadError    string
	insertError  string
	insertValues record.Record
	updateError  string
	updateValues record.Record
}

func (s *Server) handleTablePage(w http.ResponseWriter, r *http.Request) {
	view, ok := s.view(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	state := tablePageState{flash: s.clean(r.URL.Query().Get("flash"))}
	if err := view.Load(r.Context()); err != nil {
		state.loadError = s.clean(err.Error())
	}
	s.renderTablePage(w, view, state)
}

// renderTablePage renders the grid plus its editing surfaces. A failed
// submit re-renders here with the surface's error and the submitted values,
// so the user's edits survive.
func (s *Server) renderTablePage(w http.ResponseWriter, view *tableview.View, state tablePageState) {
	table := view.Table()
	snap := view.Snapshot()
	pk := table.PrimaryKey().Name

	rows := make([]rowView, 0, len(snap.Rows))
	for i, row := range snap.Rows {
		cells := make([]string, len(snap.Columns))
		for j, col := range snap.Columns {
			cells[j] = row.Display(col)
		}
		rows = append(rows, rowView{
			Key:      row.Display(pk),
			Cells:    cells,
			Selected: i == snap.Selected,
		})
	}

	data := map[string]any{
		"table":      table.Name,
		"read_only":  table.ReadOnly,
		"columns":    snap.Columns,
		"rows":       rows,
		"flash":      state.flash,
		"load_error": state.loadError,
	}

	// The equipment page can inspect the selected row directly.
	if table.Name == schema.TableEquipment {
		if selected, ok := view.Selected(); ok {
			data["equipment_key"] = selected.Display(pk)
		}
	}

	if !table.ReadOnly {
		insert := forms.NewForm(table, state.insertValues, "Insert into "+table.Name, "/tables/"+url.PathEscape(table.Name)+"/insert")
		insert.Error = state.insertError
		html, err := s.generator.Render(insert)
		if err != nil {
			s.log.Error().Err(err).Str("table", table.Name).Msg("render insert form")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		data["insert_form"] = html

		if selected, ok := view.Selected(); ok {
			values := state.updateValues
			if values == nil {
				values = selected
			}
			update := forms.NewForm(table, values, "Update "+table.Name, "/tables/"+url.PathEscape(table.Name)+"/update")
			update.Error = state.updateError
			html, err := s.generator.Render(update)
			if err != nil {
				s.log.Error().Err(err).Str("table", table.Name).Msg("render update form")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			data["update_form"] = html
		}
	}

	s.renderPage(w, "table", data)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	view, ok := s.view(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	view.Select(r.PostForm.Get("key"))
	s.redirectToTable(w, r, view, "")
}

func (s *Server) handleDeselect(w http.ResponseWriter, r *http.Request) {
	view, ok := s.view(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	view.Deselect()
	s.redirectToTable(w, r, view, "")
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	s.handleMutation(w, r, "insert")
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	s.handleMutation(w, r, "update")
}

// handleMutation runs the shared submit flow for insert and update: decode,
// commit through the view, and either redirect with a flash on success or
// re-render the page with the failed surface still open.
func (s *Server) handleMutation(w http.ResponseWriter, r *http.Request, kind string) {
	view, ok := s.view(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	table := view.Table()

	fail := func(message string, values record.Record) {
		state := tablePageState{}
		if kind == "insert" {
			state.insertError = s.clean(message)
			state.insertValues = values
		} else {
			state.updateError = s.clean(message)
			state.updateValues = values
		}
		if err := view.Load(r.Context()); err != nil {
			state.loadError = s.clean(err.Error())
		}
		s.renderTablePage(w, view, state)
	}

	rec, err := forms.Decode(table, r.PostForm)
	if err != nil {
		fail(err.Error(), rawValues(table, r.PostForm))
		return
	}

	if kind == "insert" {
		err = view.Insert(r.Context(), rec)
	} else {
		err = view.Update(r.Context(), rec)
	}
	if err != nil {
		fail(err.Error(), rec)
		return
	}

	flash := "Row created"
	if kind == "update" {
		flash = "Row updated"
	}
	s.redirectToTable(w, r, view, flash)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	view, ok := s.view(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := view.Delete(r.Context()); err != nil {
		s.redirectToTable(w, r, view, err.Error())
		return
	}
	s.redirectToTable(w, r, view, "Row deleted")
}

func (s *Server) redirectToTable(w http.ResponseWriter, r *http.Request, view *tableview.View, flash string) {
	target := "/tables/" + url.PathEscape(view.Table().Name)
	if flash != "" {
		target += "?flash=" + url.QueryEscape(s.clean(flash))
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// rawValues keeps the submitted text of every field when decoding fails, so
// the re-rendered form shows exactly what the user typed.
func rawValues(table schema.Table, form url.Values) record.Record {
	out := record.Record{}
	for _, col := range table.Columns() {
		out[col] = form.Get(col)
	}
	return out
}
