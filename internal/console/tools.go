package console

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-labadmin/pkg/record"
)

// projectColumns are the fields shown for each project in a usage card.
var projectColumns = []string{"PID", "TITLE", "START_DATE", "END_DATE", "EXP_DURATION", "FID"}

// handleEquipmentPage renders the equipment panel. Status and usage keep
// independent results and errors; checking one never clears the other.
func (s *Server) handleEquipmentPage(w http.ResponseWriter, r *http.Request) {
	state := s.equipment.State()

	type memberUsageView struct {
		MID      string     `json:"mid"`
		Name     string     `json:"name"`
		Type     string     `json:"type"`
		JoinDate string     `json:"join_date"`
		Mentor   string     `json:"mentor"`
		Projects [][]string `json:"projects"`
	}
	usage := make([]memberUsageView, 0, len(state.Usage))
	for _, u := range state.Usage {
		view := memberUsageView{
			MID:      s.clean(u.Member.Display("MID")),
			Name:     s.clean(u.Member.Display("NAME")),
			Type:     s.clean(u.Member.Display("MTYPE")),
			JoinDate: s.clean(u.Member.Display("JOINDATE")),
			Mentor:   s.clean(u.Member.Display("MENTOR_MID")),
		}
		for _, project := range u.Projects {
			row := make([]string, len(projectColumns))
			for i, col := range projectColumns {
				row[i] = s.clean(project.Display(col))
			}
			view.Projects = append(view.Projects, row)
		}
		usage = append(usage, view)
	}

	s.renderPage(w, "equipment", map[string]any{
		"status":          s.clean(state.Status),
		"status_err":      s.clean(state.StatusErr),
		"usage":           usage,
		"usage_err":       s.clean(state.UsageErr),
		"project_columns": projectColumns,
	})
}

func (s *Server) handleEquipmentStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	s.equipment.FetchStatus(r.Context(), strings.TrimSpace(r.PostForm.Get("eid")))
	http.Redirect(w, r, "/equipment", http.StatusSeeOther)
}

func (s *Server) handleEquipmentUsage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	s.equipment.FetchUsage(r.Context(), strings.TrimSpace(r.PostForm.Get("eid")))
	http.Redirect(w, r, "/equipment", http.StatusSeeOther)
}

// handleMembersPage runs the lab member tools named by the query: members on
// a grant (gid), mentorship relations in a project (pid), and top publishers
// (top=1). Each tool records its own error; one failing never blanks the
// others.
func (s *Server) handleMembersPage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	data := map[string]any{
		"gid": s.clean(query.Get("gid")),
		"pid": s.clean(query.Get("pid")),
	}

	if query.Has("gid") {
		if gid := strings.TrimSpace(query.Get("gid")); gid == "" {
			data["grant_err"] = "Grant id is required"
		} else if members, err := s.api.MembersOnGrant(r.Context(), gid); err != nil {
			data["grant_err"] = s.clean(err.Error())
		} else {
			data["grant_members"] = s.memberNames(members)
			data["grant_ran"] = true
		}
	}

	if query.Has("pid") {
		pid := strings.TrimSpace(query.Get("pid"))
		if pid == "" {
			data["mentorship_err"] = "Project id is required"
		} else if relations, err := s.api.MentorshipRelations(r.Context(), pid); err != nil {
			data["mentorship_err"] = s.clean(err.Error())
		} else {
			pairs := make([]string, 0, len(relations))
			for _, rel := range relations {
				pairs = append(pairs, s.clean(rel.MentorID+" mentors "+rel.MenteeID))
			}
			data["mentorships"] = pairs
		}
	}

	if query.Get("top") != "" {
		publishers, err := s.api.TopPublishers(r.Context())
		if err != nil {
			data["top_err"] = s.clean(err.Error())
		} else {
			cleaned := make([]string, 0, len(publishers))
			for _, name := range publishers {
				cleaned = append(cleaned, s.clean(name))
			}
			data["top_publishers"] = cleaned
		}
	}

	s.renderPage(w, "members", data)
}

func (s *Server) memberNames(members []record.Record) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		name := m.Display("NAME")
		if name == "" {
			name = m.Display("MID")
		}
		out = append(out, s.clean(name))
	}
	return out
}

// handleProjectsPage runs the project tools: status lookup (pid) and the
// funded-and-active count (gid, start, end). The count tool checks its
// inputs locally before calling the backend.
func (s *Server) handleProjectsPage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	data := map[string]any{
		"pid":   s.clean(query.Get("pid")),
		"gid":   s.clean(query.Get("gid")),
		"start": s.clean(query.Get("start")),
		"end":   s.clean(query.Get("end")),
	}

	if query.Has("pid") {
		if pid := strings.TrimSpace(query.Get("pid")); pid == "" {
			data["status_err"] = "Project id is required"
		} else if status, err := s.api.ProjectStatus(r.Context(), pid); err != nil {
			data["status_err"] = s.clean(err.Error())
		} else {
			data["status"] = s.clean(status)
		}
	}

	gid := strings.TrimSpace(query.Get("gid"))
	start := strings.TrimSpace(query.Get("start"))
	end := strings.TrimSpace(query.Get("end"))
	if query.Has("gid") || query.Has("start") || query.Has("end") {
		if gid == "" || start == "" || end == "" {
			data["count_err"] = "Grant id, start date, and end date are all required"
		} else {
			count, err := s.api.ProjectsFundedAndActive(r.Context(), gid, start, end)
			if err != nil {
				data["count_err"] = s.clean(err.Error())
			} else {
				data["count"] = count
				data["count_set"] = true
			}
		}
	}

	s.renderPage(w, "projects", data)
}

// handlePublicationsPage renders the publications-per-major aggregate with
// the per-student average formatted to two decimals.
func (s *Server) handlePublicationsPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}

	rows, err := s.api.PublicationsPerMajor(r.Context())
	if err != nil {
		data["majors_err"] = s.clean(err.Error())
	} else {
		type majorView struct {
			Major   string `json:"major"`
			Count   string `json:"count"`
			Average string `json:"average"`
		}
		majors := make([]majorView, 0, len(rows))
		for _, row := range rows {
			majors = append(majors, majorView{
				Major:   s.clean(row.Major),
				Count:   record.Display(row.Count),
				Average: fmt.Sprintf("%.2f", row.Average()),
			})
		}
		data["majors"] = majors
	}

	s.renderPage(w, "publications", data)
}
