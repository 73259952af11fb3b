package labapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-labadmin/pkg/record"
)

// memberAliases maps the backend's member row spellings onto canonical
// LAB_MEMBER field names. Applied once here so display code never chases
// casing variants.
var memberAliases = record.Aliases{
	"MID":        {"mid"},
	"NAME":       {"m_name", "name"},
	"MTYPE":      {"member_type", "mtype"},
	"JOINDATE":   {"jdate", "joindate"},
	"MENTOR_MID": {"mentor_mid"},
}

var projectAliases = record.Aliases{
	"PID":          {"pid"},
	"TITLE":        {"p_title", "title"},
	"START_DATE":   {"start_date"},
	"END_DATE":     {"end_date"},
	"EXP_DURATION": {"exp_duration"},
	"FID":          {"fid"},
}

// MemberUsage is one member currently using a piece of equipment, with the
// projects they use it for. Display only, never edited.
type MemberUsage struct {
	Member   record.Record
	Projects []record.Record
}

// Mentorship is a mentor/mentee relation between two member ids.
type Mentorship struct {
	MentorID string
	MenteeID string
}

// MajorPublications is one row of the publications-per-major aggregate.
type MajorPublications struct {
	Major         string
	Count         float64
	TotalStudents float64
}

// Average is the publication count per student; when the backend omits the
// student total the raw count stands in.
func (m MajorPublications) Average() float64 {
	if m.TotalStudents > 0 {
		return m.Count / m.TotalStudents
	}
	return m.Count
}

// EquipmentStatus fetches the status of one piece of equipment. The backend
// answers with either a bare scalar or {"status": ...}.
func (c *Client) EquipmentStatus(ctx context.Context, eid string) (string, error) {
	payload, err := c.send(ctx, http.MethodGet, "/equipment/status/"+url.PathEscape(eid), nil, "Failed to fetch equipment status")
	if err != nil {
		return "", err
	}
	return statusFromPayload(payload), nil
}

// EquipmentUsage lists the members currently using a piece of equipment,
// each optionally carrying a nested project list.
func (c *Client) EquipmentUsage(ctx context.Context, eid string) ([]MemberUsage, error) {
	payload, err := c.send(ctx, http.MethodGet, "/equipment/usage/"+url.PathEscape(eid), nil, "Failed to fetch equipment usage")
	if err != nil {
		return nil, err
	}
	items, ok := payload.([]any)
	if !ok {
		return []MemberUsage{}, nil
	}
	out := make([]MemberUsage, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		member := record.Normalize(obj, memberAliases)
		usage := MemberUsage{Member: member}
		for key, v := range member {
			if strings.EqualFold(key, "PROJECTS") {
				usage.Projects = recordsFromPayload(v, projectAliases)
				delete(member, key)
				break
			}
		}
		out = append(out, usage)
	}
	return out, nil
}

// MembersOnGrant lists members who worked on projects funded by a grant.
func (c *Client) MembersOnGrant(ctx context.Context, gid string) ([]record.Record, error) {
	payload, err := c.send(ctx, http.MethodGet, "/lab_member/grant/"+url.PathEscape(gid), nil, "Failed to fetch members on grant-funded projects")
	if err != nil {
		return nil, err
	}
	return recordsFromPayload(payload, memberAliases), nil
}

// MentorshipRelations lists mentor/mentee pairs among members of a project.
func (c *Client) MentorshipRelations(ctx context.Context, pid string) ([]Mentorship, error) {
	payload, err := c.send(ctx, http.MethodGet, "/lab_member/mentorship/"+url.PathEscape(pid), nil, "Failed to fetch mentorship relations")
	if err != nil {
		return nil, err
	}
	items, ok := payload.([]any)
	if !ok {
		return []Mentorship{}, nil
	}
	out := make([]Mentorship, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Mentorship{
			MentorID: pickDisplay(obj, "mentor_id", "mentor"),
			MenteeID: pickDisplay(obj, "mentee_id", "mentee"),
		})
	}
	return out, nil
}

// TopPublishers lists the display names of members with the highest
// publication counts.
func (c *Client) TopPublishers(ctx context.Context) ([]string, error) {
	payload, err := c.send(ctx, http.MethodGet, "/lab_member/top-publications", nil, "Failed to fetch top publishing members")
	if err != nil {
		return nil, err
	}
	items, ok := payload.([]any)
	if !ok {
		return []string{}, nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, record.Display(item))
	}
	return out, nil
}

// ProjectStatus fetches a project's status, scalar or {"status": ...}.
func (c *Client) ProjectStatus(ctx context.Context, pid string) (string, error) {
	payload, err := c.send(ctx, http.MethodGet, "/project/status/"+url.PathEscape(pid), nil, "Failed to fetch project status")
	if err != nil {
		return "", err
	}
	return statusFromPayload(payload), nil
}

// ProjectsFundedAndActive counts projects funded by a grant and active in a
// period. The backend may answer with a number, an array (its length
// counts), or {"count": ...}; anything else counts as zero.
func (c *Client) ProjectsFundedAndActive(ctx context.Context, gid, start, end string) (int, error) {
	params := url.Values{}
	if gid != "" {
		params.Set("gid", gid)
	}
	if start != "" {
		params.Set("start", start)
	}
	if end != "" {
		params.Set("end", end)
	}
	payload, err := c.send(ctx, http.MethodGet, "/project/list?"+params.Encode(), nil, "Failed to fetch projects list")
	if err != nil {
		return 0, err
	}
	return countFromPayload(payload), nil
}

// PublicationsPerMajor fetches the publications-per-major aggregate. The
// backend answers either {"success","data","message"} or a raw array of
// {"major","count","totalStudents"} rows.
func (c *Client) PublicationsPerMajor(ctx context.Context) ([]MajorPublications, error) {
	payload, err := c.send(ctx, http.MethodGet, "/publication/number-of-publications", nil, "Failed to fetch publications per major")
	if err != nil {
		return nil, err
	}

	items, ok := payload.([]any)
	if !ok {
		if envelope, isMap := payload.(map[string]any); isMap {
			items, _ = envelope["data"].([]any)
		}
	}

	out := make([]MajorPublications, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		row := MajorPublications{
			Major: pickDisplay(obj, "major"),
			Count: pickNumber(obj, "count"),
		}
		if row.Major == "" {
			row.Major = "Unknown"
		}
		row.TotalStudents = pickNumber(obj, "totalStudents", "total_students")
		out = append(out, row)
	}
	return out, nil
}

// statusFromPayload accepts a bare scalar or an object with a status field.
func statusFromPayload(payload any) string {
	if obj, ok := payload.(map[string]any); ok {
		if v, ok := pickKey(obj, "status"); ok {
			return record.Display(v)
		}
		return ""
	}
	return record.Display(payload)
}

func countFromPayload(payload any) int {
	switch v := payload.(type) {
	case float64:
		return int(v)
	case []any:
		return len(v)
	case map[string]any:
		if raw, ok := pickKey(v, "count"); ok {
			if n, ok := raw.(float64); ok {
				return int(n)
			}
		}
		return 0
	default:
		return 0
	}
}

// pickKey finds a key case-insensitively.
func pickKey(obj map[string]any, key string) (any, bool) {
	if v, ok := obj[key]; ok {
		return v, true
	}
	for k, v := range obj {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

// pickDisplay returns the first present key's display value, tolerating
// backend casing variants.
func pickDisplay(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := pickKey(obj, key); ok && v != nil {
			return record.Display(v)
		}
	}
	return ""
}

func pickNumber(obj map[string]any, keys ...string) float64 {
	for _, key := range keys {
		v, ok := pickKey(obj, key)
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n
		case string:
			var parsed float64
			if _, err := fmt.Sscanf(strings.TrimSpace(n), "%g", &parsed); err == nil {
				return parsed
			}
		}
	}
	return 0
}
