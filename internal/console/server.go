// Package console is the web front end of the lab database admin tool: a
// server-rendered UI over the REST backend, one page per table plus the
// analytics tool pages.
package console

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-labadmin/internal/config"
	"github.com/goliatone/go-labadmin/pkg/forms"
	"github.com/goliatone/go-labadmin/pkg/forms/template"
	"github.com/goliatone/go-labadmin/pkg/labapi"
	"github.com/goliatone/go-labadmin/pkg/record"
	"github.com/goliatone/go-labadmin/pkg/schema"
	"github.com/goliatone/go-labadmin/pkg/tableview"
	"github.com/goliatone/go-labadmin/pkg/validate"
)

// API is everything the console needs from the lab client: table CRUD plus
// the analytics lookups.
type API interface {
	tableview.API
	tableview.EquipmentAPI
	MembersOnGrant(ctx context.Context, gid string) ([]record.Record, error)
	MentorshipRelations(ctx context.Context, pid string) ([]labapi.Mentorship, error)
	TopPublishers(ctx context.Context) ([]string, error)
	ProjectStatus(ctx context.Context, pid string) (string, error)
	ProjectsFundedAndActive(ctx context.Context, gid, start, end string) (int, error)
	PublicationsPerMajor(ctx context.Context) ([]labapi.MajorPublications, error)
}

// Option customises the server.
type Option func(*Server)

// WithLogger replaces the default logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithThemeSelector resolves the configured theme into the page styles.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(s *Server) {
		s.themeSelector = selector
	}
}

// Server holds the console's shared state: one view per table, the
// equipment panel, and the rendering pipeline.
type Server struct {
	cfg       config.Config
	registry  *schema.Registry
	api       API
	views     map[string]*tableview.View
	equipment *tableview.EquipmentPanel
	generator *forms.Generator
	pages     template.Renderer
	sanitize  *bluemonday.Policy
	log       zerolog.Logger

	themeSelector theme.ThemeSelector
	themeStyle    string

	router chi.Router
}

// New wires the console over a table registry and an API client.
func New(cfg config.Config, registry *schema.Registry, api API, validators *validate.Provider, options ...Option) (*Server, error) {
	if registry == nil {
		return nil, errors.New("console: registry is required")
	}
	if api == nil {
		return nil, errors.New("console: api client is required")
	}
	if validators == nil {
		validators = validate.NewProvider()
	}

	generator, err := forms.NewGenerator()
	if err != nil {
		return nil, err
	}
	pages, err := template.New(template.WithFS(TemplatesFS()))
	if err != nil {
		return nil, fmt.Errorf("console: configure page templates: %w", err)
	}

	s := &Server{
		cfg:       cfg,
		registry:  registry,
		api:       api,
		views:     make(map[string]*tableview.View),
		equipment: tableview.NewEquipmentPanel(api),
		generator: generator,
		pages:     pages,
		sanitize:  bluemonday.StrictPolicy(),
		log:       NewLogger(cfg.Log, nil),
	}
	for _, table := range registry.Tables() {
		s.views[table.Name] = tableview.New(table, api, validators.ValidatorFor(table.Name))
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	s.themeStyle = resolveThemeStyle(s.themeSelector, cfg.Theme.Name, cfg.Theme.Variant)
	s.router = s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.log))

	r.Get("/", s.handleDashboard)

	r.Route("/tables/{table}", func(r chi.Router) {
		r.Get("/", s.handleTablePage)
		r.Post("/select", s.handleSelect)
		r.Post("/deselect", s.handleDeselect)
		r.Post("/insert", s.handleInsert)
		r.Post("/update", s.handleUpdate)
		r.Post("/delete", s.handleDelete)
	})

	r.Get("/equipment", s.handleEquipmentPage)
	r.Post("/equipment/status", s.handleEquipmentStatus)
	r.Post("/equipment/usage", s.handleEquipmentUsage)

	r.Get("/members", s.handleMembersPage)
	r.Get("/projects", s.handleProjectsPage)
	r.Get("/publications", s.handlePublicationsPage)

	return r
}

// view resolves the table path parameter; unknown tables 404.
func (s *Server) view(r *http.Request) (*tableview.View, bool) {
	name := chi.URLParam(r, "table")
	view, ok := s.views[name]
	return view, ok
}

// renderPage executes a page template and writes it out.
func (s *Server) renderPage(w http.ResponseWriter, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["theme_style"] = s.themeStyle
	html, err := s.pages.RenderTemplate("templates/pages/"+name, data)
	if err != nil {
		s.log.Error().Err(err).Str("page", name).Msg("render page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

// clean strips markup from backend-provided text before it reaches a page.
func (s *Server) clean(text string) string {
	return s.sanitize.Sanitize(text)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	type tableLink struct {
		Name     string `json:"name"`
		ReadOnly bool   `json:"read_only"`
		Fields   int    `json:"fields"`
	}
	tables := make([]tableLink, 0)
	for _, table := range s.registry.Tables() {
		tables = append(tables, tableLink{
			Name:     table.Name,
			ReadOnly: table.ReadOnly,
			Fields:   len(table.Fields),
		})
	}
	s.renderPage(w, "dashboard", map[string]any{
		"tables": tables,
		"flash":  s.clean(r.URL.Query().Get("flash")),
	})
}
