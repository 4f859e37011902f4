package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/starford/raido/internal/schema"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageNames = []string{
	"records_list", "record_form", "record_view",
	"projects_list", "project_view",
	"employees_list", "employee_view",
	"references", "templates_info", "assessment",
	"login", "error",
}

var exportNames = []string{"export_print", "export_doc", "export_log"}

var (
	pages   = map[string]*template.Template{}
	exports = map[string]*template.Template{}
)

var tmplFuncs = template.FuncMap{
	"inputType": func(k schema.FieldKind) string {
		switch k {
		case schema.Number:
			return "number"
		case schema.Email:
			return "email"
		case schema.URL:
			return "url"
		}
		return "text"
	},
}

func init() {
	for _, name := range pageNames {
		pages[name] = template.Must(template.New("layout.tmpl").Funcs(tmplFuncs).
			ParseFS(templateFS, "templates/layout.tmpl", "templates/"+name+".tmpl"))
	}
	for _, name := range exportNames {
		exports[name] = template.Must(template.New(name + ".tmpl").Funcs(tmplFuncs).
			ParseFS(templateFS, "templates/"+name+".tmpl"))
	}
}

// tab is one entry in the portal navigation.
type tab struct {
	Label  string
	URL    string
	Active bool
}

// page is the data passed to the shared layout.
type page struct {
	Title   string
	Tabs    []tab
	Content any
	Version string
}

var viewTabs = []struct{ Key, Label string }{
	{"projects", "Projects"},
	{"records", "Records"},
	{"templates", "Templates"},
	{"references", "References"},
	{"assessment", "How to pass assessment"},
}

func buildTabs(active string) []tab {
	out := make([]tab, 0, len(viewTabs))
	for _, v := range viewTabs {
		out = append(out, tab{Label: v.Label, URL: portalURL("view", v.Key), Active: v.Key == active})
	}
	return out
}

func (h *Handler) render(w http.ResponseWriter, status int, name, title, view string, content any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	err := pages[name].ExecuteTemplate(w, "layout", page{
		Title:   title,
		Tabs:    buildTabs(view),
		Content: content,
		Version: h.opts.Version,
	})
	if err != nil {
		slog.Error("render failed", slog.String("template", name), slog.String("error", err.Error()))
	}
}

func (h *Handler) renderExport(w http.ResponseWriter, name string, data any) {
	if err := exports[name].ExecuteTemplate(w, name+".tmpl", data); err != nil {
		slog.Error("render export failed", slog.String("template", name), slog.String("error", err.Error()))
	}
}
