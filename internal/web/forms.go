package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/starford/raido/internal/dates"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/schema"
	"github.com/starford/raido/internal/uploads"
)

// fieldView is the template-facing shape of one schema field, for both
// editable forms and read-only views. Date values cross the canonical →
// display boundary here and nowhere later.
type fieldView struct {
	Name        string
	Label       string
	Kind        schema.FieldKind
	Value       string
	Placeholder string
	Required    bool
	Options     []string
	Checked     map[string]bool
}

// formFields builds editable field views. rec may be nil (create form).
func formFields(sch schema.Schema, rec *models.Record) []fieldView {
	out := make([]fieldView, 0, len(sch.Fields))
	for _, f := range sch.Fields {
		v := ""
		if rec != nil {
			v = rec.Field(f.Name)
		}
		fv := fieldView{
			Name:        f.Name,
			Label:       f.Label,
			Kind:        f.Kind,
			Value:       v,
			Placeholder: f.Placeholder,
			Required:    f.Required,
			Options:     f.Options,
		}
		switch f.Kind {
		case schema.Date:
			fv.Value = dates.Format(v)
			if fv.Placeholder == "" {
				fv.Placeholder = "DD/MM/YYYY"
			}
		case schema.CheckboxGroup:
			fv.Checked = groupSet(v)
		}
		out = append(out, fv)
	}
	return out
}

// viewFields builds read-only field views in schema order. Every declared
// field appears, even when empty.
func viewFields(sch schema.Schema, rec *models.Record) []fieldView {
	out := make([]fieldView, 0, len(sch.Fields))
	for _, f := range sch.Fields {
		v := rec.Field(f.Name)
		switch f.Kind {
		case schema.Date:
			v = dates.Format(v)
		case schema.CheckboxGroup:
			v = strings.Join(strings.Split(v, ","), ", ")
			v = strings.TrimPrefix(v, ", ")
		}
		out = append(out, fieldView{
			Name:  f.Name,
			Label: f.Label,
			Kind:  f.Kind,
			Value: v,
		})
	}
	return out
}

// collectFields reads the schema's declared fields out of a parsed form.
// Checkbox groups arrive as repeated values and are comma-joined.
func collectFields(sch schema.Schema, form url.Values) map[string]string {
	out := make(map[string]string, len(sch.Fields))
	for _, f := range sch.Fields {
		if f.Kind == schema.CheckboxGroup {
			out[f.Name] = strings.Join(form[f.Name], ",")
			continue
		}
		out[f.Name] = form.Get(f.Name)
	}
	return out
}

func groupSet(v string) map[string]bool {
	set := map[string]bool{}
	for _, part := range strings.Split(v, ",") {
		if part != "" {
			set[part] = true
		}
	}
	return set
}

// attView is a resolved attachment for templates.
type attView struct {
	ID   string
	Name string
	URL  string
}

func attViews(files *uploads.FS, ids []string) []attView {
	resolved := files.ResolveAll(ids)
	out := make([]attView, len(resolved))
	for i, a := range resolved {
		out[i] = attView{ID: a.ID, Name: a.Name, URL: a.URL()}
	}
	return out
}

// portalURL builds a portal link from key/value pairs.
func portalURL(pairs ...string) string {
	q := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		q.Set(pairs[i], pairs[i+1])
	}
	return "/?" + q.Encode()
}

// actionParam returns the requested portal action, accepting the legacy
// be_action parameter from old bookmarked links.
func actionParam(r *http.Request) string {
	if v := r.URL.Query().Get("be_action"); v != "" {
		return v
	}
	return r.URL.Query().Get("action")
}

// normalizeView resolves the view parameter, tolerating the legacy
// "installations" alias and falling back to records.
func normalizeView(v string) string {
	if v == "installations" {
		return "projects"
	}
	switch v {
	case "records", "projects", "templates", "references", "assessment":
		return v
	}
	return "records"
}
