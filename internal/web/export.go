package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/starford/raido/internal/dates"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/recordservice"
	"github.com/starford/raido/internal/schema"
	"github.com/starford/raido/internal/store"
)

// exportData feeds the print and .doc templates. Fields appear in schema
// declaration order so every export of a type reads the same way.
type exportData struct {
	Title        string
	TypeLabel    string
	Date         string
	ProjectTitle string
	Fields       []fieldView
	Checklist    []exportCheck
	Evidence     []string
	Footer       string
	PrintButton  bool
}

type exportCheck struct {
	Label string
	Done  bool
}

// Export handles GET /export. mode=print renders a printable page,
// mode=doc downloads the same content as a Word-compatible document, and
// mode=log prints a whole register.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode == "log" {
		h.exportLog(w, r)
		return
	}

	rec, err := h.svc.Get(r.Context(), r.URL.Query().Get("id"), "")
	if err != nil {
		h.errorPage(w, r, err)
		return
	}
	data, err := h.exportRecord(r, rec)
	if err != nil {
		h.errorPage(w, r, err)
		return
	}

	if mode == "doc" {
		w.Header().Set("Content-Type", "application/msword")
		w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename(rec.Title)+`"`)
		h.renderExport(w, "export_doc", data)
		return
	}
	data.PrintButton = true
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.renderExport(w, "export_print", data)
}

func (h *Handler) exportRecord(r *http.Request, rec *models.Record) (exportData, error) {
	sch := recordservice.SchemaFor(rec.Kind, rec.Type)
	data := exportData{
		Title:     rec.Title,
		TypeLabel: sch.Label,
		Date:      dates.Format(recordservice.RecordDate(rec)),
		Fields:    viewFields(sch, rec),
		Footer:    h.exportFooter(r),
	}

	if rec.ProjectID != "" {
		if p, err := h.svc.Get(r.Context(), rec.ProjectID, models.KindProject); err == nil {
			data.ProjectTitle = p.Title
		}
	}
	if rec.Kind == models.KindProject {
		for _, item := range schema.ChecklistItems {
			data.Checklist = append(data.Checklist, exportCheck{Label: item.Label, Done: rec.Checklist[item.Key]})
		}
	}
	for _, a := range h.files.ResolveAll(rec.Attachments) {
		data.Evidence = append(data.Evidence, a.Name)
	}
	return data, nil
}

func (h *Handler) exportLog(w http.ResponseWriter, r *http.Request) {
	typ := schema.ResolveTag(r.URL.Query().Get("type"))

	// R07 rows live as training entities keyed by employee, not as
	// generic records, so the matrix gets its own log.
	if typ == "r07_training_matrix" {
		h.exportTrainingLog(w, r)
		return
	}

	sch := schema.ForType(typ)
	recs, err := h.svc.List(r.Context(), store.Query{Kind: models.KindRecord, Type: typ})
	if err != nil {
		h.errorPage(w, r, err)
		return
	}
	projects, err := h.projectTitles(r)
	if err != nil {
		h.errorPage(w, r, err)
		return
	}

	columns := []string{"Date", "Title"}
	for _, f := range sch.Fields {
		columns = append(columns, f.Label)
	}
	columns = append(columns, "Project")

	rows := make([][]string, 0, len(recs))
	for i := range recs {
		rec := &recs[i]
		row := []string{dates.Format(recordservice.RecordDate(rec)), rec.Title}
		for _, fv := range viewFields(sch, rec) {
			row = append(row, fv.Value)
		}
		row = append(row, projects[rec.ProjectID])
		rows = append(rows, row)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.renderExport(w, "export_log", map[string]any{
		"Heading": sch.Label + " — full log",
		"Columns": columns,
		"Rows":    rows,
		"Footer":  h.exportFooter(r),
	})
}

// exportTrainingLog prints the training matrix: every course of every
// employee, or one employee's courses when emp is set.
func (h *Handler) exportTrainingLog(w http.ResponseWriter, r *http.Request) {
	heading := "Training Matrix — all employees"
	q := store.Query{Kind: models.KindTraining}
	names := map[string]string{}

	if empID := r.URL.Query().Get("emp"); empID != "" {
		emp, err := h.svc.Get(r.Context(), empID, models.KindEmployee)
		if err != nil {
			h.errorPage(w, r, err)
			return
		}
		heading = "Training Matrix — " + emp.Title
		q.EmployeeID = emp.ID
		names[emp.ID] = emp.Title
	} else {
		emps, err := h.svc.List(r.Context(), store.Query{Kind: models.KindEmployee})
		if err != nil {
			h.errorPage(w, r, err)
			return
		}
		for i := range emps {
			names[emps[i].ID] = emps[i].Title
		}
	}

	trainings, err := h.svc.List(r.Context(), q)
	if err != nil {
		h.errorPage(w, r, err)
		return
	}
	rows := make([][]string, 0, len(trainings))
	for i := range trainings {
		t := &trainings[i]
		rows = append(rows, []string{
			names[t.EmployeeID],
			t.Title,
			dates.Format(t.Field("date_course")),
			dates.Format(t.Field("renewal_date")),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	h.renderExport(w, "export_log", map[string]any{
		"Heading": heading,
		"Columns": []string{"Employee", "Course", "Course date", "Renewal"},
		"Rows":    rows,
		"Footer":  h.exportFooter(r),
	})
}

// exportFooter stamps every export with the company and the portal
// version that produced it.
func (h *Handler) exportFooter(r *http.Request) string {
	footer := fmt.Sprintf("Generated by Raido QMS Portal v%s on %s", h.opts.Version, dates.Format(dates.Today()))
	if p, err := h.svc.Profile(r.Context()); err == nil && p.CompanyName != "" {
		footer = p.CompanyName + " — " + footer
	}
	return footer
}

func exportFilename(title string) string {
	name := strings.Map(func(c rune) rune {
		switch c {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return c
	}, title)
	name = strings.TrimSpace(name)
	if name == "" {
		name = "record"
	}
	return name + ".doc"
}

// byteSize formats a file size for the library listing.
func byteSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
