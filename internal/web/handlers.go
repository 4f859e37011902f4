// Package web renders the staff portal: list/form/view pages for every
// entity kind, the save and delete flows, attachment serving, and the
// printable and downloadable exports.
package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/dates"
	"github.com/starford/raido/internal/library"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/nonce"
	"github.com/starford/raido/internal/recordservice"
	"github.com/starford/raido/internal/schema"
	"github.com/starford/raido/internal/store"
	"github.com/starford/raido/internal/uploads"
)

const maxUploadBytes = 32 << 20

// Options configures the handler.
type Options struct {
	Version     string
	Secret      string // signs delete-confirmation tokens
	AuthEnabled bool
	AuthToken   string
}

// Handler serves the whole portal surface.
type Handler struct {
	svc   *recordservice.Service
	files *uploads.FS
	lib   *library.Library
	opts  Options
}

// NewHandler wires the portal handler.
func NewHandler(svc *recordservice.Service, files *uploads.FS, lib *library.Library, opts Options) *Handler {
	return &Handler{svc: svc, files: files, lib: lib, opts: opts}
}

// Portal dispatches GET / on the view and action query parameters. All
// portal pages hang off the single root URL, so old bookmarked links with
// legacy view and action names keep working.
func (h *Handler) Portal(w http.ResponseWriter, r *http.Request) {
	view := normalizeView(r.URL.Query().Get("view"))
	action := actionParam(r)
	id := r.URL.Query().Get("id")

	switch view {
	case "projects":
		h.projectsView(w, r, action, id)
	case "templates":
		h.templatesPage(w, r)
	case "references":
		h.referencesPage(w, r)
	case "assessment":
		h.render(w, http.StatusOK, "assessment", "Self-assessment", "assessment", nil)
	default:
		h.recordsView(w, r, action, id)
	}
}

func (h *Handler) recordsView(w http.ResponseWriter, r *http.Request, action, id string) {
	typ := schema.ResolveTag(r.URL.Query().Get("type"))

	// R07 is the employees and training register; it renders the skills
	// matrix instead of a generic record list.
	if typ == "r07_training_matrix" {
		h.employeesView(w, r, action, id)
		return
	}

	switch action {
	case "new":
		h.recordForm(w, r, typ, nil)
	case "edit":
		rec, err := h.svc.Get(r.Context(), id, models.KindRecord)
		if err != nil {
			h.errorPage(w, r, err)
			return
		}
		h.recordForm(w, r, rec.Type, rec)
	case "view":
		h.recordView(w, r, id)
	default:
		h.recordsList(w, r, typ)
	}
}

func (h *Handler) recordsList(w http.ResponseWriter, r *http.Request, typ string) {
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

	type row struct {
		Date, ProjectTitle, ProjectURL  string
		Title, ViewURL, EditURL, DocURL string
		PrintURL, DeleteURL             string
	}
	rows := make([]row, 0, len(recs))
	for i := range recs {
		rec := &recs[i]
		rows = append(rows, row{
			Date:         dates.Format(recordservice.RecordDate(rec)),
			ProjectTitle: projects[rec.ProjectID],
			ProjectURL:   portalURL("view", "projects", "action", "view", "id", rec.ProjectID),
			Title:        rec.Title,
			ViewURL:      portalURL("view", "records", "type", typ, "action", "view", "id", rec.ID),
			EditURL:      portalURL("view", "records", "type", typ, "action", "edit", "id", rec.ID),
			DocURL:       "/export?mode=doc&id=" + rec.ID,
			PrintURL:     "/export?mode=print&id=" + rec.ID,
			DeleteURL:    h.deleteURL("record", rec.ID),
		})
	}

	h.render(w, http.StatusOK, "records_list", schema.Label(typ), "records", map[string]any{
		"Sidebar":   h.sidebar(typ),
		"TypeLabel": schema.Label(typ),
		"NewURL":    portalURL("view", "records", "type", typ, "action", "new"),
		"Rows":      rows,
		"LogURL":    "/export?mode=log&type=" + typ,
	})
}

type sideLink struct {
	Label  string
	URL    string
	Active bool
}

func (h *Handler) sidebar(active string) []sideLink {
	tags := schema.Tags()
	out := make([]sideLink, 0, len(tags))
	for _, tag := range tags {
		out = append(out, sideLink{
			Label:  schema.Label(tag),
			URL:    portalURL("view", "records", "type", tag),
			Active: tag == active,
		})
	}
	return out
}

// projectTitles returns project id → title for list annotations.
func (h *Handler) projectTitles(r *http.Request) (map[string]string, error) {
	projects, err := h.svc.List(r.Context(), store.Query{Kind: models.KindProject})
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(projects))
	for _, p := range projects {
		out[p.ID] = p.Title
	}
	return out, nil
}

func (h *Handler) recordForm(w http.ResponseWriter, r *http.Request, typ string, rec *models.Record) {
	sch := schema.ForType(typ)
	projects, err := h.svc.List(r.Context(), store.Query{Kind: models.KindProject})
	if err != nil {
		h.errorPage(w, r, err)
		return
	}
	type opt struct{ ID, Title string }
	opts := make([]opt, 0, len(projects))
	for _, p := range projects {
		opts = append(opts, opt{ID: p.ID, Title: p.Title})
	}

	heading := "New " + sch.Label
	hidden := map[string]string{"type": typ}
	title, selected := "", r.URL.Query().Get("project_id")
	var atts []attView
	if rec != nil {
		heading = "Edit " + sch.Label
		hidden["id"] = rec.ID
		title = rec.Title
		selected = rec.ProjectID
		atts = attViews(h.files, rec.Attachments)
	}

	h.render(w, http.StatusOK, "record_form", heading, "records", map[string]any{
		"Heading":          heading,
		"SubHeading":       "Fields marked required must be completed before the record saves.",
		"Action":           "/save/record",
		"Hidden":           hidden,
		"ShowTitle":        true,
		"TitleLabel":       "Title",
		"TitleValue":       title,
		"TitlePlaceholder": titlePlaceholder(typ),
		"Fields":           formFields(sch, rec),
		"Projects":         opts,
		"SelectedProject":  selected,
		"ShowUploads":      true,
		"Attachments":      atts,
		"Submit":           "Save record",
		"CancelURL":        portalURL("view", "records", "type", typ),
	})
}

// titlePlaceholder hints that some registers derive their title when left
// blank.
func titlePlaceholder(typ string) string {
	switch typ {
	case "r04_tool_calibration", "r06_customer_complaints",
		"r08_approved_suppliers", "r09_approved_subcontract":
		return "Leave blank to auto-generate"
	}
	return ""
}

func (h *Handler) recordView(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := h.svc.Get(r.Context(), id, models.KindRecord)
	if err != nil {
		h.errorPage(w, r, err)
		return
	}
	sch := schema.ForType(rec.Type)

	projectTitle, projectURL := "", ""
	if rec.ProjectID != "" {
		if p, err := h.svc.Get(r.Context(), rec.ProjectID, models.KindProject); err == nil {
			projectTitle = p.Title
			projectURL = portalURL("view", "projects", "action", "view", "id", p.ID)
		}
	}

	h.render(w, http.StatusOK, "record_view", rec.Title, "records", map[string]any{
		"Heading":      rec.Title,
		"TypeLabel":    sch.Label,
		"Date":         dates.Format(recordservice.RecordDate(rec)),
		"ProjectTitle": projectTitle,
		"ProjectURL":   projectURL,
		"EditURL":      portalURL("view", "records", "type", rec.Type, "action", "edit", "id", rec.ID),
		"DocURL":       "/export?mode=doc&id=" + rec.ID,
		"PrintURL":     "/export?mode=print&id=" + rec.ID,
		"Fields":       viewFields(sch, rec),
		"Attachments":  attViews(h.files, rec.Attachments),
		"BackURL":      portalURL("view", "records", "type", rec.Type),
	})
}

func (h *Handler) projectsView(w http.ResponseWriter, r *http.Request, action, id string) {
	switch action {
	case "new":
		h.projectForm(w, r, nil)
	case "edit":
		rec, err := h.svc.Get(r.Context(), id, models.KindProject)
		if err != nil {
			h.errorPage(w, r, err)
			return
		}
		h.projectForm(w, r, rec)
	case "view":
		h.projectView(w, r, id)
	default:
		h.projectsList(w, r)
	}
}

func (h *Handler) projectsList(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.List(r.Context(), store.Query{Kind: models.KindProject})
	if err != nil {
		h.errorPage(w, r, err)
		return
	}
	type row struct {
		Title, Customer, Address              string
		ViewURL, EditURL, PrintURL, DeleteURL string
	}
	rows := make([]row, 0, len(projects))
	for i := range projects {
		p := &projects[i]
		rows = append(rows, row{
			Title:     p.Title,
			Customer:  p.Field("customer"),
			Address:   p.Field("address"),
			ViewURL:   portalURL("view", "projects", "action", "view", "id", p.ID),
			EditURL:   portalURL("view", "projects", "action", "edit", "id", p.ID),
			PrintURL:  "/export?mode=print&id=" + p.ID,
			DeleteURL: h.deleteURL("project", p.ID),
		})
	}
	h.render(w, http.StatusOK, "projects_list", "Projects", "projects", map[string]any{
		"NewURL": portalURL("view", "projects", "action", "new"),
		"Rows":   rows,
	})
}

func (h *Handler) projectForm(w http.ResponseWriter, r *http.Request, rec *models.Record) {
	heading := "New project"
	hidden := map[string]string{}
	title := ""
	var atts []attView
	if rec != nil {
		heading = "Edit project"
		hidden["id"] = rec.ID
		title = rec.Title
		atts = attViews(h.files, rec.Attachments)
	}
	h.render(w, http.StatusOK, "record_form", heading, "projects", map[string]any{
		"Heading":     heading,
		"SubHeading":  "The project title appears on every linked record.",
		"Action":      "/save/project",
		"Hidden":      hidden,
		"ShowTitle":   true,
		"TitleLabel":  "Project title",
		"TitleValue":  title,
		"Fields":      formFields(schema.Project(), rec),
		"ShowUploads": true,
		"Attachments": atts,
		"Submit":      "Save project",
		"CancelURL":   portalURL("view", "projects"),
	})
}

func (h *Handler) projectView(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := h.svc.Get(r.Context(), id, models.KindProject)
	if err != nil {
		h.errorPage(w, r, err)
		return
	}
	linked, err := h.svc.LinkedRecords(r.Context(), rec.ID)
	if err != nil {
		h.errorPage(w, r, err)
		return
	}

	type linkedRow struct{ Date, TypeLabel, Title, ViewURL, EditURL string }
	rows := make([]linkedRow, 0, len(linked))
	for i := range linked {
		lr := &linked[i]
		rows = append(rows, linkedRow{
			Date:      dates.Format(recordservice.RecordDate(lr)),
			TypeLabel: schema.Label(lr.Type),
			Title:     lr.Title,
			ViewURL:   portalURL("view", "records", "type", lr.Type, "action", "view", "id", lr.ID),
			EditURL:   portalURL("view", "records", "type", lr.Type, "action", "edit", "id", lr.ID),
		})
	}

	type checkItem struct {
		Key, Label string
		Done       bool
	}
	checklist := make([]checkItem, 0, len(schema.ChecklistItems))
	for _, item := range schema.ChecklistItems {
		checklist = append(checklist, checkItem{Key: item.Key, Label: item.Label, Done: rec.Checklist[item.Key]})
	}

	h.render(w, http.StatusOK, "project_view", rec.Title, "projects", map[string]any{
		"Heading":         rec.Title,
		"ID":              rec.ID,
		"AddRecordURL":    portalURL("view", "records", "type", schema.DefaultType, "action", "new", "project_id", rec.ID),
		"EditURL":         portalURL("view", "projects", "action", "edit", "id", rec.ID),
		"PrintURL":        "/export?mode=print&id=" + rec.ID,
		"Fields":          viewFields(schema.Project(), rec),
		"ChecklistAction": "/save/checklist",
		"Checklist":       checklist,
		"Linked":          rows,
		"Attachments":     attViews(h.files, rec.Attachments),
		"BackURL":         portalURL("view", "projects"),
	})
}

func (h *Handler) employeesView(w http.ResponseWriter, r *http.Request, action, id string) {
	switch action {
	case "new_employee":
		h.employeeForm(w, r, nil)
	case "edit_employee":
		rec, err := h.svc.Get(r.Context(), id, models.KindEmployee)
		if err != nil {
			h.errorPage(w, r, err)
			return
		}
		h.employeeForm(w, r, rec)
	case "employee", "view_employee":
		h.employeeView(w, r, id)
	case "add_skill":
		h.trainingForm(w, r, r.URL.Query().Get("employee_id"), nil)
	case "edit_skill":
		rec, err := h.svc.Get(r.Context(), id, models.KindTraining)
		if err != nil {
			h.errorPage(w, r, err)
			return
		}
		h.trainingForm(w, r, rec.EmployeeID, rec)
	default:
		h.employeesList(w, r)
	}
}

func (h *Handler) employeesList(w http.ResponseWriter, r *http.Request) {
	emps, err := h.svc.ListEmployees(r.Context())
	if err != nil {
		h.errorPage(w, r, err)
		return
	}
	type row struct {
		Name, NextRenewal           string
		SkillCount                  int
		ViewURL, EditURL, DeleteURL string
	}
	rows := make([]row, 0, len(emps))
	for _, e := range emps {
		rows = append(rows, row{
			Name:        e.Title,
			SkillCount:  e.SkillCount,
			NextRenewal: dates.Format(e.NextRenewal),
			ViewURL:     portalURL("view", "records", "type", "r07_training_matrix", "action", "employee", "id", e.ID),
			EditURL:     portalURL("view", "records", "type", "r07_training_matrix", "action", "edit_employee", "id", e.ID),
			DeleteURL:   h.deleteURL("employee", e.ID),
		})
	}
	h.render(w, http.StatusOK, "employees_list", "Employees & Training", "records", map[string]any{
		"NewURL": portalURL("view", "records", "type", "r07_training_matrix", "action", "new_employee"),
		"Rows":   rows,
		"LogURL": "/export?mode=log&type=r07_training_matrix",
	})
}

func (h *Handler) employeeForm(w http.ResponseWriter, r *http.Request, rec *models.Record) {
	heading := "New employee"
	hidden := map[string]string{}
	if rec != nil {
		heading = "Edit employee"
		hidden["id"] = rec.ID
	}
	h.render(w, http.StatusOK, "record_form", heading, "records", map[string]any{
		"Heading":   heading,
		"Action":    "/save/employee",
		"Hidden":    hidden,
		"Fields":    formFields(schema.Employee(), rec),
		"Submit":    "Save employee",
		"CancelURL": portalURL("view", "records", "type", "r07_training_matrix"),
	})
}

func (h *Handler) trainingForm(w http.ResponseWriter, r *http.Request, employeeID string, rec *models.Record) {
	emp, err := h.svc.Get(r.Context(), employeeID, models.KindEmployee)
	if err != nil {
		h.errorPage(w, r, err)
		return
	}
	heading := "Add skill for " + emp.Title
	hidden := map[string]string{"employee_id": emp.ID}
	var atts []attView
	if rec != nil {
		heading = "Edit skill for " + emp.Title
		hidden["id"] = rec.ID
		atts = attViews(h.files, rec.Attachments)
	}
	h.render(w, http.StatusOK, "record_form", heading, "records", map[string]any{
		"Heading":     heading,
		"Action":      "/save/training",
		"Hidden":      hidden,
		"Fields":      formFields(schema.Training(), rec),
		"ShowUploads": true,
		"Attachments": atts,
		"Submit":      "Save training record",
		"CancelURL":   portalURL("view", "records", "type", "r07_training_matrix", "action", "employee", "id", emp.ID),
	})
}

func (h *Handler) employeeView(w http.ResponseWriter, r *http.Request, id string) {
	emp, err := h.svc.Get(r.Context(), id, models.KindEmployee)
	if err != nil {
		h.errorPage(w, r, err)
		return
	}
	trainings, err := h.svc.TrainingFor(r.Context(), emp.ID)
	if err != nil {
		h.errorPage(w, r, err)
		return
	}
	type row struct{ Course, Date, Renewal, Description, EditURL, DeleteURL string }
	rows := make([]row, 0, len(trainings))
	for i := range trainings {
		t := &trainings[i]
		rows = append(rows, row{
			Course:      t.Title,
			Date:        dates.Format(t.Field("date_course")),
			Renewal:     dates.Format(t.Field("renewal_date")),
			Description: t.Field("description"),
			EditURL:     portalURL("view", "records", "type", "r07_training_matrix", "action", "edit_skill", "id", t.ID),
			DeleteURL:   h.deleteURL("training", t.ID),
		})
	}
	h.render(w, http.StatusOK, "employee_view", emp.Title, "records", map[string]any{
		"Heading":     emp.Title,
		"AddSkillURL": portalURL("view", "records", "type", "r07_training_matrix", "action", "add_skill", "employee_id", emp.ID),
		"EditURL":     portalURL("view", "records", "type", "r07_training_matrix", "action", "edit_employee", "id", emp.ID),
		"LogURL":      "/export?mode=log&type=r07_training_matrix&emp=" + emp.ID,
		"Rows":        rows,
		"BackURL":     portalURL("view", "records", "type", "r07_training_matrix"),
	})
}

func (h *Handler) templatesPage(w http.ResponseWriter, r *http.Request) {
	type row struct {
		Tag, Label, URL string
		FieldCount      int
	}
	tags := schema.Tags()
	rows := make([]row, 0, len(tags))
	for _, tag := range tags {
		sch := schema.ForType(tag)
		rows = append(rows, row{
			Tag:        strings.ToUpper(tag[:3]),
			Label:      sch.Label,
			URL:        portalURL("view", "records", "type", tag),
			FieldCount: len(sch.Fields),
		})
	}
	h.render(w, http.StatusOK, "templates_info", "Templates", "templates", map[string]any{"Rows": rows})
}

func (h *Handler) referencesPage(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.Profile(r.Context())
	if err != nil {
		h.errorPage(w, r, err)
		return
	}
	type libFile struct{ Name, URL, Size string }
	files := h.lib.Files()
	fileRows := make([]libFile, 0, len(files))
	for _, f := range files {
		fileRows = append(fileRows, libFile{Name: f.Name, URL: "/library/" + f.Name, Size: byteSize(f.Size)})
	}
	type profileField struct{ Label, Name, Value string }
	h.render(w, http.StatusOK, "references", "References", "references", map[string]any{
		"Files":         fileRows,
		"ProfileAction": "/save/profile",
		"Profile": []profileField{
			{"Company name", "company_name", profile.CompanyName},
			{"Responsible person", "responsible_person", profile.ResponsiblePerson},
			{"Address", "address", profile.Address},
			{"Phone", "phone", profile.Phone},
			{"E-mail", "email", profile.Email},
			{"Company registration", "company_reg", profile.CompanyReg},
			{"MCS registration", "mcs_reg", profile.MCSReg},
			{"Consumer code", "consumer_code", profile.ConsumerCode},
		},
	})
}

// SaveRecord handles POST /save/record for generic register records.
func (h *Handler) SaveRecord(w http.ResponseWriter, r *http.Request) {
	h.saveEntity(w, r, models.KindRecord)
}

// SaveProject handles POST /save/project.
func (h *Handler) SaveProject(w http.ResponseWriter, r *http.Request) {
	h.saveEntity(w, r, models.KindProject)
}

// SaveEmployee handles POST /save/employee.
func (h *Handler) SaveEmployee(w http.ResponseWriter, r *http.Request) {
	h.saveEntity(w, r, models.KindEmployee)
}

// SaveTraining handles POST /save/training.
func (h *Handler) SaveTraining(w http.ResponseWriter, r *http.Request) {
	h.saveEntity(w, r, models.KindTraining)
}

func (h *Handler) saveEntity(w http.ResponseWriter, r *http.Request, kind models.Kind) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		// Plain form posts (no enctype) still need parsing.
		if err := r.ParseForm(); err != nil {
			h.errorPage(w, r, err)
			return
		}
	}

	id := r.PostFormValue("id")
	typ := r.PostFormValue("type")
	if kind == models.KindRecord {
		if id != "" {
			existing, err := h.svc.Get(r.Context(), id, models.KindRecord)
			if err != nil {
				h.errorPage(w, r, err)
				return
			}
			typ = existing.Type
		} else {
			typ = schema.ResolveTag(typ)
		}
	}
	sch := recordservice.SchemaFor(kind, typ)

	in := recordservice.SaveInput{
		Title:             r.PostFormValue("title"),
		Fields:            collectFields(sch, r.PostForm),
		ProjectID:         r.PostFormValue("project_id"),
		EmployeeID:        r.PostFormValue("employee_id"),
		AddAttachments:    h.saveUploads(r),
		RemoveAttachments: r.PostForm["remove_attachments"],
	}

	var rec *models.Record
	var err error
	if id == "" {
		rec, err = h.svc.Create(r.Context(), kind, typ, in)
	} else {
		rec, err = h.svc.Update(r.Context(), id, kind, in)
	}
	if err != nil {
		h.errorPage(w, r, err)
		return
	}

	http.Redirect(w, r, h.afterSaveURL(rec), http.StatusSeeOther)
}

func (h *Handler) afterSaveURL(rec *models.Record) string {
	switch rec.Kind {
	case models.KindProject:
		return portalURL("view", "projects", "action", "view", "id", rec.ID)
	case models.KindEmployee:
		return portalURL("view", "records", "type", "r07_training_matrix", "action", "employee", "id", rec.ID)
	case models.KindTraining:
		return portalURL("view", "records", "type", "r07_training_matrix", "action", "employee", "id", rec.EmployeeID)
	}
	return portalURL("view", "records", "type", rec.Type, "action", "view", "id", rec.ID)
}

// saveUploads stores every uploaded attachment, skipping individual
// failures so one bad file does not lose the submission.
func (h *Handler) saveUploads(r *http.Request) []string {
	if r.MultipartForm == nil {
		return nil
	}
	var ids []string
	for _, fh := range r.MultipartForm.File["attachments"] {
		f, err := fh.Open()
		if err != nil {
			slog.Warn("upload open failed", slog.String("name", fh.Filename), slog.String("error", err.Error()))
			continue
		}
		att, err := h.files.Save(fh.Filename, f)
		f.Close()
		if err != nil {
			slog.Warn("upload save failed", slog.String("name", fh.Filename), slog.String("error", err.Error()))
			continue
		}
		ids = append(ids, att.ID)
	}
	return ids
}

// SaveChecklist handles POST /save/checklist, replacing a project's
// handover checklist from the checkbox states.
func (h *Handler) SaveChecklist(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errorPage(w, r, err)
		return
	}
	projectID := r.PostFormValue("project_id")
	items := make(map[string]bool, len(schema.ChecklistItems))
	for _, item := range schema.ChecklistItems {
		items[item.Key] = r.PostFormValue(item.Key) != ""
	}
	if err := h.svc.UpdateChecklist(r.Context(), projectID, items); err != nil {
		h.errorPage(w, r, err)
		return
	}
	http.Redirect(w, r, portalURL("view", "projects", "action", "view", "id", projectID), http.StatusSeeOther)
}

// SaveProfile handles POST /save/profile.
func (h *Handler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errorPage(w, r, err)
		return
	}
	p := models.Profile{
		CompanyName:       r.PostFormValue("company_name"),
		ResponsiblePerson: r.PostFormValue("responsible_person"),
		Address:           r.PostFormValue("address"),
		Phone:             r.PostFormValue("phone"),
		Email:             r.PostFormValue("email"),
		CompanyReg:        r.PostFormValue("company_reg"),
		MCSReg:            r.PostFormValue("mcs_reg"),
		ConsumerCode:      r.PostFormValue("consumer_code"),
	}
	if err := h.svc.SaveProfile(r.Context(), p); err != nil {
		h.errorPage(w, r, err)
		return
	}
	http.Redirect(w, r, portalURL("view", "references"), http.StatusSeeOther)
}

// deleteURL builds a delete link carrying its confirmation token.
func (h *Handler) deleteURL(kind, id string) string {
	return "/delete?kind=" + kind + "&id=" + id +
		"&token=" + nonce.New(h.opts.Secret, "delete:"+kind+":"+id)
}

// Delete handles GET /delete. The confirmation token is tied to the exact
// entity, so a link cannot be replayed against a different one.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	id := r.URL.Query().Get("id")
	token := r.URL.Query().Get("token")

	if !nonce.Verify(h.opts.Secret, "delete:"+kind+":"+id, token) {
		h.renderError(w, http.StatusForbidden, "Action not permitted",
			"The delete link has expired or was tampered with. Go back and try again.", nil, "/")
		return
	}

	k := models.Kind(kind)
	rec, err := h.svc.Get(r.Context(), id, k)
	if err != nil {
		h.errorPage(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id, k); err != nil {
		h.errorPage(w, r, err)
		return
	}

	var back string
	switch k {
	case models.KindProject:
		back = portalURL("view", "projects")
	case models.KindEmployee:
		back = portalURL("view", "records", "type", "r07_training_matrix")
	case models.KindTraining:
		back = portalURL("view", "records", "type", "r07_training_matrix", "action", "employee", "id", rec.EmployeeID)
	default:
		back = portalURL("view", "records", "type", rec.Type)
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// ServeAttachment handles GET /attachments/{id}.
func (h *Handler) ServeAttachment(w http.ResponseWriter, r *http.Request) {
	path, err := h.files.FilePath(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}

// ServeLibrary handles GET /library/{name}, serving reference documents
// as downloads.
func (h *Handler) ServeLibrary(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	path, err := h.lib.FilePath(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeFile(w, r, path)
}

// LoginForm handles GET /login.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "login", "Staff sign-in", "", map[string]any{})
}

// Login handles POST /login, setting the staff cookie on a token match.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errorPage(w, r, err)
		return
	}
	token := r.PostFormValue("token")
	if !h.opts.AuthEnabled || token != h.opts.AuthToken || token == "" {
		h.render(w, http.StatusUnauthorized, "login", "Staff sign-in", "", map[string]any{
			"Error": "That token was not recognised.",
		})
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     staffCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// errorPage maps a service error to the right status and error view.
func (h *Handler) errorPage(w http.ResponseWriter, r *http.Request, err error) {
	back := r.Referer()
	if back == "" {
		back = "/"
	}
	if ve := apperr.AsValidation(err); ve != nil {
		h.renderError(w, http.StatusUnprocessableEntity, "Record not saved",
			"Nothing was saved. Complete the fields below and submit again.", h.fieldLabels(ve.Fields), back)
		return
	}
	if errors.Is(err, apperr.ErrNotFound) {
		h.renderError(w, http.StatusNotFound, "Not found",
			"That entry does not exist. It may have been deleted.", nil, back)
		return
	}
	slog.Error("portal request failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
	h.renderError(w, http.StatusInternalServerError, "Something went wrong",
		"An unexpected error occurred. The details have been logged.", nil, back)
}

func (h *Handler) renderError(w http.ResponseWriter, status int, heading, message string, fields []string, back string) {
	h.render(w, status, "error", heading, "", map[string]any{
		"Heading": heading,
		"Message": message,
		"Fields":  fields,
		"BackURL": back,
	})
}

// fieldLabels maps failed field names to their display labels across all
// schemas, so error pages speak the form's language.
func (h *Handler) fieldLabels(names []string) []string {
	labels := map[string]string{"title": "Title", "employee": "Employee"}
	collect := func(sch schema.Schema) {
		for _, f := range sch.Fields {
			if _, ok := labels[f.Name]; !ok {
				labels[f.Name] = f.Label
			}
		}
	}
	for _, tag := range schema.Tags() {
		collect(schema.ForType(tag))
	}
	collect(schema.Project())
	collect(schema.Employee())
	collect(schema.Training())

	out := make([]string, len(names))
	for i, n := range names {
		if l, ok := labels[n]; ok {
			out[i] = l
		} else {
			out[i] = n
		}
	}
	return out
}
