// Package recordservice implements the record lifecycle on top of the
// store: schema-driven validation, title derivation, date normalisation,
// attachment merging, and the derived relation queries.
package recordservice

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/dates"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/schema"
	"github.com/starford/raido/internal/store"
)

const profileKey = "company_profile"

// Service coordinates store operations for all entity kinds.
type Service struct {
	db *store.DB
}

// NewService creates a new record service.
func NewService(db *store.DB) *Service {
	return &Service{db: db}
}

// SaveInput carries one full-form submission. Updates replace the field
// map wholesale; only the attachment list is merged.
type SaveInput struct {
	Title             string
	Fields            map[string]string
	ProjectID         string
	EmployeeID        string
	AddAttachments    []string
	RemoveAttachments []string
}

// SchemaFor returns the schema governing an entity of the given kind and,
// for records, type tag.
func SchemaFor(kind models.Kind, typ string) schema.Schema {
	switch kind {
	case models.KindProject:
		return schema.Project()
	case models.KindEmployee:
		return schema.Employee()
	case models.KindTraining:
		return schema.Training()
	default:
		return schema.ForType(typ)
	}
}

// Create validates and persists a new entity.
func (s *Service) Create(ctx context.Context, kind models.Kind, typ string, in SaveInput) (*models.Record, error) {
	if !models.ValidKind(kind) {
		return nil, fmt.Errorf("recordservice: unknown kind %q", kind)
	}
	if kind == models.KindRecord {
		typ = schema.ResolveTag(typ)
	} else {
		typ = string(kind)
	}
	sch := SchemaFor(kind, typ)

	fields, err := normalizeFields(sch, in.Fields)
	if err != nil {
		return nil, err
	}
	title, err := resolveTitle(kind, typ, strings.TrimSpace(in.Title), fields)
	if err != nil {
		return nil, err
	}
	if kind == models.KindTraining {
		if in.EmployeeID == "" {
			return nil, apperr.Validation("employee")
		}
		if _, err := s.Get(ctx, in.EmployeeID, models.KindEmployee); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	rec := &models.Record{
		ID:          uuid.NewString(),
		Kind:        kind,
		Type:        typ,
		Title:       title,
		Fields:      fields,
		ProjectID:   in.ProjectID,
		EmployeeID:  in.EmployeeID,
		Attachments: dedup(in.AddAttachments),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if kind == models.KindProject {
		rec.Checklist = emptyChecklist()
	}
	if err := s.db.Insert(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update validates and fully replaces an existing entity's fields. The
// kind and type tag are immutable; the attachment list is merged as
// (existing − removed) ∪ added.
func (s *Service) Update(ctx context.Context, id string, kind models.Kind, in SaveInput) (*models.Record, error) {
	rec, err := s.Get(ctx, id, kind)
	if err != nil {
		return nil, err
	}
	sch := SchemaFor(rec.Kind, rec.Type)

	fields, err := normalizeFields(sch, in.Fields)
	if err != nil {
		return nil, err
	}
	title, err := resolveTitle(rec.Kind, rec.Type, strings.TrimSpace(in.Title), fields)
	if err != nil {
		return nil, err
	}

	rec.Title = title
	rec.Fields = fields
	rec.ProjectID = in.ProjectID
	if rec.Kind != models.KindTraining || in.EmployeeID != "" {
		rec.EmployeeID = in.EmployeeID
	}
	rec.Attachments = mergeAttachments(rec.Attachments, in.RemoveAttachments, in.AddAttachments)
	rec.UpdatedAt = time.Now()

	if err := s.db.Update(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get returns the entity with the given id. A non-empty kind must match,
// otherwise the entity is treated as not found.
func (s *Service) Get(_ context.Context, id string, kind models.Kind) (*models.Record, error) {
	rec, err := s.db.Get(id)
	if err != nil {
		return nil, err
	}
	if kind != "" && rec.Kind != kind {
		return nil, apperr.ErrNotFound
	}
	return rec, nil
}

// Delete permanently removes an entity; employee deletes cascade to their
// training records inside the store.
func (s *Service) Delete(ctx context.Context, id string, kind models.Kind) error {
	if _, err := s.Get(ctx, id, kind); err != nil {
		return err
	}
	return s.db.Delete(id)
}

// List returns entities matching q, most recent first.
func (s *Service) List(_ context.Context, q store.Query) ([]models.Record, error) {
	return s.db.List(q)
}

// LinkedRecords returns the records referencing a project, most recent first.
func (s *Service) LinkedRecords(ctx context.Context, projectID string) ([]models.Record, error) {
	return s.List(ctx, store.Query{Kind: models.KindRecord, ProjectID: projectID})
}

// TrainingFor returns an employee's training records, most recent first.
func (s *Service) TrainingFor(ctx context.Context, employeeID string) ([]models.Record, error) {
	return s.List(ctx, store.Query{Kind: models.KindTraining, EmployeeID: employeeID})
}

// NextRenewal returns the earliest renewal date (canonical form) among an
// employee's training records, or "" when none carry one. Computed on
// read; the data volumes do not justify caching.
func (s *Service) NextRenewal(ctx context.Context, employeeID string) (string, error) {
	trainings, err := s.TrainingFor(ctx, employeeID)
	if err != nil {
		return "", err
	}
	best := ""
	for _, t := range trainings {
		if r := t.Field("renewal_date"); r != "" && (best == "" || r < best) {
			best = r
		}
	}
	return best, nil
}

// EmployeeSummary is an employee row with its derived training figures.
type EmployeeSummary struct {
	models.Record
	SkillCount  int
	NextRenewal string
}

// ListEmployees returns all employees with skill counts and next renewal
// dates attached.
func (s *Service) ListEmployees(ctx context.Context) ([]EmployeeSummary, error) {
	emps, err := s.List(ctx, store.Query{Kind: models.KindEmployee})
	if err != nil {
		return nil, err
	}
	out := make([]EmployeeSummary, 0, len(emps))
	for _, e := range emps {
		trainings, err := s.TrainingFor(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		next, err := s.NextRenewal(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, EmployeeSummary{Record: e, SkillCount: len(trainings), NextRenewal: next})
	}
	return out, nil
}

// UpdateChecklist replaces a project's handover checklist without touching
// any other project field.
func (s *Service) UpdateChecklist(ctx context.Context, projectID string, items map[string]bool) error {
	rec, err := s.Get(ctx, projectID, models.KindProject)
	if err != nil {
		return err
	}
	cl := emptyChecklist()
	for _, item := range schema.ChecklistItems {
		cl[item.Key] = items[item.Key]
	}
	rec.Checklist = cl
	rec.UpdatedAt = time.Now()
	return s.db.Update(rec)
}

// RecordDate returns the canonical date to show for a record in listings
// and exports: the schema's primary date field, with the tool register's
// fallback chain, else the creation date.
func RecordDate(rec *models.Record) string {
	switch rec.Type {
	case "r04_tool_calibration":
		for _, f := range []string{"tool_next_due", "tool_date_calibrated", "tool_date_purchased"} {
			if v := rec.Field(f); v != "" {
				return v
			}
		}
	case "r06_customer_complaints":
		if v := rec.Field("complaint_date"); v != "" {
			return v
		}
	default:
		if v := rec.Field("record_date"); v != "" {
			return v
		}
	}
	return rec.CreatedAt.Format(dates.Canonical)
}

// Profile returns the stored company profile, with defaults for unset
// installations.
func (s *Service) Profile(_ context.Context) (models.Profile, error) {
	p := models.Profile{CompanyName: "Baltic Electric Ltd", ResponsiblePerson: "Alan Baltic", Address: "London, UK"}
	raw, err := s.db.GetSetting(profileKey)
	if err != nil {
		return p, err
	}
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &p)
	}
	return p, nil
}

// SaveProfile stores the company profile.
func (s *Service) SaveProfile(_ context.Context, p models.Profile) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("recordservice: marshal profile: %w", err)
	}
	return s.db.PutSetting(profileKey, string(b))
}

// normalizeFields restricts the submitted map to the schema's declared
// fields, converts date values to canonical form, and enforces required
// fields. Any failure rejects the whole submission.
func normalizeFields(sch schema.Schema, in map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(sch.Fields))
	var missing []string
	for _, f := range sch.Fields {
		v := strings.TrimSpace(in[f.Name])
		if f.Kind == schema.Date && v != "" {
			canonical, err := dates.ParseInput(v)
			if err != nil {
				return nil, apperr.Validation(f.Name)
			}
			v = canonical
		}
		if f.Required {
			if err := validation.Validate(v, validation.Required); err != nil {
				missing = append(missing, f.Name)
			}
		}
		out[f.Name] = v
	}
	if len(missing) > 0 {
		return nil, &apperr.ValidationError{Fields: missing}
	}
	return out, nil
}

// resolveTitle derives a title when none was supplied. Titles are never
// empty after a successful save.
func resolveTitle(kind models.Kind, typ, title string, fields map[string]string) (string, error) {
	if title != "" {
		return title, nil
	}
	switch {
	case kind == models.KindEmployee:
		return fields["employee_name"], nil
	case kind == models.KindTraining:
		return fields["course_name"], nil
	case typ == "r04_tool_calibration":
		return "R04 Tool – " + fields["tool_item"], nil
	case typ == "r06_customer_complaints":
		return fmt.Sprintf("R06 Complaint – %s (%s)", fields["customer_name"], dates.Format(fields["complaint_date"])), nil
	case typ == "r08_approved_suppliers" || typ == "r09_approved_subcontract":
		return fields["supplier_name"], nil
	}
	return "", apperr.Validation("title")
}

func mergeAttachments(existing, remove, add []string) []string {
	removed := make(map[string]struct{}, len(remove))
	for _, id := range remove {
		removed[id] = struct{}{}
	}
	var out []string
	for _, id := range existing {
		if _, gone := removed[id]; !gone {
			out = append(out, id)
		}
	}
	return dedup(append(out, add...))
}

func dedup(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func emptyChecklist() map[string]bool {
	cl := make(map[string]bool, len(schema.ChecklistItems))
	for _, item := range schema.ChecklistItems {
		cl[item.Key] = false
	}
	return cl
}
