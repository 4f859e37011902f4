// Package models defines the domain types for Raido.
package models

import "time"

// Kind distinguishes the four stored entity kinds. Records carry a schema
// type tag; the other kinds have a fixed schema each.
type Kind string

const (
	KindRecord   Kind = "record"
	KindProject  Kind = "project"
	KindEmployee Kind = "employee"
	KindTraining Kind = "training"
)

// ValidKind reports whether k is one of the stored entity kinds.
func ValidKind(k Kind) bool {
	switch k {
	case KindRecord, KindProject, KindEmployee, KindTraining:
		return true
	}
	return false
}

// Record is the single core entity: a typed field map plus optional
// relations. Date-valued fields are stored canonically (ISO 2006-01-02)
// and converted at the rendering boundary.
type Record struct {
	ID          string            `json:"id"`
	Kind        Kind              `json:"kind"`
	Type        string            `json:"type"`
	Title       string            `json:"title"`
	Fields      map[string]string `json:"fields"`
	ProjectID   string            `json:"project_id,omitempty"`
	EmployeeID  string            `json:"employee_id,omitempty"`
	Attachments []string          `json:"attachments"`
	Checklist   map[string]bool   `json:"checklist,omitempty"` // projects only
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Field returns the named field value, or "" when absent.
func (r *Record) Field(name string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[name]
}

// Profile holds the company details shown on the References view and in
// export footers.
type Profile struct {
	CompanyName       string `json:"company_name"`
	ResponsiblePerson string `json:"responsible_person"`
	Address           string `json:"address"`
	Phone             string `json:"phone"`
	Email             string `json:"email"`
	CompanyReg        string `json:"company_reg"`
	MCSReg            string `json:"mcs_reg"`
	ConsumerCode      string `json:"consumer_code"`
}
