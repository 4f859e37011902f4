// Package schema declares the field lists that drive every form, view,
// validator, and export in the portal. Record kinds are data, not code:
// adding a register type means adding a definition here.
package schema

// FieldKind selects the input widget and the value handling for a field.
type FieldKind string

const (
	Text          FieldKind = "text"
	Textarea      FieldKind = "textarea"
	Date          FieldKind = "date"
	Select        FieldKind = "select"
	Number        FieldKind = "number"
	Email         FieldKind = "email"
	URL           FieldKind = "url"
	CheckboxGroup FieldKind = "checkbox-group" // value is comma-joined options
)

// Field describes one schema field in declaration order.
type Field struct {
	Name        string
	Label       string
	Kind        FieldKind
	Required    bool
	Options     []string // Select and CheckboxGroup only
	Placeholder string
}

// Schema is the ordered field list for one type tag.
type Schema struct {
	Tag    string
	Label  string
	Fields []Field
}

// FieldNames returns the declared field names in order.
func (s Schema) FieldNames() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

// DateFields returns the names of all date-kind fields.
func (s Schema) DateFields() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Kind == Date {
			out = append(out, f.Name)
		}
	}
	return out
}

// RequiredFields returns the names of all required fields.
func (s Schema) RequiredFields() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// Tags returns the record type tags in register order (R01..R11).
func Tags() []string {
	out := make([]string, len(recordOrder))
	copy(out, recordOrder)
	return out
}

// Lookup returns the schema for a record type tag.
func Lookup(tag string) (Schema, bool) {
	s, ok := recordTypes[tag]
	return s, ok
}

// ForType returns the schema for tag, falling back to the default type on
// unknown tags. The fallback is intentional: old bookmarked links with
// stale type slugs must keep resolving.
func ForType(tag string) Schema {
	if s, ok := recordTypes[ResolveTag(tag)]; ok {
		return s
	}
	return recordTypes[DefaultType]
}

// ResolveTag maps legacy slugs to current tags and unknown tags to the
// default type.
func ResolveTag(tag string) string {
	if _, ok := recordTypes[tag]; ok {
		return tag
	}
	if cur, ok := legacyTags[tag]; ok {
		return cur
	}
	return DefaultType
}

// Label returns the display label for a record type tag.
func Label(tag string) string {
	return ForType(tag).Label
}
