package mcpserver

import (
	"fmt"
	"strings"

	"github.com/starford/raido/internal/schema"
)

// RecordFormatContract renders the register schemas and field rules for
// LLM consumers. It is generated from the live schema definitions so the
// contract can never drift from the forms.
func RecordFormatContract() string {
	var b strings.Builder
	b.WriteString(`# Raido Record Format Contract

Every compliance record belongs to one register type and carries only the
fields that register declares. Unknown fields are silently dropped.

## Rules

1. **Type tags** are lowercase with an rNN prefix (e.g. ` + "`r01_contracts`" + `).
   Legacy slugs from old links (e.g. ` + "`training`" + `, ` + "`capa`" + `) resolve to the
   current tag; unknown tags fall back to ` + "`" + schema.DefaultType + "`" + `.
2. **Dates** are accepted as DD/MM/YYYY or YYYY-MM-DD and stored as
   YYYY-MM-DD. Tools return stored form.
3. **Required fields** must be non-empty or the whole submission is
   rejected and nothing is persisted.
4. **Titles** may be omitted for registers that derive one (tools,
   complaints, suppliers, subcontractors); all other registers require an
   explicit title.
5. **checkbox-group fields** take a comma-joined subset of the declared
   options.

## Registers

`)
	for _, tag := range schema.Tags() {
		sch := schema.ForType(tag)
		fmt.Fprintf(&b, "### %s (`%s`)\n\n", sch.Label, tag)
		if len(sch.Fields) == 0 {
			b.WriteString("Managed through the employees and training tools, not create_record.\n\n")
			continue
		}
		for _, f := range sch.Fields {
			req := ""
			if f.Required {
				req = ", required"
			}
			opts := ""
			if len(f.Options) > 0 {
				opts = " — options: " + strings.Join(f.Options, ", ")
			}
			fmt.Fprintf(&b, "- `%s` (%s%s)%s\n", f.Name, f.Kind, req, opts)
		}
		b.WriteString("\n")
	}
	return b.String()
}
