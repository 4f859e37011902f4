package schema

import "testing"

func TestTagsOrder(t *testing.T) {
	tags := Tags()
	if len(tags) != 10 {
		t.Fatalf("got %d tags, want 10", len(tags))
	}
	if tags[0] != "r01_contracts" {
		t.Errorf("first tag = %q", tags[0])
	}
	// R10 is not in the register.
	for _, tag := range tags {
		if tag == "r10" || tag == "r10_reserved" {
			t.Errorf("unexpected r10 tag %q", tag)
		}
	}
	if tags[len(tags)-1] != "r11_company_documents" {
		t.Errorf("last tag = %q", tags[len(tags)-1])
	}
}

func TestResolveTagLegacy(t *testing.T) {
	tests := []struct{ in, want string }{
		{"r01_contracts", "r01_contracts"},
		{"internal_review", "r05_internal_review"},
		{"goods_in", "r03_purchase_order"},
		{"tools", "r04_tool_calibration"},
		{"training", "r07_training_matrix"},
		{"capa", "r02_capa"},
		{"install_evidence", "r11_company_documents"},
		{"totally_unknown", DefaultType},
		{"", DefaultType},
	}
	for _, tt := range tests {
		if got := ResolveTag(tt.in); got != tt.want {
			t.Errorf("ResolveTag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestForTypeFallback(t *testing.T) {
	sch := ForType("no_such_type")
	if sch.Tag != DefaultType {
		t.Errorf("fallback tag = %q, want %q", sch.Tag, DefaultType)
	}
}

func TestFieldOrderStable(t *testing.T) {
	sch := ForType("r04_tool_calibration")
	names := sch.FieldNames()
	if len(names) == 0 || names[0] != "tool_item" {
		t.Errorf("r04 field order starts with %v", names)
	}
}

func TestRequiredFields(t *testing.T) {
	sch := ForType("r06_customer_complaints")
	req := sch.RequiredFields()
	want := map[string]bool{"customer_name": true, "complaint_date": true, "nature": true}
	if len(req) != len(want) {
		t.Fatalf("required = %v", req)
	}
	for _, n := range req {
		if !want[n] {
			t.Errorf("unexpected required field %q", n)
		}
	}
}

func TestTrainingTypeHasNoGenericFields(t *testing.T) {
	sch := ForType("r07_training_matrix")
	if len(sch.Fields) != 0 {
		t.Errorf("r07 should carry no generic fields, got %v", sch.FieldNames())
	}
}

func TestChecklistItemsFixed(t *testing.T) {
	if len(ChecklistItems) != 5 {
		t.Fatalf("checklist items = %d, want 5", len(ChecklistItems))
	}
	if ChecklistItems[0].Key != "commissioning_cert" {
		t.Errorf("first item = %q", ChecklistItems[0].Key)
	}
}
