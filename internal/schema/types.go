package schema

// DefaultType is the tag used when an invalid or missing type is supplied.
const DefaultType = "r01_contracts"

// Record type tags in register order. R10 is intentionally absent from the
// scheme's register list.
var recordOrder = []string{
	"r01_contracts",
	"r02_capa",
	"r03_purchase_order",
	"r04_tool_calibration",
	"r05_internal_review",
	"r06_customer_complaints",
	"r07_training_matrix",
	"r08_approved_suppliers",
	"r09_approved_subcontract",
	"r11_company_documents",
}

// legacyTags maps slugs from earlier portal versions to current tags.
var legacyTags = map[string]string{
	"internal_review":  "r05_internal_review",
	"contract_review":  "r01_contracts",
	"goods_in":         "r03_purchase_order",
	"tools":            "r04_tool_calibration",
	"training":         "r07_training_matrix",
	"complaints":       "r06_customer_complaints",
	"capa":             "r02_capa",
	"install_evidence": "r11_company_documents",
}

// genericFields is the shared shape of the plain register types.
var genericFields = []Field{
	{Name: "record_date", Label: "Date", Kind: Date, Required: true},
	{Name: "details", Label: "Details", Kind: Textarea, Required: true},
	{Name: "actions", Label: "Actions / follow-ups", Kind: Textarea, Placeholder: "who / by when"},
}

var recordTypes = map[string]Schema{
	"r01_contracts": {
		Tag: "r01_contracts", Label: "R01 Contracts Folder", Fields: genericFields,
	},
	"r02_capa": {
		Tag: "r02_capa", Label: "R02 Corrective & Preventative Action Record", Fields: genericFields,
	},
	"r03_purchase_order": {
		Tag: "r03_purchase_order", Label: "R03 Purchase Order", Fields: genericFields,
	},
	"r04_tool_calibration": {
		Tag: "r04_tool_calibration", Label: "R04 Tool Calibration",
		Fields: []Field{
			{Name: "tool_item", Label: "Item of Equipment", Kind: Text, Required: true},
			{Name: "tool_serial", Label: "Serial Number", Kind: Text},
			{Name: "tool_requirements", Label: "Calibration / Checking Requirements", Kind: Text, Placeholder: "e.g. Annual calibration"},
			{Name: "tool_description", Label: "Description / Notes", Kind: Text},
			{Name: "tool_date_purchased", Label: "Date Purchased", Kind: Date},
			{Name: "tool_date_calibrated", Label: "Date Calibrated", Kind: Date},
			{Name: "tool_next_due", Label: "Next Calibration Date", Kind: Date},
		},
	},
	"r05_internal_review": {
		Tag: "r05_internal_review", Label: "R05 Internal Review Record", Fields: genericFields,
	},
	"r06_customer_complaints": {
		Tag: "r06_customer_complaints", Label: "R06 Customer Complaints",
		Fields: []Field{
			{Name: "customer_name", Label: "Customer Name", Kind: Text, Required: true},
			{Name: "address", Label: "Address", Kind: Textarea},
			{Name: "complaint_date", Label: "Date of Complaint", Kind: Date, Required: true},
			{Name: "contact_name", Label: "Contact's Name", Kind: Text},
			{Name: "contact_email", Label: "E-mail", Kind: Email},
			{Name: "contact_phone", Label: "Telephone", Kind: Text},
			{Name: "contact_mobile", Label: "Mobile", Kind: Text},
			{Name: "nature", Label: "Nature of Complaint", Kind: Text, Required: true},
			{Name: "outcome", Label: "Outcome", Kind: Text},
			{Name: "immediate_action", Label: "Immediate Action Requested by Customer", Kind: Textarea},
			{Name: "contacted_within_day", Label: "Customer contacted within 1 working day?", Kind: Select, Options: []string{"yes", "no"}},
			{Name: "contacted_reason", Label: "If not, why not?", Kind: Textarea},
			{Name: "actions_taken", Label: "Actions taken to resolve complaint", Kind: Textarea},
			{Name: "further_action", Label: "Further Action Required", Kind: Textarea},
			{Name: "customer_satisfied", Label: "Is Customer satisfied with result?", Kind: Select, Options: []string{"yes", "no"}},
			{Name: "reported_by", Label: "Reported By", Kind: Text},
			{Name: "date_closed", Label: "Date Closed", Kind: Date},
			{Name: "reported_title", Label: "Title", Kind: Text},
		},
	},
	// R07 has no direct record form: the type routes to the employee and
	// training flows, which use the Employee and Training schemas below.
	"r07_training_matrix": {
		Tag: "r07_training_matrix", Label: "R07 Personal Skills & Training Matrix",
	},
	"r08_approved_suppliers": {
		Tag: "r08_approved_suppliers", Label: "R08 Approved Suppliers",
		Fields: supplierFields("Supplier"),
	},
	"r09_approved_subcontract": {
		Tag: "r09_approved_subcontract", Label: "R09 Approved Subcontractors",
		Fields: supplierFields("Subcontractor"),
	},
	"r11_company_documents": {
		Tag: "r11_company_documents", Label: "R11 Company Documents", Fields: genericFields,
	},
}

func supplierFields(noun string) []Field {
	return []Field{
		{Name: "supplier_name", Label: noun + " Name", Kind: Text, Required: true},
		{Name: "contact_name", Label: "Contact Name", Kind: Text},
		{Name: "contact_email", Label: "E-mail", Kind: Email},
		{Name: "website", Label: "Website", Kind: URL},
		{Name: "approved_date", Label: "Date Approved", Kind: Date},
		{Name: "categories", Label: "Categories", Kind: CheckboxGroup, Options: []string{"materials", "tools", "ppe", "plant hire", "other"}},
		{Name: "status", Label: "Status", Kind: Select, Options: []string{"approved", "conditional", "removed"}},
		{Name: "notes", Label: "Notes", Kind: Textarea},
	}
}

// Project is the fixed schema for Project entities. The handover checklist
// is held separately on the entity and is not part of the field map.
func Project() Schema {
	return Schema{
		Tag: "project", Label: "Project",
		Fields: []Field{
			{Name: "customer", Label: "Customer name", Kind: Text},
			{Name: "address", Label: "Site address", Kind: Text},
			{Name: "pv_kwp", Label: "PV size (kWp)", Kind: Number},
			{Name: "bess_kwh", Label: "Battery size (kWh)", Kind: Number},
			{Name: "notes", Label: "Notes", Kind: Textarea},
		},
	}
}

// ChecklistItems are the fixed handover checklist keys for Projects, in
// display order.
var ChecklistItems = []struct {
	Key   string
	Label string
}{
	{"commissioning_cert", "Commissioning certificate issued"},
	{"dno_notification", "DNO notification submitted"},
	{"warranty_pack", "Warranty pack provided"},
	{"user_manual", "User manual handed over"},
	{"customer_signoff", "Customer sign-off received"},
}

// Employee is the fixed schema for Employee entities; the name becomes the
// entity title.
func Employee() Schema {
	return Schema{
		Tag: "employee", Label: "Employee",
		Fields: []Field{
			{Name: "employee_name", Label: "Employee name", Kind: Text, Required: true},
		},
	}
}

// Training is the fixed schema for TrainingRecord entities.
func Training() Schema {
	return Schema{
		Tag: "training", Label: "Training record",
		Fields: []Field{
			{Name: "course_name", Label: "Course name", Kind: Text, Required: true},
			{Name: "date_course", Label: "Date of course", Kind: Date},
			{Name: "renewal_date", Label: "Renewal date", Kind: Date},
			{Name: "description", Label: "Description / certificates", Kind: Textarea},
		},
	}
}
