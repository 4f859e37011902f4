package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/recordservice"
	"github.com/starford/raido/internal/store"
)

func testServer(t *testing.T) (*Server, *recordservice.Service) {
	t.Helper()

	dbFile, err := os.CreateTemp("", "raido-mcp-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	svc := recordservice.NewService(db)
	return New(svc), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_records":
		result, err = srv.listRecords(ctx, req)
	case "get_record":
		result, err = srv.getRecord(ctx, req)
	case "create_record":
		result, err = srv.createRecord(ctx, req)
	case "list_projects":
		result, err = srv.listProjects(ctx, req)
	case "next_renewals":
		result, err = srv.nextRenewals(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndListRecords(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_record", map[string]interface{}{
		"type":   "r01_contracts",
		"title":  "MCP contract",
		"fields": `{"record_date":"01/02/2024","details":"created over MCP"}`,
	})
	if r.IsError {
		t.Fatalf("create failed: %s", resultText(r))
	}
	if !strings.HasPrefix(resultText(r), "created: ") {
		t.Errorf("create result = %q", resultText(r))
	}

	r = callTool(t, srv, "list_records", map[string]interface{}{"type": "r01_contracts"})
	var recs []recordOut
	if err := json.Unmarshal([]byte(resultText(r)), &recs); err != nil {
		t.Fatalf("list output not JSON: %v", err)
	}
	if len(recs) != 1 || recs[0].Title != "MCP contract" {
		t.Errorf("list = %+v", recs)
	}
	// Dates come back canonical.
	if recs[0].Fields["record_date"] != "2024-02-01" {
		t.Errorf("record_date = %q", recs[0].Fields["record_date"])
	}
}

func TestCreateRecordValidation(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_record", map[string]interface{}{
		"type":   "r06_customer_complaints",
		"fields": `{"customer_name":"X"}`,
	})
	if !r.IsError {
		t.Error("missing required fields should error")
	}

	r = callTool(t, srv, "create_record", map[string]interface{}{
		"type":   "r01_contracts",
		"fields": `not json`,
	})
	if !r.IsError {
		t.Error("malformed fields should error")
	}
}

func TestGetRecordMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_record", map[string]interface{}{"id": "nope"})
	if !r.IsError {
		t.Error("expected error for missing record")
	}
}

func TestListProjects(t *testing.T) {
	srv, svc := testServer(t)
	_, err := svc.Create(context.Background(), models.KindProject, "", recordservice.SaveInput{
		Title: "Site A",
	})
	if err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "list_projects", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "Site A") || !strings.Contains(text, "commissioning_cert") {
		t.Errorf("projects = %s", text)
	}
}

func TestNextRenewals(t *testing.T) {
	srv, svc := testServer(t)
	ctx := context.Background()

	emp, err := svc.Create(ctx, models.KindEmployee, "", recordservice.SaveInput{
		Fields: map[string]string{"employee_name": "Pat Lee"},
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = svc.Create(ctx, models.KindTraining, "", recordservice.SaveInput{
		Fields:     map[string]string{"course_name": "First aid", "renewal_date": "2025-02-10"},
		EmployeeID: emp.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "next_renewals", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "Pat Lee") || !strings.Contains(text, "10/02/2025") {
		t.Errorf("renewals = %q", text)
	}
}

func TestContractListsEveryRegister(t *testing.T) {
	contract := RecordFormatContract()
	for _, tag := range []string{"r01_contracts", "r06_customer_complaints", "r11_company_documents"} {
		if !strings.Contains(contract, tag) {
			t.Errorf("contract missing %s", tag)
		}
	}
}
