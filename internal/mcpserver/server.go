// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the compliance registers for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/dates"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/recordservice"
	"github.com/starford/raido/internal/schema"
	"github.com/starford/raido/internal/store"
)

// Server wraps the MCP server with the portal's register tools.
type Server struct {
	mcp *server.MCPServer
	svc *recordservice.Service
}

// New creates a new MCP server with all register tools registered.
func New(svc *recordservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_records",
		mcp.WithDescription("List compliance records of one register type, most recent first."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Register type tag (e.g. r01_contracts); legacy slugs are accepted")),
	), s.listRecords)

	s.mcp.AddTool(mcp.NewTool("get_record",
		mcp.WithDescription("Read one record in full, including its field map and attachment list."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record identifier")),
	), s.getRecord)

	s.mcp.AddTool(mcp.NewTool("create_record",
		mcp.WithDescription("Create a compliance record. Fields MUST follow the register's "+
			"schema; read the contract first via the get_record_contract tool or the "+
			"raido://record-format resource. Dates accept DD/MM/YYYY or YYYY-MM-DD."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Register type tag (e.g. r05_internal_review)")),
		mcp.WithString("title", mcp.Description("Record title; some registers derive one when omitted")),
		mcp.WithString("fields", mcp.Required(), mcp.Description("JSON object of field name to value")),
		mcp.WithString("project_id", mcp.Description("Optional project to link the record to")),
	), s.createRecord)

	s.mcp.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List installation projects with their handover checklist state."),
	), s.listProjects)

	s.mcp.AddTool(mcp.NewTool("next_renewals",
		mcp.WithDescription("List employees with their earliest upcoming training renewal date."),
	), s.nextRenewals)

	s.mcp.AddTool(mcp.NewTool("get_record_contract",
		mcp.WithDescription("Returns the register schemas and field rules. "+
			"Call this before creating records to ensure correct structure."),
	), s.getRecordContract)

	// Resource: record format contract.
	s.mcp.AddResource(
		mcp.NewResource("raido://record-format", "Record Format Contract",
			mcp.WithResourceDescription("Register schemas and field rules that all records must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRecordFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// recordOut is the wire shape for record tools; dates stay canonical.
type recordOut struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	Title       string            `json:"title"`
	Date        string            `json:"date"`
	Fields      map[string]string `json:"fields"`
	ProjectID   string            `json:"project_id,omitempty"`
	Attachments []string          `json:"attachments,omitempty"`
}

func toRecordOut(rec *models.Record) recordOut {
	return recordOut{
		ID:          rec.ID,
		Type:        rec.Type,
		Title:       rec.Title,
		Date:        recordservice.RecordDate(rec),
		Fields:      rec.Fields,
		ProjectID:   rec.ProjectID,
		Attachments: rec.Attachments,
	}
}

func (s *Server) listRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	recs, err := s.svc.List(ctx, store.Query{Kind: models.KindRecord, Type: schema.ResolveTag(typ)})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := make([]recordOut, 0, len(recs))
	for i := range recs {
		out = append(out, toRecordOut(&recs[i]))
	}
	b, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) getRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.svc.Get(ctx, id, "")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	b, _ := json.MarshalIndent(toRecordOut(rec), "", "  ")
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) createRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rawFields, err := req.RequireString("fields")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fields := map[string]string{}
	if err := json.Unmarshal([]byte(rawFields), &fields); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fields must be a JSON object of strings: %v", err)), nil
	}

	title := ""
	if t, err := req.RequireString("title"); err == nil {
		title = t
	}
	projectID := ""
	if p, err := req.RequireString("project_id"); err == nil {
		projectID = p
	}

	rec, err := s.svc.Create(ctx, models.KindRecord, typ, recordservice.SaveInput{
		Title:     title,
		Fields:    fields,
		ProjectID: projectID,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s (%s)", rec.ID, rec.Title)), nil
}

func (s *Server) listProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := s.svc.List(ctx, store.Query{Kind: models.KindProject})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	type projectOut struct {
		ID        string            `json:"id"`
		Title     string            `json:"title"`
		Fields    map[string]string `json:"fields"`
		Checklist map[string]bool   `json:"checklist"`
	}
	out := make([]projectOut, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectOut{ID: p.ID, Title: p.Title, Fields: p.Fields, Checklist: p.Checklist})
	}
	b, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) nextRenewals(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	emps, err := s.svc.ListEmployees(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(emps) == 0 {
		return mcp.NewToolResultText("no employees recorded"), nil
	}
	var lines []string
	for _, e := range emps {
		renewal := e.NextRenewal
		if renewal == "" {
			renewal = "no renewal recorded"
		} else {
			renewal = dates.Format(renewal)
		}
		lines = append(lines, fmt.Sprintf("%s: %d skills, next renewal %s", e.Title, e.SkillCount, renewal))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getRecordContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(RecordFormatContract()), nil
}

func (s *Server) readRecordFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://record-format",
			MIMEType: "text/markdown",
			Text:     RecordFormatContract(),
		},
	}, nil
}
