package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/labextract-server/internal/domain"
	"github.com/labextract-server/internal/service"
	"github.com/labextract-server/pkg/vocabulary"
)

// ExtractReportInput is the argument object of extract_report.
type ExtractReportInput struct {
	Text     string `json:"text" jsonschema:"raw text of a lab or genetic report"`
	TypeHint string `json:"type_hint,omitempty" jsonschema:"optional hint: biomarker or genetic"`
	UserID   string `json:"user_id,omitempty" jsonschema:"store the extracted entities for this user"`
}

// ResolveNameInput is the argument object of resolve_name.
type ResolveNameInput struct {
	Name string `json:"name" jsonschema:"biomarker name, variant identifier or gene notation"`
	Kind string `json:"kind,omitempty" jsonschema:"biomarker (default) or variant"`
}

// UserEntitiesInput is the argument object of the per-user tools.
type UserEntitiesInput struct {
	UserID string `json:"user_id" jsonschema:"user whose stored entities are read"`
	Limit  int    `json:"limit,omitempty" jsonschema:"page size, default 100"`
	Offset int    `json:"offset,omitempty"`
}

var safeUserID = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

func (s *LiteServer) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: "extract_report",
		Description: "Classify a lab or genetic report and extract biomarker measurements and genetic " +
			"variants with canonical names and a confidence score.",
	}, s.handleExtractReport)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "resolve_name",
		Description: "Map a free-text biomarker or variant name to its canonical vocabulary entry.",
	}, s.handleResolveName)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_biomarkers",
		Description: "List the biomarkers stored for a user.",
	}, s.handleListBiomarkers)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_variants",
		Description: "List the genetic variants stored for a user.",
	}, s.handleListVariants)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "export_entities",
		Description: "Write every entity stored for a user to a JSON file in the export directory.",
	}, s.handleExportEntities)

	s.logger.WithField("tool_count", 5).Info("Successfully registered all tools")
}

func (s *LiteServer) handleExtractReport(ctx context.Context, _ *mcp.CallToolRequest, in ExtractReportInput) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "extract_report").Info("Tool invoked")

	hint, err := domain.ParseDocumentType(in.TypeHint)
	if err != nil {
		return nil, nil, err
	}
	resp, err := s.reports.Extract(ctx, service.ExtractRequest{
		Text:     in.Text,
		TypeHint: hint,
		UserID:   in.UserID,
		Source:   domain.SourceMCP,
	})
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(resp)
}

func (s *LiteServer) handleResolveName(_ context.Context, _ *mcp.CallToolRequest, in ResolveNameInput) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "resolve_name").Info("Tool invoked")

	kind, err := vocabulary.ParseKind(in.Kind)
	if err != nil {
		return nil, nil, err
	}
	m, err := s.reports.Resolve(kind, in.Name)
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(struct {
		Name    string          `json:"name"`
		Kind    vocabulary.Kind `json:"kind"`
		Matched bool            `json:"matched"`
		vocabulary.Match
	}{in.Name, kind, m.Matched(), m})
}

func (s *LiteServer) handleListBiomarkers(ctx context.Context, _ *mcp.CallToolRequest, in UserEntitiesInput) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "list_biomarkers").Info("Tool invoked")

	records, err := s.reports.ListBiomarkers(ctx, in.UserID, in.Limit, in.Offset)
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(map[string]any{"user_id": in.UserID, "biomarkers": records, "count": len(records)})
}

func (s *LiteServer) handleListVariants(ctx context.Context, _ *mcp.CallToolRequest, in UserEntitiesInput) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "list_variants").Info("Tool invoked")

	records, err := s.reports.ListVariants(ctx, in.UserID, in.Limit, in.Offset)
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(map[string]any{"user_id": in.UserID, "variants": records, "count": len(records)})
}

func (s *LiteServer) handleExportEntities(ctx context.Context, _ *mcp.CallToolRequest, in UserEntitiesInput) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "export_entities").Info("Tool invoked")

	if in.UserID == "" {
		return nil, nil, domain.NewValidationError("user_id", "user id is required", "")
	}
	name := fmt.Sprintf("%s-%s.json", safeUserID.ReplaceAllString(in.UserID, "_"), time.Now().UTC().Format("20060102T150405"))
	path := filepath.Join(s.config.ExportDir(), name)

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create export file: %w", err)
	}
	if err := s.store.ExportJSON(ctx, in.UserID, f); err != nil {
		f.Close()
		os.Remove(path)
		return nil, nil, fmt.Errorf("failed to export entities: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, nil, fmt.Errorf("failed to write export file: %w", err)
	}

	counts, err := s.store.Count(ctx, in.UserID)
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(map[string]any{"path": path, "biomarkers": counts.Biomarkers, "variants": counts.Variants})
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
