// Package mcpapi provides a stateless MCP streamable-HTTP adapter over the sheet store.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hylla/tabula/internal/adapters/server/common"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing the sheet-store tools.
func NewHandler(cfg Config, sheets common.SheetService) (*Handler, error) {
	if sheets == nil {
		return nil, fmt.Errorf("sheet service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerSheetTools(mcpSrv, sheets)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "tabulad"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerSheetTools registers the sheet-store tool set.
func registerSheetTools(srv *mcpserver.MCPServer, sheets common.SheetService) {
	srv.AddTool(
		mcp.NewTool(
			"tabula.list_sheets",
			mcp.WithDescription("List every stored sheet with its current dimensions."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			summaries, err := sheets.ListSheets(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"sheets": summaries,
			})
			if err != nil {
				return nil, fmt.Errorf("encode list_sheets result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tabula.get_sheet_csv",
			mcp.WithDescription("Return one sheet as a CSV document, header row first."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Sheet name")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name, err := req.RequireString("name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			csvText, err := sheets.SheetCSV(ctx, name)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return mcp.NewToolResultText(csvText), nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tabula.save_sheet_csv",
			mcp.WithDescription("Parse a CSV document and store it under the given sheet name."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Sheet name")),
			mcp.WithString("csv", mcp.Required(), mcp.Description("CSV document, header row first")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name, err := req.RequireString("name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			csvText, err := req.RequireString("csv")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := sheets.SaveSheetCSV(ctx, name, csvText); err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"saved": name,
			})
			if err != nil {
				return nil, fmt.Errorf("encode save_sheet_csv result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tabula.list_revisions",
			mcp.WithDescription("List retained save revisions for one sheet, newest first."),
			mcp.WithString("name", mcp.Required(), mcp.Description("Sheet name")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			name, err := req.RequireString("name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			revisions, err := sheets.SheetRevisions(ctx, name)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{
				"revisions": revisions,
			})
			if err != nil {
				return nil, fmt.Errorf("encode list_revisions result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tabula.get_revision_csv",
			mcp.WithDescription("Return the CSV document stored for one revision id."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Revision id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			revisionID, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			csvText, err := sheets.RevisionCSV(ctx, revisionID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return mcp.NewToolResultText(csvText), nil
		},
	)
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrSheetNotFound), errors.Is(err, common.ErrRevisionNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, common.ErrInvalidDocument):
		return mcp.NewToolResultError("invalid_document: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
