package service

import (
	"context"
	"fmt"

	"chromamcp/internal/models"
)

const (
	serverName    = "chroma"
	serverVersion = "0.1.0"
)

type MCPServerService struct {
	documents *DocumentService
	tools     []models.ToolSpec
}

func NewMCPServerService(documents *DocumentService) *MCPServerService {
	return &MCPServerService{
		documents: documents,
		tools: []models.ToolSpec{
			{
				Name:        models.ToolAddDocument,
				Description: "Add a new document with text content",
				InputSchema: models.GenerateSchema[models.AddDocumentRequest](),
			},
			{
				Name:        models.ToolSearchSimilar,
				Description: "Search for similar documents",
				InputSchema: models.GenerateSchema[models.SearchRequest](),
			},
		},
	}
}

func (mcp *MCPServerService) GetServerInfo() *models.ServerInfo {
	return &models.ServerInfo{
		Name:    serverName,
		Version: serverVersion,
	}
}

// ListTools returns the tool catalog in a fixed order.
func (mcp *MCPServerService) ListTools() []models.ToolSpec {
	tools := make([]models.ToolSpec, len(mcp.tools))
	copy(tools, mcp.tools)
	return tools
}

// CallTool decodes args into the request type for name and runs it. The
// arguments object is checked before the tool name.
func (mcp *MCPServerService) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%w: missing arguments", models.ErrInvalidArgument)
	}

	switch name {
	case models.ToolAddDocument:
		var req models.AddDocumentRequest
		if err := models.DecodeArguments(args, &req); err != nil {
			return "", err
		}
		return mcp.documents.AddDocument(ctx, &req)
	case models.ToolSearchSimilar:
		req := models.SearchRequest{NumResults: models.DefaultNumResults}
		if err := models.DecodeArguments(args, &req); err != nil {
			return "", err
		}
		return mcp.documents.SearchSimilar(ctx, &req)
	default:
		return "", fmt.Errorf("%w: %s", models.ErrUnknownTool, name)
	}
}
