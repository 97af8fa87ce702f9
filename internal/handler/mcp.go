package handler

import (
	"context"

	"chromamcp/internal/service"

	"github.com/go-logr/logr"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type MCPHandler struct {
	service *service.MCPServerService
	logger  logr.Logger
}

func NewMCPHandler(service *service.MCPServerService, logger logr.Logger) *MCPHandler {
	return &MCPHandler{
		service: service,
		logger:  logger,
	}
}

// Tools converts the service catalog into MCP tool definitions.
func (h *MCPHandler) Tools() []mcp.Tool {
	specs := h.service.ListTools()
	tools := make([]mcp.Tool, 0, len(specs))
	for _, spec := range specs {
		tools = append(tools, mcp.NewToolWithRawSchema(spec.Name, spec.Description, spec.InputSchema))
	}
	return tools
}

// NewServer builds an MCP server advertising the document tools.
func (h *MCPHandler) NewServer() *server.MCPServer {
	info := h.service.GetServerInfo()
	s := server.NewMCPServer(info.Name, info.Version,
		server.WithToolCapabilities(false),
	)
	h.Register(s)
	return s
}

func (h *MCPHandler) Register(s *server.MCPServer) {
	for _, tool := range h.Tools() {
		s.AddTool(tool, h.HandleToolCall)
	}
}

// HandleToolCall runs a tool. Failures are returned as error results.
func (h *MCPHandler) HandleToolCall(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.Params.Name

	text, err := h.service.CallTool(ctx, name, req.GetArguments())
	if err != nil {
		h.logger.Error(err, "Tool call failed", "tool", name)
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(text), nil
}
