package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"chromamcp/internal/service"
	"chromamcp/internal/storage"

	"github.com/go-logr/logr"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *MCPHandler {
	t.Helper()

	store, err := storage.NewSQLiteStore(context.Background(), ":memory:", "documents", storage.NewHashEmbedder(0), logr.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	documents := service.NewDocumentService(store, 100, logr.Discard())
	return NewMCPHandler(service.NewMCPServerService(documents), logr.Discard())
}

func callTool(t *testing.T, h *MCPHandler, name string, args map[string]any) (string, bool) {
	t.Helper()

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := h.HandleToolCall(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text, result.IsError
}

var resultLine = regexp.MustCompile(`^(\d+)\. Document '([^']*)' \(similarity: (-?\d+\.\d{2})\)$`)

func TestMCPHandler_Tools(t *testing.T) {
	h := newTestHandler(t)

	tools := h.Tools()
	require.Len(t, tools, 2)
	assert.Equal(t, "add_document", tools[0].Name)
	assert.Equal(t, "search_similar", tools[1].Name)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(tools[0].RawInputSchema, &schema))
	assert.Equal(t, "object", schema["type"])
}

func TestMCPHandler_AddThenSearch(t *testing.T) {
	h := newTestHandler(t)

	text, isErr := callTool(t, h, "add_document", map[string]any{
		"document_id": "d1",
		"content":     "hello world",
	})
	require.False(t, isErr)
	assert.Equal(t, "Added document 'd1' successfully", text)

	text, isErr = callTool(t, h, "search_similar", map[string]any{
		"query":       "hello world",
		"num_results": 1,
	})
	require.False(t, isErr)
	assert.Equal(t, "Similar documents:\n1. Document 'd1' (similarity: 1.00)", text)
}

func TestMCPHandler_SearchEmptyCollection(t *testing.T) {
	h := newTestHandler(t)

	text, isErr := callTool(t, h, "search_similar", map[string]any{"query": "anything"})
	require.False(t, isErr)
	assert.Equal(t, "Similar documents:", text)
}

func TestMCPHandler_SearchRanksAndLimits(t *testing.T) {
	h := newTestHandler(t)

	for i := 0; i < 7; i++ {
		_, isErr := callTool(t, h, "add_document", map[string]any{
			"document_id": fmt.Sprintf("doc-%d", i),
			"content":     fmt.Sprintf("shared words plus token%d", i),
			"metadata":    map[string]any{"index": i},
		})
		require.False(t, isErr)
	}

	text, isErr := callTool(t, h, "search_similar", map[string]any{"query": "shared words token3"})
	require.False(t, isErr)

	lines := strings.Split(text, "\n")
	require.Equal(t, "Similar documents:", lines[0])
	require.Len(t, lines, 6, "default result count is five")

	prev := 2.0
	for i, line := range lines[1:] {
		m := resultLine.FindStringSubmatch(line)
		require.NotNil(t, m, "unexpected line %q", line)
		assert.Equal(t, fmt.Sprint(i+1), m[1])

		var sim float64
		_, err := fmt.Sscanf(m[3], "%f", &sim)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, sim, 0.0)
		assert.LessOrEqual(t, sim, 1.0)
		assert.LessOrEqual(t, sim, prev, "results are ordered by similarity")
		prev = sim
	}
	assert.Contains(t, lines[1], "'doc-3'")
}

func TestMCPHandler_Errors(t *testing.T) {
	tests := []struct {
		name    string
		tool    string
		args    map[string]any
		message string
	}{
		{
			name:    "Missing content",
			tool:    "add_document",
			args:    map[string]any{"document_id": "d1"},
			message: "invalid argument",
		},
		{
			name:    "Missing query",
			tool:    "search_similar",
			args:    map[string]any{"num_results": 2},
			message: "invalid argument",
		},
		{
			name:    "Missing arguments",
			tool:    "search_similar",
			args:    nil,
			message: "missing arguments",
		},
		{
			name:    "Upper-case query key",
			tool:    "search_similar",
			args:    map[string]any{"QUERY": "hi"},
			message: "missing query",
		},
		{
			name:    "Mixed-case document keys",
			tool:    "add_document",
			args:    map[string]any{"DOCUMENT_ID": "x", "Content": "hi"},
			message: "missing document_id or content",
		},
		{
			name:    "Unknown tool",
			tool:    "drop_collection",
			args:    map[string]any{"name": "documents"},
			message: "unknown tool: drop_collection",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)

			text, isErr := callTool(t, h, tt.tool, tt.args)
			assert.True(t, isErr)
			assert.Contains(t, text, tt.message)
		})
	}
}

func TestMCPHandler_DuplicateDocument(t *testing.T) {
	h := newTestHandler(t)
	args := map[string]any{"document_id": "d1", "content": "first"}

	_, isErr := callTool(t, h, "add_document", args)
	require.False(t, isErr)

	text, isErr := callTool(t, h, "add_document", map[string]any{"document_id": "d1", "content": "second"})
	assert.True(t, isErr)
	assert.Contains(t, text, "document already exists")

	text, _ = callTool(t, h, "search_similar", map[string]any{"query": "first"})
	assert.Equal(t, "Similar documents:\n1. Document 'd1' (similarity: 1.00)", text)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func sendMessage(t *testing.T, srv *server.MCPServer, msg string) rpcResponse {
	t.Helper()

	out := srv.HandleMessage(context.Background(), json.RawMessage(msg))
	raw, err := json.Marshal(out)
	require.NoError(t, err)

	var resp rpcResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	return resp
}

func TestMCPHandler_JSONRPC(t *testing.T) {
	h := newTestHandler(t)
	srv := h.NewServer()

	resp := sendMessage(t, srv, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`)
	require.Nil(t, resp.Error)

	var initResult struct {
		ServerInfo struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"serverInfo"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &initResult))
	assert.Equal(t, "chroma", initResult.ServerInfo.Name)
	assert.Equal(t, "0.1.0", initResult.ServerInfo.Version)

	resp = sendMessage(t, srv, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	require.Nil(t, resp.Error)

	var listResult struct {
		Tools []struct {
			Name        string         `json:"name"`
			Description string         `json:"description"`
			InputSchema map[string]any `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &listResult))
	require.Len(t, listResult.Tools, 2)
	names := []string{listResult.Tools[0].Name, listResult.Tools[1].Name}
	assert.ElementsMatch(t, []string{"add_document", "search_similar"}, names)

	resp = sendMessage(t, srv, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"add_document","arguments":{"document_id":"d1","content":"hello world"}}}`)
	require.Nil(t, resp.Error)

	var callResult struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &callResult))
	assert.False(t, callResult.IsError)
	require.Len(t, callResult.Content, 1)
	assert.Equal(t, "text", callResult.Content[0].Type)
	assert.Equal(t, "Added document 'd1' successfully", callResult.Content[0].Text)

	resp = sendMessage(t, srv, `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"search_similar","arguments":{"query":"hello world"}}}`)
	require.Nil(t, resp.Error)
	require.NoError(t, json.Unmarshal(resp.Result, &callResult))
	assert.Equal(t, "Similar documents:\n1. Document 'd1' (similarity: 1.00)", callResult.Content[0].Text)

	resp = sendMessage(t, srv, `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"unknown","arguments":{"x":1}}}`)
	assert.NotNil(t, resp.Error, "unregistered tools are rejected by the server")
}
