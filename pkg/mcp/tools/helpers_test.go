package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"
)

// toolCallResponse is the JSON-RPC envelope of a tools/call result.
type toolCallResponse struct {
	Result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestServer() *server.MCPServer {
	return server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
}

// callTool invokes tool with the given JSON arguments and returns the text
// content of the result.
func callTool(t *testing.T, s *server.MCPServer, tool, arguments string) (string, bool) {
	t.Helper()

	request := fmt.Sprintf(`{"jsonrpc":"2.0","method":"tools/call","params":{"name":%q,"arguments":%s},"id":1}`, tool, arguments)
	result := s.HandleMessage(context.Background(), []byte(request))

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var response toolCallResponse
	require.NoError(t, json.Unmarshal(raw, &response))
	require.Nil(t, response.Error, "unexpected JSON-RPC error")
	require.NotEmpty(t, response.Result.Content)
	require.Equal(t, "text", response.Result.Content[0].Type)

	return response.Result.Content[0].Text, response.Result.IsError
}

func listTools(t *testing.T, s *server.MCPServer) map[string]string {
	t.Helper()

	result := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","method":"tools/list","id":1}`))
	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var response struct {
		Result struct {
			Tools []struct {
				Name        string `json:"name"`
				Description string `json:"description"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &response))

	tools := make(map[string]string, len(response.Result.Tools))
	for _, tool := range response.Result.Tools {
		tools[tool.Name] = tool.Description
	}
	return tools
}
