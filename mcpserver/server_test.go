package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/libref/extract"
	libreftest "github.com/teranos/libref/internal/testing"
	"github.com/teranos/libref/pipeline"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	cfg := libreftest.UnpackProject(t, filepath.Join("testdata", "project.txtar"), "")
	p := pipeline.New(cfg)
	t.Cleanup(p.Close)
	return New(p)
}

func call(name string, args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestToolsOverProtocol(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	resp := s.MCP().HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name":"list_classes"`)
	assert.Contains(t, string(data), `"name":"describe_class"`)

	resp = s.MCP().HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"describe_class","arguments":{"name":"Electrical","format":"mdx"}}}`))
	data, err = json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `title: \"Electrical\"`)
}

func TestListClasses(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	res, err := s.handleListClasses(ctx, call("list_classes", nil))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var all []ClassSummary
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &all))
	assert.Equal(t, []ClassSummary{
		{Name: "Resistor", Category: "component", File: "Resistor.py", Summary: "A two-terminal passive component."},
		{Name: "Electrical", Category: "interface", File: "Electrical.py", Summary: "A single electrical connection."},
		{Name: "can_bridge", Category: "trait", File: "can_bridge.py", Summary: "Can be placed in series between two interfaces."},
	}, all)

	res, err = s.handleListClasses(ctx, call("list_classes", map[string]interface{}{"category": "trait"}))
	require.NoError(t, err)
	var traits []ClassSummary
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &traits))
	require.Len(t, traits, 1)
	assert.Equal(t, "can_bridge", traits[0].Name)
}

func TestListClassesUnknownCategory(t *testing.T) {
	s := newServer(t)
	res, err := s.handleListClasses(context.Background(), call("list_classes", map[string]interface{}{"category": "module"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), `unknown category "module"`)
}

func TestDescribeClass(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	res, err := s.handleDescribeClass(ctx, call("describe_class", map[string]interface{}{"name": "Resistor"}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var rec extract.ClassRecord
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &rec))
	assert.Equal(t, "Resistor", rec.Name)
	assert.Equal(t, "component", rec.Category)
	assert.Equal(t, "Resistor.py", rec.SourceFile)
	require.Len(t, rec.Fields, 1)
	assert.Equal(t, "resistance", rec.Fields[0].Name)

	res, err = s.handleDescribeClass(ctx, call("describe_class", map[string]interface{}{"name": "Resistor", "format": "mdx"}))
	require.NoError(t, err)
	page := text(t, res)
	assert.Contains(t, page, "title: \"Resistor\"")
	assert.Contains(t, page, "<ParamField path='resistance'")
}

func TestDescribeClassErrors(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"missing name", map[string]interface{}{}, "name"},
		{"unknown class", map[string]interface{}{"name": "resistor"}, "class not found"},
		{"unknown format", map[string]interface{}{"name": "Resistor", "format": "html"}, `unknown format "html"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.handleDescribeClass(ctx, call("describe_class", tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, text(t, res), tt.want)
		})
	}
}

func TestConcurrentToolCalls(t *testing.T) {
	s := newServer(t)

	g, ctx := errgroup.WithContext(context.Background())
	pages := make([]string, 10)
	for i := range pages {
		g.Go(func() error {
			if i%2 == 1 {
				res, err := s.handleListClasses(ctx, call("list_classes", nil))
				if err != nil {
					return err
				}
				if res.IsError {
					return fmt.Errorf("list_classes failed: %v", res.Content)
				}
			}
			res, err := s.handleDescribeClass(ctx, call("describe_class", map[string]interface{}{"name": "Electrical", "format": "mdx"}))
			if err != nil {
				return err
			}
			if res.IsError || len(res.Content) == 0 {
				return fmt.Errorf("describe_class failed: %v", res.Content)
			}
			pages[i] = res.Content[0].(mcp.TextContent).Text
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for _, page := range pages {
		assert.Equal(t, pages[0], page)
	}
	assert.Contains(t, pages[0], `title: "Electrical"`)
}
