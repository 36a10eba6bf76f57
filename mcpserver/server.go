// Package mcpserver exposes the extracted library over the Model Context
// Protocol, so assistants can look up components, interfaces and traits
// without reading generated pages.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/teranos/libref/config"
	"github.com/teranos/libref/errors"
	"github.com/teranos/libref/logger"
	"github.com/teranos/libref/pipeline"
	"github.com/teranos/libref/render"
	"github.com/teranos/libref/version"
)

// ClassSummary is one entry of list_classes.
type ClassSummary struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	File     string `json:"file"`
	Summary  string `json:"summary,omitempty"`
}

// Server answers tool calls from a pipeline.
type Server struct {
	p      *pipeline.Pipeline
	server *server.MCPServer
	logger *zap.SugaredLogger
}

// New creates the server and registers its tools.
func New(p *pipeline.Pipeline) *Server {
	s := &Server{
		p:      p,
		logger: logger.ComponentLogger("mcp"),
		server: server.NewMCPServer(
			"libref",
			version.Get().Version,
			server.WithToolCapabilities(true),
		),
	}
	s.registerTools()
	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *server.MCPServer {
	return s.server
}

// ServeStdio serves requests on stdin and stdout until EOF.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.server)
}

func (s *Server) registerTools() {
	listTool := mcp.NewTool("list_classes",
		mcp.WithDescription("List the documented library classes of a category"),
		mcp.WithString("category",
			mcp.Description("component, interface or trait; omit for all categories"),
			mcp.Enum(config.CategoryComponent, config.CategoryInterface, config.CategoryTrait),
		),
	)
	s.server.AddTool(listTool, s.handleListClasses)

	describeTool := mcp.NewTool("describe_class",
		mcp.WithDescription("Describe one library class as its extracted record or as its rendered page"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Class name, case sensitive"),
		),
		mcp.WithString("format",
			mcp.Description("json for the extracted record, mdx for the page (default: json)"),
			mcp.Enum("json", "mdx"),
		),
	)
	s.server.AddTool(describeTool, s.handleDescribeClass)
}

func (s *Server) handleListClasses(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := request.GetString("category", "")

	var categories []string
	if category == "" {
		for _, c := range s.p.Config().Categories.Ordered() {
			categories = append(categories, c.Name)
		}
	} else {
		if _, ok := s.p.Config().Categories.Lookup(category); !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown category %q: use component, interface or trait", category)), nil
		}
		categories = []string{category}
	}

	out := []ClassSummary{}
	for _, c := range categories {
		entries, err := s.p.Documented(ctx, c)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to open library: %v", err)), nil
		}
		for _, e := range entries {
			out = append(out, ClassSummary{
				Name:     e.Name,
				Category: c,
				File:     e.File,
				Summary:  render.Summary(e.Docstring),
			})
		}
	}

	s.logger.Debugw("Listed classes", logger.FieldCategory, category, logger.FieldCount, len(out))
	return jsonResult(out)
}

func (s *Server) handleDescribeClass(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	switch format := request.GetString("format", "json"); format {
	case "json":
		rec, err := s.p.Record(ctx, name)
		if err != nil {
			return toolError(err), nil
		}
		return jsonResult(rec)
	case "mdx":
		page, err := s.p.Document(ctx, name)
		if err != nil {
			return toolError(err), nil
		}
		return mcp.NewToolResultText(page), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q: use json or mdx", format)), nil
	}
}

func toolError(err error) *mcp.CallToolResult {
	msg := err.Error()
	for _, hint := range errors.GetAllHints(err) {
		msg += "\nhint: " + hint
	}
	return mcp.NewToolResultError(msg)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode result")
	}
	return mcp.NewToolResultText(string(data)), nil
}
