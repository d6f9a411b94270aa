// Package mcpserver exposes the command dispatcher as MCP tools and the
// page console as the console://logs resource.
package mcpserver

import (
	"context"

	"browser-mcp/internal/application/port/input"
	"browser-mcp/internal/application/port/output"
	"browser-mcp/internal/domain/entity"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ServerName    = "playwright-headless"
	ServerVersion = "1.3.0"
	Instructions  = "A server that provides browser automation capabilities using Playwright in headless mode"

	ConsoleLogsURI = "console://logs"
)

// ConsoleSource renders the captured console text.
type ConsoleSource interface {
	Text() string
}

func New(dispatcher input.CommandDispatcher, console ConsoleSource, logger output.LoggerPort) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Instructions: Instructions,
	})

	log := logger.WithField("component", "mcp")
	for _, def := range dispatcher.Definitions() {
		server.AddTool(&mcp.Tool{
			Name:        def.Name.String(),
			Description: def.Description,
			InputSchema: def.Parameters,
		}, toolHandler(dispatcher, def.Name))
		log.Debug("tool registered", "name", def.Name)
	}

	server.AddResource(&mcp.Resource{
		URI:      ConsoleLogsURI,
		Name:     "Browser console logs",
		MIMEType: "text/plain",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      ConsoleLogsURI,
				MIMEType: "text/plain",
				Text:     console.Text(),
			}},
		}, nil
	})

	return server
}

// Serve runs the server over stdio until ctx is cancelled or the client
// disconnects.
func Serve(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

func toolHandler(dispatcher input.CommandDispatcher, name entity.ToolName) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toCallToolResult(dispatcher.Dispatch(ctx, name, req.Params.Arguments)), nil
	}
}

func toCallToolResult(res *entity.CommandResult) *mcp.CallToolResult {
	out := &mcp.CallToolResult{
		Content: make([]mcp.Content, 0, len(res.Content)),
		IsError: res.IsError,
	}
	for _, c := range res.Content {
		switch c.Type {
		case entity.ContentTypeImage:
			out.Content = append(out.Content, &mcp.ImageContent{Data: c.Data, MIMEType: c.MIMEType})
		default:
			out.Content = append(out.Content, &mcp.TextContent{Text: c.Text})
		}
	}
	return out
}
