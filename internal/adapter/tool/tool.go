// Package tool implements one ToolPort per browser command.
package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"browser-mcp/internal/application/port/output"
	"browser-mcp/internal/domain/entity"

	"github.com/google/jsonschema-go/jsonschema"
)

// PageProvider hands out the session page, launching the browser on first
// use.
type PageProvider interface {
	Ensure(ctx context.Context) (output.Page, error)
}

type ElementActor interface {
	ResolveAndAct(ctx context.Context, page output.Page, sel entity.Selector, action entity.Action) (string, error)
}

func decode(arguments json.RawMessage, v any) error {
	if len(arguments) == 0 {
		arguments = json.RawMessage("{}")
	}
	if err := json.Unmarshal(arguments, v); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrInvalidArguments, err)
	}
	return nil
}

func str(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description}
}

func object(required []string, props map[string]*jsonschema.Schema) *jsonschema.Schema {
	if required == nil {
		required = []string{}
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

// All returns every command in the order they are advertised.
func All(pages PageProvider, actor ElementActor, store output.ArtifactStore, maxWidth int, logger output.LoggerPort) []output.ToolPort {
	return []output.ToolPort{
		NewNavigateTool(pages),
		NewScreenshotTool(pages, store, maxWidth, logger),
		NewClickTool(pages, actor),
		NewClickTextTool(pages, actor),
		NewFillTool(pages, actor),
		NewSelectTool(pages, actor),
		NewSelectTextTool(pages, actor),
		NewHoverTool(pages, actor),
		NewHoverTextTool(pages, actor),
		NewEvaluateTool(pages),
		NewDeleteScreenshotTool(store),
		NewClearScreenshotsTool(store),
	}
}
