package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"browser-mcp/internal/application/port/output"
	"browser-mcp/internal/domain/entity"
	"browser-mcp/internal/infrastructure/imageproc"

	"github.com/google/jsonschema-go/jsonschema"
)

var (
	_ output.ToolPort = (*ScreenshotTool)(nil)
	_ output.ToolPort = (*DeleteScreenshotTool)(nil)
	_ output.ToolPort = (*ClearScreenshotsTool)(nil)
)

type ScreenshotTool struct {
	pages    PageProvider
	store    output.ArtifactStore
	maxWidth int
	logger   output.LoggerPort
}

func NewScreenshotTool(pages PageProvider, store output.ArtifactStore, maxWidth int, logger output.LoggerPort) *ScreenshotTool {
	return &ScreenshotTool{pages: pages, store: store, maxWidth: maxWidth, logger: logger}
}

func (t *ScreenshotTool) Name() entity.ToolName { return entity.ToolBrowserScreenshot }
func (t *ScreenshotTool) Description() string {
	return "Take a screenshot of the current page or a specific element"
}
func (t *ScreenshotTool) Parameters() *jsonschema.Schema {
	return object([]string{"name"}, map[string]*jsonschema.Schema{
		"name":     str("Name for the screenshot"),
		"selector": str("CSS selector of the element to capture"),
		"fullPage": {
			Type:        "boolean",
			Description: "Capture the full scrollable page instead of the viewport",
			Default:     json.RawMessage("false"),
		},
	})
}

func (t *ScreenshotTool) Execute(ctx context.Context, arguments json.RawMessage) (*entity.CommandResult, error) {
	var input struct {
		Name     string `json:"name"`
		Selector string `json:"selector"`
		FullPage bool   `json:"fullPage"`
	}
	if err := decode(arguments, &input); err != nil {
		return nil, err
	}
	page, err := t.pages.Ensure(ctx)
	if err != nil {
		return nil, err
	}

	var data []byte
	if input.Selector != "" {
		data, err = page.Locate(entity.CSS(input.Selector)).Screenshot(ctx)
		if err != nil {
			// Capitalized: clients match on this user-facing wording.
			return nil, fmt.Errorf("Element not found: %s: %w", input.Selector, err)
		}
	} else {
		data, err = page.Screenshot(ctx, input.FullPage)
		if err != nil {
			return nil, err
		}
	}
	if len(data) == 0 {
		// Capitalized: clients match on this user-facing wording.
		return nil, errors.New("Screenshot failed")
	}

	if scaled, err := imageproc.FitWidth(data, t.maxWidth); err != nil {
		t.logger.Warn("screenshot downscale failed, keeping original", "error", err)
	} else {
		data = scaled
	}

	artifact, err := t.store.Store(ctx, data, input.Name)
	if err != nil {
		return nil, err
	}
	t.logger.Info("screenshot stored", "name", artifact.Name, "bytes", len(data))

	if artifact.IsInline() {
		return entity.TextResult(fmt.Sprintf("Screenshot %s taken", artifact.Name)).
			WithImage(artifact.Inline, artifact.MIMEType), nil
	}
	return entity.TextResult(
		"Screenshot taken and available at: "+artifact.URL,
		fmt.Sprintf("markdown syntax for image: ![screenshot](%s)", artifact.URL),
		"use markdown syntax for image when responding to user",
	), nil
}

type DeleteScreenshotTool struct {
	store output.ArtifactStore
}

func NewDeleteScreenshotTool(store output.ArtifactStore) *DeleteScreenshotTool {
	return &DeleteScreenshotTool{store: store}
}

func (t *DeleteScreenshotTool) Name() entity.ToolName { return entity.ToolDeleteScreenshot }
func (t *DeleteScreenshotTool) Description() string {
	return "Delete a specific screenshot from the image server"
}
func (t *DeleteScreenshotTool) Parameters() *jsonschema.Schema {
	return object([]string{"filename"}, map[string]*jsonschema.Schema{
		"filename": str("File name of the screenshot, as returned when it was taken"),
	})
}

func (t *DeleteScreenshotTool) Execute(ctx context.Context, arguments json.RawMessage) (*entity.CommandResult, error) {
	var input struct {
		Filename string `json:"filename"`
	}
	if err := decode(arguments, &input); err != nil {
		return nil, err
	}
	if err := t.store.Delete(ctx, input.Filename); err != nil {
		// Capitalized: clients match on this user-facing wording.
		return nil, fmt.Errorf("Failed to delete screenshot: %w", err)
	}
	return entity.TextResult(fmt.Sprintf("Screenshot %s deleted successfully", input.Filename)), nil
}

type ClearScreenshotsTool struct {
	store output.ArtifactStore
}

func NewClearScreenshotsTool(store output.ArtifactStore) *ClearScreenshotsTool {
	return &ClearScreenshotsTool{store: store}
}

func (t *ClearScreenshotsTool) Name() entity.ToolName { return entity.ToolClearScreenshots }
func (t *ClearScreenshotsTool) Description() string {
	return "Clear all screenshots from the image server"
}

// Parameters keeps the placeholder "_" argument older clients send, but
// does not require it.
func (t *ClearScreenshotsTool) Parameters() *jsonschema.Schema {
	return object(nil, map[string]*jsonschema.Schema{
		"_": str("Unused"),
	})
}

func (t *ClearScreenshotsTool) Execute(ctx context.Context, arguments json.RawMessage) (*entity.CommandResult, error) {
	if err := t.store.Clear(ctx); err != nil {
		// Capitalized: clients match on this user-facing wording.
		return nil, fmt.Errorf("Failed to clear screenshots: %w", err)
	}
	return entity.TextResult("All screenshots cleared successfully"), nil
}
