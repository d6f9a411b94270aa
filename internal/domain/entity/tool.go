package entity

import "github.com/google/jsonschema-go/jsonschema"

type ToolName string

const (
	ToolBrowserNavigate   ToolName = "browser_navigate"
	ToolBrowserScreenshot ToolName = "browser_screenshot"
	ToolBrowserClick      ToolName = "browser_click"
	ToolBrowserClickText  ToolName = "browser_click_text"
	ToolBrowserFill       ToolName = "browser_fill"
	ToolBrowserSelect     ToolName = "browser_select"
	ToolBrowserSelectText ToolName = "browser_select_text"
	ToolBrowserHover      ToolName = "browser_hover"
	ToolBrowserHoverText  ToolName = "browser_hover_text"
	ToolBrowserEvaluate   ToolName = "browser_evaluate"

	ToolDeleteScreenshot ToolName = "delete_screenshot"
	ToolClearScreenshots ToolName = "clear_screenshots"
)

func (t ToolName) String() string {
	return string(t)
}

type ToolDefinition struct {
	Name        ToolName
	Description string
	Parameters  *jsonschema.Schema
}
