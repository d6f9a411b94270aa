package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"browser-mcp/internal/application/port/output"
	"browser-mcp/internal/domain/entity"

	"github.com/google/jsonschema-go/jsonschema"
)

var (
	_ output.ToolPort = (*NavigateTool)(nil)
	_ output.ToolPort = (*ElementTool)(nil)
	_ output.ToolPort = (*EvaluateTool)(nil)
)

type NavigateTool struct {
	pages PageProvider
}

func NewNavigateTool(pages PageProvider) *NavigateTool {
	return &NavigateTool{pages: pages}
}

func (t *NavigateTool) Name() entity.ToolName { return entity.ToolBrowserNavigate }
func (t *NavigateTool) Description() string   { return "Navigate to a URL" }
func (t *NavigateTool) Parameters() *jsonschema.Schema {
	return object([]string{"url"}, map[string]*jsonschema.Schema{
		"url": str("URL to navigate to"),
	})
}

func (t *NavigateTool) Execute(ctx context.Context, arguments json.RawMessage) (*entity.CommandResult, error) {
	var input struct {
		URL string `json:"url"`
	}
	if err := decode(arguments, &input); err != nil {
		return nil, err
	}
	page, err := t.pages.Ensure(ctx)
	if err != nil {
		return nil, err
	}
	if err := page.Navigate(ctx, input.URL); err != nil {
		return nil, err
	}
	return entity.TextResult("Navigated to " + input.URL), nil
}

// ElementTool covers the commands that act on one element: the selector
// comes from a "selector" (CSS) or "text" argument, the action value, if
// any, from "value".
type ElementTool struct {
	name        entity.ToolName
	description string
	kind        entity.SelectorKind
	action      entity.ActionKind
	withValue   bool

	pages PageProvider
	actor ElementActor
}

func newElementTool(name entity.ToolName, description string, kind entity.SelectorKind, action entity.ActionKind, withValue bool, pages PageProvider, actor ElementActor) *ElementTool {
	return &ElementTool{
		name:        name,
		description: description,
		kind:        kind,
		action:      action,
		withValue:   withValue,
		pages:       pages,
		actor:       actor,
	}
}

func NewClickTool(pages PageProvider, actor ElementActor) *ElementTool {
	return newElementTool(entity.ToolBrowserClick, "Click an element on the page using CSS selector",
		entity.SelectorCSS, entity.ActionClick, false, pages, actor)
}

func NewClickTextTool(pages PageProvider, actor ElementActor) *ElementTool {
	return newElementTool(entity.ToolBrowserClickText, "Click an element on the page by its text content",
		entity.SelectorText, entity.ActionClick, false, pages, actor)
}

func NewFillTool(pages PageProvider, actor ElementActor) *ElementTool {
	return newElementTool(entity.ToolBrowserFill, "Fill out an input field",
		entity.SelectorCSS, entity.ActionFill, true, pages, actor)
}

func NewSelectTool(pages PageProvider, actor ElementActor) *ElementTool {
	return newElementTool(entity.ToolBrowserSelect, "Select an element on the page with Select tag using CSS selector",
		entity.SelectorCSS, entity.ActionSelect, true, pages, actor)
}

func NewSelectTextTool(pages PageProvider, actor ElementActor) *ElementTool {
	return newElementTool(entity.ToolBrowserSelectText, "Select an element on the page with Select tag by its text content",
		entity.SelectorText, entity.ActionSelect, true, pages, actor)
}

func NewHoverTool(pages PageProvider, actor ElementActor) *ElementTool {
	return newElementTool(entity.ToolBrowserHover, "Hover an element on the page using CSS selector",
		entity.SelectorCSS, entity.ActionHover, false, pages, actor)
}

func NewHoverTextTool(pages PageProvider, actor ElementActor) *ElementTool {
	return newElementTool(entity.ToolBrowserHoverText, "Hover an element on the page by its text content",
		entity.SelectorText, entity.ActionHover, false, pages, actor)
}

func (t *ElementTool) Name() entity.ToolName { return t.name }
func (t *ElementTool) Description() string   { return t.description }

func (t *ElementTool) selectorKey() string {
	if t.kind == entity.SelectorText {
		return "text"
	}
	return "selector"
}

func (t *ElementTool) Parameters() *jsonschema.Schema {
	props := map[string]*jsonschema.Schema{}
	required := []string{t.selectorKey()}
	if t.kind == entity.SelectorText {
		props["text"] = str("Text content of the element")
	} else {
		props["selector"] = str("CSS selector")
	}
	if t.withValue {
		desc := "Value to type"
		if t.action == entity.ActionSelect {
			desc = "Option value or label to select"
		}
		props["value"] = str(desc)
		required = append(required, "value")
	}
	return object(required, props)
}

func (t *ElementTool) Execute(ctx context.Context, arguments json.RawMessage) (*entity.CommandResult, error) {
	var input struct {
		Selector string `json:"selector"`
		Text     string `json:"text"`
		Value    string `json:"value"`
	}
	if err := decode(arguments, &input); err != nil {
		return nil, err
	}

	sel := entity.CSS(input.Selector)
	if t.kind == entity.SelectorText {
		sel = entity.Text(input.Text)
	}

	page, err := t.pages.Ensure(ctx)
	if err != nil {
		return nil, err
	}
	msg, err := t.actor.ResolveAndAct(ctx, page, sel, entity.Action{Kind: t.action, Value: input.Value})
	if err != nil {
		return nil, err
	}
	return entity.TextResult(msg), nil
}

type EvaluateTool struct {
	pages PageProvider
}

func NewEvaluateTool(pages PageProvider) *EvaluateTool {
	return &EvaluateTool{pages: pages}
}

func (t *EvaluateTool) Name() entity.ToolName { return entity.ToolBrowserEvaluate }
func (t *EvaluateTool) Description() string   { return "Execute JavaScript in the browser console" }
func (t *EvaluateTool) Parameters() *jsonschema.Schema {
	return object([]string{"script"}, map[string]*jsonschema.Schema{
		"script": str("JavaScript to evaluate in the page"),
	})
}

func (t *EvaluateTool) Execute(ctx context.Context, arguments json.RawMessage) (*entity.CommandResult, error) {
	var input struct {
		Script string `json:"script"`
	}
	if err := decode(arguments, &input); err != nil {
		return nil, err
	}
	page, err := t.pages.Ensure(ctx)
	if err != nil {
		return nil, err
	}

	ev, err := page.Evaluate(ctx, input.Script)
	if err != nil {
		if errors.Is(err, entity.ErrScriptExecution) {
			return nil, err
		}
		return nil, &entity.ScriptExecutionError{Message: err.Error(), Err: err}
	}

	return entity.TextResult(FormatEvaluation(ev)), nil
}

// FormatEvaluation renders the value (or "undefined") followed by the
// console lines captured while the script ran.
func FormatEvaluation(ev *entity.Evaluation) string {
	value := "undefined"
	if ev.Value != nil {
		value = string(ev.Value)
	}
	return fmt.Sprintf("Execution result:\n%s\n\nConsole output:\n%s", value, strings.Join(ev.Logs, "\n"))
}
