package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"browser-mcp/internal/application/port/output"
	"browser-mcp/internal/domain/entity"
	"browser-mcp/internal/infrastructure/metrics"
)

const DefaultFillDelay = 100 * time.Millisecond

// SelectorResolver performs an action on the single element a selector
// matches. When the selector is ambiguous it retries once on the first
// match; any other failure is final.
type SelectorResolver struct {
	fillDelay time.Duration
	logger    output.LoggerPort
}

func NewSelectorResolver(fillDelay time.Duration, logger output.LoggerPort) *SelectorResolver {
	if fillDelay < 0 {
		fillDelay = DefaultFillDelay
	}
	return &SelectorResolver{
		fillDelay: fillDelay,
		logger:    logger.WithField("component", "selector_resolver"),
	}
}

func (r *SelectorResolver) ResolveAndAct(ctx context.Context, page output.Page, sel entity.Selector, action entity.Action) (string, error) {
	loc := page.Locate(sel)

	err := r.perform(ctx, loc, action)
	if err == nil {
		return describe(sel, action), nil
	}
	if !errors.Is(err, entity.ErrStrictModeViolation) {
		return "", &entity.ElementResolutionError{Verb: verb(action.Kind), Target: sel.Target(), Attempts: 1, Cause: err}
	}

	r.logger.Debug("selector matched several elements, retrying on first", "selector", sel.String(), "action", string(action.Kind))
	err = r.perform(ctx, loc.First(), action)
	metrics.ObserveSelectorRetry(string(action.Kind), err)
	if err != nil {
		return "", &entity.ElementResolutionError{Verb: verb(action.Kind), Target: sel.Target(), Attempts: 2, Cause: err}
	}
	return describe(sel, action), nil
}

func (r *SelectorResolver) perform(ctx context.Context, loc output.Locator, action entity.Action) error {
	switch action.Kind {
	case entity.ActionClick:
		return loc.Click(ctx)
	case entity.ActionFill:
		return loc.Type(ctx, action.Value, r.fillDelay)
	case entity.ActionSelect:
		return loc.SelectOption(ctx, action.Value)
	case entity.ActionHover:
		return loc.Hover(ctx)
	default:
		return fmt.Errorf("unsupported action %q", action.Kind)
	}
}

func verb(k entity.ActionKind) string {
	return string(k)
}

func describe(sel entity.Selector, action entity.Action) string {
	text := sel.Kind == entity.SelectorText
	switch action.Kind {
	case entity.ActionClick:
		if text {
			return "Clicked element with text: " + sel.Expression
		}
		return "Clicked: " + sel.Expression
	case entity.ActionFill:
		if text {
			return fmt.Sprintf("Filled element with text %s with: %s", sel.Expression, action.Value)
		}
		return fmt.Sprintf("Filled %s with: %s", sel.Expression, action.Value)
	case entity.ActionSelect:
		if text {
			return fmt.Sprintf("Selected element with text %s with value: %s", sel.Expression, action.Value)
		}
		return fmt.Sprintf("Selected %s with: %s", sel.Expression, action.Value)
	case entity.ActionHover:
		if text {
			return "Hovered element with text: " + sel.Expression
		}
		return "Hovered " + sel.Expression
	}
	return string(action.Kind) + " " + sel.Target()
}
