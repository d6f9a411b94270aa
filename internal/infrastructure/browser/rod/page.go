package rod

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"browser-mcp/internal/application/port/output"
	"browser-mcp/internal/domain/entity"
	"browser-mcp/internal/infrastructure/browser/script"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

var (
	_ output.Page    = (*page)(nil)
	_ output.Locator = (*locator)(nil)
)

type page struct {
	page    *rod.Page
	timeout time.Duration

	consoleOnce sync.Once
}

func (p *page) bind(ctx context.Context) *rod.Page {
	return p.page.Context(ctx).Timeout(p.timeout)
}

func (p *page) Navigate(ctx context.Context, url string) error {
	pg := p.bind(ctx)
	if err := pg.Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := pg.WaitLoad(); err != nil {
		return fmt.Errorf("waiting for load: %w", err)
	}
	return nil
}

func (p *page) Locate(sel entity.Selector) output.Locator {
	return &locator{page: p, sel: sel, strict: true}
}

func (p *page) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	data, err := p.page.Context(ctx).Screenshot(fullPage, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return data, nil
}

func (p *page) Evaluate(ctx context.Context, src string) (*entity.Evaluation, error) {
	res, err := p.page.Context(ctx).Evaluate(rod.Eval(script.EvaluateWithConsole, src))
	if err != nil {
		return nil, &entity.ScriptExecutionError{Message: err.Error(), Err: err}
	}
	return evaluation(res.Value)
}

// evaluation reads the {logs, json, error} object built by the console
// capturing wrapper.
func evaluation(v gson.JSON) (*entity.Evaluation, error) {
	if msg, ok := v.Gets("error"); ok && !msg.Nil() {
		return nil, &entity.ScriptExecutionError{Message: msg.Str()}
	}
	ev := &entity.Evaluation{Logs: []string{}}
	for _, line := range v.Get("logs").Arr() {
		ev.Logs = append(ev.Logs, line.Str())
	}
	if out, ok := v.Gets("json"); ok && !out.Nil() {
		ev.Value = []byte(out.Str())
	}
	return ev, nil
}

// OnConsole may be called once per page; later calls are ignored.
func (p *page) OnConsole(fn func(entity.ConsoleEntry)) {
	p.consoleOnce.Do(func() {
		go p.page.EachEvent(func(e *proto.RuntimeConsoleAPICalled) {
			fn(entity.ConsoleEntry{Level: string(e.Type), Text: consoleText(e.Args)})
		})()
	})
}

func (p *page) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *page) Close() error {
	if err := p.page.Close(); err != nil {
		return fmt.Errorf("failed to close page: %w", err)
	}
	return nil
}

func consoleText(args []*proto.RuntimeRemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case arg.Type == proto.RuntimeRemoteObjectTypeString:
			parts = append(parts, arg.Value.Str())
		case arg.Type == proto.RuntimeRemoteObjectTypeUndefined:
			parts = append(parts, "undefined")
		case arg.Value.Nil() && arg.Description != "":
			parts = append(parts, arg.Description)
		default:
			parts = append(parts, arg.Value.String())
		}
	}
	return strings.Join(parts, " ")
}

type locator struct {
	page   *page
	sel    entity.Selector
	strict bool
}

func (l *locator) First() output.Locator {
	return &locator{page: l.page, sel: l.sel, strict: false}
}

// resolve waits for at least one match, then in strict mode fails when
// the selector matches more than one element.
func (l *locator) resolve(ctx context.Context) (*rod.Element, error) {
	pg := l.page.bind(ctx)

	var el *rod.Element
	var err error
	switch l.sel.Kind {
	case entity.SelectorText:
		el, err = pg.ElementByJS(rod.Eval(script.ByText, l.sel.Expression, false))
	default:
		el, err = pg.Element(l.sel.Expression)
	}
	if err != nil {
		return nil, fmt.Errorf("element not found: %s: %w", l.sel, err)
	}

	if !l.strict {
		return el, nil
	}

	var all rod.Elements
	switch l.sel.Kind {
	case entity.SelectorText:
		all, err = pg.ElementsByJS(rod.Eval(script.ByText, l.sel.Expression, true))
	default:
		all, err = pg.Elements(l.sel.Expression)
	}
	if err != nil {
		return nil, fmt.Errorf("count matches for %s: %w", l.sel, err)
	}
	if len(all) > 1 {
		return nil, &entity.StrictModeViolationError{Expression: l.sel.String(), Count: len(all)}
	}
	return el, nil
}

func (l *locator) Click(ctx context.Context) error {
	el, err := l.resolve(ctx)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

// Type enters text one character at a time, appending to any existing
// value.
func (l *locator) Type(ctx context.Context, text string, delay time.Duration) error {
	el, err := l.resolve(ctx)
	if err != nil {
		return err
	}
	if err := el.Focus(); err != nil {
		return fmt.Errorf("focus failed: %w", err)
	}
	for i, r := range text {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
		if err := el.Input(string(r)); err != nil {
			return fmt.Errorf("input failed: %w", err)
		}
	}
	return nil
}

func (l *locator) Hover(ctx context.Context) error {
	el, err := l.resolve(ctx)
	if err != nil {
		return err
	}
	if err := el.Hover(); err != nil {
		return fmt.Errorf("hover failed: %w", err)
	}
	return nil
}

func (l *locator) SelectOption(ctx context.Context, value string) error {
	el, err := l.resolve(ctx)
	if err != nil {
		return err
	}
	if _, err := el.Eval(script.SelectOption, value); err != nil {
		return fmt.Errorf("select failed: %w", err)
	}
	return nil
}

func (l *locator) Screenshot(ctx context.Context) ([]byte, error) {
	el, err := l.resolve(ctx)
	if err != nil {
		return nil, err
	}
	data, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, fmt.Errorf("element screenshot failed: %w", err)
	}
	return data, nil
}
