// Package fakebrowser implements the browser ports in memory for tests.
// A page holds a match count per selector expression: more than one match
// makes strict locators fail, zero makes every locator fail.
package fakebrowser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"browser-mcp/internal/application/port/output"
	"browser-mcp/internal/domain/entity"
)

var ErrNoMatch = errors.New("timeout waiting for element")

// PNG is a 1x1 transparent PNG.
var PNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

type Engine struct {
	mu        sync.Mutex
	LaunchErr error
	Launches  int
	Browser   *Browser
}

func NewEngine() *Engine {
	return &Engine{Browser: NewBrowser()}
}

func (e *Engine) Name() string { return "fake" }

func (e *Engine) Launch(ctx context.Context) (output.Browser, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Launches++
	if e.LaunchErr != nil {
		return nil, e.LaunchErr
	}
	return e.Browser, nil
}

type Browser struct {
	mu         sync.Mutex
	Page       *Page
	NewPageErr error
	CloseErr   error
	Pages      int
	Closed     bool
}

func NewBrowser() *Browser {
	return &Browser{Page: NewPage()}
}

func (b *Browser) NewPage(ctx context.Context) (output.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.NewPageErr != nil {
		return nil, b.NewPageErr
	}
	b.Pages++
	return b.Page, nil
}

func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Closed = true
	return b.CloseErr
}

type Page struct {
	mu sync.Mutex

	Matches map[string]int
	// ActErr fails every action on the expression, strict or not.
	ActErr map[string]error
	// FirstErr fails only actions through First().
	FirstErr map[string]error

	NavigateErr   error
	ScreenshotErr error
	Image         []byte
	EvaluateFn    func(script string) (*entity.Evaluation, error)
	CloseErr      error

	url       string
	actions   []string
	listeners []func(entity.ConsoleEntry)
	closed    bool
}

func NewPage() *Page {
	return &Page{
		Matches:  make(map[string]int),
		ActErr:   make(map[string]error),
		FirstErr: make(map[string]error),
		Image:    PNG,
		url:      "about:blank",
	}
}

// Actions lists performed actions as "<verb> <kind>=<expr>[ first][ value]".
func (p *Page) Actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.actions...)
}

func (p *Page) Emit(e entity.ConsoleEntry) {
	p.mu.Lock()
	ls := append([]func(entity.ConsoleEntry){}, p.listeners...)
	p.mu.Unlock()
	for _, fn := range ls {
		fn(e)
	}
}

func (p *Page) Listeners() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.listeners)
}

func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.NavigateErr != nil {
		return p.NavigateErr
	}
	p.url = url
	p.actions = append(p.actions, "navigate "+url)
	return nil
}

func (p *Page) Locate(sel entity.Selector) output.Locator {
	return &Locator{page: p, sel: sel, strict: true}
}

func (p *Page) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ScreenshotErr != nil {
		return nil, p.ScreenshotErr
	}
	p.actions = append(p.actions, fmt.Sprintf("screenshot fullPage=%t", fullPage))
	return p.Image, nil
}

func (p *Page) Evaluate(ctx context.Context, script string) (*entity.Evaluation, error) {
	if p.EvaluateFn == nil {
		return &entity.Evaluation{Logs: []string{}}, nil
	}
	return p.EvaluateFn(script)
}

func (p *Page) OnConsole(fn func(entity.ConsoleEntry)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return p.CloseErr
}

type Locator struct {
	page   *Page
	sel    entity.Selector
	strict bool
}

func (l *Locator) First() output.Locator {
	return &Locator{page: l.page, sel: l.sel, strict: false}
}

func (l *Locator) act(verb, value string) error {
	p := l.page
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ActErr[l.sel.Expression]; err != nil {
		return err
	}
	n := p.Matches[l.sel.Expression]
	if n == 0 {
		return fmt.Errorf("%s: %w", l.sel, ErrNoMatch)
	}
	if l.strict && n > 1 {
		return &entity.StrictModeViolationError{Expression: l.sel.String(), Count: n}
	}
	if !l.strict {
		if err := p.FirstErr[l.sel.Expression]; err != nil {
			return err
		}
	}

	rec := verb + " " + l.sel.String()
	if !l.strict {
		rec += " first"
	}
	if value != "" {
		rec += " " + value
	}
	p.actions = append(p.actions, rec)
	return nil
}

func (l *Locator) Click(ctx context.Context) error { return l.act("click", "") }

func (l *Locator) Type(ctx context.Context, text string, delay time.Duration) error {
	return l.act("type", text)
}

func (l *Locator) Hover(ctx context.Context) error { return l.act("hover", "") }

func (l *Locator) SelectOption(ctx context.Context, value string) error {
	return l.act("select", value)
}

func (l *Locator) Screenshot(ctx context.Context) ([]byte, error) {
	if err := l.act("screenshot", ""); err != nil {
		return nil, err
	}
	return l.page.Image, nil
}
