// Package playwright drives Firefox, Chromium or WebKit through
// playwright-go. Its locators are strict natively; strict-mode violations
// are surfaced as *entity.StrictModeViolationError.
package playwright

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"browser-mcp/internal/application/port/output"
	"browser-mcp/internal/domain/entity"
	"browser-mcp/internal/infrastructure/browser/script"

	pw "github.com/playwright-community/playwright-go"
)

var (
	_ output.BrowserEngine = (*Engine)(nil)
	_ output.Browser       = (*browser)(nil)
	_ output.Page          = (*page)(nil)
	_ output.Locator       = (*locator)(nil)
)

type Config struct {
	// Browser is one of firefox, chromium, webkit.
	Browser  string
	Headless bool
	// Install downloads the driver and browser before the first launch.
	Install        bool
	ExecutablePath string
	Timeout        time.Duration
}

func DefaultConfig() Config {
	return Config{
		Browser:  "firefox",
		Headless: true,
		Timeout:  10 * time.Second,
	}
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.Browser == "" {
		cfg.Browser = "firefox"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Engine{cfg: cfg}
}

func (e *Engine) Name() string { return e.cfg.Browser }

func (e *Engine) Launch(ctx context.Context) (output.Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := &pw.RunOptions{
		Browsers: []string{e.cfg.Browser},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
	if e.cfg.Install {
		if err := pw.Install(opts); err != nil {
			return nil, fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	driver, err := pw.Run(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	var bt pw.BrowserType
	switch e.cfg.Browser {
	case "chromium":
		bt = driver.Chromium
	case "webkit":
		bt = driver.WebKit
	default:
		bt = driver.Firefox
	}

	launchOpts := pw.BrowserTypeLaunchOptions{Headless: pw.Bool(e.cfg.Headless)}
	if e.cfg.ExecutablePath != "" {
		launchOpts.ExecutablePath = pw.String(e.cfg.ExecutablePath)
	}
	b, err := bt.Launch(launchOpts)
	if err != nil {
		_ = driver.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return &browser{driver: driver, browser: b, timeout: e.cfg.Timeout}, nil
}

type browser struct {
	driver  *pw.Playwright
	browser pw.Browser
	timeout time.Duration
}

func (b *browser) NewPage(ctx context.Context) (output.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := b.browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	p.SetDefaultTimeout(float64(b.timeout.Milliseconds()))
	return &page{page: p}, nil
}

func (b *browser) Close() error {
	closeErr := b.browser.Close()
	stopErr := b.driver.Stop()
	if closeErr != nil {
		return fmt.Errorf("failed to close browser: %w", closeErr)
	}
	if stopErr != nil {
		return fmt.Errorf("failed to stop playwright: %w", stopErr)
	}
	return nil
}

type page struct {
	page       pw.Page
	subscribed bool
}

func (p *page) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := p.page.Goto(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (p *page) Locate(sel entity.Selector) output.Locator {
	var l pw.Locator
	if sel.Kind == entity.SelectorText {
		l = p.page.GetByText(sel.Expression)
	} else {
		l = p.page.Locator(sel.Expression)
	}
	return &locator{loc: l, sel: sel}
}

func (p *page) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := p.page.Screenshot(pw.PageScreenshotOptions{
		FullPage: pw.Bool(fullPage),
		Type:     pw.ScreenshotTypePng,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return data, nil
}

func (p *page) Evaluate(ctx context.Context, src string) (*entity.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := p.page.Evaluate(script.EvaluateWithConsole, src)
	if err != nil {
		return nil, &entity.ScriptExecutionError{Message: err.Error(), Err: err}
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encode evaluation result: %w", err)
	}
	return script.DecodeEvaluation(raw)
}

// OnConsole may be called once per page; later calls are ignored.
// playwright-go dispatches events from its single connection goroutine.
func (p *page) OnConsole(fn func(entity.ConsoleEntry)) {
	if p.subscribed {
		return
	}
	p.subscribed = true
	p.page.OnConsole(func(msg pw.ConsoleMessage) {
		fn(entity.ConsoleEntry{Level: msg.Type(), Text: msg.Text()})
	})
}

func (p *page) URL() string { return p.page.URL() }

func (p *page) Close() error {
	if err := p.page.Close(); err != nil {
		return fmt.Errorf("failed to close page: %w", err)
	}
	return nil
}

type locator struct {
	loc pw.Locator
	sel entity.Selector
}

func (l *locator) First() output.Locator {
	return &locator{loc: l.loc.First(), sel: l.sel}
}

func (l *locator) classify(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "strict mode violation") {
		return &entity.StrictModeViolationError{Expression: l.sel.String(), Err: err}
	}
	return err
}

func (l *locator) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.classify(l.loc.Click())
}

func (l *locator) Type(ctx context.Context, text string, delay time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.classify(l.loc.PressSequentially(text, pw.LocatorPressSequentiallyOptions{
		Delay: pw.Float(float64(delay.Milliseconds())),
	}))
}

func (l *locator) Hover(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.classify(l.loc.Hover())
}

func (l *locator) SelectOption(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	vals := []string{value}
	_, err := l.loc.SelectOption(pw.SelectOptionValues{Values: &vals})
	return l.classify(err)
}

func (l *locator) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := l.loc.Screenshot()
	if err != nil {
		return nil, l.classify(err)
	}
	return data, nil
}
