package rod

import (
	"context"
	"fmt"
	"time"

	"browser-mcp/internal/application/port/output"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

const (
	defaultTimeout = 10 * time.Second
	engineName     = "chromium"
)

var (
	_ output.BrowserEngine = (*Engine)(nil)
	_ output.Browser       = (*browser)(nil)
)

type Config struct {
	Headless  bool
	NoSandbox bool
	// Bin is an explicit Chromium binary. Empty lets the launcher find or
	// download one.
	Bin string
	// Timeout bounds each element lookup and navigation.
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Headless: true,
		Timeout:  defaultTimeout,
	}
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Engine{cfg: cfg}
}

func (e *Engine) Name() string { return engineName }

// Launch starts a browser process. The process outlives ctx; it is only
// stopped by Browser.Close.
func (e *Engine) Launch(ctx context.Context) (output.Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := launcher.New().
		Headless(e.cfg.Headless).
		NoSandbox(e.cfg.NoSandbox).
		Delete("use-mock-keychain")
	if e.cfg.Bin != "" {
		l = l.Bin(e.cfg.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &browser{browser: b, launcher: l, timeout: e.cfg.Timeout}, nil
}

type browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
}

func (b *browser) NewPage(ctx context.Context) (output.Page, error) {
	p, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	// Detach the page from the ctx it was created under; each call binds
	// its own.
	return &page{page: p.Context(context.Background()), timeout: b.timeout}, nil
}

func (b *browser) Close() error {
	err := b.browser.Close()
	b.launcher.Kill()
	b.launcher.Cleanup()
	if err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}
