package output

import (
	"context"
	"time"

	"browser-mcp/internal/domain/entity"
)

type BrowserEngine interface {
	Name() string
	Launch(ctx context.Context) (Browser, error)
}

type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

type Page interface {
	Navigate(ctx context.Context, url string) error
	Locate(sel entity.Selector) Locator
	Screenshot(ctx context.Context, fullPage bool) ([]byte, error)
	Evaluate(ctx context.Context, script string) (*entity.Evaluation, error)

	// OnConsole delivers console messages in emission order from a single
	// goroutine.
	OnConsole(fn func(entity.ConsoleEntry))

	URL() string
	Close() error
}

// Locator acts on the single element its selector matches. Actions fail
// with *entity.StrictModeViolationError when more than one element matches;
// First drops that requirement.
type Locator interface {
	Click(ctx context.Context) error
	Type(ctx context.Context, text string, delay time.Duration) error
	Hover(ctx context.Context) error
	SelectOption(ctx context.Context, value string) error
	Screenshot(ctx context.Context) ([]byte, error)
	First() Locator
}
