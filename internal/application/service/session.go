package service

import (
	"context"
	"sync"
	"time"

	"browser-mcp/internal/application/port/output"
	"browser-mcp/internal/domain/entity"
	"browser-mcp/internal/infrastructure/metrics"
)

// BrowserSession owns the single browser and page of the process. The
// browser is launched lazily by the first Ensure.
type BrowserSession struct {
	mu sync.Mutex

	engine output.BrowserEngine
	sink   *ConsoleLogSink
	logger output.LoggerPort

	state      entity.SessionState
	browser    output.Browser
	page       output.Page
	subscribed output.Page
	launchErr  error
	createdAt  time.Time
}

func NewBrowserSession(engine output.BrowserEngine, sink *ConsoleLogSink, logger output.LoggerPort) *BrowserSession {
	return &BrowserSession{
		engine: engine,
		sink:   sink,
		logger: logger.WithField("component", "browser_session"),
		state:  entity.SessionUninitialized,
	}
}

// Ensure returns the live page, launching the browser and opening the page
// as needed. A launch failure is sticky.
func (s *BrowserSession) Ensure(ctx context.Context) (output.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case entity.SessionClosed:
		return nil, entity.ErrSessionClosed
	case entity.SessionFailed:
		return nil, s.launchErr
	}

	if s.browser == nil {
		s.state = entity.SessionLaunching
		s.logger.Info("launching browser", "engine", s.engine.Name())

		b, err := s.engine.Launch(ctx)
		metrics.ObserveLaunch(s.engine.Name(), err)
		if err != nil {
			s.state = entity.SessionFailed
			s.launchErr = &entity.BrowserLaunchError{Engine: s.engine.Name(), Err: err}
			s.logger.Error("browser launch failed", "engine", s.engine.Name(), "error", err)
			return nil, s.launchErr
		}
		s.browser = b
		s.createdAt = time.Now()
		s.state = entity.SessionReady
	}

	if s.page == nil {
		p, err := s.browser.NewPage(ctx)
		if err != nil {
			s.logger.Warn("failed to open page", "error", err)
			return nil, err
		}
		s.page = p
	}

	if s.subscribed != s.page {
		s.page.OnConsole(s.sink.Record)
		s.subscribed = s.page
	}
	return s.page, nil
}

// Shutdown closes the page and then the browser. Failures are logged, not
// returned. Calling it again is a no-op.
func (s *BrowserSession) Shutdown(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == entity.SessionClosed {
		return
	}
	s.state = entity.SessionClosed

	if s.page != nil {
		if err := s.page.Close(); err != nil {
			s.logger.Warn("failed to close page", "error", err)
		}
		s.page = nil
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			s.logger.Warn("failed to close browser", "error", err)
		}
		s.browser = nil
		s.logger.Info("browser closed", "uptime", time.Since(s.createdAt).String())
	}
}

func (s *BrowserSession) State() entity.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CreatedAt is zero until a browser has been launched.
func (s *BrowserSession) CreatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createdAt
}
