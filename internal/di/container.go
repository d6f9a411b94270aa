package di

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"browser-mcp/internal/adapter/httpapi"
	"browser-mcp/internal/adapter/mcpserver"
	"browser-mcp/internal/adapter/tool"
	"browser-mcp/internal/application/port/input"
	"browser-mcp/internal/application/port/output"
	"browser-mcp/internal/application/service"
	"browser-mcp/internal/infrastructure/artifact"
	"browser-mcp/internal/infrastructure/browser/playwright"
	"browser-mcp/internal/infrastructure/browser/rod"
	"browser-mcp/internal/infrastructure/logger"
	"browser-mcp/internal/usecase/dispatcher"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	EngineRod        = "rod"
	EnginePlaywright = "playwright"

	StoreLocal  = "local"
	StoreRemote = "remote"
	StoreMemory = "memory"

	DefaultPort            = 3000
	DefaultImageServerPort = 3001
)

type Config struct {
	Engine     string
	Rod        rod.Config
	Playwright playwright.Config
	FillDelay  time.Duration

	ArtifactStore    string
	ImageServer      string
	ImageServerToken string
	ScreenshotsDir   string
	// MaxWidth downscales screenshots wider than it. Zero keeps them as taken.
	MaxWidth int

	// Server is the embedded screenshot server used by the local store.
	Server httpapi.Config
	Log    logger.Config
}

func ConfigFromEnv(e output.ConfigPort) Config {
	rodCfg := rod.DefaultConfig()
	rodCfg.Headless = e.GetBool("BROWSER_HEADLESS", rodCfg.Headless)
	rodCfg.NoSandbox = e.GetBool("BROWSER_NO_SANDBOX", false)
	rodCfg.Bin = e.Get("BROWSER_BIN")
	rodCfg.Timeout = e.GetDuration("BROWSER_TIMEOUT", rodCfg.Timeout)

	pwCfg := playwright.DefaultConfig()
	pwCfg.Browser = e.GetWithDefault("PLAYWRIGHT_BROWSER", pwCfg.Browser)
	pwCfg.Headless = rodCfg.Headless
	pwCfg.Install = e.GetBool("PLAYWRIGHT_INSTALL", false)
	pwCfg.ExecutablePath = rodCfg.Bin
	pwCfg.Timeout = rodCfg.Timeout

	imageServer := strings.TrimRight(e.Get("IMAGE_SERVER"), "/")
	store := StoreLocal
	if imageServer != "" {
		store = StoreRemote
	}

	return Config{
		Engine:           strings.ToLower(e.GetWithDefault("BROWSER_ENGINE", EngineRod)),
		Rod:              rodCfg,
		Playwright:       pwCfg,
		FillDelay:        e.GetDuration("FILL_DELAY", service.DefaultFillDelay),
		ArtifactStore:    strings.ToLower(e.GetWithDefault("ARTIFACT_STORE", store)),
		ImageServer:      imageServer,
		ImageServerToken: e.Get("IMAGE_SERVER_TOKEN"),
		ScreenshotsDir:   e.GetWithDefault("SCREENSHOTS_DIR", filepath.Join(os.TempDir(), "mcp-playwright-screenshots")),
		MaxWidth:         e.GetInt("SCREENSHOT_MAX_WIDTH", 0),
		Server: httpapi.Config{
			Host:           e.GetWithDefault("HOST", "localhost"),
			Port:           e.GetInt("PORT", DefaultPort),
			PublicURL:      strings.TrimRight(e.Get("PUBLIC_URL"), "/"),
			MaxConnections: e.GetInt("MAX_CONNECTIONS", 64),
		},
		Log: logConfigFromEnv(e),
	}
}

// ImageServerConfigFromEnv configures the standalone upload server, the
// counterpart of the remote store.
func ImageServerConfigFromEnv(e output.ConfigPort) (httpapi.Config, logger.Config) {
	return httpapi.Config{
		Host:           e.GetWithDefault("HOST", "localhost"),
		Port:           e.GetInt("PORT", DefaultImageServerPort),
		PublicURL:      strings.TrimRight(e.Get("PUBLIC_URL"), "/"),
		Token:          e.Get("IMAGE_SERVER_TOKEN"),
		MaxConnections: e.GetInt("MAX_CONNECTIONS", 64),
		Uploads:        artifact.NewDiskStore(e.GetWithDefault("UPLOADS_DIR", "uploads")),
	}, logConfigFromEnv(e)
}

func logConfigFromEnv(e output.ConfigPort) logger.Config {
	return logger.Config{
		Dir:     e.Get("LOG_DIR"),
		Level:   e.GetWithDefault("LOG_LEVEL", "info"),
		Console: e.GetBool("LOG_CONSOLE", true),
	}
}

type Container struct {
	Config     Config
	Logger     output.LoggerPort
	Console    *service.ConsoleLogSink
	Session    *service.BrowserSession
	Store      output.ArtifactStore
	Tools      output.ToolRegistry
	Dispatcher input.CommandDispatcher
	MCP        *mcp.Server
	// ArtifactServer serves local screenshots. Nil for other stores.
	ArtifactServer *httpapi.Server
	local          *artifact.LocalStore
}

type Option func(*options)

type options struct {
	engine output.BrowserEngine
	logger output.LoggerPort
}

// WithEngine replaces the configured browser engine.
func WithEngine(e output.BrowserEngine) Option {
	return func(o *options) { o.engine = e }
}

func WithLogger(l output.LoggerPort) Option {
	return func(o *options) { o.logger = l }
}

func NewContainer(cfg Config, opts ...Option) (*Container, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	log := o.logger
	if log == nil {
		l, err := logger.NewLoggerAdapter("browser-mcp", cfg.Log)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		log = l
	}

	engine := o.engine
	if engine == nil {
		e, err := newEngine(cfg)
		if err != nil {
			log.Close()
			return nil, err
		}
		engine = e
	}

	c := &Container{
		Config:  cfg,
		Logger:  log,
		Console: service.NewConsoleLogSink(),
	}

	store, err := c.newStore()
	if err != nil {
		log.Close()
		return nil, err
	}
	c.Store = store

	c.Session = service.NewBrowserSession(engine, c.Console, log)
	resolver := service.NewSelectorResolver(cfg.FillDelay, log)
	c.Tools = service.NewToolRegistry(tool.All(c.Session, resolver, store, cfg.MaxWidth, log)...)

	uc, err := dispatcher.New(c.Tools, log)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}
	c.Dispatcher = uc
	c.MCP = mcpserver.New(uc, c.Console, log)

	log.Info("container ready",
		"engine", engine.Name(),
		"artifact_store", cfg.ArtifactStore,
		"tools", len(c.Tools.All()))
	return c, nil
}

func newEngine(cfg Config) (output.BrowserEngine, error) {
	switch cfg.Engine {
	case "", EngineRod:
		return rod.NewEngine(cfg.Rod), nil
	case EnginePlaywright:
		return playwright.NewEngine(cfg.Playwright), nil
	default:
		return nil, fmt.Errorf("unknown browser engine %q", cfg.Engine)
	}
}

func (c *Container) newStore() (output.ArtifactStore, error) {
	switch c.Config.ArtifactStore {
	case "", StoreLocal:
		disk := artifact.NewDiskStore(c.Config.ScreenshotsDir)
		srvCfg := c.Config.Server
		srvCfg.Screenshots = disk
		c.ArtifactServer = httpapi.NewServer(srvCfg, c.Logger)
		c.local = artifact.NewLocalStore(disk, srvCfg.BaseURL(), artifact.WithLocalLogger(c.Logger.WithField("component", "local_store")))
		return c.local, nil
	case StoreRemote:
		return artifact.NewRemoteStore(c.Config.ImageServer, c.Config.ImageServerToken), nil
	case StoreMemory:
		return artifact.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown artifact store %q", c.Config.ArtifactStore)
	}
}

// ServeArtifacts runs the embedded screenshot server until ctx ends. It
// returns immediately when the store does not need one. A server failure is
// logged, noted on the console and marked on the local store, but does not
// stop the protocol loop.
func (c *Container) ServeArtifacts(ctx context.Context) error {
	if c.ArtifactServer == nil {
		return nil
	}
	err := c.ArtifactServer.Serve(ctx, func(addr net.Addr) {
		c.Console.Note(fmt.Sprintf("Screenshot server listening on %s", addr))
	})
	if err != nil {
		c.Logger.Error("screenshot server stopped", "error", err)
		c.Console.Note(fmt.Sprintf("Screenshot server failed: %v", err))
		if c.local != nil {
			c.local.MarkUnserved(err)
		}
	}
	return nil
}

// ServeMCP speaks the protocol on stdio until ctx ends or the client
// disconnects.
func (c *Container) ServeMCP(ctx context.Context) error {
	err := mcpserver.Serve(ctx, c.MCP)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *Container) Close(ctx context.Context) {
	if c.Session != nil {
		c.Session.Shutdown(ctx)
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}
