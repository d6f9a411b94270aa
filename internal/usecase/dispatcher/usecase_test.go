package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"browser-mcp/internal/adapter/tool"
	"browser-mcp/internal/application/service"
	"browser-mcp/internal/domain/entity"
	"browser-mcp/internal/infrastructure/artifact"
	"browser-mcp/internal/infrastructure/logger"
	"browser-mcp/internal/testutil/fakebrowser"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUseCase(t *testing.T) (*UseCase, *fakebrowser.Engine) {
	t.Helper()
	engine := fakebrowser.NewEngine()
	log := logger.NewNop()
	session := service.NewBrowserSession(engine, service.NewConsoleLogSink(), log)
	resolver := service.NewSelectorResolver(0, log)
	registry := service.NewToolRegistry(tool.All(session, resolver, artifact.NewMemoryStore(), 0, log)...)

	uc, err := New(registry, log)
	require.NoError(t, err)
	return uc, engine
}

func TestDispatch_UnknownTool(t *testing.T) {
	uc, engine := newUseCase(t)

	res := uc.Dispatch(context.Background(), "browser_teleport", nil)

	assert.True(t, res.IsError)
	assert.Equal(t, "unknown tool 'browser_teleport'", res.Text())
	assert.Zero(t, engine.Launches)
}

func TestDispatch_InvalidArgumentsNeverReachTheBrowser(t *testing.T) {
	uc, engine := newUseCase(t)
	ctx := context.Background()

	res := uc.Dispatch(ctx, entity.ToolBrowserClick, json.RawMessage(`{}`))
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text(), "browser_click: invalid arguments")
	assert.Contains(t, res.Text(), "selector")

	res = uc.Dispatch(ctx, entity.ToolBrowserScreenshot, json.RawMessage(`{"name":"x","fullPage":"yes"}`))
	assert.True(t, res.IsError)

	res = uc.Dispatch(ctx, entity.ToolBrowserNavigate, json.RawMessage(`{"url":`))
	assert.True(t, res.IsError)

	assert.Zero(t, engine.Launches)
}

func TestDispatch_FailuresArePrefixedWithToolName(t *testing.T) {
	uc, _ := newUseCase(t)

	res := uc.Dispatch(context.Background(), entity.ToolBrowserClick, json.RawMessage(`{"selector":"#missing"}`))

	assert.True(t, res.IsError)
	assert.Contains(t, res.Text(), "browser_click: Failed to click #missing: ")
}

func TestDispatch_LaunchFailureIsSticky(t *testing.T) {
	uc, engine := newUseCase(t)
	engine.LaunchErr = errors.New("chromium not found")
	ctx := context.Background()

	first := uc.Dispatch(ctx, entity.ToolBrowserNavigate, json.RawMessage(`{"url":"https://example.com"}`))
	second := uc.Dispatch(ctx, entity.ToolBrowserNavigate, json.RawMessage(`{"url":"https://example.com"}`))

	assert.True(t, first.IsError)
	assert.Equal(t, first.Text(), second.Text())
	assert.Contains(t, first.Text(), "chromium not found")
	assert.Equal(t, 1, engine.Launches)
}

func TestDispatch_ClearAcceptsMissingPlaceholder(t *testing.T) {
	uc, _ := newUseCase(t)

	res := uc.Dispatch(context.Background(), entity.ToolClearScreenshots, nil)

	assert.False(t, res.IsError)
	assert.Equal(t, "All screenshots cleared successfully", res.Text())
}

func TestDispatch_Success(t *testing.T) {
	uc, engine := newUseCase(t)
	engine.Browser.Page.Matches["a"] = 4

	res := uc.Dispatch(context.Background(), entity.ToolBrowserHover, json.RawMessage(`{"selector":"a"}`))

	assert.False(t, res.IsError)
	assert.Equal(t, "Hovered a", res.Text())
}

// slowTool records how many executions overlap.
type slowTool struct {
	active  atomic.Int32
	maxSeen atomic.Int32
}

func (s *slowTool) Name() entity.ToolName { return "slow" }
func (s *slowTool) Description() string   { return "sleeps" }
func (s *slowTool) Parameters() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object"}
}
func (s *slowTool) Execute(ctx context.Context, _ json.RawMessage) (*entity.CommandResult, error) {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		m := s.maxSeen.Load()
		if n <= m || s.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return entity.TextResult("ok"), nil
}

func TestDispatch_SerializesCommands(t *testing.T) {
	slow := &slowTool{}
	uc, err := New(service.NewToolRegistry(slow), logger.NewNop())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			uc.Dispatch(context.Background(), "slow", nil)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, slow.maxSeen.Load())
}

func TestDefinitions(t *testing.T) {
	uc, _ := newUseCase(t)
	defs := uc.Definitions()

	require.Len(t, defs, 12)
	assert.Equal(t, entity.ToolBrowserNavigate, defs[0].Name)
	assert.Equal(t, "Navigate to a URL", defs[0].Description)
}
