package rod

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"browser-mcp/internal/application/port/output"
	"browser-mcp/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ysmood/gson"
)

func serveHTML(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, html)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestPage(t *testing.T, html string) output.Page {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	cfg := DefaultConfig()
	cfg.NoSandbox = true
	cfg.Timeout = 3 * time.Second

	ctx := context.Background()
	b, err := NewEngine(cfg).Launch(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	p, err := b.NewPage(ctx)
	require.NoError(t, err)

	require.NoError(t, p.Navigate(ctx, serveHTML(t, html).URL))
	return p
}

func TestNewEngine_DefaultsTimeout(t *testing.T) {
	e := NewEngine(Config{})
	assert.Equal(t, defaultTimeout, e.cfg.Timeout)
	assert.Equal(t, "chromium", e.Name())
}

func TestEvaluation(t *testing.T) {
	ev, err := evaluation(gson.New(map[string]any{
		"logs": []any{"[log] a 1", "[warn] b"},
		"json": "{\n  \"x\": 1\n}",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"[log] a 1", "[warn] b"}, ev.Logs)
	assert.Equal(t, "{\n  \"x\": 1\n}", string(ev.Value))

	ev, err = evaluation(gson.New(map[string]any{"logs": []any{}}))
	require.NoError(t, err)
	assert.Nil(t, ev.Value)
	assert.Empty(t, ev.Logs)

	_, err = evaluation(gson.New(map[string]any{"logs": []any{}, "error": "boom"}))
	var scriptErr *entity.ScriptExecutionError
	require.ErrorAs(t, err, &scriptErr)
	assert.Equal(t, "boom", scriptErr.Message)
}

func TestPage_NavigateAndURL(t *testing.T) {
	srv := serveHTML(t, BasicHTML)
	p := newTestPage(t, BasicHTML)

	require.NoError(t, p.Navigate(context.Background(), srv.URL))
	assert.Equal(t, srv.URL+"/", p.URL())
}

func TestPage_ConsoleEntriesInOrder(t *testing.T) {
	srv := serveHTML(t, BasicHTML)
	p := newTestPage(t, "<html></html>")

	var mu sync.Mutex
	var got []string
	p.OnConsole(func(e entity.ConsoleEntry) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.String())
	})

	require.NoError(t, p.Navigate(context.Background(), srv.URL))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, 2*time.Second, 50*time.Millisecond)
	assert.Equal(t, []string{"[log] page ready", "[warning] careful"}, got)
}

func TestLocator_StrictModeViolation(t *testing.T) {
	p := newTestPage(t, InteractiveHTML)
	ctx := context.Background()

	err := p.Locate(entity.CSS(".btn")).Click(ctx)
	require.Error(t, err)
	var strict *entity.StrictModeViolationError
	require.True(t, errors.As(err, &strict))
	assert.Equal(t, 2, strict.Count)

	require.NoError(t, p.Locate(entity.CSS(".btn")).First().Click(ctx))
	ev, err := p.Evaluate(ctx, `document.getElementById('result').textContent`)
	require.NoError(t, err)
	assert.Equal(t, `"first"`, string(ev.Value))
}

func TestLocator_TextMatchIsNormalized(t *testing.T) {
	p := newTestPage(t, InteractiveHTML)

	require.NoError(t, p.Locate(entity.Text("say hello")).Hover(context.Background()))
}

func TestLocator_TypeAndSelect(t *testing.T) {
	p := newTestPage(t, FormHTML)
	ctx := context.Background()

	require.NoError(t, p.Locate(entity.CSS("#username")).Type(ctx, "bob", 5*time.Millisecond))
	require.NoError(t, p.Locate(entity.CSS("#color")).SelectOption(ctx, "Green"))

	ev, err := p.Evaluate(ctx, `[document.getElementById('username').value, document.getElementById('color').value]`)
	require.NoError(t, err)
	assert.JSONEq(t, `["bob","g"]`, string(ev.Value))
}

func TestLocator_MissingElementTimesOut(t *testing.T) {
	p := newTestPage(t, BasicHTML)

	err := p.Locate(entity.CSS("#nope")).Click(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, entity.ErrStrictModeViolation))
}

func TestPage_EvaluateCapturesConsoleAndErrors(t *testing.T) {
	p := newTestPage(t, BasicHTML)
	ctx := context.Background()

	ev, err := p.Evaluate(ctx, `console.log("a", 1); undefined`)
	require.NoError(t, err)
	assert.Nil(t, ev.Value)
	assert.Equal(t, []string{"[log] a 1"}, ev.Logs)

	_, err = p.Evaluate(ctx, `missingFn()`)
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrScriptExecution)
	assert.Contains(t, err.Error(), "missingFn")

	// console must be restored after a throw
	ev, err = p.Evaluate(ctx, `typeof console.log === "function" && !console.log.toString().includes("logs.push")`)
	require.NoError(t, err)
	assert.Equal(t, "true", string(ev.Value))
}

func TestPage_Screenshots(t *testing.T) {
	p := newTestPage(t, BasicHTML)
	ctx := context.Background()

	png := []byte("\x89PNG")

	data, err := p.Screenshot(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, png, data[:4])

	data, err = p.Locate(entity.CSS("h1")).Screenshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, png, data[:4])
}
