package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"browser-mcp/internal/application/port/input"
	"browser-mcp/internal/application/port/output"
	"browser-mcp/internal/domain/entity"
	"browser-mcp/internal/infrastructure/metrics"

	"github.com/google/jsonschema-go/jsonschema"
)

var _ input.CommandDispatcher = (*UseCase)(nil)

const maxLoggedArgs = 2000

// UseCase runs commands one at a time in arrival order. Every failure,
// including unknown commands and schema violations, comes back as an
// error result; nothing is retried here.
type UseCase struct {
	mu sync.Mutex

	tools   output.ToolRegistry
	schemas map[entity.ToolName]*jsonschema.Resolved
	logger  output.LoggerPort
}

func New(tools output.ToolRegistry, logger output.LoggerPort) (*UseCase, error) {
	schemas := make(map[entity.ToolName]*jsonschema.Resolved)
	for _, tool := range tools.All() {
		resolved, err := tool.Parameters().Resolve(nil)
		if err != nil {
			return nil, fmt.Errorf("resolve schema for %s: %w", tool.Name(), err)
		}
		schemas[tool.Name()] = resolved
	}

	return &UseCase{
		tools:   tools,
		schemas: schemas,
		logger:  logger.WithField("component", "dispatcher"),
	}, nil
}

func (uc *UseCase) Definitions() []entity.ToolDefinition {
	return uc.tools.Definitions()
}

func (uc *UseCase) Dispatch(ctx context.Context, name entity.ToolName, arguments json.RawMessage) *entity.CommandResult {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	start := time.Now()
	res := uc.dispatch(ctx, name, arguments)
	metrics.ObserveCommand(name.String(), res.IsError, time.Since(start))
	return res
}

func (uc *UseCase) dispatch(ctx context.Context, name entity.ToolName, arguments json.RawMessage) *entity.CommandResult {
	tool, ok := uc.tools.Get(name)
	if !ok {
		uc.logger.Warn("Unknown tool called", "name", name)
		return entity.ErrorResult(fmt.Sprintf("unknown tool '%s'", name))
	}

	if len(arguments) == 0 || string(arguments) == "null" {
		arguments = json.RawMessage("{}")
	}
	if err := uc.validate(name, arguments); err != nil {
		uc.logger.Warn("Invalid arguments", "name", name, "error", err)
		return entity.ErrorResult(fmt.Sprintf("%s: %v", name, err))
	}

	uc.logger.Info("Executing tool", "name", name, "args", truncate(string(arguments)))

	start := time.Now()
	result, err := tool.Execute(ctx, arguments)
	if err != nil {
		uc.logger.Error("Tool execution failed", "name", name, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return entity.ErrorResult(fmt.Sprintf("%s: %v", name, err))
	}

	uc.logger.Debug("Tool completed", "name", name, "duration_ms", time.Since(start).Milliseconds(), "blocks", len(result.Content))
	return result
}

func (uc *UseCase) validate(name entity.ToolName, arguments json.RawMessage) error {
	var instance any
	if err := json.Unmarshal(arguments, &instance); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrInvalidArguments, err)
	}
	resolved, ok := uc.schemas[name]
	if !ok {
		return nil
	}
	if err := resolved.Validate(instance); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrInvalidArguments, err)
	}
	return nil
}

func truncate(s string) string {
	if len(s) > maxLoggedArgs {
		return s[:maxLoggedArgs] + "... (truncated)"
	}
	return s
}
