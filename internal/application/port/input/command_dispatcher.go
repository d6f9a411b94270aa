package input

import (
	"context"
	"encoding/json"

	"browser-mcp/internal/domain/entity"
)

// CommandDispatcher never returns an error: failures come back as results
// with IsError set.
type CommandDispatcher interface {
	Dispatch(ctx context.Context, name entity.ToolName, arguments json.RawMessage) *entity.CommandResult
	Definitions() []entity.ToolDefinition
}
