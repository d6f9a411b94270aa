package output

import (
	"context"
	"encoding/json"

	"browser-mcp/internal/domain/entity"

	"github.com/google/jsonschema-go/jsonschema"
)

// ToolPort is one command. Arguments reach Execute already validated
// against Parameters; a returned error becomes a failure result.
type ToolPort interface {
	Name() entity.ToolName
	Description() string
	Parameters() *jsonschema.Schema
	Execute(ctx context.Context, arguments json.RawMessage) (*entity.CommandResult, error)
}

// ToolRegistry lists tools in registration order.
type ToolRegistry interface {
	Register(tool ToolPort)
	Get(name entity.ToolName) (ToolPort, bool)
	All() []ToolPort
	Definitions() []entity.ToolDefinition
}
