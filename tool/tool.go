// Package tool implements the function-calling subsystem: the Tool contract,
// the FunctionTool adapter with argument validation, the provider schema
// contract check, and the five domain tools that mutate workflow state
// (profile recording and completion, grant saving, draft saving, web lookup).
package tool

import (
	"fmt"

	"github.com/civicgrant/grantflow/core"
	"github.com/civicgrant/grantflow/internal/util"
)

// Tool is a capability an agent can expose to the model. Implementations
// receive a ToolContext giving scoped access to the turn's working state;
// structured effects go through ToolContext.SetState while the returned value
// is the short string fed back into the generation stream.
type Tool interface {
	// Name returns the unique identifier the model calls (snake_case).
	Name() string

	// Description is surfaced to the model to explain when to call the tool.
	Description() string

	// Parameters returns the JSON schema for the accepted arguments. Schemas
	// must satisfy VerifySchema before the tool is registered with an agent.
	Parameters() map[string]interface{}

	// Call executes the tool with already-deserialized arguments.
	Call(toolCtx *core.ToolContext, args map[string]interface{}) (interface{}, error)
}

// ValidationError reports an argument that failed schema validation.
type ValidationError = util.ValidationError

// ToolError is the uniform error type surfaced by tool execution.
type ToolError struct {
	Tool    string      `json:"tool"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the given details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
