package driven

import "context"

// ToolCaller invokes a named tool on a capability worker and returns the
// worker's textual result. Implementations own the session lifecycle for
// each call; cancelling the context tears the session down.
type ToolCaller interface {
	// CallTool runs a single tool invocation against the given capability.
	// The returned string is the concatenated text content of the result.
	CallTool(ctx context.Context, capability, tool string, args map[string]any) (string, error)
}
