// Package core provides the foundational domain types and execution contexts
// of the grantflow orchestration layer:
//
//   - Events (immutable communication + state-mutation records)
//   - Content parts (text, function calls, function responses)
//   - RunContext / ToolContext (scoped turn execution & tool sandboxing)
//
// The package keeps implementation concerns (routing, agents, transports) out
// of scope; those live in orchestrator, agent and server.
package core
