// Package model defines the generation-service contract consumed by the
// sub-agents: a normalized Request/Response pair with streaming and
// function/tool calling, implemented by provider adapters (anthropic, openai)
// and by MockModel for tests.
package model
