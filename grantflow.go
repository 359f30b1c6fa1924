// Package grantflow provides a high-level façade over the turn orchestrator
// and its three sub-agents (profile intake, grant research, application
// drafting). Most applications interact with this package by:
//  1. Creating an Assistant via New() with a model implementation
//  2. Feeding user turns to Turn() together with the client-carried state
//  3. Persisting the returned WorkflowState client-side until the next turn
//
// The façade delegates routing to orchestrator.Orchestrator while keeping
// setup ergonomics concise. Defaults are safe for local development: without
// search credentials the lookup service is a deterministic stub.
package grantflow

import (
	"context"

	"github.com/civicgrant/grantflow/agent"
	"github.com/civicgrant/grantflow/logging"
	"github.com/civicgrant/grantflow/model"
	"github.com/civicgrant/grantflow/orchestrator"
	"github.com/civicgrant/grantflow/search"
	"github.com/civicgrant/grantflow/state"
)

// Options configures the Assistant.
type Options struct {
	// SearchService is the lookup backend (defaults to the in-memory stub)
	SearchService search.Service
	// Completeness is the predicate gating the intake-to-research transition
	Completeness state.Completeness
	// MaxModelCalls bounds the generate/tool loop per user turn
	MaxModelCalls int
	// Logger receives structured turn, routing and tool logs
	Logger logging.Logger
}

// Assistant bundles the configured sub-agents behind one Turn entrypoint.
type Assistant struct {
	orch *orchestrator.Orchestrator
}

// New wires the three sub-agents around the given model and returns the
// assembled assistant.
func New(llm model.Model, optFns ...func(o *Options)) (*Assistant, error) {
	opts := Options{
		SearchService: search.NewStub(),
		Completeness:  state.DefaultCompleteness(),
		MaxModelCalls: 8,
		Logger:        logging.NewDefaultSlogLogger(),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	collector, err := agent.NewProfileCollector(llm, opts.SearchService, opts.Completeness)
	if err != nil {
		return nil, err
	}
	finder, err := agent.NewGrantFinder(llm, opts.SearchService)
	if err != nil {
		return nil, err
	}
	writer, err := agent.NewGrantWriter(llm)
	if err != nil {
		return nil, err
	}

	orch := orchestrator.New(collector, finder, writer, func(o *orchestrator.Options) {
		o.MaxModelCalls = opts.MaxModelCalls
		o.Completeness = opts.Completeness
		o.Logger = opts.Logger
	})

	return &Assistant{orch: orch}, nil
}

// Turn processes one user message and returns the filtered events plus the
// state the caller must carry into the next turn.
func (a *Assistant) Turn(ctx context.Context, req orchestrator.Request) (*orchestrator.Result, error) {
	return a.orch.Turn(ctx, req)
}

// Orchestrator exposes the underlying router, e.g. for mounting it behind
// the HTTP server.
func (a *Assistant) Orchestrator() *orchestrator.Orchestrator { return a.orch }
