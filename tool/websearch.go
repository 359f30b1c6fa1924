package tool

import (
	"github.com/civicgrant/grantflow/core"
	"github.com/civicgrant/grantflow/search"
)

// NewSearchWebTool returns the search_web tool backed by the given lookup
// service. Lookup failures are reported to the model as a short result string
// rather than an error; a flaky upstream should degrade one answer, not abort
// the turn.
func NewSearchWebTool(svc search.Service) *FunctionTool {
	return NewFunctionTool(
		"search_web",
		"Search the web for current information such as grant programs, deadlines and funding amounts. Returns a plain-text list of result titles, snippets and links.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Search query",
				},
			},
			"required": []string{"query"},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			query, _ := args["query"].(string)

			results, err := svc.Search(toolCtx.Context(), query)
			if err != nil {
				toolCtx.Logger().Warn("search.failed", "query", query, "error", err.Error())

				return "The search could not be completed right now. Continue with the information already available, or try a different query.", nil
			}

			return search.FormatResults(results), nil
		},
	)
}
