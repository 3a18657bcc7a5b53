package registry

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mittpunkt/blcwrtr/idgen"
	"github.com/mittpunkt/blcwrtr/kit"
)

// RegisterMCP registers trust registry tools on an MCP server.
func (r *Registry) RegisterMCP(srv *mcp.Server) {
	r.registerSearchSourcesTool(srv)
	r.registerPublishSourceTool(srv)
	r.registerMarkCompetitorTool(srv)
	r.registerStatsTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// --- search_sources ---

type searchSourcesRequest struct {
	Levels             []string `json:"levels,omitempty"`
	IncludeCompetitors bool     `json:"include_competitors,omitempty"`
	Limit              int      `json:"limit,omitempty"`
}

func (r *Registry) registerSearchSourcesTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "registry_search_sources",
		Description: "Search citable trust sources by trust level. Competitor domains are excluded unless asked for.",
		InputSchema: inputSchema(map[string]any{
			"levels":              map[string]any{"type": "array", "items": map[string]any{"type": "string", "enum": []any{"T1", "T2", "T3"}}, "description": "Trust levels to include (default: all)"},
			"include_competitors": map[string]any{"type": "boolean", "description": "Include competitor-flagged domains"},
			"limit":               map[string]any{"type": "integer", "description": "Max results (default 20)"},
		}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		rr := req.(*searchSourcesRequest)
		if rr.Limit <= 0 {
			rr.Limit = 20
		}
		return r.SearchSources(ctx, rr.Levels, rr.IncludeCompetitors, rr.Limit)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var rr searchSourcesRequest
		if err := json.Unmarshal(req.Params.Arguments, &rr); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &rr}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- publish_source ---

type publishSourceRequest struct {
	Domain     string `json:"domain"`
	TrustLevel string `json:"trust_level,omitempty"`
	Pattern    string `json:"pattern,omitempty"`
	Competitor bool   `json:"competitor,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

func (r *Registry) registerPublishSourceTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "registry_publish_source",
		Description: "Publish a trust source to the registry. Creates or updates the entry for a domain.",
		InputSchema: inputSchema(map[string]any{
			"domain":      map[string]any{"type": "string", "description": "Source domain (e.g. riksarkivet.se)"},
			"trust_level": map[string]any{"type": "string", "enum": []any{"T1", "T2", "T3"}, "description": "Trust tier (default: T2)"},
			"pattern":     map[string]any{"type": "string", "enum": []any{"government", "news", "encyclopedia", "academic"}, "description": "Source kind, drives the citation rationale"},
			"competitor":  map[string]any{"type": "boolean", "description": "Flag the domain as a competitor"},
			"notes":       map[string]any{"type": "string", "description": "Editorial notes"},
		}, []string{"domain"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		rr := req.(*publishSourceRequest)
		level := rr.TrustLevel
		if level == "" {
			level = "T2"
		}
		src := &Source{
			ID:         idgen.New(),
			Domain:     rr.Domain,
			TrustLevel: level,
			Pattern:    rr.Pattern,
			Competitor: rr.Competitor,
			Notes:      rr.Notes,
		}
		if err := r.PublishSource(ctx, src); err != nil {
			return nil, err
		}
		return src, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var rr publishSourceRequest
		if err := json.Unmarshal(req.Params.Arguments, &rr); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &rr}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- mark_competitor ---

type markCompetitorRequest struct {
	Domain     string `json:"domain"`
	Competitor *bool  `json:"competitor,omitempty"`
}

func (r *Registry) registerMarkCompetitorTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "registry_mark_competitor",
		Description: "Flag or unflag a domain as a competitor. Competitor domains are never offered as trust sources.",
		InputSchema: inputSchema(map[string]any{
			"domain":     map[string]any{"type": "string", "description": "Domain to flag"},
			"competitor": map[string]any{"type": "boolean", "description": "Competitor status (default: true)"},
		}, []string{"domain"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		rr := req.(*markCompetitorRequest)
		competitor := true
		if rr.Competitor != nil {
			competitor = *rr.Competitor
		}
		if err := r.MarkCompetitor(ctx, rr.Domain, competitor); err != nil {
			return nil, err
		}
		return map[string]any{"domain": rr.Domain, "competitor": competitor}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var rr markCompetitorRequest
		if err := json.Unmarshal(req.Params.Arguments, &rr); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &rr}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- stats ---

func (r *Registry) registerStatsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "registry_stats",
		Description: "Get trust registry statistics: source count and competitor count.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		return r.Stats(ctx)
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
