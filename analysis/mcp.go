package analysis

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mittpunkt/blcwrtr/kit"
)

// RegisterMCP registers analysis tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerGetPublisherProfileTool(srv)
	s.registerGetAnchorPortfolioTool(srv)
	s.registerAnalyzePortfolioTool(srv)
	s.registerLogEventTool(srv)
	s.registerGetEventsTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// --- get_publisher_profile ---

type getPublisherProfileRequest struct {
	Domain string `json:"domain"`
}

func (s *Service) registerGetPublisherProfileTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "analysis_get_publisher_profile",
		Description: "Get a publisher's voice profile: tone, readability range, link policy and example articles.",
		InputSchema: inputSchema(map[string]any{
			"domain": map[string]any{"type": "string", "description": "Publication domain (e.g. slektforskning-bloggen.se)"},
		}, []string{"domain"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		rr := req.(*getPublisherProfileRequest)
		return s.GetPublisherProfile(ctx, rr.Domain)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var rr getPublisherProfileRequest
		if err := json.Unmarshal(req.Params.Arguments, &rr); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &rr}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- get_anchor_portfolio ---

type getAnchorPortfolioRequest struct {
	TargetURL   string `json:"target_url"`
	Recalculate bool   `json:"recalculate,omitempty"`
}

func (s *Service) registerGetAnchorPortfolioTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "analysis_get_anchor_portfolio",
		Description: "Get the anchor-type mix and risk level for a target URL's domain.",
		InputSchema: inputSchema(map[string]any{
			"target_url":  map[string]any{"type": "string", "description": "Target URL or bare domain"},
			"recalculate": map[string]any{"type": "boolean", "description": "Recompute risk from the stored counts"},
		}, []string{"target_url"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		rr := req.(*getAnchorPortfolioRequest)
		return s.GetAnchorPortfolio(ctx, rr.TargetURL, rr.Recalculate)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var rr getAnchorPortfolioRequest
		if err := json.Unmarshal(req.Params.Arguments, &rr); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &rr}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- analyze_portfolio ---

type analyzePortfolioRequest struct {
	TargetDomain string `json:"target_domain"`
	OldMix       Mix    `json:"old_mix"`
	NewMix       Mix    `json:"new_mix"`
	Save         bool   `json:"save,omitempty"`
}

func (s *Service) registerAnalyzePortfolioTool(srv *mcp.Server) {
	mixSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"exact":   map[string]any{"type": "integer"},
			"partial": map[string]any{"type": "integer"},
			"brand":   map[string]any{"type": "integer"},
			"generic": map[string]any{"type": "integer"},
		},
	}

	tool := &mcp.Tool{
		Name:        "analysis_analyze_portfolio",
		Description: "Compare the risk of an old and new anchor mix for a target domain, with adjustment recommendations.",
		InputSchema: inputSchema(map[string]any{
			"target_domain": map[string]any{"type": "string", "description": "Target domain"},
			"old_mix":       mixSchema,
			"new_mix":       mixSchema,
			"save":          map[string]any{"type": "boolean", "description": "Persist the new mix and its risk"},
		}, []string{"target_domain", "new_mix"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		rr := req.(*analyzePortfolioRequest)
		return s.AnalyzePortfolio(ctx, rr.TargetDomain, rr.OldMix, rr.NewMix, rr.Save)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var rr analyzePortfolioRequest
		if err := json.Unmarshal(req.Params.Arguments, &rr); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &rr}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- log_event ---

type logEventRequest struct {
	Type     string          `json:"type"`
	OrderRef string          `json:"order_ref,omitempty"`
	Status   string          `json:"status,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

func (s *Service) registerLogEventTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "analysis_log_event",
		Description: "Append a pipeline event to the audit log.",
		InputSchema: inputSchema(map[string]any{
			"type":      map[string]any{"type": "string", "enum": []any{"order_received", "preflight_complete", "qc_passed", "qc_failed", "delivered", "error"}},
			"order_ref": map[string]any{"type": "string", "description": "Order reference the event belongs to"},
			"status":    map[string]any{"type": "string", "description": "Step outcome (e.g. success, error)"},
			"payload":   map[string]any{"type": "object", "description": "Arbitrary event payload"},
		}, []string{"type"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		rr := req.(*logEventRequest)
		var payload any
		if len(rr.Payload) > 0 {
			payload = rr.Payload
		}
		e, err := s.LogEvent(ctx, rr.Type, rr.OrderRef, rr.Status, payload)
		if err != nil {
			return nil, err
		}
		return map[string]any{"ok": true, "event_id": e.ID, "timestamp": e.TS}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var rr logEventRequest
		if err := json.Unmarshal(req.Params.Arguments, &rr); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &rr}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- get_events ---

type getEventsRequest struct {
	OrderRef string `json:"order_ref,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

func (s *Service) registerGetEventsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "analysis_get_events",
		Description: "List audit log events newest first, optionally filtered by order reference.",
		InputSchema: inputSchema(map[string]any{
			"order_ref": map[string]any{"type": "string", "description": "Filter to one order"},
			"limit":     map[string]any{"type": "integer", "description": "Max results (default 50)"},
		}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		rr := req.(*getEventsRequest)
		events, err := s.Events(ctx, rr.OrderRef, rr.Limit)
		if err != nil {
			return nil, err
		}
		if events == nil {
			events = []*Event{}
		}
		return events, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var rr getEventsRequest
		if err := json.Unmarshal(req.Params.Arguments, &rr); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &rr}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
