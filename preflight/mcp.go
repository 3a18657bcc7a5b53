package preflight

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mittpunkt/blcwrtr/kit"
)

// RegisterMCP registers the plan builder tool on an MCP server.
func (b *Builder) RegisterMCP(srv *mcp.Server) {
	b.registerBuildTool(srv)
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

func (b *Builder) registerBuildTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "preflight_build",
		Description: "Build a placement plan from an order: query cluster, intents, semantic midpoint, anchor plan, LSI window, trust sources and the writer prompt.",
		InputSchema: inputSchema(map[string]any{
			"order_ref":          map[string]any{"type": "string", "description": "Order reference (e.g. BL-2024-0042)"},
			"customer_id":        map[string]any{"type": "string", "description": "Customer identifier"},
			"publication_domain": map[string]any{"type": "string", "description": "Domain the article will be published on"},
			"target_url":         map[string]any{"type": "string", "description": "URL the anchor links to"},
			"anchor_text":        map[string]any{"type": "string", "description": "Requested anchor text"},
			"topic":              map[string]any{"type": "string", "description": "Article topic"},
			"constraints": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"word_count": map[string]any{"type": "integer", "description": "Target word count (default 800)"},
					"tone":       map[string]any{"type": "string", "description": "Requested tone (default informativ)"},
					"compliance": map[string]any{"type": "array", "items": map[string]any{"type": "string", "enum": []any{"gambling", "finance", "health"}}},
				},
			},
		}, []string{"order_ref", "publication_domain", "target_url", "anchor_text", "topic"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		order := req.(*Order)
		if err := order.Validate(); err != nil {
			return nil, kit.NewFault(kit.ErrOrderInvalid, err.Error(), "Check the order fields against the schema")
		}
		return b.Build(ctx, order)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var order Order
		if err := json.Unmarshal(req.Params.Arguments, &order); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &order}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
