package qc

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mittpunkt/blcwrtr/kit"
	"github.com/mittpunkt/blcwrtr/preflight"
)

// RegisterMCP registers the draft validation tool on an MCP server.
func (v *Validator) RegisterMCP(srv *mcp.Server) {
	v.registerValidateTool(srv)
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

type validateRequest struct {
	ArticleText string          `json:"article_text"`
	Plan        *preflight.Plan `json:"plan,omitempty"`
	AutoFix     bool            `json:"auto_fix,omitempty"`
	StrictMode  bool            `json:"strict_mode,omitempty"`
}

func (v *Validator) registerValidateTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "qc_validate",
		Description: "Score a draft article against its placement plan: structure, anchor placement, trust citations, LSI coverage, tone and compliance. Returns a verdict with issues and recommendations.",
		InputSchema: inputSchema(map[string]any{
			"article_text": map[string]any{"type": "string", "description": "Draft article in markdown"},
			"plan":         map[string]any{"type": "object", "description": "Placement plan from preflight_build; without it only generic checks run"},
			"auto_fix":     map[string]any{"type": "boolean", "description": "Apply at most one safe automatic fix before the verdict (default false)"},
			"strict_mode":  map[string]any{"type": "boolean", "description": "Accepted for compatibility; has no effect"},
		}, []string{"article_text"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		rr := req.(*validateRequest)
		if strings.TrimSpace(rr.ArticleText) == "" {
			return nil, kit.NewFault(kit.ErrArticleEmpty, "article_text is empty", "Provide the draft article in markdown")
		}
		if rr.Plan != nil {
			if err := rr.Plan.Validate(); err != nil {
				return nil, kit.NewFault(kit.ErrPlanInvalid, err.Error(), "Rebuild the plan with preflight_build")
			}
		}

		return v.Validate(ctx, Request{
			ArticleText: rr.ArticleText,
			AutoFix:     rr.AutoFix,
			StrictMode:  rr.StrictMode,
		}, rr.Plan)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var rr validateRequest
		if err := json.Unmarshal(req.Params.Arguments, &rr); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &rr}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
