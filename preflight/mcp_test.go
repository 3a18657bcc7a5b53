package preflight

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mittpunkt/blcwrtr/kit"
)

var testImpl = &mcp.Implementation{Name: "preflight-test", Version: "0.1.0"}

func mcpSession(t *testing.T, b *Builder) *mcp.ClientSession {
	t.Helper()

	srv := mcp.NewServer(testImpl, nil)
	b.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()

	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if err := result.GetError(); err != nil {
		t.Fatalf("CallTool(%s) tool error: %v", name, err)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent, got %T", name, result.Content[0])
	}
	return tc.Text
}

func TestMCP_BuildReturnsPlanAndPrompt(t *testing.T) {
	session := mcpSession(t, seededBuilder(7))

	text := callTool(t, session, "preflight_build", map[string]any{
		"order_ref":          "BL-2024-0042",
		"publication_domain": "slektforskning-bloggen.se",
		"target_url":         "https://casino-kungen.com/spela",
		"anchor_text":        "Casino Kungen",
		"topic":              "Guide: så undviker du vanliga misstag i släktforskning",
		"constraints":        map[string]any{"compliance": []string{"gambling"}},
	})

	var result BuildResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.Plan == nil || result.Plan.OrderRef != "BL-2024-0042" {
		t.Fatalf("plan = %+v", result.Plan)
	}
	if !result.Validation.IsValid {
		t.Errorf("validation = %+v", result.Validation)
	}
	if result.WriterPrompt == "" {
		t.Error("writer prompt missing")
	}
	// "Casino Kungen" is two words with one brand token, so it classifies
	// as partial, same as TestAnchorClassification.
	if result.Plan.AnchorPlan.Type != "partial" {
		t.Errorf("anchor type = %q, want partial", result.Plan.AnchorPlan.Type)
	}
}

func TestMCP_BuildRejectsInvalidOrder(t *testing.T) {
	session := mcpSession(t, seededBuilder(7))

	text := callTool(t, session, "preflight_build", map[string]any{
		"order_ref":  "BL-1",
		"target_url": "inte-en-url",
	})

	var envelope struct {
		Error *kit.Fault `json:"error"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if envelope.Error == nil || envelope.Error.Code != kit.ErrOrderInvalid {
		t.Errorf("envelope = %+v, want %s", envelope.Error, kit.ErrOrderInvalid)
	}
}
