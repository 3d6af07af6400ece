package toolsrv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"minebridge/internal/actions"
	"minebridge/internal/protocol"
	"minebridge/internal/session"
)

// stubCore records calls and returns canned results.
type stubCore struct {
	lastAgent string
	lastMine  actions.MineRequest
	lastFeed  session.FeedConfig

	mineResult actions.MineResult
	mineErr    error

	connects    int
	disconnects int
	cancelled   bool
}

func (c *stubCore) Connect(ctx context.Context, agent string) error {
	c.lastAgent = agent
	c.connects++
	return nil
}

func (c *stubCore) Disconnect(ctx context.Context, agent string) error {
	c.lastAgent = agent
	c.disconnects++
	return nil
}

func (c *stubCore) Mine(ctx context.Context, agent string, req actions.MineRequest) (actions.MineResult, error) {
	c.lastAgent = agent
	c.lastMine = req
	return c.mineResult, c.mineErr
}

func (c *stubCore) Craft(ctx context.Context, agent string, req actions.CraftRequest) (actions.CraftResult, error) {
	c.lastAgent = agent
	return actions.CraftResult{}, nil
}

func (c *stubCore) Smelt(ctx context.Context, agent string, req actions.SmeltRequest) (actions.SmeltResult, error) {
	c.lastAgent = agent
	return actions.SmeltResult{}, nil
}

func (c *stubCore) Sleep(ctx context.Context, agent string, req actions.SleepRequest) (actions.SleepResult, error) {
	c.lastAgent = agent
	return actions.SleepResult{}, nil
}

func (c *stubCore) Deposit(ctx context.Context, agent string, req actions.TransferRequest) (actions.TransferResult, error) {
	c.lastAgent = agent
	return actions.TransferResult{}, nil
}

func (c *stubCore) Withdraw(ctx context.Context, agent string, req actions.TransferRequest) (actions.TransferResult, error) {
	c.lastAgent = agent
	return actions.TransferResult{}, nil
}

func (c *stubCore) Status(ctx context.Context, agent string) (actions.StatusResult, error) {
	c.lastAgent = agent
	return actions.StatusResult{Agent: agent, Connected: true}, nil
}

func (c *stubCore) Cancel(ctx context.Context, agent string) (bool, error) {
	c.lastAgent = agent
	return c.cancelled, nil
}

func (c *stubCore) ConfigureAutoFeed(ctx context.Context, agent string, cfg session.FeedConfig) error {
	c.lastAgent = agent
	c.lastFeed = cfg
	return nil
}

func (c *stubCore) ConfigureAutoShield(ctx context.Context, agent string, cfg session.ShieldConfig) error {
	return nil
}

func (c *stubCore) ConfigureSelfDefense(ctx context.Context, agent string, cfg session.DefenseConfig) error {
	return nil
}

func (c *stubCore) ReadChat(ctx context.Context, agent string, limit int) ([]protocol.ChatLine, error) {
	c.lastAgent = agent
	return []protocol.ChatLine{{Kind: "chat", Text: "hi"}}, nil
}

func (c *stubCore) Sessions() []string { return []string{"bot1"} }

func newTestServer(t *testing.T) (*stubCore, *httptest.Server) {
	t.Helper()
	core := &stubCore{}
	srv, err := NewServer(core, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return core, ts
}

func rpcCall(t *testing.T, ts *httptest.Server, agent, method string, params any) rpcResponse {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/rpc", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if agent != "" {
		req.Header.Set(HeaderAgentID, agent)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func callTool(t *testing.T, ts *httptest.Server, agent, tool string, args any) rpcResponse {
	t.Helper()
	return rpcCall(t, ts, agent, "tools/call", map[string]any{
		"name":      tool,
		"arguments": args,
	})
}

func TestToolsList_PublishesEveryTool(t *testing.T) {
	_, ts := newTestServer(t)

	resp := rpcCall(t, ts, "", "tools/list", nil)
	if resp.Error != nil {
		t.Fatalf("list failed: %+v", resp.Error)
	}
	raw, _ := json.Marshal(resp.Result)
	var out struct {
		Tools []struct {
			Name        string         `json:"name"`
			InputSchema map[string]any `json:"inputSchema"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode tools: %v", err)
	}
	want := map[string]bool{
		"mine_resource": false, "craft_items": false, "smelt_item": false,
		"sleep_in_bed": false, "deposit_items": false, "withdraw_items": false,
		"get_status": false, "cancel_task": false,
		"configure_auto_feed": false, "configure_auto_shield": false,
		"configure_self_defense": false, "read_chat": false,
		"connect": false, "disconnect": false,
	}
	for _, tool := range out.Tools {
		if _, ok := want[tool.Name]; !ok {
			t.Fatalf("unexpected tool %s", tool.Name)
		}
		want[tool.Name] = true
		if tool.InputSchema == nil {
			t.Fatalf("tool %s missing schema", tool.Name)
		}
	}
	for name, seen := range want {
		if !seen {
			t.Fatalf("tool %s not published", name)
		}
	}
}

func TestCallTool_DispatchesWithHeaderAgent(t *testing.T) {
	core, ts := newTestServer(t)
	core.mineResult = actions.MineResult{
		ActionResult: protocol.ActionResult{OK: true},
		Mined:        3,
	}

	resp := callTool(t, ts, "bot7", "mine_resource", map[string]any{"block": "log", "count": 3})
	if resp.Error != nil {
		t.Fatalf("call failed: %+v", resp.Error)
	}
	if core.lastAgent != "bot7" {
		t.Fatalf("agent %q, want bot7", core.lastAgent)
	}
	if core.lastMine.Block != "log" || core.lastMine.Count != 3 {
		t.Fatalf("request wrong: %+v", core.lastMine)
	}
}

func TestCallTool_AgentDefaultsWithoutHeader(t *testing.T) {
	core, ts := newTestServer(t)

	resp := callTool(t, ts, "", "get_status", map[string]any{})
	if resp.Error != nil {
		t.Fatalf("call failed: %+v", resp.Error)
	}
	if core.lastAgent != "default" {
		t.Fatalf("agent %q, want default", core.lastAgent)
	}
}

func TestCallTool_SchemaRejectsBadArguments(t *testing.T) {
	core, ts := newTestServer(t)

	for _, tc := range []struct {
		tool string
		args any
	}{
		{"mine_resource", map[string]any{"count": 1}},                               // missing block
		{"mine_resource", map[string]any{"block": "log", "count": 0}},               // count below minimum
		{"mine_resource", map[string]any{"block": "log", "bogus": true}},            // unknown property
		{"smelt_item", map[string]any{"item": "beef", "device": "microwave"}},       // bad enum
		{"configure_auto_feed", map[string]any{"threshold": 10}},                    // missing enabled
		{"deposit_items", map[string]any{"items": map[string]any{}}},                // empty items
		{"deposit_items", map[string]any{"items": map[string]any{"dirt": 0}}},       // zero count
		{"read_chat", map[string]any{"limit": 1000}},                                // above maximum
	} {
		resp := callTool(t, ts, "bot1", tc.tool, tc.args)
		if resp.Error == nil || resp.Error.Code != rpcCodeBadParams {
			t.Fatalf("%s %v: got %+v, want code %d", tc.tool, tc.args, resp.Error, rpcCodeBadParams)
		}
	}
	if core.lastAgent != "" {
		t.Fatalf("handler ran despite invalid arguments")
	}
}

func TestCallTool_UnknownToolNotFound(t *testing.T) {
	_, ts := newTestServer(t)

	resp := callTool(t, ts, "bot1", "fly_to_moon", map[string]any{})
	if resp.Error == nil || resp.Error.Code != rpcCodeMethodMissing {
		t.Fatalf("got %+v, want code %d", resp.Error, rpcCodeMethodMissing)
	}
}

func TestCallTool_CoreErrorSurfacesAsRPCError(t *testing.T) {
	core, ts := newTestServer(t)
	core.mineErr = fmt.Errorf("dial upstream: connection refused")

	resp := callTool(t, ts, "bot1", "mine_resource", map[string]any{"block": "log"})
	if resp.Error == nil || resp.Error.Code != rpcCodeToolFailed {
		t.Fatalf("got %+v, want code %d", resp.Error, rpcCodeToolFailed)
	}
}

func TestConfigureAutoFeed_MapsArguments(t *testing.T) {
	core, ts := newTestServer(t)

	resp := callTool(t, ts, "bot1", "configure_auto_feed", map[string]any{"enabled": true, "threshold": 12})
	if resp.Error != nil {
		t.Fatalf("call failed: %+v", resp.Error)
	}
	if !core.lastFeed.Enabled || core.lastFeed.Threshold != 12 {
		t.Fatalf("config wrong: %+v", core.lastFeed)
	}
}

func TestUnknownMethod(t *testing.T) {
	_, ts := newTestServer(t)
	resp := rpcCall(t, ts, "", "frobnicate", nil)
	if resp.Error == nil || resp.Error.Code != rpcCodeMethodMissing {
		t.Fatalf("got %+v, want code %d", resp.Error, rpcCodeMethodMissing)
	}
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}
}
