// Package toolsrv exposes the orchestration core as a JSON-RPC 2.0
// tool-call endpoint. Tool arguments are validated against published
// JSON schemas before dispatch; the agent identity rides on a header
// so one endpoint serves many bots.
package toolsrv

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"minebridge/internal/actions"
	"minebridge/internal/protocol"
	"minebridge/internal/session"
)

// HeaderAgentID names the agent a request acts for.
const HeaderAgentID = "X-Agent-ID"

const defaultAgent = "default"

// Core is the orchestration surface the server dispatches into,
// implemented by bridge.Bridge.
type Core interface {
	Connect(ctx context.Context, agent string) error
	Disconnect(ctx context.Context, agent string) error

	Mine(ctx context.Context, agent string, req actions.MineRequest) (actions.MineResult, error)
	Craft(ctx context.Context, agent string, req actions.CraftRequest) (actions.CraftResult, error)
	Smelt(ctx context.Context, agent string, req actions.SmeltRequest) (actions.SmeltResult, error)
	Sleep(ctx context.Context, agent string, req actions.SleepRequest) (actions.SleepResult, error)
	Deposit(ctx context.Context, agent string, req actions.TransferRequest) (actions.TransferResult, error)
	Withdraw(ctx context.Context, agent string, req actions.TransferRequest) (actions.TransferResult, error)

	Status(ctx context.Context, agent string) (actions.StatusResult, error)
	Cancel(ctx context.Context, agent string) (bool, error)

	ConfigureAutoFeed(ctx context.Context, agent string, cfg session.FeedConfig) error
	ConfigureAutoShield(ctx context.Context, agent string, cfg session.ShieldConfig) error
	ConfigureSelfDefense(ctx context.Context, agent string, cfg session.DefenseConfig) error

	ReadChat(ctx context.Context, agent string, limit int) ([]protocol.ChatLine, error)

	Sessions() []string
}

type Server struct {
	core Core
	log  *slog.Logger

	tools map[string]*compiledTool
	order []string
}

type compiledTool struct {
	def    toolDef
	schema *jsonschema.Schema
}

func NewServer(core Core, log *slog.Logger) (*Server, error) {
	if core == nil {
		return nil, fmt.Errorf("nil core")
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		core:  core,
		log:   log,
		tools: map[string]*compiledTool{},
	}
	for _, def := range toolTable() {
		raw, err := json.Marshal(def.schema)
		if err != nil {
			return nil, fmt.Errorf("tool %s schema: %w", def.name, err)
		}
		sch, err := jsonschema.CompileString(def.name+".json", string(raw))
		if err != nil {
			return nil, fmt.Errorf("tool %s schema: %w", def.name, err)
		}
		s.tools[def.name] = &compiledTool{def: def, schema: sch}
		s.order = append(s.order, def.name)
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	r.Get("/sessions", func(rw http.ResponseWriter, _ *http.Request) {
		rw.Header().Set("content-type", "application/json")
		_ = json.NewEncoder(rw).Encode(map[string]any{"sessions": s.core.Sessions()})
	})
	r.Post("/rpc", s.handleRPC)
	return r
}

func (s *Server) handleRPC(rw http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(rw, "bad body", http.StatusBadRequest)
		return
	}
	_ = r.Body.Close()

	agent := strings.TrimSpace(r.Header.Get(HeaderAgentID))
	if agent == "" {
		agent = defaultAgent
	}

	req, err := parseRPCRequest(body)
	if err != nil {
		writeJSON(rw, rpcErr(nil, rpcCodeParse, "bad jsonrpc request", err.Error()))
		return
	}

	resp := s.dispatch(r.Context(), agent, req)
	writeJSON(rw, resp)
}

func (s *Server) dispatch(ctx context.Context, agent string, req rpcRequest) rpcResponse {
	switch req.Method {
	case "initialize":
		return rpcOK(req.ID, map[string]any{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]any{
				"tools": map[string]any{"listChanged": false},
			},
		})

	case "tools/list", "list_tools":
		return rpcOK(req.ID, map[string]any{"tools": s.toolsList()})

	case "tools/call", "call_tool":
		var p struct {
			Name      string          `json:"name"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if len(req.Params) == 0 {
			return rpcErr(req.ID, rpcCodeBadParams, "missing params", nil)
		}
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return rpcErr(req.ID, rpcCodeBadParams, "bad params", err.Error())
		}
		tool, ok := s.tools[p.Name]
		if !ok {
			return rpcErr(req.ID, rpcCodeMethodMissing, "tool not found", map[string]any{"name": p.Name})
		}
		if err := s.validateArgs(tool, p.Arguments); err != nil {
			return rpcErr(req.ID, rpcCodeBadParams, "invalid arguments", err.Error())
		}
		args := p.Arguments
		if len(args) == 0 {
			args = json.RawMessage("{}")
		}
		out, err := tool.def.handle(ctx, s, agent, args)
		if err != nil {
			s.log.Warn("tool failed", "tool", p.Name, "agent", agent, "err", err)
			return rpcErr(req.ID, rpcCodeToolFailed, fmtToolError(p.Name, err).Error(), nil)
		}
		return rpcOK(req.ID, out)

	default:
		return rpcErr(req.ID, rpcCodeMethodMissing, "method not found", nil)
	}
}

func (s *Server) validateArgs(tool *compiledTool, args json.RawMessage) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	var v any
	if err := json.Unmarshal(args, &v); err != nil {
		return err
	}
	return tool.schema.Validate(v)
}

func (s *Server) toolsList() []map[string]any {
	out := make([]map[string]any, 0, len(s.order))
	for _, name := range s.order {
		t := s.tools[name]
		out = append(out, map[string]any{
			"name":        t.def.name,
			"description": t.def.description,
			"inputSchema": t.def.schema,
		})
	}
	return out
}

func writeJSON(rw http.ResponseWriter, v any) {
	rw.Header().Set("content-type", "application/json")
	_ = json.NewEncoder(rw).Encode(v)
}
