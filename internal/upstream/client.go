package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"minebridge/internal/protocol"
	"minebridge/internal/recipes"
)

const (
	writeTimeout     = 5 * time.Second
	handshakeTimeout = 5 * time.Second
	readIdleTimeout  = 90 * time.Second
)

// WSClient speaks the game-client JSON protocol over one websocket
// connection. Requests carry ids and are matched to responses; pushes
// fan into the Notifications channel. There is no transparent
// reconnect: when the link drops, the channel closes and the owning
// session is torn down.
type WSClient struct {
	url   string
	agent string
	log   *slog.Logger

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
	pending   map[string]chan wireResponse

	writeMu sync.Mutex

	notify    chan protocol.Notification
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	seq atomic.Uint64
}

type wireRequest struct {
	ID     string          `json:"id,omitempty"`
	Op     string          `json:"op"`
	Params json.RawMessage `json:"params,omitempty"`
}

type wireResponse struct {
	ID      string          `json:"id"`
	OK      bool            `json:"ok"`
	Code    string          `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type wirePush struct {
	Notify *protocol.Notification `json:"notify,omitempty"`
}

// Dial connects and performs the hello exchange. The returned client
// is ready for requests; its read loop runs until Close or link loss.
func Dial(ctx context.Context, url, agent string, log *slog.Logger) (*WSClient, error) {
	if log == nil {
		log = slog.Default()
	}
	d := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, resp, err := d.DialContext(ctx, url, http.Header{})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	c := &WSClient{
		url:     url,
		agent:   agent,
		log:     log.With("agent", agent),
		conn:    conn,
		pending: map[string]chan wireResponse{},
		notify:  make(chan protocol.Notification, 64),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	c.connected = true
	go c.readLoop()

	var hello struct {
		Agent string `json:"agent"`
	}
	hello.Agent = agent
	if err := c.call(ctx, "hello", hello, nil); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("hello: %w", err)
	}
	return c, nil
}

func (c *WSClient) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *WSClient) Close() error {
	c.closeOnce.Do(func() {
		close(c.stop)
		c.mu.Lock()
		conn := c.conn
		c.conn = nil
		c.connected = false
		c.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		<-c.done
	})
	return nil
}

func (c *WSClient) Notifications() <-chan protocol.Notification { return c.notify }

func (c *WSClient) readLoop() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		for id, ch := range c.pending {
			close(ch)
			delete(c.pending, id)
		}
		c.mu.Unlock()
		close(c.notify)
		close(c.done)
	}()

	for {
		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()
		if conn == nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readIdleTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.stop:
			default:
				c.log.Warn("upstream link lost", "err", err)
			}
			return
		}

		var push wirePush
		if err := json.Unmarshal(msg, &push); err == nil && push.Notify != nil {
			select {
			case c.notify <- *push.Notify:
			default:
				// Slow consumer; drop rather than block the link.
			}
			continue
		}

		var resp wireResponse
		if err := json.Unmarshal(msg, &resp); err != nil || resp.ID == "" {
			continue
		}
		c.mu.Lock()
		ch := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.mu.Unlock()
		if ch != nil {
			ch <- resp
		}
		// A response with no pending entry belongs to a cancelled
		// request; discard it.
	}
}

// call issues one request and waits for its response. Context
// cancellation sends an explicit cancel upstream and discards any
// late response.
func (c *WSClient) call(ctx context.Context, op string, params any, out any) error {
	id := fmt.Sprintf("R%d", c.seq.Add(1))

	var raw json.RawMessage
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("%s: marshal params: %w", op, err)
		}
		raw = b
	}

	ch := make(chan wireResponse, 1)
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return protocol.ErrNotConnected
	}
	c.pending[id] = ch
	c.mu.Unlock()

	if err := c.write(wireRequest{ID: id, Op: op, Params: raw}); err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", op, err)
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return protocol.ErrNotConnected
		}
		if !resp.OK {
			return &OpError{Op: op, Code: resp.Code, Message: resp.Message}
		}
		if out != nil && len(resp.Data) > 0 {
			if err := json.Unmarshal(resp.Data, out); err != nil {
				return fmt.Errorf("%s: decode response: %w", op, err)
			}
		}
		return nil
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		c.cancelUpstream(id)
		return ctx.Err()
	case <-c.stop:
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return protocol.ErrNotConnected
	}
}

// cancelUpstream tells the game client to abort an in-flight
// operation. Fire-and-forget: the link may already be gone.
func (c *WSClient) cancelUpstream(id string) {
	var p struct {
		Target string `json:"target"`
	}
	p.Target = id
	b, _ := json.Marshal(p)
	_ = c.write(wireRequest{Op: "cancel", Params: b})
}

func (c *WSClient) write(req wireRequest) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return protocol.ErrNotConnected
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(req)
}

func (c *WSClient) Vitals(ctx context.Context) (protocol.Vitals, error) {
	var v protocol.Vitals
	err := c.call(ctx, "vitals", nil, &v)
	return v, err
}

func (c *WSClient) Position(ctx context.Context) (protocol.Vec3, error) {
	var p protocol.Vec3
	err := c.call(ctx, "position", nil, &p)
	return p, err
}

func (c *WSClient) Inventory(ctx context.Context) (map[string]int, error) {
	inv := map[string]int{}
	err := c.call(ctx, "inventory", nil, &inv)
	return inv, err
}

func (c *WSClient) NearestBlock(ctx context.Context, names []string, radius float64) (*protocol.BlockRef, error) {
	params := map[string]any{"names": names, "radius": radius}
	var b *protocol.BlockRef
	if err := c.call(ctx, "nearest_block", params, &b); err != nil {
		return nil, err
	}
	return b, nil
}

func (c *WSClient) NearestEntity(ctx context.Context, kinds []string, radius float64) (*protocol.EntityRef, error) {
	params := map[string]any{"kinds": kinds, "radius": radius}
	var e *protocol.EntityRef
	if err := c.call(ctx, "nearest_entity", params, &e); err != nil {
		return nil, err
	}
	return e, nil
}

func (c *WSClient) Projectiles(ctx context.Context, radius float64) ([]protocol.EntityRef, error) {
	params := map[string]any{"radius": radius}
	var out []protocol.EntityRef
	err := c.call(ctx, "projectiles", params, &out)
	return out, err
}

func (c *WSClient) EntityByID(ctx context.Context, id int) (*protocol.EntityRef, error) {
	params := map[string]any{"id": id}
	var e *protocol.EntityRef
	if err := c.call(ctx, "entity_by_id", params, &e); err != nil {
		return nil, err
	}
	return e, nil
}

func (c *WSClient) IsNight(ctx context.Context) (bool, error) {
	var out struct {
		Night bool `json:"night"`
	}
	err := c.call(ctx, "is_night", nil, &out)
	return out.Night, err
}

func (c *WSClient) Navigate(ctx context.Context, goal protocol.Vec3, tolerance float64) error {
	params := map[string]any{"goal": goal, "tolerance": tolerance}
	return c.call(ctx, "navigate", params, nil)
}

func (c *WSClient) Dig(ctx context.Context, pos protocol.Vec3) error {
	params := map[string]any{"pos": pos}
	return c.call(ctx, "dig", params, nil)
}

func (c *WSClient) PlaceBlock(ctx context.Context, item string, near protocol.Vec3) (protocol.Vec3, error) {
	params := map[string]any{"item": item, "near": near}
	var placed protocol.Vec3
	err := c.call(ctx, "place_block", params, &placed)
	return placed, err
}

func (c *WSClient) Equip(ctx context.Context, item, slot string) error {
	params := map[string]any{"item": item, "slot": slot}
	return c.call(ctx, "equip", params, nil)
}

func (c *WSClient) Unequip(ctx context.Context, slot string) error {
	params := map[string]any{"slot": slot}
	return c.call(ctx, "unequip", params, nil)
}

func (c *WSClient) ActivateItem(ctx context.Context) error {
	return c.call(ctx, "activate_item", nil, nil)
}

func (c *WSClient) DeactivateItem(ctx context.Context) error {
	return c.call(ctx, "deactivate_item", nil, nil)
}

func (c *WSClient) Consume(ctx context.Context) error {
	return c.call(ctx, "consume", nil, nil)
}

func (c *WSClient) Attack(ctx context.Context, entityID int) error {
	params := map[string]any{"id": entityID}
	return c.call(ctx, "attack", params, nil)
}

func (c *WSClient) StopAttack(ctx context.Context) error {
	return c.call(ctx, "stop_attack", nil, nil)
}

func (c *WSClient) RecipesFor(ctx context.Context, item string) ([]recipes.Recipe, error) {
	params := map[string]any{"item": item}
	var out []recipes.Recipe
	err := c.call(ctx, "recipes_for", params, &out)
	return out, err
}

func (c *WSClient) Craft(ctx context.Context, r recipes.Recipe) error {
	return c.call(ctx, "craft", r, nil)
}

func (c *WSClient) OpenContainer(ctx context.Context, pos protocol.Vec3) (Container, error) {
	params := map[string]any{"pos": pos}
	var out struct {
		ContainerID string `json:"container_id"`
	}
	if err := c.call(ctx, "open_container", params, &out); err != nil {
		return nil, err
	}
	return &wsContainer{c: c, id: out.ContainerID}, nil
}

func (c *WSClient) SleepInBed(ctx context.Context, pos protocol.Vec3) error {
	params := map[string]any{"pos": pos}
	return c.call(ctx, "sleep", params, nil)
}

func (c *WSClient) Wake(ctx context.Context) error {
	return c.call(ctx, "wake", nil, nil)
}

type wsContainer struct {
	c  *WSClient
	id string
}

type moveResult struct {
	Moved int `json:"moved"`
}

func (w *wsContainer) move(ctx context.Context, op, item string, count int) (int, error) {
	params := map[string]any{"container_id": w.id, "item": item, "count": count}
	var out moveResult
	if err := w.c.call(ctx, op, params, &out); err != nil {
		return 0, err
	}
	return out.Moved, nil
}

func (w *wsContainer) Deposit(ctx context.Context, item string, count int) (int, error) {
	return w.move(ctx, "container.deposit", item, count)
}

func (w *wsContainer) Withdraw(ctx context.Context, item string, count int) (int, error) {
	return w.move(ctx, "container.withdraw", item, count)
}

func (w *wsContainer) PutInput(ctx context.Context, item string, count int) (int, error) {
	return w.move(ctx, "container.put_input", item, count)
}

func (w *wsContainer) PutFuel(ctx context.Context, item string, count int) (int, error) {
	return w.move(ctx, "container.put_fuel", item, count)
}

func (w *wsContainer) TakeOutput(ctx context.Context) (string, int, error) {
	params := map[string]any{"container_id": w.id}
	var out struct {
		Item  string `json:"item"`
		Count int    `json:"count"`
	}
	if err := w.c.call(ctx, "container.take_output", params, &out); err != nil {
		return "", 0, err
	}
	return out.Item, out.Count, nil
}

func (w *wsContainer) State(ctx context.Context) (protocol.FurnaceState, error) {
	params := map[string]any{"container_id": w.id}
	var st protocol.FurnaceState
	err := w.c.call(ctx, "container.state", params, &st)
	return st, err
}

func (w *wsContainer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	params := map[string]any{"container_id": w.id}
	return w.c.call(ctx, "container.close", params, nil)
}
