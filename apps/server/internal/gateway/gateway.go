// Package gateway speaks the websocket protocol: clients send command
// envelopes and receive the envelopes their world broadcasts.
package gateway

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"npcsim/apps/server/internal/auth"
	"npcsim/apps/server/internal/codec"
	"npcsim/apps/server/internal/lobby"
	"npcsim/apps/server/internal/world"
	"npcsim/sim"
)

const (
	sendBuffer   = 256
	readLimit    = 65536
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
	guestIDBase  = 1 << 40
)

// Error codes carried in error envelopes.
const (
	CodeBadRequest     = "bad_request"
	CodeNotInWorld     = "not_in_world"
	CodeUnknownWorld   = "unknown_world"
	CodeUnknownPersona = "unknown_persona"
	CodeRejected       = "rejected"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict to NPCSIM_ALLOWED_ORIGINS once the web client has a fixed host
	},
}

// Connection is one websocket client.
type Connection struct {
	ID       string
	SubID    uint64
	PlayerID uint64
	Username string
	Conn     *websocket.Conn
	Gateway  *Gateway
	Format   codec.Format

	sendMu sync.Mutex
	send   chan []byte
	closed bool
	seq    atomic.Uint64

	// Only touched by the read pump.
	world *world.World
}

// Gateway tracks live connections.
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	nextConnID  uint64

	lobby       *lobby.Lobby
	auth        auth.Service
	allowGuests bool
}

// New builds a gateway. With allowGuests, clients without a token get a
// guest identity; a token that does not resolve is always refused.
func New(lby *lobby.Lobby, authService auth.Service, allowGuests bool) *Gateway {
	return &Gateway{
		connections: make(map[string]*Connection),
		lobby:       lby,
		auth:        authService,
		allowGuests: allowGuests,
	}
}

func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.Authenticate(g.auth, r)
	hasToken := auth.BearerToken(r.Header.Get("Authorization")) != "" || strings.TrimSpace(r.URL.Query().Get("token")) != ""
	if !ok && (hasToken || !g.allowGuests) {
		auth.WriteError(w, http.StatusUnauthorized, "invalid session token")
		return
	}
	format := codec.Binary
	if strings.EqualFold(r.URL.Query().Get("format"), "json") {
		format = codec.JSON
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] Upgrade error: %v", err)
		return
	}

	g.mu.Lock()
	g.nextConnID++
	c := &Connection{
		ID:       fmt.Sprintf("conn_%d", g.nextConnID),
		SubID:    g.nextConnID,
		PlayerID: session.PlayerID,
		Username: session.Username,
		Conn:     conn,
		Gateway:  g,
		Format:   format,
		send:     make(chan []byte, sendBuffer),
	}
	if !ok {
		c.PlayerID = guestIDBase + g.nextConnID
		c.Username = fmt.Sprintf("guest_%d", g.nextConnID)
	}
	g.connections[c.ID] = c
	total := len(g.connections)
	g.mu.Unlock()

	log.Printf("[Gateway] Client connected: %s (player=%d %s), total: %d", c.ID, c.PlayerID, c.Username, total)

	go c.readPump()
	go c.writePump()
}

// Count is the number of open connections.
func (g *Gateway) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.connections)
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(readLimit)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Gateway] Read error: %v", err)
			}
			return
		}
		switch messageType {
		case websocket.BinaryMessage:
			c.handleMessage(message, codec.Binary)
		case websocket.TextMessage:
			c.handleMessage(message, codec.JSON)
		}
	}
}

func (c *Connection) handleMessage(data []byte, f codec.Format) {
	cmd, err := codec.DecodeCommand(data, f)
	if err != nil {
		c.sendError(CodeBadRequest, err.Error())
		return
	}

	switch cmd.Type {
	case codec.CmdJoin:
		c.handleJoin(cmd)
	case codec.CmdLeave:
		c.leave()
	case codec.CmdStimulus:
		c.submit(world.Event{Type: world.EventStimulus, Agent: cmd.Agent, Action: cmd.Action, Intensity: cmd.Intensity})
	case codec.CmdEngage:
		c.submit(world.Event{Type: world.EventEngage, Agent: cmd.Agent})
	case codec.CmdDespawn:
		c.submit(world.Event{Type: world.EventDespawn, Agent: cmd.Agent})
	case codec.CmdSpawn:
		c.handleSpawn(cmd)
	}
}

func (c *Connection) handleJoin(cmd codec.Command) {
	var (
		w   *world.World
		err error
	)
	if cmd.WorldID != "" {
		if w = c.Gateway.lobby.Get(cmd.WorldID); w == nil {
			c.sendError(CodeUnknownWorld, "no world "+cmd.WorldID)
			return
		}
	} else if w, err = c.Gateway.lobby.QuickStart(); err != nil {
		c.sendError(CodeRejected, err.Error())
		return
	}
	if c.world == w {
		return
	}
	c.leave()

	err = w.SubmitEvent(world.Event{
		Type:         world.EventSubscribe,
		SubscriberID: c.SubID,
		Format:       c.Format,
		Send:         c.enqueue,
	})
	if err != nil {
		c.sendError(CodeRejected, err.Error())
		return
	}
	c.world = w
	info := w.Info()
	data, err := codec.EncodeJoined(c.seq.Add(1), time.Now().UnixMilli(), codec.JoinedPayload{
		WorldID:  w.ID,
		Name:     info.Name,
		PlayerID: c.PlayerID,
		Agents:   info.Agents,
	}, c.Format)
	if err == nil {
		c.enqueue(data)
	}
	log.Printf("[Gateway] Player %d joined world %s", c.PlayerID, w.ID)
}

func (c *Connection) handleSpawn(cmd codec.Command) {
	p := c.Gateway.lobby.Personas().Get(cmd.Persona)
	if p == nil {
		c.sendError(CodeUnknownPersona, "no persona "+cmd.Persona)
		return
	}
	spec, err := p.AgentSpec()
	if err != nil {
		c.sendError(CodeUnknownPersona, err.Error())
		return
	}
	if cmd.Agent != "" {
		spec.ID = cmd.Agent
	}
	c.submit(world.Event{Type: world.EventSpawn, Spec: &spec})
}

func (c *Connection) submit(e world.Event) {
	if c.world == nil {
		c.sendError(CodeNotInWorld, "join a world first")
		return
	}
	if err := c.world.SubmitEvent(e); err != nil {
		code := CodeRejected
		if errors.Is(err, world.ErrWorldClosed) {
			c.world = nil
			code = CodeNotInWorld
		} else if errors.Is(err, sim.ErrUnknownAgent) {
			code = CodeBadRequest
		}
		c.sendError(code, err.Error())
	}
}

func (c *Connection) leave() {
	if c.world == nil {
		return
	}
	if err := c.world.SubmitEvent(world.Event{Type: world.EventUnsubscribe, SubscriberID: c.SubID}); err != nil && !errors.Is(err, world.ErrWorldClosed) {
		log.Printf("[Gateway] %s: unsubscribe from %s failed: %v", c.ID, c.world.ID, err)
	}
	c.world = nil
}

func (c *Connection) sendError(code, msg string) {
	worldID := ""
	if c.world != nil {
		worldID = c.world.ID
	}
	data, err := codec.EncodeError(worldID, c.seq.Add(1), time.Now().UnixMilli(), code, msg, c.Format)
	if err != nil {
		log.Printf("[Gateway] encode error envelope: %v", err)
		return
	}
	c.enqueue(data)
}

// enqueue never blocks: a client that cannot keep up loses frames.
func (c *Connection) enqueue(data []byte) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Connection) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	messageType := websocket.BinaryMessage
	if c.Format == codec.JSON {
		messageType = websocket.TextMessage
	}
	for {
		select {
		case message, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(messageType, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	c.leave()
	c.closeSend()
	g.mu.Lock()
	delete(g.connections, c.ID)
	total := len(g.connections)
	g.mu.Unlock()
	log.Printf("[Gateway] Client disconnected: %s, total: %d", c.ID, total)
}
