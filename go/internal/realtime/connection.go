package realtime

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBufferSize  int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBufferSize:  256,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// Server upgrades HTTP requests to websocket connections registered with the
// hub.
type Server struct {
	hub      *Hub
	router   *Router
	upgrader websocket.Upgrader
	config   ConnectionConfig
}

func NewServer(hub *Hub, router *Router, config ConnectionConfig) *Server {
	defaults := DefaultConnectionConfig()
	if config.SendBufferSize <= 0 {
		config.SendBufferSize = defaults.SendBufferSize
	}
	if config.PingInterval <= 0 {
		config.PingInterval = defaults.PingInterval
	}
	if config.ReadTimeout <= config.PingInterval {
		config.ReadTimeout = 2 * config.PingInterval
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = defaults.MaxMessageSize
	}
	if config.CheckOrigin == nil {
		config.CheckOrigin = defaults.CheckOrigin
	}

	return &Server{
		hub:    hub,
		router: router,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config: config,
	}
}

// Serve upgrades the request for the already authenticated userID. The
// connection joins the user's private room before any command is read.
func (s *Server) Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		id:          uuid.New().String(),
		userID:      userID,
		ws:          ws,
		send:        make(chan []byte, s.config.SendBufferSize),
		server:      s,
		ctx:         ctx,
		cancel:      cancel,
		ConnectedAt: time.Now(),
	}

	s.hub.Register(c)
	if err := s.hub.Join(c, UserRoom(userID)); err != nil {
		s.hub.Unregister(c)
		cancel()
		_ = ws.Close()
		return err
	}

	go c.writePump()
	go c.readPump()

	log.Info().
		Str("connection_id", c.id).
		Str("user_id", userID.String()).
		Msg("WebSocket connection established")
	return nil
}

// Connection is one websocket client. It implements Subscriber.
type Connection struct {
	id     string
	userID uuid.UUID
	ws     *websocket.Conn
	server *Server

	mu     sync.Mutex
	send   chan []byte
	closed bool

	ctx    context.Context
	cancel context.CancelFunc

	ConnectedAt time.Time
}

func (c *Connection) ID() string        { return c.id }
func (c *Connection) UserID() uuid.UUID { return c.userID }

func (c *Connection) Deliver(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Close stops the write pump, which sends a close frame and releases the
// socket.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	cfg := c.server.config
	ticker := time.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
		c.server.hub.Unregister(c)
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.id).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().
					Err(err).
					Str("connection_id", c.id).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump handles reading commands from the WebSocket connection
func (c *Connection) readPump() {
	cfg := c.server.config
	defer func() {
		c.cancel()
		c.server.hub.Unregister(c)
		c.Close()

		log.Info().
			Str("connection_id", c.id).
			Str("user_id", c.userID.String()).
			Msg("WebSocket connection closed")
	}()

	c.ws.SetReadLimit(cfg.MaxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.id).
					Msg("unexpected WebSocket close error")
			}
			return
		}

		c.server.router.Dispatch(c.ctx, c, message)
		_ = c.ws.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	}
}
