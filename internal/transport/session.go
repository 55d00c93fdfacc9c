// Package transport owns the single duplex connection to the game server:
// dialing, reconnection with capped backoff, and inbound dispatch. It
// carries no game semantics; resynchronization after a reconnect is the
// session layer's job, triggered by the OnConnect hook.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/jdelaney/gopoly/pkg/types"
)

var ErrNotConnected = errors.New("not connected")
var ErrSessionClosed = errors.New("session closed")

// ConnState is the connection lifecycle state.
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
	StateReconnecting ConnState = "reconnecting"
)

// Handler receives one inbound server message. Handlers run on the read
// loop goroutine, in the order the transport delivered the messages.
type Handler func(msg types.ServerMessage)

// Options configures a Session. Zero delays and attempts fall back to
// conservative defaults.
type Options struct {
	URL               string
	ReconnectAttempts int
	ReconnectMinDelay time.Duration
	ReconnectMaxDelay time.Duration
	WriteTimeout      time.Duration
	Log               *zap.SugaredLogger
}

func (o *Options) fill() {
	if o.ReconnectAttempts == 0 {
		o.ReconnectAttempts = 5
	}
	if o.ReconnectMinDelay == 0 {
		o.ReconnectMinDelay = 500 * time.Millisecond
	}
	if o.ReconnectMaxDelay == 0 {
		o.ReconnectMaxDelay = 10 * time.Second
	}
	if o.WriteTimeout == 0 {
		o.WriteTimeout = 3 * time.Second
	}
	if o.Log == nil {
		o.Log = zap.NewNop().Sugar()
	}
}

// Session maintains exactly one underlying connection. All inbound
// dispatch happens on one goroutine per connection; a handler table maps
// event types to handlers so adding a server event is a one-line entry.
type Session struct {
	opts Options
	log  *zap.SugaredLogger

	mu         sync.Mutex
	state      ConnState
	conn       *websocket.Conn
	cancelRead context.CancelFunc
	gen        int // connection generation; stale read loops exit silently
	closed     bool

	handlers   map[string]Handler
	ackHandler Handler // messages carrying a reqId
	defHandler Handler // event types with no table entry

	onConnect    func(reconnected bool)
	onDisconnect func(terminal bool)
}

// NewSession builds a disconnected session. Call Connect to dial.
func NewSession(opts Options) *Session {
	opts.fill()
	return &Session{
		opts:     opts,
		log:      opts.Log,
		state:    StateDisconnected,
		handlers: make(map[string]Handler),
	}
}

// State returns the current connection state.
func (s *Session) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Handle registers the handler for one event type, replacing any previous
// entry.
func (s *Session) Handle(eventType string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[eventType] = h
}

// Unhandle removes the handler for one event type.
func (s *Session) Unhandle(eventType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handlers, eventType)
}

// HandleAcks registers the handler for messages that echo a reqId. Acks
// bypass the event table.
func (s *Session) HandleAcks(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ackHandler = h
}

// HandleDefault registers the handler for event types with no table entry.
func (s *Session) HandleDefault(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defHandler = h
}

// OnConnect registers the hook fired after every successful dial,
// including reconnects.
func (s *Session) OnConnect(fn func(reconnected bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onConnect = fn
}

// OnDisconnect registers the hook fired when a connection drops. terminal
// is true when no reconnect will be attempted.
func (s *Session) OnDisconnect(fn func(terminal bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDisconnect = fn
}

// Connect dials the server. It is idempotent: calling it while connected
// or connecting is a no-op.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.state == StateConnected || s.state == StateConnecting || s.state == StateReconnecting {
		s.mu.Unlock()
		return nil
	}
	s.state = StateConnecting
	s.mu.Unlock()

	conn, _, err := websocket.Dial(ctx, s.opts.URL, nil)
	if err != nil {
		s.mu.Lock()
		s.state = StateDisconnected
		s.mu.Unlock()
		return err
	}
	s.adopt(conn, false)
	return nil
}

// adopt installs a freshly dialed connection and starts its read loop.
func (s *Session) adopt(conn *websocket.Conn, reconnected bool) {
	conn.SetReadLimit(1 << 20)

	readCtx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.conn = conn
	s.cancelRead = cancel
	s.state = StateConnected
	s.gen++
	gen := s.gen
	onConnect := s.onConnect
	s.mu.Unlock()

	s.log.Infow("connected", "url", s.opts.URL, "reconnected", reconnected)
	if onConnect != nil {
		onConnect(reconnected)
	}
	go s.readLoop(readCtx, conn, gen)
}

// Send marshals payload and writes one envelope. reqId may be empty for
// fire-and-forget messages.
func (s *Session) Send(ctx context.Context, msgType, reqID string, payload any) error {
	s.mu.Lock()
	conn := s.conn
	connected := s.state == StateConnected
	s.mu.Unlock()
	if !connected || conn == nil {
		return ErrNotConnected
	}

	var data json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		data = raw
	}
	raw, err := json.Marshal(types.ClientMessage{Type: msgType, ReqID: reqID, Data: data})
	if err != nil {
		return err
	}

	wctx, cancel := context.WithTimeout(ctx, s.opts.WriteTimeout)
	defer cancel()
	return conn.Write(wctx, websocket.MessageText, raw)
}

// Close tears the session down: handlers are removed before the
// connection handle is released so nothing fires into destroyed state.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.state = StateDisconnected
	s.handlers = make(map[string]Handler)
	s.ackHandler = nil
	s.defHandler = nil
	s.onConnect = nil
	onDisconnect := s.onDisconnect
	s.onDisconnect = nil
	conn := s.conn
	s.conn = nil
	cancel := s.cancelRead
	s.cancelRead = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "bye")
	}
	if onDisconnect != nil {
		onDisconnect(true)
	}
	return nil
}

func (s *Session) readLoop(ctx context.Context, conn *websocket.Conn, gen int) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			s.handleReadError(conn, gen, err)
			return
		}

		var msg types.ServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.Warnw("bad json from server", "err", err)
			continue
		}
		s.dispatch(msg)
	}
}

func (s *Session) dispatch(msg types.ServerMessage) {
	s.mu.Lock()
	var h Handler
	if msg.ReqID != "" {
		h = s.ackHandler
	} else if reg, ok := s.handlers[msg.Type]; ok {
		h = reg
	} else {
		h = s.defHandler
	}
	s.mu.Unlock()

	if h != nil {
		h(msg)
	}
}

func (s *Session) handleReadError(conn *websocket.Conn, gen int, err error) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		// Explicit teardown or an already-replaced connection.
		s.mu.Unlock()
		return
	}
	s.conn = nil
	s.state = StateReconnecting
	onDisconnect := s.onDisconnect
	s.mu.Unlock()

	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		s.log.Infow("server closed connection")
	default:
		s.log.Warnw("connection lost", "err", err)
	}

	// Pending calls must resolve as disconnected before any reconnect.
	if onDisconnect != nil {
		onDisconnect(false)
	}
	s.reconnect()
}

// reconnect retries with doubling backoff bounded by the configured
// ceiling. After the attempt cap the session goes Disconnected and stays
// there until Connect is called again.
func (s *Session) reconnect() {
	delay := s.opts.ReconnectMinDelay
	for attempt := 1; attempt <= s.opts.ReconnectAttempts; attempt++ {
		time.Sleep(delay)
		delay *= 2
		if delay > s.opts.ReconnectMaxDelay {
			delay = s.opts.ReconnectMaxDelay
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		dialCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		conn, _, err := websocket.Dial(dialCtx, s.opts.URL, nil)
		cancel()
		if err != nil {
			s.log.Warnw("reconnect failed", "attempt", attempt, "err", err)
			continue
		}
		s.adopt(conn, true)
		return
	}

	s.log.Errorw("reconnect attempts exhausted", "attempts", s.opts.ReconnectAttempts)
	s.mu.Lock()
	s.state = StateDisconnected
	onDisconnect := s.onDisconnect
	s.mu.Unlock()
	if onDisconnect != nil {
		onDisconnect(true)
	}
}
