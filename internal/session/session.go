// Package session is the integration point of the client: it owns the
// reducer's state, wires transport events into reducer actions, exposes
// one method per player intent, and enforces the single in-flight-action
// gate. All state transitions happen on one goroutine, in transport
// delivery order.
package session

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jdelaney/gopoly/internal/call"
	"github.com/jdelaney/gopoly/internal/dice"
	"github.com/jdelaney/gopoly/internal/state"
	"github.com/jdelaney/gopoly/internal/transport"
	"github.com/jdelaney/gopoly/pkg/types"
)

// Msg is the sealed inbox message set.
type Msg interface{ isSessionMsg() }

type apply struct{ action state.Action }

type getState struct{ reply chan state.State }

type subscribe struct {
	out   chan state.State
	reply chan int
}

type unsubscribe struct{ id int }

type shutdown struct{}

func (apply) isSessionMsg()       {}
func (getState) isSessionMsg()    {}
func (subscribe) isSessionMsg()   {}
func (unsubscribe) isSessionMsg() {}
func (shutdown) isSessionMsg()    {}

// LogSink receives every event-log entry the reducer appends, beyond the
// in-memory ring. Optional.
type LogSink interface {
	Append(ctx context.Context, roomID string, entry types.LogEntry) error
}

// Options configures a Session.
type Options struct {
	Transport    *transport.Session
	CallTimeout  time.Duration
	DiceFallback time.Duration
	Log          *zap.SugaredLogger
	LogSink      LogSink
}

// Session orchestrates one client lifetime.
type Session struct {
	log    *zap.SugaredLogger
	ts     *transport.Session
	caller *call.Caller
	dice   *dice.Handshake
	sink   LogSink

	inbox   chan Msg
	st      state.State
	subs    map[int]chan state.State
	nextSub int

	resyncing atomic.Bool
	done      chan struct{}
}

// New wires the orchestrator onto a transport session and starts its
// loop. The transport is not connected yet; call Connect.
func New(opts Options) *Session {
	if opts.Log == nil {
		opts.Log = zap.NewNop().Sugar()
	}
	s := &Session{
		log:    opts.Log,
		ts:     opts.Transport,
		caller: call.New(opts.Transport, opts.CallTimeout, opts.Log),
		sink:   opts.LogSink,
		inbox:  make(chan Msg, 64),
		st:     state.New(),
		subs:   make(map[int]chan state.State),
		done:   make(chan struct{}),
	}
	s.dice = dice.New(opts.DiceFallback, func() {
		s.post(apply{state.DiceSettled{}})
	})

	s.ts.HandleAcks(s.caller.Resolve)
	s.installHandlers()
	s.ts.HandleDefault(func(msg types.ServerMessage) {
		// Unknown push event: warn and move on, never crash.
		s.log.Warnw("unknown server event", "type", msg.Type)
	})
	s.ts.OnConnect(func(reconnected bool) {
		s.post(apply{state.ConnChanged{State: transport.StateConnected}})
		if reconnected {
			go s.resync()
		}
	})
	s.ts.OnDisconnect(func(terminal bool) {
		s.caller.FailAll(types.ReasonDisconnected)
		next := transport.StateReconnecting
		if terminal {
			next = transport.StateDisconnected
		}
		s.post(apply{state.ConnChanged{State: next}})
	})

	go s.loop()
	return s
}

// Connect dials the server. Idempotent, like the transport underneath.
func (s *Session) Connect(ctx context.Context) error {
	s.post(apply{state.ConnChanged{State: transport.StateConnecting}})
	err := s.ts.Connect(ctx)
	if err != nil {
		s.post(apply{state.ConnChanged{State: transport.StateDisconnected}})
		return err
	}
	// Re-sync membership state after a manual reconnect of a live room.
	if s.State().Session.InRoom() {
		go s.resync()
	}
	return nil
}

// Close tears the session down: transport handlers first, then the loop
// and every subscriber channel.
func (s *Session) Close() error {
	err := s.ts.Close()
	select {
	case s.inbox <- shutdown{}:
	case <-s.done:
	}
	return err
}

// State returns a copy of the current client state.
func (s *Session) State() state.State {
	reply := make(chan state.State, 1)
	select {
	case s.inbox <- getState{reply: reply}:
		return <-reply
	case <-s.done:
		return s.st
	}
}

// Subscribe registers a channel that receives the state after every
// transition. Slow subscribers are dropped, not waited on.
func (s *Session) Subscribe() (<-chan state.State, int) {
	out := make(chan state.State, 8)
	reply := make(chan int, 1)
	select {
	case s.inbox <- subscribe{out: out, reply: reply}:
		return out, <-reply
	case <-s.done:
		close(out)
		return out, -1
	}
}

// Unsubscribe removes a subscriber registered with Subscribe.
func (s *Session) Unsubscribe(id int) {
	select {
	case s.inbox <- unsubscribe{id: id}:
	case <-s.done:
	}
}

// AnimationDone is the presentation layer's roll-animation-complete
// callback.
func (s *Session) AnimationDone() {
	s.dice.AnimationDone()
}

// DicePhase exposes the handshake state for the presentation layer.
func (s *Session) DicePhase() dice.Phase {
	return s.dice.Phase()
}

// Local UI intents.

func (s *Session) SelectTile(id string) {
	s.post(apply{state.TileSelected{ID: id}})
}

func (s *Session) SetModal(name string, open bool) {
	s.post(apply{state.ModalSet{Name: name, Open: open}})
}

func (s *Session) ResetUI() {
	s.post(apply{state.UIReset{}})
}

// LeaveRoom drops room membership locally and resets the UI. The server
// notices via the transport close or its own timeout.
func (s *Session) LeaveRoom() {
	s.post(apply{state.SessionCleared{}})
	s.dice.Reset()
}

func (s *Session) post(m Msg) {
	select {
	case s.inbox <- m:
	case <-s.done:
	}
}

func (s *Session) loop() {
	for m := range s.inbox {
		switch msg := m.(type) {
		case apply:
			prev := s.st
			s.st = state.Reduce(s.st, msg.action)
			s.archiveNewEntries(prev, s.st)
			s.broadcast()

		case getState:
			msg.reply <- s.st

		case subscribe:
			s.nextSub++
			s.subs[s.nextSub] = msg.out
			msg.reply <- s.nextSub

		case unsubscribe:
			delete(s.subs, msg.id)

		case shutdown:
			for id, ch := range s.subs {
				close(ch)
				delete(s.subs, id)
			}
			close(s.done)
			return
		}
	}
}

func (s *Session) broadcast() {
	for id, ch := range s.subs {
		select {
		case ch <- s.st:
		default:
			// Subscriber is slow or gone; drop it.
			close(ch)
			delete(s.subs, id)
		}
	}
}

// archiveNewEntries forwards log entries the reduction appended to the
// optional sink.
func (s *Session) archiveNewEntries(prev, next state.State) {
	if s.sink == nil || len(next.UI.EventLog) == 0 {
		return
	}
	added := len(next.UI.EventLog) - len(prev.UI.EventLog)
	if added <= 0 && lastID(prev) != lastID(next) {
		added = 1 // ring was full; one rolled off as one came in
	}
	for i := len(next.UI.EventLog) - added; i < len(next.UI.EventLog); i++ {
		if i < 0 {
			continue
		}
		entry := next.UI.EventLog[i]
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := s.sink.Append(ctx, next.Session.RoomID, entry); err != nil {
			s.log.Warnw("log archive append failed", "err", err)
		}
		cancel()
	}
}

func lastID(s state.State) string {
	if n := len(s.UI.EventLog); n > 0 {
		return s.UI.EventLog[n-1].ID
	}
	return ""
}

// resync replays "am I in a room? fetch full state" after a reconnect.
// Exactly one getGameState round-trip gates any new user action.
func (s *Session) resync() {
	if !s.State().Session.InRoom() {
		return
	}
	if !s.resyncing.CompareAndSwap(false, true) {
		return
	}
	defer s.resyncing.Store(false)

	s.post(apply{state.AwaitingSet{On: true}})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	res := s.caller.Call(ctx, types.CmdGetGameState, nil)
	if !res.OK {
		s.log.Warnw("resync failed", "reason", res.Reason)
		s.post(apply{state.CallFailed{Reason: res.Reason}})
		return
	}
	var payload types.GameStatePayload
	if err := decodeResult(res, &payload); err != nil {
		s.log.Warnw("resync decode failed", "err", err)
		s.post(apply{state.CallFailed{Reason: "bad resync payload"}})
		return
	}
	s.post(apply{state.GameStateReceived{Meta: newMeta(), State: payload.State}})
}
