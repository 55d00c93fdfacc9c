package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"

	"github.com/jdelaney/gopoly/pkg/types"
)

// fakeServer accepts websocket clients and lets tests script the server
// side of the protocol.
type fakeServer struct {
	t        *testing.T
	srv      *httptest.Server
	onClient func(conn *websocket.Conn, msg types.ClientMessage)

	mu    sync.Mutex
	conns []*websocket.Conn

	accepted chan *websocket.Conn
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{t: t, accepted: make(chan *websocket.Conn, 8)}

	r := chi.NewRouter()
	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		conn, err := websocket.Accept(w, req, nil)
		if err != nil {
			return
		}
		fs.mu.Lock()
		fs.conns = append(fs.conns, conn)
		fs.mu.Unlock()
		fs.accepted <- conn

		for {
			_, data, err := conn.Read(req.Context())
			if err != nil {
				return
			}
			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				continue
			}
			if fs.onClient != nil {
				fs.onClient(conn, cm)
			}
		}
	})

	fs.srv = httptest.NewServer(r)
	t.Cleanup(fs.srv.Close)
	return fs
}

func (fs *fakeServer) url() string {
	return "ws" + strings.TrimPrefix(fs.srv.URL, "http") + "/ws"
}

func (fs *fakeServer) push(conn *websocket.Conn, msg types.ServerMessage) {
	fs.t.Helper()
	payload, _ := json.Marshal(msg)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
		fs.t.Fatalf("server write: %v", err)
	}
}

func (fs *fakeServer) waitConn(within time.Duration) *websocket.Conn {
	fs.t.Helper()
	select {
	case conn := <-fs.accepted:
		return conn
	case <-time.After(within):
		fs.t.Fatalf("timed out waiting for a client connection")
		return nil
	}
}

func testOptions(url string) Options {
	return Options{
		URL:               url,
		ReconnectAttempts: 3,
		ReconnectMinDelay: 10 * time.Millisecond,
		ReconnectMaxDelay: 50 * time.Millisecond,
	}
}

func TestConnect_IsIdempotent(t *testing.T) {
	fs := newFakeServer(t)

	count := 0
	var mu sync.Mutex

	s := NewSession(testOptions(fs.url()))
	defer s.Close()
	s.OnConnect(func(reconnected bool) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	ctx := context.Background()
	if err := s.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := s.Connect(ctx); err != nil {
		t.Fatalf("second connect: %v", err)
	}

	fs.waitConn(time.Second)
	select {
	case <-fs.accepted:
		t.Fatalf("idempotent connect dialed twice")
	case <-time.After(100 * time.Millisecond):
	}

	mu.Lock()
	defer mu.Unlock()
	if count != 1 {
		t.Fatalf("want exactly one onConnect, got %d", count)
	}
	if s.State() != StateConnected {
		t.Fatalf("want connected, got %v", s.State())
	}
}

func TestDispatch_RoutesByTypeAndReqID(t *testing.T) {
	fs := newFakeServer(t)

	s := NewSession(testOptions(fs.url()))
	defer s.Close()

	events := make(chan types.ServerMessage, 4)
	acks := make(chan types.ServerMessage, 4)
	unknown := make(chan types.ServerMessage, 4)
	s.Handle(types.EvtGameStarted, func(msg types.ServerMessage) { events <- msg })
	s.HandleAcks(func(msg types.ServerMessage) { acks <- msg })
	s.HandleDefault(func(msg types.ServerMessage) { unknown <- msg })

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	conn := fs.waitConn(time.Second)

	fs.push(conn, types.ServerMessage{Type: types.EvtGameStarted})
	fs.push(conn, types.ServerMessage{Type: types.CmdRequestRoll, ReqID: "r-1"})
	fs.push(conn, types.ServerMessage{Type: "somethingNew"})

	recv := func(ch chan types.ServerMessage, want string) {
		t.Helper()
		select {
		case msg := <-ch:
			if msg.Type != want {
				t.Fatalf("want %s, got %s", want, msg.Type)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}
	recv(events, types.EvtGameStarted)
	recv(acks, types.CmdRequestRoll)
	recv(unknown, "somethingNew")
}

func TestSend_ReachesServer(t *testing.T) {
	fs := newFakeServer(t)
	got := make(chan types.ClientMessage, 1)
	fs.onClient = func(conn *websocket.Conn, msg types.ClientMessage) { got <- msg }

	s := NewSession(testOptions(fs.url()))
	defer s.Close()
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	fs.waitConn(time.Second)

	if err := s.Send(context.Background(), types.CmdBuyProperty, "req-9", types.PropertyPayload{PropertyID: "b1"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case msg := <-got:
		if msg.Type != types.CmdBuyProperty || msg.ReqID != "req-9" {
			t.Fatalf("unexpected message %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatalf("server never saw the send")
	}
}

func TestSend_WhenDisconnectedFails(t *testing.T) {
	s := NewSession(testOptions("ws://127.0.0.1:0/ws"))
	defer s.Close()
	if err := s.Send(context.Background(), types.CmdEndTurn, "", nil); err != ErrNotConnected {
		t.Fatalf("want ErrNotConnected, got %v", err)
	}
}

func TestReconnect_AfterServerDrop(t *testing.T) {
	fs := newFakeServer(t)

	s := NewSession(testOptions(fs.url()))
	defer s.Close()

	connects := make(chan bool, 4)
	drops := make(chan bool, 4)
	s.OnConnect(func(reconnected bool) { connects <- reconnected })
	s.OnDisconnect(func(terminal bool) { drops <- terminal })

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	conn := fs.waitConn(time.Second)
	if reconnected := <-connects; reconnected {
		t.Fatalf("first connect reported as reconnect")
	}

	// Server kills the connection; the client must dial back in.
	_ = conn.Close(websocket.StatusGoingAway, "restart")

	select {
	case terminal := <-drops:
		if terminal {
			t.Fatalf("drop with retries left must not be terminal")
		}
	case <-time.After(time.Second):
		t.Fatalf("disconnect hook never fired")
	}

	fs.waitConn(2 * time.Second)
	select {
	case reconnected := <-connects:
		if !reconnected {
			t.Fatalf("second connect should report reconnected")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("client never reconnected")
	}
	if s.State() != StateConnected {
		t.Fatalf("want connected after reconnect, got %v", s.State())
	}
}

func TestReconnect_GivesUpAfterCap(t *testing.T) {
	fs := newFakeServer(t)

	opts := testOptions(fs.url())
	opts.ReconnectAttempts = 2
	s := NewSession(opts)
	defer s.Close()

	drops := make(chan bool, 4)
	s.OnDisconnect(func(terminal bool) { drops <- terminal })

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	conn := fs.waitConn(time.Second)

	// Stop the listener so every retry fails, then drop the live
	// connection (Close does not touch hijacked websocket conns).
	fs.srv.Close()
	_ = conn.Close(websocket.StatusGoingAway, "shutdown")

	var got []bool
	deadline := time.After(3 * time.Second)
	for len(got) < 2 {
		select {
		case terminal := <-drops:
			got = append(got, terminal)
		case <-deadline:
			t.Fatalf("expected drop notifications, got %v", got)
		}
	}
	if got[0] != false || got[len(got)-1] != true {
		t.Fatalf("want non-terminal then terminal, got %v", got)
	}
	if s.State() != StateDisconnected {
		t.Fatalf("want disconnected after cap, got %v", s.State())
	}
}
