// Package state holds the client-side game state and the pure reducer
// that advances it. The server snapshot and the local-only UI state live
// side by side but never intermix: snapshot mutations arrive only as
// whole-object replacements or named patches from the server.
package state

import (
	"github.com/jdelaney/gopoly/internal/transport"
	"github.com/jdelaney/gopoly/pkg/types"
)

// MaxLogEntries bounds the UI event log ring.
const MaxLogEntries = 50

// ConnState mirrors the transport connection lifecycle.
type ConnState = transport.ConnState

// SessionInfo identifies the client's room membership. RoomID and
// PlayerID are set iff the client has created or joined a room.
type SessionInfo struct {
	Conn     ConnState
	RoomID   string
	RoomCode string
	PlayerID string
}

// InRoom reports whether the client is a member of a room.
func (s SessionInfo) InRoom() bool {
	return s.RoomID != "" && s.PlayerID != ""
}

// UIState is local-only and never sent to the server.
type UIState struct {
	AwaitingServer  bool
	DiceRolling     bool
	LastServerError string
	SelectedTile    string
	Modals          map[string]bool
	PendingTrade    *types.Trade
	EventLog        []types.LogEntry
}

// State is everything the presentation layer reads. Game is nil until the
// first gameState-bearing event arrives.
type State struct {
	Session SessionInfo
	Game    *types.GameSnapshot
	UI      UIState
}

// New returns the initial client state.
func New() State {
	return State{
		Session: SessionInfo{Conn: transport.StateDisconnected},
		UI:      UIState{Modals: map[string]bool{}},
	}
}
