package state

import (
	"time"

	"github.com/jdelaney/gopoly/pkg/types"
)

// Action is the sealed set of reducer inputs. Server push events and
// local UI intents map onto it 1:1.
type Action interface{ isAction() }

// Meta stamps a server event at dispatch time so reduction stays pure and
// replayable.
type Meta struct {
	ID string
	At time.Time
}

// Local intents.

// AwaitingSet gates user actions while one command is in flight. Raising
// it also clears the last server error.
type AwaitingSet struct{ On bool }

// CallFailed records a failed or timed-out command round-trip.
type CallFailed struct{ Reason string }

// ConnChanged mirrors a transport state transition.
type ConnChanged struct{ State ConnState }

// SessionCleared resets room membership on explicit leave or
// unrecoverable disconnect.
type SessionCleared struct{}

// TileSelected records the tile highlighted in the UI.
type TileSelected struct{ ID string }

// ModalSet opens or closes one named modal.
type ModalSet struct {
	Name string
	Open bool
}

// UIReset restores the UI sub-state to its initial values without
// touching the game snapshot.
type UIReset struct{}

// DiceSettled ends the roll animation, via the animation-complete
// callback or the fallback timer.
type DiceSettled struct{}

// Server events.

type GameStateReceived struct {
	Meta
	State types.GameSnapshot
}

type GameStateUpdated struct {
	Meta
	Patches []types.Patch
}

type RoomCreated struct {
	Meta
	Info types.RoomCreated
}

type RoomJoined struct {
	Meta
	Info types.RoomJoined
}

type PlayerJoined struct {
	Meta
	Player types.Player
}

type PlayerLeft struct {
	Meta
	PlayerID string
}

type GameStarted struct{ Meta }

type DiceRolled struct {
	Meta
	Roll types.RollResult
}

type PlayerMoved struct {
	Meta
	Move types.PlayerMoved
}

type PropertyPurchased struct {
	Meta
	Purchase types.PropertyPurchased
}

type PropertyDeclined struct {
	Meta
	Decline types.PropertyDeclined
}

type AuctionStarted struct {
	Meta
	Auction types.Auction
}

type BidPlaced struct {
	Meta
	Bid types.BidPlaced
}

type AuctionPassed struct {
	Meta
	PlayerID string
}

type AuctionEnded struct {
	Meta
	End types.AuctionEnded
}

type HouseBuilt struct {
	Meta
	Build types.HouseBuilt
}

type HouseSold struct {
	Meta
	Sale types.HouseSold
}

type PropertyMortgaged struct {
	Meta
	Mortgage types.PropertyMortgaged
}

type PropertyUnmortgaged struct {
	Meta
	Unmortgage types.PropertyUnmortgaged
}

type TradeOfferReceived struct {
	Meta
	Trade types.Trade
}

type TradeOfferSent struct{ Meta }

type TradeAccepted struct {
	Meta
	TradeID string
}

type TradeRejected struct {
	Meta
	TradeID string
}

type TradeCancelled struct {
	Meta
	TradeID string
}

type CardDrawn struct {
	Meta
	PlayerID string
	Card     types.Card
}

type CardEffectExecuted struct{ Meta }

type JailFinePaid struct {
	Meta
	Fine types.JailFinePaid
}

type JailCardUsed struct {
	Meta
	PlayerID string
}

type TurnEnded struct {
	Meta
	NextTurn string
}

type ServerError struct {
	Meta
	Reason string
}

func (AwaitingSet) isAction()         {}
func (CallFailed) isAction()          {}
func (ConnChanged) isAction()         {}
func (SessionCleared) isAction()      {}
func (TileSelected) isAction()        {}
func (ModalSet) isAction()            {}
func (UIReset) isAction()             {}
func (DiceSettled) isAction()         {}
func (GameStateReceived) isAction()   {}
func (GameStateUpdated) isAction()    {}
func (RoomCreated) isAction()         {}
func (RoomJoined) isAction()          {}
func (PlayerJoined) isAction()        {}
func (PlayerLeft) isAction()          {}
func (GameStarted) isAction()         {}
func (DiceRolled) isAction()          {}
func (PlayerMoved) isAction()         {}
func (PropertyPurchased) isAction()   {}
func (PropertyDeclined) isAction()    {}
func (AuctionStarted) isAction()      {}
func (BidPlaced) isAction()           {}
func (AuctionPassed) isAction()       {}
func (AuctionEnded) isAction()        {}
func (HouseBuilt) isAction()          {}
func (HouseSold) isAction()           {}
func (PropertyMortgaged) isAction()   {}
func (PropertyUnmortgaged) isAction() {}
func (TradeOfferReceived) isAction()  {}
func (TradeOfferSent) isAction()      {}
func (TradeAccepted) isAction()       {}
func (TradeRejected) isAction()       {}
func (TradeCancelled) isAction()      {}
func (CardDrawn) isAction()           {}
func (CardEffectExecuted) isAction()  {}
func (JailFinePaid) isAction()        {}
func (JailCardUsed) isAction()        {}
func (TurnEnded) isAction()           {}
func (ServerError) isAction()         {}
