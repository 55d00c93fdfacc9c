package session

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jdelaney/gopoly/internal/state"
	"github.com/jdelaney/gopoly/pkg/types"
)

// installHandlers builds the one typed dispatch table from server event
// to reducer action. Adding a server event is one entry here.
func (s *Session) installHandlers() {
	table := map[string]func(msg types.ServerMessage) state.Action{
		types.EvtGameState: func(msg types.ServerMessage) state.Action {
			var payload types.GameStatePayload
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			return state.GameStateReceived{Meta: newMeta(), State: payload.State}
		},
		types.EvtGameStateUpdate: func(msg types.ServerMessage) state.Action {
			var payload types.GameStateUpdate
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			return state.GameStateUpdated{Meta: newMeta(), Patches: payload.Patches}
		},
		types.EvtRoomCreated: func(msg types.ServerMessage) state.Action {
			var payload types.RoomCreated
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			return state.RoomCreated{Meta: newMeta(), Info: payload}
		},
		types.EvtRoomJoined: func(msg types.ServerMessage) state.Action {
			var payload types.RoomJoined
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			return state.RoomJoined{Meta: newMeta(), Info: payload}
		},
		types.EvtPlayerJoined: func(msg types.ServerMessage) state.Action {
			var payload types.PlayerJoined
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			return state.PlayerJoined{Meta: newMeta(), Player: payload.Player}
		},
		types.EvtPlayerLeft: func(msg types.ServerMessage) state.Action {
			var payload types.PlayerLeft
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			return state.PlayerLeft{Meta: newMeta(), PlayerID: payload.PlayerID}
		},
		types.EvtGameStarted: func(msg types.ServerMessage) state.Action {
			return state.GameStarted{Meta: newMeta()}
		},
		types.EvtRollResult: func(msg types.ServerMessage) state.Action {
			var payload types.RollResult
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			s.dice.RollArrived()
			return state.DiceRolled{Meta: newMeta(), Roll: payload}
		},
		types.EvtPlayerMoved: func(msg types.ServerMessage) state.Action {
			var payload types.PlayerMoved
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			return state.PlayerMoved{Meta: newMeta(), Move: payload}
		},
		types.EvtPropertyPurchased: func(msg types.ServerMessage) state.Action {
			var payload types.PropertyPurchased
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			return state.PropertyPurchased{Meta: newMeta(), Purchase: payload}
		},
		types.EvtPropertyDeclined: func(msg types.ServerMessage) state.Action {
			var payload types.PropertyDeclined
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			return state.PropertyDeclined{Meta: newMeta(), Decline: payload}
		},
		types.EvtAuctionStarted: func(msg types.ServerMessage) state.Action {
			var payload types.AuctionStarted
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			return state.AuctionStarted{Meta: newMeta(), Auction: payload.Auction}
		},
		types.EvtBidPlaced: func(msg types.ServerMessage) state.Action {
			var payload types.BidPlaced
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			return state.BidPlaced{Meta: newMeta(), Bid: payload}
		},
		types.EvtAuctionPassed: func(msg types.ServerMessage) state.Action {
			var payload types.AuctionPassed
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			return state.AuctionPassed{Meta: newMeta(), PlayerID: payload.PlayerID}
		},
		types.EvtAuctionEnded: func(msg types.ServerMessage) state.Action {
			var payload types.AuctionEnded
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			return state.AuctionEnded{Meta: newMeta(), End: payload}
		},
		types.EvtHouseBuilt: func(msg types.ServerMessage) state.Action {
			var payload types.HouseBuilt
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			return state.HouseBuilt{Meta: newMeta(), Build: payload}
		},
		types.EvtHouseSold: func(msg types.ServerMessage) state.Action {
			var payload types.HouseSold
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			return state.HouseSold{Meta: newMeta(), Sale: payload}
		},
		types.EvtPropertyMortgaged: func(msg types.ServerMessage) state.Action {
			var payload types.PropertyMortgaged
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			return state.PropertyMortgaged{Meta: newMeta(), Mortgage: payload}
		},
		types.EvtPropertyUnmortgaged: func(msg types.ServerMessage) state.Action {
			var payload types.PropertyUnmortgaged
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			return state.PropertyUnmortgaged{Meta: newMeta(), Unmortgage: payload}
		},
		types.EvtTradeOfferReceived: func(msg types.ServerMessage) state.Action {
			var payload types.TradeOfferReceived
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			return state.TradeOfferReceived{Meta: newMeta(), Trade: payload.Trade}
		},
		types.EvtTradeOfferSent: func(msg types.ServerMessage) state.Action {
			return state.TradeOfferSent{Meta: newMeta()}
		},
		types.EvtTradeAccepted: func(msg types.ServerMessage) state.Action {
			var payload types.TradeResolved
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			return state.TradeAccepted{Meta: newMeta(), TradeID: payload.TradeID}
		},
		types.EvtTradeRejected: func(msg types.ServerMessage) state.Action {
			var payload types.TradeResolved
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			return state.TradeRejected{Meta: newMeta(), TradeID: payload.TradeID}
		},
		types.EvtTradeCancelled: func(msg types.ServerMessage) state.Action {
			var payload types.TradeResolved
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			return state.TradeCancelled{Meta: newMeta(), TradeID: payload.TradeID}
		},
		types.EvtCardDrawn: func(msg types.ServerMessage) state.Action {
			var payload types.CardDrawn
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			return state.CardDrawn{Meta: newMeta(), PlayerID: payload.PlayerID, Card: payload.Card}
		},
		types.EvtCardEffectExecuted: func(msg types.ServerMessage) state.Action {
			return state.CardEffectExecuted{Meta: newMeta()}
		},
		types.EvtJailFinePaid: func(msg types.ServerMessage) state.Action {
			var payload types.JailFinePaid
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			return state.JailFinePaid{Meta: newMeta(), Fine: payload}
		},
		types.EvtJailCardUsed: func(msg types.ServerMessage) state.Action {
			var payload types.JailCardUsed
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			return state.JailCardUsed{Meta: newMeta(), PlayerID: payload.PlayerID}
		},
		types.EvtTurnEnded: func(msg types.ServerMessage) state.Action {
			var payload types.TurnEnded
			if !s.decodeEvent(msg, &payload) {
				return nil
			}
			return state.TurnEnded{Meta: newMeta(), NextTurn: payload.NextTurn}
		},
		types.EvtError: func(msg types.ServerMessage) state.Action {
			// The server's reason string is surfaced verbatim.
			return state.ServerError{Meta: newMeta(), Reason: msg.Reason}
		},
	}

	for eventType, build := range table {
		build := build
		s.ts.Handle(eventType, func(msg types.ServerMessage) {
			if action := build(msg); action != nil {
				s.post(apply{action: action})
			}
		})
	}
}

// decodeEvent unmarshals an event payload, logging and skipping the event
// on malformed data rather than crashing.
func (s *Session) decodeEvent(msg types.ServerMessage, into any) bool {
	if len(msg.Data) == 0 {
		s.log.Warnw("event missing payload", "type", msg.Type)
		return false
	}
	if err := json.Unmarshal(msg.Data, into); err != nil {
		s.log.Warnw("bad event payload", "type", msg.Type, "err", err)
		return false
	}
	return true
}

func newMeta() state.Meta {
	return state.Meta{ID: uuid.NewString(), At: time.Now().UTC()}
}

var errEmptyResult = errors.New("empty result payload")

func decodeResult(res types.Result, into any) error {
	if len(res.Data) == 0 {
		return errEmptyResult
	}
	return json.Unmarshal(res.Data, into)
}
