package session

import (
	"context"

	"github.com/jdelaney/gopoly/internal/state"
	"github.com/jdelaney/gopoly/pkg/types"
)

// One exposed method per player intent. Room and query commands carry
// their terminal state in the ack and release the awaiting gate as soon
// as it resolves; in-game actions are acknowledged with ok only and
// settle via their named broadcast, which the reducer treats as terminal.

// CreateRoom asks the server for a new room and adopts the returned
// identifiers.
func (s *Session) CreateRoom(ctx context.Context, playerName string, settings types.RoomSettings) types.Result {
	s.post(apply{state.AwaitingSet{On: true}})
	res := s.caller.Call(ctx, types.CmdCreateRoom, types.CreateRoomPayload{PlayerName: playerName, Settings: settings})
	if !res.OK {
		s.post(apply{state.CallFailed{Reason: res.Reason}})
		return res
	}
	var payload types.RoomCreated
	if err := decodeResult(res, &payload); err == nil {
		s.post(apply{state.RoomCreated{Meta: newMeta(), Info: payload}})
	} else {
		s.log.Warnw("createRoom ack missing payload", "err", err)
	}
	s.post(apply{state.AwaitingSet{On: false}})
	return res
}

// JoinRoom joins an existing room by its code.
func (s *Session) JoinRoom(ctx context.Context, roomCode, playerName string) types.Result {
	s.post(apply{state.AwaitingSet{On: true}})
	res := s.caller.Call(ctx, types.CmdJoinRoom, types.JoinRoomPayload{RoomCode: roomCode, PlayerName: playerName})
	if !res.OK {
		s.post(apply{state.CallFailed{Reason: res.Reason}})
		return res
	}
	var payload types.RoomJoined
	if err := decodeResult(res, &payload); err == nil {
		s.post(apply{state.RoomJoined{Meta: newMeta(), Info: payload}})
	} else {
		s.log.Warnw("joinRoom ack missing payload", "err", err)
	}
	s.post(apply{state.AwaitingSet{On: false}})
	return res
}

// StartGame starts the game in the current room.
func (s *Session) StartGame(ctx context.Context) types.Result {
	return s.do(ctx, types.CmdStartGame, nil, true)
}

// GameState fetches the full authoritative snapshot.
func (s *Session) GameState(ctx context.Context) types.Result {
	res := s.do(ctx, types.CmdGetGameState, nil, true)
	if res.OK {
		var payload types.GameStatePayload
		if err := decodeResult(res, &payload); err == nil {
			s.post(apply{state.GameStateReceived{Meta: newMeta(), State: payload.State}})
		}
	}
	return res
}

// RequestRoll rolls the dice. The result arrives as a rollResult
// broadcast; the roll animation is reconciled by the dice handshake.
func (s *Session) RequestRoll(ctx context.Context) types.Result {
	s.dice.RollRequested()
	res := s.do(ctx, types.CmdRequestRoll, nil, false)
	if !res.OK {
		s.dice.Abort()
	}
	return res
}

// BuyProperty buys the offered property.
func (s *Session) BuyProperty(ctx context.Context, propertyID string) types.Result {
	return s.do(ctx, types.CmdBuyProperty, types.PropertyPayload{PropertyID: propertyID}, false)
}

// DeclineBuy declines the offered property, usually starting an auction.
func (s *Session) DeclineBuy(ctx context.Context, propertyID string) types.Result {
	return s.do(ctx, types.CmdDeclineBuy, types.PropertyPayload{PropertyID: propertyID}, false)
}

// EndTurn passes the turn.
func (s *Session) EndTurn(ctx context.Context) types.Result {
	return s.do(ctx, types.CmdEndTurn, nil, false)
}

// BuildHouse builds one house on an owned property.
func (s *Session) BuildHouse(ctx context.Context, propertyID string) types.Result {
	return s.do(ctx, types.CmdBuildHouse, types.PropertyPayload{PropertyID: propertyID}, false)
}

// SellHouse sells one house back to the bank.
func (s *Session) SellHouse(ctx context.Context, propertyID string) types.Result {
	return s.do(ctx, types.CmdSellHouse, types.PropertyPayload{PropertyID: propertyID}, false)
}

// Mortgage mortgages an owned property.
func (s *Session) Mortgage(ctx context.Context, propertyID string) types.Result {
	return s.do(ctx, types.CmdMortgage, types.PropertyPayload{PropertyID: propertyID}, false)
}

// Unmortgage lifts a mortgage.
func (s *Session) Unmortgage(ctx context.Context, propertyID string) types.Result {
	return s.do(ctx, types.CmdUnmortgage, types.PropertyPayload{PropertyID: propertyID}, false)
}

// AuctionBid bids in the active auction.
func (s *Session) AuctionBid(ctx context.Context, amount int) types.Result {
	return s.do(ctx, types.CmdAuctionBid, types.BidPayload{Amount: amount}, false)
}

// AuctionPass passes in the active auction.
func (s *Session) AuctionPass(ctx context.Context) types.Result {
	return s.do(ctx, types.CmdAuctionPass, nil, false)
}

// TradeOffer proposes a trade to another player.
func (s *Session) TradeOffer(ctx context.Context, toPlayerID string, offer types.TradeOffer) types.Result {
	return s.do(ctx, types.CmdTradeOffer, types.TradeOfferPayload{ToPlayerID: toPlayerID, Offer: offer}, false)
}

// AcceptTrade accepts a pending trade.
func (s *Session) AcceptTrade(ctx context.Context, tradeID string) types.Result {
	return s.do(ctx, types.CmdAcceptTrade, types.TradeIDPayload{TradeID: tradeID}, false)
}

// RejectTrade rejects a pending trade.
func (s *Session) RejectTrade(ctx context.Context, tradeID string) types.Result {
	return s.do(ctx, types.CmdRejectTrade, types.TradeIDPayload{TradeID: tradeID}, false)
}

// DrawCard draws from the named deck.
func (s *Session) DrawCard(ctx context.Context, cardType string) types.Result {
	return s.do(ctx, types.CmdDrawCard, types.DrawCardPayload{CardType: cardType}, false)
}

// PayFine pays the jail fine.
func (s *Session) PayFine(ctx context.Context) types.Result {
	return s.do(ctx, types.CmdPayFine, nil, false)
}

// UseGetOutOfJailCard spends a Get Out of Jail Free card.
func (s *Session) UseGetOutOfJailCard(ctx context.Context) types.Result {
	return s.do(ctx, types.CmdUseGetOutOfJailCard, nil, false)
}

// do is the shared round-trip: membership guard before any I/O, awaiting
// gate up, delegate to the correlator, error path records the reason and
// drops the gate.
func (s *Session) do(ctx context.Context, command string, payload any, ackTerminal bool) types.Result {
	if !s.State().Session.InRoom() {
		return types.Fail(types.ReasonNotInAGame)
	}
	if s.resyncing.Load() {
		return types.Fail(types.ReasonResyncPending)
	}
	s.post(apply{state.AwaitingSet{On: true}})
	res := s.caller.Call(ctx, command, payload)
	if !res.OK {
		s.post(apply{state.CallFailed{Reason: res.Reason}})
		return res
	}
	if ackTerminal {
		s.post(apply{state.AwaitingSet{On: false}})
	}
	return res
}
