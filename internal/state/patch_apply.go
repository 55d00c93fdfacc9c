package state

import (
	"encoding/json"

	"github.com/jdelaney/gopoly/pkg/types"
)

// applyPatches applies the named partial replacements of a
// gameStateUpdate to a copy of the snapshot. A patch for an unknown kind
// or entity is skipped; a malformed payload skips only that patch. The
// input snapshot is never mutated.
func applyPatches(g *types.GameSnapshot, patches []types.Patch) *types.GameSnapshot {
	if g == nil || len(patches) == 0 {
		return g
	}
	out := cloneGame(g)
	for _, patch := range patches {
		applyPatch(out, patch)
	}
	return out
}

func applyPatch(g *types.GameSnapshot, patch types.Patch) {
	switch patch.Kind {
	case types.PatchPlayerMoney:
		var payload types.MoneyPayload
		if decode(patch.Payload, &payload) {
			mutatePlayer(g, patch.EntityID, func(p *types.Player) { p.Money = payload.Money })
		}
	case types.PatchPlayerPosition:
		var payload types.PositionPayload
		if decode(patch.Payload, &payload) {
			mutatePlayer(g, patch.EntityID, func(p *types.Player) { p.Position = payload.Position })
		}
	case types.PatchPlayerJail:
		var payload types.JailPayload
		if decode(patch.Payload, &payload) {
			mutatePlayer(g, patch.EntityID, func(p *types.Player) {
				p.IsInJail = payload.InJail
				p.JailTurnCount = payload.JailTurnCount
			})
		}
	case types.PatchSquareOwner:
		var payload types.OwnerPayload
		if decode(patch.Payload, &payload) {
			mutateSquare(g, patch.EntityID, func(sq *types.Square) { sq.OwnerID = payload.OwnerID })
		}
	case types.PatchSquareHouses:
		var payload types.HousesPayload
		if decode(patch.Payload, &payload) {
			mutateSquare(g, patch.EntityID, func(sq *types.Square) {
				sq.Houses = payload.Houses
				sq.Hotels = payload.Hotels
			})
		}
	case types.PatchSquareMortgage:
		var payload types.MortgagePayload
		if decode(patch.Payload, &payload) {
			mutateSquare(g, patch.EntityID, func(sq *types.Square) { sq.Mortgaged = payload.Mortgaged })
		}
	case types.PatchPhase:
		var payload types.PhasePayload
		if decode(patch.Payload, &payload) {
			g.Phase = payload.Phase
		}
	case types.PatchCurrentTurn:
		var payload types.TurnPayload
		if decode(patch.Payload, &payload) {
			g.CurrentTurn = payload.PlayerID
		}
	case types.PatchAuction:
		var payload types.AuctionPayload
		if decode(patch.Payload, &payload) {
			g.ActiveAuction = payload.Auction
		}
	case types.PatchTrade:
		var payload types.TradePayload
		if decode(patch.Payload, &payload) {
			g.PendingTrade = payload.Trade
		}
	case types.PatchOffer:
		var payload types.OfferPayload
		if decode(patch.Payload, &payload) {
			g.CurrentOffer = payload.Offer
		}
	case types.PatchCard:
		var payload types.CardPayload
		if decode(patch.Payload, &payload) {
			g.CurrentCard = payload.Card
		}
	}
}

func decode(raw json.RawMessage, into any) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, into) == nil
}

func mutatePlayer(g *types.GameSnapshot, id string, fn func(*types.Player)) {
	for i := range g.Players {
		if g.Players[i].ID == id {
			fn(&g.Players[i])
			return
		}
	}
}

func mutateSquare(g *types.GameSnapshot, id string, fn func(*types.Square)) {
	for i := range g.Board {
		if g.Board[i].ID == id {
			fn(&g.Board[i])
			return
		}
	}
}
