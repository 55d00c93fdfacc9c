package types

import "encoding/json"

// PatchKind identifies one named partial replacement inside a
// gameStateUpdate. Anything not expressible as a patch arrives as a full
// gameState snapshot instead.
type PatchKind string

const (
	// PatchPlayerMoney replaces a player's money total.
	PatchPlayerMoney PatchKind = "player_money"
	// PatchPlayerPosition replaces a player's board position.
	PatchPlayerPosition PatchKind = "player_position"
	// PatchPlayerJail replaces a player's jail status.
	PatchPlayerJail PatchKind = "player_jail"
	// PatchSquareOwner replaces a square's owner.
	PatchSquareOwner PatchKind = "square_owner"
	// PatchSquareHouses replaces a square's house/hotel counts.
	PatchSquareHouses PatchKind = "square_houses"
	// PatchSquareMortgage replaces a square's mortgage flag.
	PatchSquareMortgage PatchKind = "square_mortgage"
	// PatchPhase replaces the turn phase.
	PatchPhase PatchKind = "phase"
	// PatchCurrentTurn replaces the player whose turn it is.
	PatchCurrentTurn PatchKind = "current_turn"
	// PatchAuction replaces (or clears) the active auction.
	PatchAuction PatchKind = "auction"
	// PatchTrade replaces (or clears) the pending trade.
	PatchTrade PatchKind = "trade"
	// PatchOffer replaces (or clears) the current purchase offer.
	PatchOffer PatchKind = "offer"
	// PatchCard replaces (or clears) the current card.
	PatchCard PatchKind = "card"
)

// Patch is one diff entry applied to the client's snapshot.
type Patch struct {
	Kind     PatchKind       `json:"kind"`
	EntityID string          `json:"entityId,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// GameStateUpdate is the partial-replacement push event.
type GameStateUpdate struct {
	Patches []Patch `json:"patches"`
}

// MoneyPayload carries a player money patch.
type MoneyPayload struct {
	Money int `json:"money"`
}

// PositionPayload carries a player position patch.
type PositionPayload struct {
	Position int `json:"position"`
}

// JailPayload carries a player jail patch.
type JailPayload struct {
	InJail        bool `json:"inJail"`
	JailTurnCount int  `json:"jailTurnCount,omitempty"`
}

// OwnerPayload carries a square owner patch. Empty owner means unowned.
type OwnerPayload struct {
	OwnerID string `json:"ownerId"`
}

// HousesPayload carries a square building patch.
type HousesPayload struct {
	Houses int `json:"houses"`
	Hotels int `json:"hotels,omitempty"`
}

// MortgagePayload carries a square mortgage patch.
type MortgagePayload struct {
	Mortgaged bool `json:"mortgaged"`
}

// PhasePayload carries a phase patch.
type PhasePayload struct {
	Phase Phase `json:"phase"`
}

// TurnPayload carries a current-turn patch.
type TurnPayload struct {
	PlayerID string `json:"playerId"`
}

// AuctionPayload carries an auction patch. Nil Auction clears it.
type AuctionPayload struct {
	Auction *Auction `json:"auction,omitempty"`
}

// TradePayload carries a trade patch. Nil Trade clears it.
type TradePayload struct {
	Trade *Trade `json:"trade,omitempty"`
}

// OfferPayload carries a purchase-offer patch. Nil Offer clears it.
type OfferPayload struct {
	Offer *PropertyOffer `json:"offer,omitempty"`
}

// CardPayload carries a card patch. Nil Card clears it.
type CardPayload struct {
	Card *Card `json:"card,omitempty"`
}
