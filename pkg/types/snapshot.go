package types

import "time"

// Phase is the server-authoritative turn phase. The client never infers
// legality from anything but this and the optional sub-structures below.
type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseRoll     Phase = "roll"
	PhasePurchase Phase = "purchase"
	PhaseAuction  Phase = "auction"
	PhaseAction   Phase = "action"
	PhaseJail     Phase = "jail"
	PhaseDone     Phase = "done"
)

type SquareType string

const (
	SquareProperty SquareType = "property"
	SquareRailroad SquareType = "railroad"
	SquareUtility  SquareType = "utility"
	SquareTax      SquareType = "tax"
	SquareChance   SquareType = "chance"
	SquareChest    SquareType = "chest"
	SquareGo       SquareType = "go"
	SquareJail     SquareType = "jail"
	SquareGoToJail SquareType = "goToJail"
	SquareFreePark SquareType = "freeParking"
)

// GameSnapshot is the complete server-owned game state. The client treats
// it as a value: whole-object replace on gameState, named patches on
// gameStateUpdate, never ad-hoc field edits.
type GameSnapshot struct {
	Players       []Player       `json:"players"`
	Board         []Square       `json:"board"`
	Phase         Phase          `json:"phase"`
	CurrentTurn   string         `json:"currentTurn"`
	ActiveAuction *Auction       `json:"activeAuction,omitempty"`
	PendingTrade  *Trade         `json:"pendingTrade,omitempty"`
	CurrentOffer  *PropertyOffer `json:"currentOffer,omitempty"`
	CurrentCard   *Card          `json:"currentCard,omitempty"`
	GameLog       []LogEntry     `json:"gameLog,omitempty"`
}

// PlayerByID returns the player with the given id, if present.
func (s GameSnapshot) PlayerByID(id string) (Player, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// SquareByID returns the square with the given id, if present.
func (s GameSnapshot) SquareByID(id string) (Square, bool) {
	for _, sq := range s.Board {
		if sq.ID == id {
			return sq, true
		}
	}
	return Square{}, false
}

type Player struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Color             string          `json:"color"`
	Money             int             `json:"money"` // may go negative before bankruptcy resolves
	Position          int             `json:"position"`
	Properties        []OwnedProperty `json:"properties,omitempty"`
	IsBot             bool            `json:"isBot,omitempty"`
	IsInJail          bool            `json:"isInJail,omitempty"`
	JailTurnCount     int             `json:"jailTurnCount,omitempty"`
	GetOutOfJailCards int             `json:"getOutOfJailCards,omitempty"`
}

type OwnedProperty struct {
	SquareID  string `json:"squareId"`
	Houses    int    `json:"houses,omitempty"`
	Mortgaged bool   `json:"mortgaged,omitempty"`
}

type Square struct {
	ID        string     `json:"id"`
	Type      SquareType `json:"type"`
	Name      string     `json:"name"`
	OwnerID   string     `json:"ownerId,omitempty"`
	Price     int        `json:"price,omitempty"`
	Rent      int        `json:"rent,omitempty"`
	Houses    int        `json:"houses,omitempty"`
	Hotels    int        `json:"hotels,omitempty"`
	Mortgaged bool       `json:"isMortgaged,omitempty"`
}

type Auction struct {
	SquareID   string   `json:"squareId"`
	HighBidder string   `json:"highBidder,omitempty"`
	HighBid    int      `json:"highBid,omitempty"`
	Passed     []string `json:"passed,omitempty"`
}

type Trade struct {
	ID     string     `json:"id"`
	From   string     `json:"from"`
	To     string     `json:"to"`
	Offer  TradeOffer `json:"offer"`
	Status string     `json:"status,omitempty"`
}

type TradeOffer struct {
	OfferMoney        int      `json:"offerMoney,omitempty"`
	OfferProperties   []string `json:"offerProperties,omitempty"`
	RequestMoney      int      `json:"requestMoney,omitempty"`
	RequestProperties []string `json:"requestProperties,omitempty"`
}

type PropertyOffer struct {
	SquareID string `json:"squareId"`
	Price    int    `json:"price"`
	PlayerID string `json:"playerId"`
}

type Card struct {
	ID   string `json:"id"`
	Deck string `json:"deck"` // "chance" | "chest"
	Text string `json:"text"`
}

type LogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	PlayerID  string    `json:"playerId,omitempty"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
}
