package types

import "encoding/json"

// Client -> Server commands. Every command is sent inside a ClientMessage
// and answered by exactly one ack (a ServerMessage echoing the reqId).
const (
	CmdCreateRoom          = "createRoom"
	CmdJoinRoom            = "joinRoom"
	CmdStartGame           = "startGame"
	CmdRequestRoll         = "requestRoll"
	CmdBuyProperty         = "buyProperty"
	CmdDeclineBuy          = "declineBuy"
	CmdEndTurn             = "endTurn"
	CmdBuildHouse          = "buildHouse"
	CmdSellHouse           = "sellHouse"
	CmdMortgage            = "mortgage"
	CmdUnmortgage          = "unmortgage"
	CmdAuctionBid          = "auctionBid"
	CmdAuctionPass         = "auctionPass"
	CmdTradeOffer          = "tradeOffer"
	CmdAcceptTrade         = "acceptTrade"
	CmdRejectTrade         = "rejectTrade"
	CmdDrawCard            = "drawCard"
	CmdPayFine             = "payFine"
	CmdUseGetOutOfJailCard = "useGetOutOfJailCard"
	CmdGetGameState        = "getGameState"
)

// Server -> Client push events. Acks reuse the command name as their type.
const (
	EvtGameState           = "gameState"
	EvtGameStateUpdate     = "gameStateUpdate"
	EvtRoomCreated         = "roomCreated"
	EvtRoomJoined          = "roomJoined"
	EvtPlayerJoined        = "playerJoined"
	EvtPlayerLeft          = "playerLeft"
	EvtGameStarted         = "gameStarted"
	EvtRollResult          = "rollResult"
	EvtPlayerMoved         = "playerMoved"
	EvtPropertyPurchased   = "propertyPurchased"
	EvtPropertyDeclined    = "propertyDeclined"
	EvtAuctionStarted      = "auctionStarted"
	EvtBidPlaced           = "bidPlaced"
	EvtAuctionPassed       = "auctionPassed"
	EvtAuctionEnded        = "auctionEnded"
	EvtHouseBuilt          = "houseBuilt"
	EvtHouseSold           = "houseSold"
	EvtPropertyMortgaged   = "propertyMortgaged"
	EvtPropertyUnmortgaged = "propertyUnmortgaged"
	EvtTradeOfferReceived  = "tradeOfferReceived"
	EvtTradeOfferSent      = "tradeOfferSent"
	EvtTradeAccepted       = "tradeAccepted"
	EvtTradeRejected       = "tradeRejected"
	EvtTradeCancelled      = "tradeCancelled"
	EvtCardDrawn           = "cardDrawn"
	EvtCardEffectExecuted  = "cardEffectExecuted"
	EvtJailFinePaid        = "jailFinePaid"
	EvtJailCardUsed        = "jailCardUsed"
	EvtTurnEnded           = "turnEnded"
	EvtError               = "error"
)

// ClientMessage is the outbound envelope. ReqID correlates the ack; the
// server echoes it back verbatim.
type ClientMessage struct {
	Type  string          `json:"type"`
	ReqID string          `json:"reqId,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ServerMessage is the inbound envelope for both acks and push events.
// OK is a pointer so that an omitted field reads as success.
type ServerMessage struct {
	Type   string          `json:"type"`
	ReqID  string          `json:"reqId,omitempty"`
	OK     *bool           `json:"ok,omitempty"`
	Reason string          `json:"reason,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Ok reports whether the message signals success.
func (m ServerMessage) Ok() bool {
	return m.OK == nil || *m.OK
}

// Result is the normalized outcome of one client command round-trip.
type Result struct {
	OK     bool            `json:"ok"`
	Reason string          `json:"reason,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Failure reasons produced locally rather than by the server.
const (
	ReasonTimeout       = "timeout"
	ReasonDisconnected  = "disconnected"
	ReasonNotInAGame    = "not-in-a-game"
	ReasonResyncPending = "resynchronizing"
)

// Fail builds a failed Result with a local reason.
func Fail(reason string) Result {
	return Result{OK: false, Reason: reason}
}

// Command payloads.

type CreateRoomPayload struct {
	PlayerName string       `json:"playerName"`
	Settings   RoomSettings `json:"settings"`
}

type RoomSettings struct {
	MaxPlayers    int  `json:"maxPlayers,omitempty"`
	StartingMoney int  `json:"startingMoney,omitempty"`
	AuctionsOn    bool `json:"auctionsOn,omitempty"`
}

type JoinRoomPayload struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type PropertyPayload struct {
	PropertyID string `json:"propertyId"`
}

type BidPayload struct {
	Amount int `json:"amount"`
}

type TradeOfferPayload struct {
	ToPlayerID string     `json:"toPlayerId"`
	Offer      TradeOffer `json:"offer"`
}

type TradeIDPayload struct {
	TradeID string `json:"tradeId"`
}

type DrawCardPayload struct {
	CardType string `json:"cardType"`
}

// Event payloads.

type RoomCreated struct {
	RoomID   string `json:"roomId"`
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type RoomJoined struct {
	RoomID   string `json:"roomId"`
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

type PlayerJoined struct {
	Player Player `json:"player"`
}

type PlayerLeft struct {
	PlayerID string `json:"playerId"`
}

type RollResult struct {
	PlayerID    string `json:"playerId"`
	Dice        [2]int `json:"dice"`
	NewPosition int    `json:"newPosition"`
	PassedGo    bool   `json:"passedGo"`
	GoMoney     int    `json:"goMoney"`
}

// Total is the combined value of both dice.
func (r RollResult) Total() int { return r.Dice[0] + r.Dice[1] }

type PlayerMoved struct {
	PlayerID    string `json:"playerId"`
	NewPosition int    `json:"newPosition"`
}

type PropertyPurchased struct {
	PlayerID   string `json:"playerId"`
	PropertyID string `json:"propertyId"`
	Price      int    `json:"price"`
}

type PropertyDeclined struct {
	PlayerID   string `json:"playerId"`
	PropertyID string `json:"propertyId"`
}

type AuctionStarted struct {
	Auction Auction `json:"auction"`
}

type BidPlaced struct {
	PlayerID  string `json:"playerId"`
	BidAmount int    `json:"bidAmount"`
}

type AuctionPassed struct {
	PlayerID string `json:"playerId"`
}

type AuctionEnded struct {
	Winner   string `json:"winner,omitempty"`
	FinalBid int    `json:"finalBid,omitempty"`
}

type HouseBuilt struct {
	PlayerID   string `json:"playerId"`
	PropertyID string `json:"propertyId"`
	Cost       int    `json:"cost"`
}

type HouseSold struct {
	PlayerID   string `json:"playerId"`
	PropertyID string `json:"propertyId"`
	Refund     int    `json:"refund"`
}

type PropertyMortgaged struct {
	PlayerID      string `json:"playerId"`
	PropertyID    string `json:"propertyId"`
	MortgageValue int    `json:"mortgageValue"`
}

type PropertyUnmortgaged struct {
	PlayerID   string `json:"playerId"`
	PropertyID string `json:"propertyId"`
	Cost       int    `json:"cost"`
}

type TradeOfferReceived struct {
	Trade Trade `json:"tradeOffer"`
}

type TradeResolved struct {
	TradeID string `json:"tradeId"`
}

type CardDrawn struct {
	PlayerID string `json:"playerId"`
	Card     Card   `json:"card"`
}

type JailFinePaid struct {
	PlayerID string `json:"playerId"`
	Amount   int    `json:"amount"`
}

type JailCardUsed struct {
	PlayerID string `json:"playerId"`
}

type TurnEnded struct {
	NextTurn string `json:"nextTurn"`
}

type GameStatePayload struct {
	State GameSnapshot `json:"state"`
}
