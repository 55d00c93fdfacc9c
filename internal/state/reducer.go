package state

import (
	"fmt"

	"github.com/jdelaney/gopoly/pkg/types"
)

// Reduce maps (state, action) to the next state. It is pure: the input
// state is never mutated, and replaying the same action sequence from the
// initial state always yields the same result. Unknown actions leave the
// state unchanged.
func Reduce(s State, a Action) State {
	switch act := a.(type) {

	// Local intents.

	case AwaitingSet:
		s.UI.AwaitingServer = act.On
		if act.On {
			s.UI.LastServerError = ""
		}

	case CallFailed:
		s.UI.AwaitingServer = false
		s.UI.LastServerError = act.Reason

	case ConnChanged:
		s.Session.Conn = act.State

	case SessionCleared:
		conn := s.Session.Conn
		s = New()
		s.Session.Conn = conn

	case TileSelected:
		s.UI.SelectedTile = act.ID

	case ModalSet:
		modals := make(map[string]bool, len(s.UI.Modals)+1)
		for k, v := range s.UI.Modals {
			modals[k] = v
		}
		modals[act.Name] = act.Open
		s.UI.Modals = modals

	case UIReset:
		log := s.UI.EventLog
		s.UI = UIState{Modals: map[string]bool{}, EventLog: log}

	case DiceSettled:
		s.UI.DiceRolling = false

	// Authoritative server events. Each terminal event also releases the
	// awaiting gate; that is the contract, not the call sites' memory.

	case GameStateReceived:
		g := act.State
		s.Game = &g
		s.UI.AwaitingServer = false
		s.UI.LastServerError = ""

	case GameStateUpdated:
		s.Game = applyPatches(s.Game, act.Patches)
		s.UI.AwaitingServer = false

	case RoomCreated:
		s.Session.RoomID = act.Info.RoomID
		s.Session.RoomCode = act.Info.RoomCode
		s.Session.PlayerID = act.Info.PlayerID
		s = appendLog(s, act.Meta, act.Info.PlayerID, "room",
			fmt.Sprintf("Room %s created", act.Info.RoomCode))

	case RoomJoined:
		s.Session.RoomID = act.Info.RoomID
		s.Session.RoomCode = act.Info.RoomCode
		s.Session.PlayerID = act.Info.PlayerID
		s = appendLog(s, act.Meta, act.Info.PlayerID, "room",
			fmt.Sprintf("Joined room %s", act.Info.RoomCode))

	case PlayerJoined:
		if s.Game != nil {
			g := cloneGame(s.Game)
			g.Players = append(g.Players, act.Player)
			s.Game = g
		}
		s.UI.AwaitingServer = false
		s = appendLog(s, act.Meta, act.Player.ID, "player",
			fmt.Sprintf("%s joined the game", act.Player.Name))

	case PlayerLeft:
		name := playerName(s.Game, act.PlayerID)
		if s.Game != nil {
			g := cloneGame(s.Game)
			players := g.Players[:0:0]
			for _, p := range g.Players {
				if p.ID != act.PlayerID {
					players = append(players, p)
				}
			}
			g.Players = players
			s.Game = g
		}
		s.UI.AwaitingServer = false
		s = appendLog(s, act.Meta, act.PlayerID, "player",
			fmt.Sprintf("%s left the game", name))

	case GameStarted:
		s.UI.AwaitingServer = false
		s = appendLog(s, act.Meta, "", "game", "Game started")

	case DiceRolled:
		s = withPlayer(s, act.Roll.PlayerID, func(p *types.Player) {
			p.Position = act.Roll.NewPosition
			if act.Roll.PassedGo {
				p.Money += act.Roll.GoMoney
			}
		})
		s.UI.DiceRolling = true
		s.UI.AwaitingServer = false
		// The log is not gated by the roll animation.
		s = appendLog(s, act.Meta, act.Roll.PlayerID, "roll",
			fmt.Sprintf("Rolled %d and %d (total: %d)", act.Roll.Dice[0], act.Roll.Dice[1], act.Roll.Total()))

	case PlayerMoved:
		s = withPlayer(s, act.Move.PlayerID, func(p *types.Player) {
			p.Position = act.Move.NewPosition
		})
		s.UI.AwaitingServer = false

	case PropertyPurchased:
		s = withPlayer(s, act.Purchase.PlayerID, func(p *types.Player) {
			p.Money -= act.Purchase.Price
			p.Properties = append(clonedProps(p.Properties), types.OwnedProperty{SquareID: act.Purchase.PropertyID})
		})
		s = withSquare(s, act.Purchase.PropertyID, func(sq *types.Square) {
			sq.OwnerID = act.Purchase.PlayerID
		})
		if s.Game != nil {
			g := cloneGame(s.Game)
			g.CurrentOffer = nil
			s.Game = g
		}
		s.UI.AwaitingServer = false
		s = appendLog(s, act.Meta, act.Purchase.PlayerID, "purchase",
			fmt.Sprintf("%s bought %s for $%d", playerName(s.Game, act.Purchase.PlayerID),
				squareName(s.Game, act.Purchase.PropertyID), act.Purchase.Price))

	case PropertyDeclined:
		if s.Game != nil {
			g := cloneGame(s.Game)
			g.CurrentOffer = nil
			s.Game = g
		}
		s.UI.AwaitingServer = false
		s = appendLog(s, act.Meta, act.Decline.PlayerID, "purchase",
			fmt.Sprintf("%s declined to buy %s", playerName(s.Game, act.Decline.PlayerID),
				squareName(s.Game, act.Decline.PropertyID)))

	case AuctionStarted:
		if s.Game != nil {
			g := cloneGame(s.Game)
			auction := act.Auction
			g.ActiveAuction = &auction
			s.Game = g
		}
		s.UI.AwaitingServer = false
		s = appendLog(s, act.Meta, "", "auction",
			fmt.Sprintf("Auction started for %s", squareName(s.Game, act.Auction.SquareID)))

	case BidPlaced:
		if s.Game != nil && s.Game.ActiveAuction != nil {
			g := cloneGame(s.Game)
			auction := *g.ActiveAuction
			auction.HighBidder = act.Bid.PlayerID
			auction.HighBid = act.Bid.BidAmount
			g.ActiveAuction = &auction
			s.Game = g
		}
		s.UI.AwaitingServer = false
		s = appendLog(s, act.Meta, act.Bid.PlayerID, "auction",
			fmt.Sprintf("%s bid $%d", playerName(s.Game, act.Bid.PlayerID), act.Bid.BidAmount))

	case AuctionPassed:
		if s.Game != nil && s.Game.ActiveAuction != nil {
			g := cloneGame(s.Game)
			auction := *g.ActiveAuction
			auction.Passed = append(append([]string(nil), auction.Passed...), act.PlayerID)
			g.ActiveAuction = &auction
			s.Game = g
		}
		s.UI.AwaitingServer = false
		s = appendLog(s, act.Meta, act.PlayerID, "auction",
			fmt.Sprintf("%s passed", playerName(s.Game, act.PlayerID)))

	case AuctionEnded:
		if s.Game != nil {
			g := cloneGame(s.Game)
			g.ActiveAuction = nil
			s.Game = g
		}
		s.UI.AwaitingServer = false
		msg := "Auction ended with no winner"
		if act.End.Winner != "" {
			msg = fmt.Sprintf("%s won the auction at $%d", playerName(s.Game, act.End.Winner), act.End.FinalBid)
		}
		s = appendLog(s, act.Meta, act.End.Winner, "auction", msg)

	case HouseBuilt:
		s = withPlayer(s, act.Build.PlayerID, func(p *types.Player) {
			p.Money -= act.Build.Cost
			p.Properties = addHouses(p.Properties, act.Build.PropertyID, 1)
		})
		s = withSquare(s, act.Build.PropertyID, func(sq *types.Square) {
			sq.Houses++
		})
		s.UI.AwaitingServer = false
		s = appendLog(s, act.Meta, act.Build.PlayerID, "build",
			fmt.Sprintf("%s built a house on %s", playerName(s.Game, act.Build.PlayerID),
				squareName(s.Game, act.Build.PropertyID)))

	case HouseSold:
		s = withPlayer(s, act.Sale.PlayerID, func(p *types.Player) {
			p.Money += act.Sale.Refund
			p.Properties = addHouses(p.Properties, act.Sale.PropertyID, -1)
		})
		s = withSquare(s, act.Sale.PropertyID, func(sq *types.Square) {
			if sq.Houses > 0 {
				sq.Houses--
			}
		})
		s.UI.AwaitingServer = false
		s = appendLog(s, act.Meta, act.Sale.PlayerID, "build",
			fmt.Sprintf("%s sold a house on %s", playerName(s.Game, act.Sale.PlayerID),
				squareName(s.Game, act.Sale.PropertyID)))

	case PropertyMortgaged:
		s = withPlayer(s, act.Mortgage.PlayerID, func(p *types.Player) {
			p.Money += act.Mortgage.MortgageValue
			p.Properties = setMortgaged(p.Properties, act.Mortgage.PropertyID, true)
		})
		s = withSquare(s, act.Mortgage.PropertyID, func(sq *types.Square) {
			sq.Mortgaged = true
		})
		s.UI.AwaitingServer = false
		s = appendLog(s, act.Meta, act.Mortgage.PlayerID, "mortgage",
			fmt.Sprintf("%s mortgaged %s", playerName(s.Game, act.Mortgage.PlayerID),
				squareName(s.Game, act.Mortgage.PropertyID)))

	case PropertyUnmortgaged:
		s = withPlayer(s, act.Unmortgage.PlayerID, func(p *types.Player) {
			p.Money -= act.Unmortgage.Cost
			p.Properties = setMortgaged(p.Properties, act.Unmortgage.PropertyID, false)
		})
		s = withSquare(s, act.Unmortgage.PropertyID, func(sq *types.Square) {
			sq.Mortgaged = false
		})
		s.UI.AwaitingServer = false
		s = appendLog(s, act.Meta, act.Unmortgage.PlayerID, "mortgage",
			fmt.Sprintf("%s unmortgaged %s", playerName(s.Game, act.Unmortgage.PlayerID),
				squareName(s.Game, act.Unmortgage.PropertyID)))

	case TradeOfferReceived:
		if s.Game != nil {
			g := cloneGame(s.Game)
			trade := act.Trade
			g.PendingTrade = &trade
			s.Game = g
		}
		trade := act.Trade
		s.UI.PendingTrade = &trade
		s = appendLog(s, act.Meta, act.Trade.From, "trade",
			fmt.Sprintf("%s proposed a trade", playerName(s.Game, act.Trade.From)))

	case TradeOfferSent:
		s.UI.AwaitingServer = false
		s = appendLog(s, act.Meta, s.Session.PlayerID, "trade", "Trade offer sent")

	case TradeAccepted:
		s = clearTrade(s)
		s = appendLog(s, act.Meta, "", "trade", "Trade accepted")

	case TradeRejected:
		s = clearTrade(s)
		s = appendLog(s, act.Meta, "", "trade", "Trade rejected")

	case TradeCancelled:
		s = clearTrade(s)
		s = appendLog(s, act.Meta, "", "trade", "Trade cancelled")

	case CardDrawn:
		if s.Game != nil {
			g := cloneGame(s.Game)
			card := act.Card
			g.CurrentCard = &card
			s.Game = g
		}
		s.UI.AwaitingServer = false
		s = appendLog(s, act.Meta, act.PlayerID, "card",
			fmt.Sprintf("%s drew a card: %s", playerName(s.Game, act.PlayerID), act.Card.Text))

	case CardEffectExecuted:
		if s.Game != nil {
			g := cloneGame(s.Game)
			g.CurrentCard = nil
			s.Game = g
		}
		s.UI.AwaitingServer = false

	case JailFinePaid:
		s = withPlayer(s, act.Fine.PlayerID, func(p *types.Player) {
			p.Money -= act.Fine.Amount
			p.IsInJail = false
			p.JailTurnCount = 0
		})
		s.UI.AwaitingServer = false
		s = appendLog(s, act.Meta, act.Fine.PlayerID, "jail",
			fmt.Sprintf("%s paid a $%d fine", playerName(s.Game, act.Fine.PlayerID), act.Fine.Amount))

	case JailCardUsed:
		s = withPlayer(s, act.PlayerID, func(p *types.Player) {
			if p.GetOutOfJailCards > 0 {
				p.GetOutOfJailCards--
			}
			p.IsInJail = false
			p.JailTurnCount = 0
		})
		s.UI.AwaitingServer = false
		s = appendLog(s, act.Meta, act.PlayerID, "jail",
			fmt.Sprintf("%s used a Get Out of Jail Free card", playerName(s.Game, act.PlayerID)))

	case TurnEnded:
		if s.Game != nil {
			g := cloneGame(s.Game)
			g.CurrentTurn = act.NextTurn
			s.Game = g
		}
		s.UI.AwaitingServer = false
		s = appendLog(s, act.Meta, act.NextTurn, "turn",
			fmt.Sprintf("It is %s's turn", playerName(s.Game, act.NextTurn)))

	case ServerError:
		s.UI.AwaitingServer = false
		s.UI.LastServerError = act.Reason

	default:
		// Forward compatible: an action kind this client does not know
		// leaves the state untouched.
	}

	return s
}

// appendLog appends one entry and truncates the ring to the newest
// MaxLogEntries, oldest dropped first.
func appendLog(s State, m Meta, playerID, entryType, msg string) State {
	entry := types.LogEntry{
		ID:        m.ID,
		Timestamp: m.At,
		PlayerID:  playerID,
		Type:      entryType,
		Message:   msg,
	}
	log := append(append([]types.LogEntry(nil), s.UI.EventLog...), entry)
	if len(log) > MaxLogEntries {
		log = log[len(log)-MaxLogEntries:]
	}
	s.UI.EventLog = log
	return s
}

func cloneGame(g *types.GameSnapshot) *types.GameSnapshot {
	out := *g
	out.Players = append([]types.Player(nil), g.Players...)
	out.Board = append([]types.Square(nil), g.Board...)
	return &out
}

func clonedProps(props []types.OwnedProperty) []types.OwnedProperty {
	return append([]types.OwnedProperty(nil), props...)
}

// addHouses adjusts the improvement count the player carries for one
// property, kept in step with the square's own count.
func addHouses(props []types.OwnedProperty, squareID string, delta int) []types.OwnedProperty {
	out := clonedProps(props)
	for i := range out {
		if out[i].SquareID == squareID {
			out[i].Houses += delta
			if out[i].Houses < 0 {
				out[i].Houses = 0
			}
		}
	}
	return out
}

func setMortgaged(props []types.OwnedProperty, squareID string, mortgaged bool) []types.OwnedProperty {
	out := clonedProps(props)
	for i := range out {
		if out[i].SquareID == squareID {
			out[i].Mortgaged = mortgaged
		}
	}
	return out
}

func withPlayer(s State, id string, fn func(*types.Player)) State {
	if s.Game == nil {
		return s
	}
	g := cloneGame(s.Game)
	for i := range g.Players {
		if g.Players[i].ID == id {
			fn(&g.Players[i])
			break
		}
	}
	s.Game = g
	return s
}

func withSquare(s State, id string, fn func(*types.Square)) State {
	if s.Game == nil {
		return s
	}
	g := cloneGame(s.Game)
	for i := range g.Board {
		if g.Board[i].ID == id {
			fn(&g.Board[i])
			break
		}
	}
	s.Game = g
	return s
}

func clearTrade(s State) State {
	if s.Game != nil {
		g := cloneGame(s.Game)
		g.PendingTrade = nil
		s.Game = g
	}
	s.UI.PendingTrade = nil
	s.UI.AwaitingServer = false
	return s
}

func playerName(g *types.GameSnapshot, id string) string {
	if g != nil {
		if p, ok := g.PlayerByID(id); ok {
			return p.Name
		}
	}
	return id
}

func squareName(g *types.GameSnapshot, id string) string {
	if g != nil {
		if sq, ok := g.SquareByID(id); ok && sq.Name != "" {
			return sq.Name
		}
	}
	return id
}
