package market

import (
	"errors"
	"fmt"
	"time"
)

var ErrProposalClosed = errors.New("proposal is no longer open")

type ProposalStatus string

const (
	ProposalOpen     ProposalStatus = "open"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalRejected ProposalStatus = "rejected"
	ProposalCancelled ProposalStatus = "cancelled"
)

// Proposal is a club-to-club offer, independent of the auction engine. The
// sender offers OfferedPlayerID (owned by the sender) and/or a cash amount,
// asking for RequestedPlayerID (owned by the receiver). CashAmount is signed:
// positive means the sender pays the receiver.
type Proposal struct {
	ID                string
	LeagueID          string
	FromClubID        string
	ToClubID          string
	OfferedPlayerID   string
	RequestedPlayerID string
	CashAmount        int64
	Status            ProposalStatus
	CreatedAt         time.Time
	ResolvedAt        *time.Time
}

func (p Proposal) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("proposal id is required")
	}
	if p.LeagueID == "" {
		return fmt.Errorf("proposal league id is required")
	}
	if p.FromClubID == "" || p.ToClubID == "" {
		return fmt.Errorf("proposal clubs are required")
	}
	if p.FromClubID == p.ToClubID {
		return fmt.Errorf("proposal clubs must differ")
	}
	if p.OfferedPlayerID == "" && p.RequestedPlayerID == "" {
		return fmt.Errorf("proposal must involve at least one player")
	}
	// A one-sided player move needs cash flowing toward the current holder.
	if p.OfferedPlayerID == "" && p.CashAmount <= 0 {
		return fmt.Errorf("proposal requesting a player without a counter player must pay cash")
	}
	if p.RequestedPlayerID == "" && p.CashAmount >= 0 {
		return fmt.Errorf("proposal offering a player without a counter player must receive cash")
	}
	return nil
}
