package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/market"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/roster"
	idgen "github.com/sampaiofree/temporadaonline-sub001/internal/platform/id"
	"github.com/sampaiofree/temporadaonline-sub001/internal/platform/uow"
)

// ProposalService is the negotiated side channel of the market: a club offers
// a player, cash, or both to another club. Acceptance executes the underlying
// sale or swap through the transfer engine inside one unit of work, so an
// accepted proposal and its exchange either both commit or neither does.
type ProposalService struct {
	proposalRepo market.ProposalRepository
	transfers    *TransferService
	runner       uow.Runner
	idGen        idgen.Generator
	logger       *slog.Logger
	now          func() time.Time
}

func NewProposalService(
	proposalRepo market.ProposalRepository,
	transfers *TransferService,
	runner uow.Runner,
	idGen idgen.Generator,
	logger *slog.Logger,
) *ProposalService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProposalService{
		proposalRepo: proposalRepo,
		transfers:    transfers,
		runner:       runner,
		idGen:        idGen,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateProposalInput is the incoming payload for a new offer. CashAmount is
// signed: positive means the sender pays the receiver.
type CreateProposalInput struct {
	ActorUserID       string
	LeagueID          string
	FromClubID        string
	ToClubID          string
	OfferedPlayerID   string
	RequestedPlayerID string
	CashAmount        int64
}

func (s *ProposalService) Create(ctx context.Context, input CreateProposalInput) (market.Proposal, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProposalService.Create")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.FromClubID = strings.TrimSpace(input.FromClubID)
	input.ToClubID = strings.TrimSpace(input.ToClubID)
	input.OfferedPlayerID = strings.TrimSpace(input.OfferedPlayerID)
	input.RequestedPlayerID = strings.TrimSpace(input.RequestedPlayerID)

	l, sender, err := s.transfers.resolveClub(ctx, input.LeagueID, input.FromClubID, input.ActorUserID)
	if err != nil {
		return market.Proposal{}, err
	}
	if mode := market.ResolveMode(s.now(), l.AuctionPeriods, l.BlackoutPeriods); mode != market.ModeOpen {
		return market.Proposal{}, fmt.Errorf("%w: market mode is %s", market.ErrMarketClosed, mode)
	}
	receiver, _, err := s.transfers.resolveScopeClub(ctx, l, input.ToClubID)
	if err != nil {
		return market.Proposal{}, err
	}

	// Ownership is checked at creation for a friendly error, and re-checked
	// under locks at acceptance where it actually matters.
	if input.OfferedPlayerID != "" {
		entry, found, err := s.transfers.rosterRepo.GetActiveByScopePlayer(ctx, l.Scope(), input.OfferedPlayerID)
		if err != nil {
			return market.Proposal{}, fmt.Errorf("get roster entry: %w", err)
		}
		if !found || entry.ClubID != sender.ID {
			return market.Proposal{}, fmt.Errorf("%w: club=%s player=%s", roster.ErrNotOwner, sender.ID, input.OfferedPlayerID)
		}
	}
	if input.RequestedPlayerID != "" {
		entry, found, err := s.transfers.rosterRepo.GetActiveByScopePlayer(ctx, l.Scope(), input.RequestedPlayerID)
		if err != nil {
			return market.Proposal{}, fmt.Errorf("get roster entry: %w", err)
		}
		if !found || entry.ClubID != receiver.ID {
			return market.Proposal{}, fmt.Errorf("%w: club=%s player=%s", roster.ErrNotOwner, receiver.ID, input.RequestedPlayerID)
		}
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return market.Proposal{}, fmt.Errorf("generate proposal id: %w", err)
	}
	proposal := market.Proposal{
		ID:                id,
		LeagueID:          l.ID,
		FromClubID:        sender.ID,
		ToClubID:          receiver.ID,
		OfferedPlayerID:   input.OfferedPlayerID,
		RequestedPlayerID: input.RequestedPlayerID,
		CashAmount:        input.CashAmount,
		Status:            market.ProposalOpen,
		CreatedAt:         s.now().UTC(),
	}
	if err := proposal.Validate(); err != nil {
		return market.Proposal{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.proposalRepo.Create(ctx, proposal); err != nil {
		return market.Proposal{}, fmt.Errorf("persist proposal: %w", err)
	}

	s.logger.InfoContext(ctx, "proposal created",
		"proposal_id", proposal.ID,
		"league_id", l.ID,
		"from_club_id", sender.ID,
		"to_club_id", receiver.ID,
	)
	return proposal, nil
}

// ResolveProposalInput addresses one open proposal on behalf of a club owner.
type ResolveProposalInput struct {
	ActorUserID string
	LeagueID    string
	ClubID      string
	ProposalID  string
}

// Accept executes the offered exchange. Only the receiving club may accept.
// Negotiated trades stay legal outside the open window; only an auction
// window freezes proposals, and it is checked at acceptance time regardless
// of when the proposal was created.
func (s *ProposalService) Accept(ctx context.Context, input ResolveProposalInput) (market.Proposal, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProposalService.Accept")
	defer span.End()

	l, receiver, err := s.transfers.resolveClub(ctx, strings.TrimSpace(input.LeagueID), strings.TrimSpace(input.ClubID), input.ActorUserID)
	if err != nil {
		return market.Proposal{}, err
	}
	if mode := market.ResolveMode(s.now(), l.AuctionPeriods, l.BlackoutPeriods); mode == market.ModeAuction {
		return market.Proposal{}, fmt.Errorf("%w: market mode is %s", market.ErrMarketClosed, mode)
	}

	var resolved market.Proposal
	err = s.runner.Atomic(ctx, func(ctx context.Context) error {
		proposal, found, err := s.proposalRepo.GetByID(ctx, strings.TrimSpace(input.ProposalID))
		if err != nil {
			return fmt.Errorf("get proposal: %w", err)
		}
		if !found {
			return fmt.Errorf("%w: proposal=%s", ErrNotFound, input.ProposalID)
		}
		if proposal.ToClubID != receiver.ID {
			return fmt.Errorf("%w: club=%s is not the proposal receiver", ErrUnauthorized, receiver.ID)
		}
		if proposal.Status != market.ProposalOpen {
			return fmt.Errorf("%w: status=%s", market.ErrProposalClosed, proposal.Status)
		}

		sender, senderLeague, err := s.transfers.resolveScopeClub(ctx, l, proposal.FromClubID)
		if err != nil {
			return err
		}

		switch {
		case proposal.OfferedPlayerID != "" && proposal.RequestedPlayerID != "":
			err = s.transfers.swapLocked(ctx,
				senderLeague, sender, proposal.OfferedPlayerID,
				l, receiver, proposal.RequestedPlayerID,
				proposal.CashAmount,
			)
		case proposal.RequestedPlayerID != "":
			// Sender buys the receiver's player for the cash amount.
			_, err = s.transfers.sellLocked(ctx, l, receiver, senderLeague, sender, proposal.RequestedPlayerID, proposal.CashAmount)
		default:
			// Sender sells its player; the receiver pays the absolute cash.
			_, err = s.transfers.sellLocked(ctx, senderLeague, sender, l, receiver, proposal.OfferedPlayerID, -proposal.CashAmount)
		}
		if err != nil {
			return err
		}

		now := s.now().UTC()
		proposal.Status = market.ProposalAccepted
		proposal.ResolvedAt = &now
		if err := s.proposalRepo.Update(ctx, proposal); err != nil {
			return fmt.Errorf("persist proposal: %w", err)
		}
		resolved = proposal
		return nil
	})
	if err != nil {
		return market.Proposal{}, err
	}

	s.logger.InfoContext(ctx, "proposal accepted",
		"proposal_id", resolved.ID,
		"league_id", l.ID,
		"club_id", receiver.ID,
	)
	return resolved, nil
}

// Reject closes a proposal without executing it. Only the receiver may reject.
func (s *ProposalService) Reject(ctx context.Context, input ResolveProposalInput) (market.Proposal, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProposalService.Reject")
	defer span.End()
	return s.closeProposal(ctx, input, market.ProposalRejected)
}

// Cancel withdraws a proposal. Only the sender may cancel.
func (s *ProposalService) Cancel(ctx context.Context, input ResolveProposalInput) (market.Proposal, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProposalService.Cancel")
	defer span.End()
	return s.closeProposal(ctx, input, market.ProposalCancelled)
}

func (s *ProposalService) closeProposal(ctx context.Context, input ResolveProposalInput, status market.ProposalStatus) (market.Proposal, error) {
	l, actor, err := s.transfers.resolveClub(ctx, strings.TrimSpace(input.LeagueID), strings.TrimSpace(input.ClubID), input.ActorUserID)
	if err != nil {
		return market.Proposal{}, err
	}
	if mode := market.ResolveMode(s.now(), l.AuctionPeriods, l.BlackoutPeriods); mode == market.ModeAuction {
		return market.Proposal{}, fmt.Errorf("%w: market mode is %s", market.ErrMarketClosed, mode)
	}

	var resolved market.Proposal
	err = s.runner.Atomic(ctx, func(ctx context.Context) error {
		proposal, found, err := s.proposalRepo.GetByID(ctx, strings.TrimSpace(input.ProposalID))
		if err != nil {
			return fmt.Errorf("get proposal: %w", err)
		}
		if !found {
			return fmt.Errorf("%w: proposal=%s", ErrNotFound, input.ProposalID)
		}
		if status == market.ProposalRejected && proposal.ToClubID != actor.ID {
			return fmt.Errorf("%w: club=%s is not the proposal receiver", ErrUnauthorized, actor.ID)
		}
		if status == market.ProposalCancelled && proposal.FromClubID != actor.ID {
			return fmt.Errorf("%w: club=%s is not the proposal sender", ErrUnauthorized, actor.ID)
		}
		if proposal.Status != market.ProposalOpen {
			return fmt.Errorf("%w: status=%s", market.ErrProposalClosed, proposal.Status)
		}

		now := s.now().UTC()
		proposal.Status = status
		proposal.ResolvedAt = &now
		if err := s.proposalRepo.Update(ctx, proposal); err != nil {
			return fmt.Errorf("persist proposal: %w", err)
		}
		resolved = proposal
		return nil
	})
	if err != nil {
		return market.Proposal{}, err
	}

	s.logger.InfoContext(ctx, "proposal closed",
		"proposal_id", resolved.ID,
		"status", string(status),
	)
	return resolved, nil
}

// ListOpen returns the open proposals a club sent or received.
func (s *ProposalService) ListOpen(ctx context.Context, leagueID, clubID string) ([]market.Proposal, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProposalService.ListOpen")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	clubID = strings.TrimSpace(clubID)
	if leagueID == "" || clubID == "" {
		return nil, fmt.Errorf("%w: league and club ids are required", ErrInvalidInput)
	}
	proposals, err := s.proposalRepo.ListOpenByClub(ctx, leagueID, clubID)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	return proposals, nil
}
