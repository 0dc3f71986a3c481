package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/market"
)

type AuctionItemRepository struct {
	mu    sync.RWMutex
	items map[string]market.Item
}

func NewAuctionItemRepository() *AuctionItemRepository {
	return &AuctionItemRepository{items: make(map[string]market.Item)}
}

func itemKey(scopeID, playerID string) string {
	return scopeID + "/" + playerID
}

func (r *AuctionItemRepository) GetByScopePlayer(_ context.Context, scopeID, playerID string) (market.Item, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[itemKey(scopeID, playerID)]
	return item, ok, nil
}

func (r *AuctionItemRepository) GetByScopePlayers(_ context.Context, scopeID string, playerIDs []string) ([]market.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]market.Item, 0, len(playerIDs))
	for _, playerID := range playerIDs {
		if item, ok := r.items[itemKey(scopeID, playerID)]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *AuctionItemRepository) ListExpiredOpen(_ context.Context, scopeID string, now time.Time) ([]market.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []market.Item
	for _, item := range r.items {
		if scopeID != "" && item.ScopeID != scopeID {
			continue
		}
		if item.Expired(now) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *AuctionItemRepository) Upsert(_ context.Context, item market.Item) (market.Item, error) {
	if item.ScopeID == "" || item.PlayerID == "" {
		return market.Item{}, fmt.Errorf("auction item scope and player are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[itemKey(item.ScopeID, item.PlayerID)] = item
	return item, nil
}

type AuctionBidRepository struct {
	mu   sync.RWMutex
	bids []market.Bid
}

func NewAuctionBidRepository() *AuctionBidRepository {
	return &AuctionBidRepository{}
}

func (r *AuctionBidRepository) Append(_ context.Context, bid market.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bids = append(r.bids, bid)
	return nil
}

func (r *AuctionBidRepository) ListByItem(_ context.Context, itemID string) ([]market.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []market.Bid
	for _, bid := range r.bids {
		if bid.ItemID == itemID {
			out = append(out, bid)
		}
	}
	return out, nil
}

type ProposalRepository struct {
	mu        sync.RWMutex
	proposals map[string]market.Proposal
}

func NewProposalRepository() *ProposalRepository {
	return &ProposalRepository{proposals: make(map[string]market.Proposal)}
}

func (r *ProposalRepository) GetByID(_ context.Context, proposalID string) (market.Proposal, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	proposal, ok := r.proposals[proposalID]
	return proposal, ok, nil
}

func (r *ProposalRepository) Create(_ context.Context, proposal market.Proposal) error {
	if err := proposal.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.proposals[proposal.ID]; exists {
		return fmt.Errorf("proposal %s already exists", proposal.ID)
	}
	r.proposals[proposal.ID] = proposal
	return nil
}

func (r *ProposalRepository) Update(_ context.Context, proposal market.Proposal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.proposals[proposal.ID]; !exists {
		return fmt.Errorf("proposal %s does not exist", proposal.ID)
	}
	r.proposals[proposal.ID] = proposal
	return nil
}

func (r *ProposalRepository) ListOpenByClub(_ context.Context, leagueID, clubID string) ([]market.Proposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []market.Proposal
	for _, proposal := range r.proposals {
		if proposal.Status != market.ProposalOpen {
			continue
		}
		if proposal.LeagueID != leagueID {
			continue
		}
		if proposal.FromClubID == clubID || proposal.ToClubID == clubID {
			out = append(out, proposal)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
