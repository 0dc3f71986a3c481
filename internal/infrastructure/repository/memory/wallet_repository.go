package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/wallet"
)

type WalletRepository struct {
	mu      sync.Mutex
	wallets map[string]wallet.Wallet
	now     func() time.Time
}

func NewWalletRepository() *WalletRepository {
	return &WalletRepository{
		wallets: make(map[string]wallet.Wallet),
		now:     time.Now,
	}
}

func walletKey(leagueID, clubID string) string {
	return leagueID + "/" + clubID
}

func (r *WalletRepository) GetOrCreate(_ context.Context, leagueID, clubID string, startingBalance int64) (wallet.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getOrCreateLocked(leagueID, clubID, startingBalance), nil
}

func (r *WalletRepository) Credit(_ context.Context, leagueID, clubID string, amount int64) (wallet.Wallet, error) {
	if amount < 0 {
		return wallet.Wallet{}, fmt.Errorf("credit amount cannot be negative")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	w := r.getOrCreateLocked(leagueID, clubID, 0)
	w.Balance += amount
	w.UpdatedAt = r.now().UTC()
	r.wallets[walletKey(leagueID, clubID)] = w
	return w, nil
}

func (r *WalletRepository) Debit(_ context.Context, leagueID, clubID string, amount int64, allowNegative bool) (wallet.Wallet, error) {
	if amount < 0 {
		return wallet.Wallet{}, fmt.Errorf("debit amount cannot be negative")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	w := r.getOrCreateLocked(leagueID, clubID, 0)
	if !allowNegative && w.Balance-amount < 0 {
		return wallet.Wallet{}, fmt.Errorf("%w: balance=%d amount=%d", wallet.ErrInsufficientFunds, w.Balance, amount)
	}
	w.Balance -= amount
	w.UpdatedAt = r.now().UTC()
	r.wallets[walletKey(leagueID, clubID)] = w
	return w, nil
}

func (r *WalletRepository) getOrCreateLocked(leagueID, clubID string, startingBalance int64) wallet.Wallet {
	key := walletKey(leagueID, clubID)
	if w, ok := r.wallets[key]; ok {
		return w
	}
	now := r.now().UTC()
	w := wallet.Wallet{
		LeagueID:  leagueID,
		ClubID:    clubID,
		Balance:   startingBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.wallets[key] = w
	return w
}
