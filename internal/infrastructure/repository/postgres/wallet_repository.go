package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/wallet"
)

type walletTableModel struct {
	LeagueID  string    `db:"league_id"`
	ClubID    string    `db:"club_id"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (m walletTableModel) toDomain() wallet.Wallet {
	return wallet.Wallet{
		LeagueID:  m.LeagueID,
		ClubID:    m.ClubID,
		Balance:   m.Balance,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// WalletRepository holds an exclusive row lock for every read-modify-write,
// so concurrent money moves against one wallet serialize inside their units
// of work.
type WalletRepository struct {
	store *Store
}

func NewWalletRepository(store *Store) *WalletRepository {
	return &WalletRepository{store: store}
}

const getWalletForUpdateQuery = `
SELECT league_id, club_id, balance, created_at, updated_at
FROM wallets
WHERE league_id = $1
  AND club_id = $2
FOR UPDATE`

const insertWalletQuery = `
INSERT INTO wallets (league_id, club_id, balance)
VALUES ($1, $2, $3)
ON CONFLICT (league_id, club_id) DO NOTHING
RETURNING league_id, club_id, balance, created_at, updated_at`

func (r *WalletRepository) GetOrCreate(ctx context.Context, leagueID, clubID string, startingBalance int64) (wallet.Wallet, error) {
	row, found, err := r.lockWallet(ctx, leagueID, clubID)
	if err != nil {
		return wallet.Wallet{}, err
	}
	if found {
		return row.toDomain(), nil
	}

	var created walletTableModel
	err = sqlx.GetContext(ctx, r.store.ext(ctx), &created, insertWalletQuery, leagueID, clubID, startingBalance)
	if err == nil {
		return created.toDomain(), nil
	}
	if !isNotFound(err) {
		return wallet.Wallet{}, fmt.Errorf("create wallet %s/%s: %w", leagueID, clubID, err)
	}

	// Another unit inserted the row between our lock probe and the insert;
	// lock the winner's row instead.
	row, found, err = r.lockWallet(ctx, leagueID, clubID)
	if err != nil {
		return wallet.Wallet{}, err
	}
	if !found {
		return wallet.Wallet{}, fmt.Errorf("wallet %s/%s vanished during creation", leagueID, clubID)
	}
	return row.toDomain(), nil
}

func (r *WalletRepository) Credit(ctx context.Context, leagueID, clubID string, amount int64) (wallet.Wallet, error) {
	if amount < 0 {
		return wallet.Wallet{}, fmt.Errorf("wallet credit amount cannot be negative")
	}
	return r.applyDelta(ctx, leagueID, clubID, amount, true)
}

func (r *WalletRepository) Debit(ctx context.Context, leagueID, clubID string, amount int64, allowNegative bool) (wallet.Wallet, error) {
	if amount < 0 {
		return wallet.Wallet{}, fmt.Errorf("wallet debit amount cannot be negative")
	}
	return r.applyDelta(ctx, leagueID, clubID, -amount, allowNegative)
}

func (r *WalletRepository) applyDelta(ctx context.Context, leagueID, clubID string, delta int64, allowNegative bool) (wallet.Wallet, error) {
	row, found, err := r.lockWallet(ctx, leagueID, clubID)
	if err != nil {
		return wallet.Wallet{}, err
	}
	if !found {
		return wallet.Wallet{}, fmt.Errorf("wallet %s/%s does not exist", leagueID, clubID)
	}

	next := row.Balance + delta
	if next < 0 && !allowNegative {
		return wallet.Wallet{}, fmt.Errorf("%w: balance=%d amount=%d", wallet.ErrInsufficientFunds, row.Balance, -delta)
	}

	const updateQuery = `
UPDATE wallets
SET balance = $3, updated_at = NOW()
WHERE league_id = $1
  AND club_id = $2
RETURNING league_id, club_id, balance, created_at, updated_at`

	var updated walletTableModel
	if err := sqlx.GetContext(ctx, r.store.ext(ctx), &updated, updateQuery, leagueID, clubID, next); err != nil {
		return wallet.Wallet{}, fmt.Errorf("update wallet %s/%s balance: %w", leagueID, clubID, err)
	}
	return updated.toDomain(), nil
}

func (r *WalletRepository) lockWallet(ctx context.Context, leagueID, clubID string) (walletTableModel, bool, error) {
	var row walletTableModel
	if err := sqlx.GetContext(ctx, r.store.ext(ctx), &row, getWalletForUpdateQuery, leagueID, clubID); err != nil {
		if isNotFound(err) {
			return walletTableModel{}, false, nil
		}
		return walletTableModel{}, false, fmt.Errorf("lock wallet %s/%s: %w", leagueID, clubID, err)
	}
	return row, true, nil
}
