package wallet

import "context"

// Repository is the wallet ledger. Credit and Debit are read-modify-write
// operations; implementations must hold an exclusive lock on the wallet row
// for the whole mutation so concurrent calls against the same wallet
// serialize. Callers are expected to run money-moving sequences inside a
// uow.Runner unit of work.
type Repository interface {
	// GetOrCreate returns the wallet for the pair, creating it with the
	// given starting balance when it does not exist yet.
	GetOrCreate(ctx context.Context, leagueID, clubID string, startingBalance int64) (Wallet, error)

	// Credit adds amount (>= 0) to the wallet balance.
	Credit(ctx context.Context, leagueID, clubID string, amount int64) (Wallet, error)

	// Debit subtracts amount (>= 0) from the wallet balance. When the
	// resulting balance would be negative and allowNegative is false it
	// fails with ErrInsufficientFunds and leaves the balance untouched.
	Debit(ctx context.Context, leagueID, clubID string, amount int64, allowNegative bool) (Wallet, error)
}
