package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/payroll"
)

type SettlementRepository struct {
	mu          sync.RWMutex
	settlements map[string]payroll.Settlement
}

func NewSettlementRepository() *SettlementRepository {
	return &SettlementRepository{settlements: make(map[string]payroll.Settlement)}
}

func settlementKey(fixtureID, clubID string) string {
	return fixtureID + "/" + clubID
}

func (r *SettlementRepository) Create(_ context.Context, settlement payroll.Settlement) error {
	if err := settlement.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := settlementKey(settlement.FixtureID, settlement.ClubID)
	if _, exists := r.settlements[key]; exists {
		return fmt.Errorf("%w: fixture=%s club=%s", payroll.ErrAlreadySettled, settlement.FixtureID, settlement.ClubID)
	}
	r.settlements[key] = settlement
	return nil
}

func (r *SettlementRepository) GetByFixtureAndClub(_ context.Context, fixtureID, clubID string) (payroll.Settlement, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	settlement, ok := r.settlements[settlementKey(fixtureID, clubID)]
	return settlement, ok, nil
}
