package memory

import (
	"context"
	"sync"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/roster"
)

type TransferLog struct {
	mu      sync.RWMutex
	records []roster.TransferRecord
}

func NewTransferLog() *TransferLog {
	return &TransferLog{}
}

func (l *TransferLog) Append(_ context.Context, record roster.TransferRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
	return nil
}

func (l *TransferLog) ListByLeague(_ context.Context, leagueID string) ([]roster.TransferRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []roster.TransferRecord
	for _, record := range l.records {
		if record.LeagueID == leagueID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (l *TransferLog) ListByClub(_ context.Context, clubID string) ([]roster.TransferRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []roster.TransferRecord
	for _, record := range l.records {
		if record.FromClubID == clubID || record.ToClubID == clubID {
			out = append(out, record)
		}
	}
	return out, nil
}
