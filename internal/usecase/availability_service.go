package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/availability"
	idgen "github.com/sampaiofree/temporadaonline-sub001/internal/platform/id"
)

// AvailabilityService maintains a user's weekly availability windows, the
// input the scheduler intersects with league hours.
type AvailabilityService struct {
	repo   availability.Repository
	idGen  idgen.Generator
	logger *slog.Logger
	now    func() time.Time
}

func NewAvailabilityService(repo availability.Repository, idGen idgen.Generator, logger *slog.Logger) *AvailabilityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AvailabilityService{
		repo:   repo,
		idGen:  idGen,
		logger: logger,
		now:    time.Now,
	}
}

// WindowInput is one weekly window expressed as "15:04" wall-clock strings.
type WindowInput struct {
	Weekday time.Weekday
	Start   string
	End     string
}

// Replace swaps the user's whole weekly grid in one call. Windows of the same
// day must not overlap or touch.
func (s *AvailabilityService) Replace(ctx context.Context, userID string, inputs []WindowInput) ([]availability.Window, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AvailabilityService.Replace")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	windows := make([]availability.Window, 0, len(inputs))
	for _, in := range inputs {
		start, err := availability.ParseClock(in.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		end, err := availability.ParseClock(in.End)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		id, err := s.idGen.NewID()
		if err != nil {
			return nil, fmt.Errorf("generate window id: %w", err)
		}
		windows = append(windows, availability.Window{
			ID:          id,
			UserID:      userID,
			Weekday:     in.Weekday,
			StartMinute: start,
			EndMinute:   end,
		})
	}
	if err := availability.ValidateSet(windows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.repo.ReplaceForUser(ctx, userID, windows); err != nil {
		return nil, fmt.Errorf("replace availability: %w", err)
	}
	s.logger.InfoContext(ctx, "availability replaced", "user_id", userID, "windows", len(windows))
	return windows, nil
}

// List returns the user's windows ordered by weekday then start.
func (s *AvailabilityService) List(ctx context.Context, userID string) ([]availability.Window, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AvailabilityService.List")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	windows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	sort.Slice(windows, func(i, j int) bool {
		if windows[i].Weekday != windows[j].Weekday {
			return windows[i].Weekday < windows[j].Weekday
		}
		return windows[i].StartMinute < windows[j].StartMinute
	})
	return windows, nil
}
