package postgres

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/league"
)

// leagueTableModel maps the leagues row. Schedule configuration (weekdays,
// daily ranges, calendar/blackout/auction periods) lives in jsonb columns,
// durations are stored as whole seconds.
type leagueTableModel struct {
	ID                        string    `db:"id"`
	Name                      string    `db:"name"`
	ConfederationID           string    `db:"confederation_id"`
	GameEdition               string    `db:"game_edition"`
	RosterCap                 int       `db:"roster_cap"`
	StartingBalance           int64     `db:"starting_balance"`
	ReleaseMultiplier         float64   `db:"release_multiplier"`
	MinResalePercent          int       `db:"min_resale_percent"`
	AllowNegativePurchases    bool      `db:"allow_negative_purchases"`
	WalkoverPenalty           int64     `db:"walkover_penalty"`
	MatchDurationSeconds      int64     `db:"match_duration_seconds"`
	AllowedWeekdays           []byte    `db:"allowed_weekdays"`
	DailyRanges               []byte    `db:"daily_ranges"`
	CalendarPeriods           []byte    `db:"calendar_periods"`
	BlackoutPeriods           []byte    `db:"blackout_periods"`
	AuctionPeriods            []byte    `db:"auction_periods"`
	MaxReschedules            int       `db:"max_reschedules"`
	MinRescheduleNoticeSecond int64     `db:"min_reschedule_notice_seconds"`
	ScoreConfirmWindowSeconds int64     `db:"score_confirm_window_seconds"`
	Timezone                  string    `db:"timezone"`
	CreatedAt                 time.Time `db:"created_at"`
	UpdatedAt                 time.Time `db:"updated_at"`
}

type clockRangeJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type periodJSON struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (m leagueTableModel) toDomain() (league.League, error) {
	var weekdays []int
	if err := decodeJSONColumn(m.AllowedWeekdays, &weekdays); err != nil {
		return league.League{}, fmt.Errorf("decode league %s allowed weekdays: %w", m.ID, err)
	}
	var ranges []clockRangeJSON
	if err := decodeJSONColumn(m.DailyRanges, &ranges); err != nil {
		return league.League{}, fmt.Errorf("decode league %s daily ranges: %w", m.ID, err)
	}
	calendar, err := decodePeriods(m.CalendarPeriods)
	if err != nil {
		return league.League{}, fmt.Errorf("decode league %s calendar periods: %w", m.ID, err)
	}
	blackout, err := decodePeriods(m.BlackoutPeriods)
	if err != nil {
		return league.League{}, fmt.Errorf("decode league %s blackout periods: %w", m.ID, err)
	}
	auction, err := decodePeriods(m.AuctionPeriods)
	if err != nil {
		return league.League{}, fmt.Errorf("decode league %s auction periods: %w", m.ID, err)
	}

	l := league.League{
		ID:                     m.ID,
		Name:                   m.Name,
		ConfederationID:        m.ConfederationID,
		GameEdition:            m.GameEdition,
		RosterCap:              m.RosterCap,
		StartingBalance:        m.StartingBalance,
		ReleaseMultiplier:      m.ReleaseMultiplier,
		MinResalePercent:       m.MinResalePercent,
		AllowNegativePurchases: m.AllowNegativePurchases,
		WalkoverPenalty:        m.WalkoverPenalty,
		MatchDuration:          time.Duration(m.MatchDurationSeconds) * time.Second,
		CalendarPeriods:        calendar,
		BlackoutPeriods:        blackout,
		AuctionPeriods:         auction,
		MaxReschedules:         m.MaxReschedules,
		MinRescheduleNotice:    time.Duration(m.MinRescheduleNoticeSecond) * time.Second,
		ScoreConfirmWindow:     time.Duration(m.ScoreConfirmWindowSeconds) * time.Second,
		Timezone:               m.Timezone,
	}
	for _, d := range weekdays {
		l.AllowedWeekdays = append(l.AllowedWeekdays, time.Weekday(d))
	}
	for _, r := range ranges {
		l.DailyRanges = append(l.DailyRanges, league.ClockRange{Start: r.Start, End: r.End})
	}
	return l, nil
}

func decodePeriods(raw []byte) ([]league.Period, error) {
	var rows []periodJSON
	if err := decodeJSONColumn(raw, &rows); err != nil {
		return nil, err
	}
	out := make([]league.Period, 0, len(rows))
	for _, r := range rows {
		out = append(out, league.Period{From: r.From, To: r.To})
	}
	return out, nil
}

func decodeJSONColumn(raw []byte, target any) error {
	if len(raw) == 0 {
		return nil
	}
	return sonic.Unmarshal(raw, target)
}
