package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/league"
	"github.com/sampaiofree/temporadaonline-sub001/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the built-in leagues, clubs and player catalog into an
// empty database. An already seeded database is left untouched.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM leagues`); err != nil {
		return fmt.Errorf("count leagues for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, l := range memory.SeedLeagues() {
		args, err := leagueSeedArgs(l)
		if err != nil {
			return err
		}
		sqlQuery, sqlArgs, err := sqlx.Named(`
INSERT INTO leagues (id, name, confederation_id, game_edition, roster_cap, starting_balance, release_multiplier, min_resale_percent, allow_negative_purchases, walkover_penalty, match_duration_seconds, allowed_weekdays, daily_ranges, calendar_periods, blackout_periods, auction_periods, max_reschedules, min_reschedule_notice_seconds, score_confirm_window_seconds, timezone)
VALUES (:id, :name, :confederation_id, :game_edition, :roster_cap, :starting_balance, :release_multiplier, :min_resale_percent, :allow_negative_purchases, :walkover_penalty, :match_duration_seconds, :allowed_weekdays, :daily_ranges, :calendar_periods, :blackout_periods, :auction_periods, :max_reschedules, :min_reschedule_notice_seconds, :score_confirm_window_seconds, :timezone)
ON CONFLICT (id) DO NOTHING`, args)
		if err != nil {
			return fmt.Errorf("bind seed league %s query: %w", l.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, sqlArgs...); err != nil {
			return fmt.Errorf("seed league %s: %w", l.ID, err)
		}
	}

	for _, c := range memory.SeedClubs() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO clubs (id, league_id, owner_user_id, name)
VALUES (:id, :league_id, :owner_user_id, :name)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":            c.ID,
			"league_id":     c.LeagueID,
			"owner_user_id": c.OwnerUserID,
			"name":          c.Name,
		})
		if err != nil {
			return fmt.Errorf("bind seed club %s query: %w", c.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed club %s: %w", c.ID, err)
		}
	}

	for _, p := range memory.SeedPlayers() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO catalog_players (id, game_edition, name, position, market_value, wage, overall)
VALUES (:id, :game_edition, :name, :position, :market_value, :wage, :overall)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":           p.ID,
			"game_edition": p.GameEdition,
			"name":         p.Name,
			"position":     p.Position,
			"market_value": p.MarketValue,
			"wage":         p.Wage,
			"overall":      p.Overall,
		})
		if err != nil {
			return fmt.Errorf("bind seed catalog player %s query: %w", p.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed catalog player %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}

func leagueSeedArgs(l league.League) (map[string]any, error) {
	weekdays := make([]int, 0, len(l.AllowedWeekdays))
	for _, d := range l.AllowedWeekdays {
		weekdays = append(weekdays, int(d))
	}
	ranges := make([]clockRangeJSON, 0, len(l.DailyRanges))
	for _, r := range l.DailyRanges {
		ranges = append(ranges, clockRangeJSON{Start: r.Start, End: r.End})
	}

	encoded := map[string][]byte{}
	for name, value := range map[string]any{
		"allowed_weekdays": weekdays,
		"daily_ranges":     ranges,
		"calendar_periods": encodePeriods(l.CalendarPeriods),
		"blackout_periods": encodePeriods(l.BlackoutPeriods),
		"auction_periods":  encodePeriods(l.AuctionPeriods),
	} {
		raw, err := sonic.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode league %s %s: %w", l.ID, name, err)
		}
		encoded[name] = raw
	}

	return map[string]any{
		"id":                            l.ID,
		"name":                          l.Name,
		"confederation_id":              l.ConfederationID,
		"game_edition":                  l.GameEdition,
		"roster_cap":                    l.RosterCap,
		"starting_balance":              l.StartingBalance,
		"release_multiplier":            l.ReleaseMultiplier,
		"min_resale_percent":            l.MinResalePercent,
		"allow_negative_purchases":      l.AllowNegativePurchases,
		"walkover_penalty":              l.WalkoverPenalty,
		"match_duration_seconds":        int64(l.MatchDuration / time.Second),
		"allowed_weekdays":              encoded["allowed_weekdays"],
		"daily_ranges":                  encoded["daily_ranges"],
		"calendar_periods":              encoded["calendar_periods"],
		"blackout_periods":              encoded["blackout_periods"],
		"auction_periods":               encoded["auction_periods"],
		"max_reschedules":               l.MaxReschedules,
		"min_reschedule_notice_seconds": int64(l.MinRescheduleNotice / time.Second),
		"score_confirm_window_seconds":  int64(l.ScoreConfirmWindow / time.Second),
		"timezone":                      l.Timezone,
	}, nil
}

func encodePeriods(periods []league.Period) []periodJSON {
	out := make([]periodJSON, 0, len(periods))
	for _, p := range periods {
		out = append(out, periodJSON{From: p.From, To: p.To})
	}
	return out
}
