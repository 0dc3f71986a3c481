package postgres

import (
	"database/sql"
	"time"

	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/fixture"
)

type fixtureTableModel struct {
	ID               string        `db:"id"`
	LeagueID         string        `db:"league_id"`
	HomeClubID       string        `db:"home_club_id"`
	AwayClubID       string        `db:"away_club_id"`
	State            string        `db:"state"`
	KickoffAt        sql.NullTime  `db:"kickoff_at"`
	RescheduleCount  int           `db:"reschedule_count"`
	HomeScore        sql.NullInt64 `db:"home_score"`
	AwayScore        sql.NullInt64 `db:"away_score"`
	HomeCheckInAt    sql.NullTime  `db:"home_checkin_at"`
	AwayCheckInAt    sql.NullTime  `db:"away_checkin_at"`
	Forced           bool          `db:"forced"`
	NoSlot           bool          `db:"no_slot"`
	WalkoverClubID   string        `db:"walkover_club_id"`
	WalkoverReason   string        `db:"walkover_reason"`
	ScoreSubmittedAt sql.NullTime  `db:"score_submitted_at"`
	CreatedAt        time.Time     `db:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at"`
}

func (m fixtureTableModel) toDomain() fixture.Fixture {
	return fixture.Fixture{
		ID:               m.ID,
		LeagueID:         m.LeagueID,
		HomeClubID:       m.HomeClubID,
		AwayClubID:       m.AwayClubID,
		State:            fixture.State(m.State),
		KickoffAt:        nullTimeToPtr(m.KickoffAt),
		RescheduleCount:  m.RescheduleCount,
		HomeScore:        nullInt64ToPtr(m.HomeScore),
		AwayScore:        nullInt64ToPtr(m.AwayScore),
		HomeCheckInAt:    nullTimeToPtr(m.HomeCheckInAt),
		AwayCheckInAt:    nullTimeToPtr(m.AwayCheckInAt),
		Forced:           m.Forced,
		NoSlot:           m.NoSlot,
		WalkoverClubID:   m.WalkoverClubID,
		WalkoverReason:   m.WalkoverReason,
		ScoreSubmittedAt: nullTimeToPtr(m.ScoreSubmittedAt),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
