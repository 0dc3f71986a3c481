package schedule

import "errors"

// Reschedule validation reports the first failing rule with a field-specific
// sentinel rather than an aggregate failure.
var (
	ErrNoticeTooShort     = errors.New("reschedule notice is shorter than the league minimum")
	ErrRescheduleBudget   = errors.New("reschedule budget exhausted")
	ErrOutsideLeagueHours = errors.New("kickoff outside the league weekday or time range")
	ErrOwnerUnavailable   = errors.New("kickoff outside an owner availability window")
	ErrSlotConflict       = errors.New("kickoff conflicts with an existing booking")
)
