package fixture

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid fixture transition")

type State string

const (
	StateConfirmationNeeded State = "confirmation_needed"
	StateScheduled          State = "scheduled"
	StateConfirmed          State = "confirmed"
	StateInProgress         State = "in_progress"
	StateScoreSubmitted     State = "score_submitted"
	StateScoreConfirmed     State = "score_confirmed"
	StateDisputed           State = "disputed"
	StateFinished           State = "finished"
	StateWalkover           State = "walkover"
	StateCancelled          State = "cancelled"
)

// transitions is the full allow-list. Terminal states have no outgoing edges.
var transitions = map[State][]State{
	StateConfirmationNeeded: {StateScheduled, StateConfirmed, StateCancelled, StateWalkover},
	StateScheduled:          {StateConfirmed, StateInProgress, StateCancelled, StateWalkover},
	StateConfirmed:          {StateInProgress, StateFinished, StateWalkover, StateCancelled},
	StateInProgress:         {StateScoreSubmitted, StateWalkover, StateCancelled},
	StateScoreSubmitted:     {StateScoreConfirmed, StateDisputed},
	StateDisputed:           {StateScoreConfirmed},
	StateScoreConfirmed:     {},
	StateFinished:           {},
	StateWalkover:           {},
	StateCancelled:          {},
}

func KnownState(s State) bool {
	_, ok := transitions[s]
	return ok
}

func Terminal(s State) bool {
	targets, ok := transitions[s]
	return ok && len(targets) == 0
}

// CanTransition reports whether the move is legal: the target sits on the
// current state's allow-list, or equals it (a same-state refresh that only
// updates attributes). Terminal states allow no refresh.
func CanTransition(from, to State) bool {
	targets, ok := transitions[from]
	if !ok || !KnownState(to) {
		return false
	}
	if from == to {
		return len(targets) > 0
	}
	for _, t := range targets {
		if t == to {
			return true
		}
	}
	return false
}

// Transition validates the move and returns ErrInvalidTransition naming both
// states when it is illegal.
func Transition(from, to State) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
