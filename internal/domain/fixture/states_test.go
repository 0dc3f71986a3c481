package fixture

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from    State
		to      State
		allowed bool
	}{
		{StateConfirmationNeeded, StateScheduled, true},
		{StateConfirmationNeeded, StateConfirmed, true},
		{StateConfirmationNeeded, StateCancelled, true},
		{StateConfirmationNeeded, StateWalkover, true},
		{StateConfirmationNeeded, StateInProgress, false},
		{StateScheduled, StateConfirmed, true},
		{StateScheduled, StateInProgress, true},
		{StateScheduled, StateScoreSubmitted, false},
		{StateConfirmed, StateInProgress, true},
		{StateConfirmed, StateFinished, true},
		{StateConfirmed, StateDisputed, false},
		{StateInProgress, StateScoreSubmitted, true},
		{StateInProgress, StateWalkover, true},
		{StateInProgress, StateFinished, false},
		{StateScoreSubmitted, StateScoreConfirmed, true},
		{StateScoreSubmitted, StateDisputed, true},
		{StateScoreSubmitted, StateCancelled, false},
		{StateDisputed, StateScoreConfirmed, true},
		{StateDisputed, StateScoreSubmitted, false},
		{StateScoreConfirmed, StateDisputed, false},
		{StateFinished, StateInProgress, false},
		{StateWalkover, StateScheduled, false},
		{StateCancelled, StateScheduled, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			require.Equal(t, tc.allowed, CanTransition(tc.from, tc.to))
			err := Transition(tc.from, tc.to)
			if tc.allowed {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}

func TestTransition_SameStateRefresh(t *testing.T) {
	for state := range transitions {
		if Terminal(state) {
			require.False(t, CanTransition(state, state), "terminal %s must not allow a refresh", state)
			continue
		}
		require.True(t, CanTransition(state, state), "same-state refresh must stay legal for %s", state)
	}
}

func TestTransition_UnknownStates(t *testing.T) {
	require.False(t, CanTransition(State("limbo"), StateScheduled))
	require.False(t, CanTransition(StateScheduled, State("limbo")))
	require.True(t, errors.Is(Transition(StateScheduled, State("limbo")), ErrInvalidTransition))
}

func TestTerminalStates(t *testing.T) {
	for _, state := range []State{StateScoreConfirmed, StateFinished, StateWalkover, StateCancelled} {
		require.True(t, Terminal(state), "%s must be terminal", state)
	}
	for _, state := range []State{StateConfirmationNeeded, StateScheduled, StateConfirmed, StateInProgress, StateScoreSubmitted, StateDisputed} {
		require.False(t, Terminal(state), "%s must not be terminal", state)
	}
}

func TestFixtureBooked(t *testing.T) {
	kickoff := testKickoff()
	cases := []struct {
		state  State
		booked bool
	}{
		{StateScheduled, true},
		{StateConfirmed, true},
		{StateInProgress, true},
		{StateConfirmationNeeded, false},
		{StateScoreSubmitted, false},
		{StateCancelled, false},
	}
	for _, tc := range cases {
		fx := Fixture{State: tc.state, KickoffAt: &kickoff}
		require.Equal(t, tc.booked, fx.Booked(), "state %s", tc.state)
	}

	require.False(t, Fixture{State: StateScheduled}.Booked(), "no kickoff means not booked")
}
