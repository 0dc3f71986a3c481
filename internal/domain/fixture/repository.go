package fixture

import "context"

// Repository describes fixture persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, fixtureID string) (Fixture, bool, error)
	GetByClubs(ctx context.Context, leagueID, homeClubID, awayClubID string) (Fixture, bool, error)
	Create(ctx context.Context, fx Fixture) error
	Update(ctx context.Context, fx Fixture) error
	ListByLeague(ctx context.Context, leagueID string) ([]Fixture, error)
	// ListBookedByClub returns the club's fixtures that currently occupy a
	// calendar slot (scheduled, confirmed or in progress, kickoff set).
	ListBookedByClub(ctx context.Context, clubID string) ([]Fixture, error)
	ListByState(ctx context.Context, state State) ([]Fixture, error)
}

// EventLog is the append-only transition audit trail.
type EventLog interface {
	Append(ctx context.Context, event Event) error
	ListByFixture(ctx context.Context, fixtureID string) ([]Event, error)
}
