package catalog

import "fmt"

// Player is immutable reference data for one catalog player inside a game
// edition. Market value and wage are scalar units in the single league
// currency.
type Player struct {
	ID          string
	GameEdition string
	Name        string
	Position    string
	MarketValue int64
	Wage        int64
	Overall     int
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("catalog player id is required")
	}
	if p.GameEdition == "" {
		return fmt.Errorf("catalog player game edition is required")
	}
	if p.Name == "" {
		return fmt.Errorf("catalog player name is required")
	}
	if p.MarketValue <= 0 {
		return fmt.Errorf("catalog player market value must be positive")
	}
	if p.Wage < 0 {
		return fmt.Errorf("catalog player wage cannot be negative")
	}
	return nil
}
