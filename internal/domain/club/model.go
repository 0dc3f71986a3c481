package club

import "fmt"

// Club is one user-owned team inside a league.
type Club struct {
	ID          string
	LeagueID    string
	OwnerUserID string
	Name        string
}

func (c Club) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("club id is required")
	}
	if c.LeagueID == "" {
		return fmt.Errorf("club league id is required")
	}
	if c.OwnerUserID == "" {
		return fmt.Errorf("club owner user id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("club name is required")
	}
	return nil
}
