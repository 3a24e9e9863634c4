package team

import "fmt"

// Team is one NFL franchise.
type Team struct {
	ID           string
	Name         string
	Abbreviation string
	LogoURL      string
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}
