// Package roster holds the static athlete metadata the club maintains by
// hand: who is on which team and which event they are training for. The
// feed itself only carries display names, so this is the join table for
// every team-level view.
package roster

import (
	"encoding/json"
	"fmt"
	"os"
)

// Team is one of the two fixed club teams
type Team string

const (
	TeamBulls  Team = "bulls"
	TeamSharks Team = "sharks"
)

// Event is the race an athlete is training for
type Event string

const (
	EventHalf Event = "half"
	EventFull Event = "full"
)

// Member is one roster entry
type Member struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Team  Team   `json:"team"`
	Event Event  `json:"event"`
}

// Roster is the full athlete metadata table with a by-name lookup
type Roster struct {
	members []Member
	byName  map[string]Member
}

// Load reads a roster JSON file. An empty path yields an empty roster.
func Load(path string) (*Roster, error) {
	if path == "" {
		return New(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	var members []Member
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, fmt.Errorf("failed to parse roster file: %w", err)
	}

	for _, m := range members {
		if m.Team != TeamBulls && m.Team != TeamSharks {
			return nil, fmt.Errorf("roster entry %q has unknown team %q", m.Name, m.Team)
		}
		if m.Event != EventHalf && m.Event != EventFull {
			return nil, fmt.Errorf("roster entry %q has unknown event %q", m.Name, m.Event)
		}
	}

	return New(members), nil
}

// New builds a roster from a member list
func New(members []Member) *Roster {
	byName := make(map[string]Member, len(members))
	for _, m := range members {
		byName[m.Name] = m
	}
	return &Roster{members: members, byName: byName}
}

// Members returns all roster entries
func (r *Roster) Members() []Member {
	return r.members
}

// Lookup finds a member by feed display name
func (r *Roster) Lookup(name string) (Member, bool) {
	m, ok := r.byName[name]
	return m, ok
}

// TeamOf returns the team for a feed display name, or "" when the athlete
// is not on the roster
func (r *Roster) TeamOf(name string) Team {
	if m, ok := r.byName[name]; ok {
		return m.Team
	}
	return ""
}
