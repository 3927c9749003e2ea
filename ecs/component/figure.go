package component

import (
	"fmt"
	"strings"

	"github.com/milk9111/hexskirmish/hex"
)

// Team groups figures for targeting.
type Team uint8

const (
	TeamMonster Team = iota
	TeamPlayer
	TeamAlly
)

func (t Team) String() string {
	switch t {
	case TeamMonster:
		return "monster"
	case TeamPlayer:
		return "player"
	case TeamAlly:
		return "ally"
	default:
		return fmt.Sprintf("team(%d)", uint8(t))
	}
}

func ParseTeam(s string) (Team, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monster", "":
		return TeamMonster, nil
	case "player":
		return TeamPlayer, nil
	case "ally":
		return TeamAlly, nil
	}
	return 0, fmt.Errorf("component: unknown team %q", s)
}

// Figure names a combatant. Range is its base attack range; 1 is melee.
// Attack is the value scripted turns attack with.
type Figure struct {
	Name   string
	Team   Team
	Range  int
	Attack int
}

var FigureComponent = NewComponent[Figure]("figure")

// HexPosition is where an entity sits on the board. Changing it must go
// through the grid so the index stays consistent.
type HexPosition struct {
	Coord hex.Coord `json:"coord"`
	Layer hex.Layer `json:"layer"`
}

var HexPositionComponent = NewComponent[HexPosition]("hex_position")
