package yard

import (
	"fmt"
	"strings"
)

// Location identifies where a crane or container is.
// Ship and Buffer are two-dimensional grids; Truck and CraneRest are points.
type Location uint8

const (
	Ship Location = iota
	Buffer
	Truck
	CraneRest
)

var locationNames = [...]string{
	Ship:      "SHIP",
	Buffer:    "BUFFER",
	Truck:     "TRUCK",
	CraneRest: "CRANE_REST",
}

// String returns the upper-case location name used in move listings.
func (l Location) String() string {
	if int(l) < len(locationNames) {
		return locationNames[l]
	}
	return fmt.Sprintf("Location(%d)", uint8(l))
}

// IsGrid reports whether positions at l carry meaningful coordinates.
func (l Location) IsGrid() bool {
	return l == Ship || l == Buffer
}

// MarshalText encodes the location by name.
func (l Location) MarshalText() ([]byte, error) {
	if int(l) >= len(locationNames) {
		return nil, fmt.Errorf("unknown location %d", uint8(l))
	}
	return []byte(locationNames[l]), nil
}

// UnmarshalText decodes a location name.
func (l *Location) UnmarshalText(b []byte) error {
	name := strings.ToUpper(string(b))
	for i, n := range locationNames {
		if n == name {
			*l = Location(i)
			return nil
		}
	}
	return fmt.Errorf("unknown location %q", string(b))
}

// Position is a crane or container location. Row 0 is the bottom row of a
// grid; Row and Col are zero for Truck and CraneRest.
type Position struct {
	Loc Location `json:"loc"`
	Row int      `json:"row"`
	Col int      `json:"col"`
}

// ShipAt returns a ship position.
func ShipAt(row, col int) Position { return Position{Loc: Ship, Row: row, Col: col} }

// BufferAt returns a buffer position.
func BufferAt(row, col int) Position { return Position{Loc: Buffer, Row: row, Col: col} }

var (
	// TruckPos is the single truck position.
	TruckPos = Position{Loc: Truck}

	// RestPos is the crane's rest position.
	RestPos = Position{Loc: CraneRest}
)

// String renders grid positions with 1-based manifest coordinates,
// e.g. SHIP[01,03].
func (p Position) String() string {
	if p.Loc.IsGrid() {
		return fmt.Sprintf("%s[%02d,%02d]", p.Loc, p.Row+1, p.Col+1)
	}
	return p.Loc.String()
}

func manhattan(a, b Position) int {
	return abs(a.Row-b.Row) + abs(a.Col-b.Col)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
