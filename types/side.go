package types

import (
	"fmt"
	"strings"
)

// Side is the direction of a single trade.
type Side string

// Direction is the stance of a position. A BUY opens or extends a LONG stance
// and a SELL a SHORT one.
type Direction string

const (
	SideTypeBuy  Side = "BUY"
	SideTypeSell Side = "SELL"

	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// Direction returns the stance a trade on this side opens.
func (s Side) Direction() Direction {
	if s == SideTypeSell {
		return DirectionShort
	}
	return DirectionLong
}

func (s Side) Valid() bool {
	return s == SideTypeBuy || s == SideTypeSell
}

// Side returns the trade side that extends this stance.
func (d Direction) Side() Side {
	if d == DirectionShort {
		return SideTypeSell
	}
	return SideTypeBuy
}

func (d Direction) Valid() bool {
	return d == DirectionLong || d == DirectionShort
}

// ParseSide accepts BUY/SELL and the broker spellings BOT/SLD, case-insensitively.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY", "BOT", "B":
		return SideTypeBuy, nil
	case "SELL", "SLD", "S":
		return SideTypeSell, nil
	default:
		return "", fmt.Errorf("unknown side %q", s)
	}
}
