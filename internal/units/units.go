// Package units converts quantities between measurement units of the same family.
//
// Every unit belongs to exactly one Family and carries a scale relative to the
// family's base unit (gram, milliliter, single count). Conversions never cross
// families: there is no density model, so grams can never become liters.
package units

import (
	"errors"
	"fmt"
	"math"
)

// Family groups units that can be converted into each other.
type Family int

const (
	Mass   Family = iota + 1 // base: g
	Volume                   // base: ml
	Count                    // base: unit
)

func (f Family) String() string {
	switch f {
	case Mass:
		return "mass"
	case Volume:
		return "volume"
	case Count:
		return "count"
	default:
		return "unknown"
	}
}

// Unit is a measurement unit as stored on inventory items and recipe lines.
type Unit string

const (
	Gram       Unit = "g"
	Kilogram   Unit = "kg"
	Milliliter Unit = "ml"
	Liter      Unit = "l"
	Each       Unit = "unit"
)

// Epsilon is the relative slack allowed when comparing converted quantities.
const Epsilon = 1e-9

var (
	ErrUnknownUnit       = errors.New("unknown unit")
	ErrIncompatibleUnits = errors.New("incompatible units")
)

type unitInfo struct {
	family Family
	scale  float64
}

var table = map[Unit]unitInfo{
	Gram:       {Mass, 1},
	Kilogram:   {Mass, 1000},
	Milliliter: {Volume, 1},
	Liter:      {Volume, 1000},
	Each:       {Count, 1},
}

// All returns every supported unit in a stable order.
func All() []Unit {
	return []Unit{Gram, Kilogram, Milliliter, Liter, Each}
}

// Valid reports whether u is a supported unit.
func (u Unit) Valid() bool {
	_, ok := table[u]
	return ok
}

// Family returns the family u belongs to.
func (u Unit) Family() (Family, error) {
	s, ok := table[u]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, string(u))
	}
	return s.family, nil
}

// Scale returns how many base units one u represents.
func (u Unit) Scale() (float64, error) {
	s, ok := table[u]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, string(u))
	}
	return s.scale, nil
}

// Compatible reports whether a and b share a family.
func Compatible(a, b Unit) bool {
	sa, okA := table[a]
	sb, okB := table[b]
	return okA && okB && sa.family == sb.family
}

// Ratio returns scale(from)/scale(to), i.e. how many `to` units one `from` unit equals.
func Ratio(from, to Unit) (float64, error) {
	sf, ok := table[from]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, string(from))
	}
	st, ok := table[to]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, string(to))
	}
	if sf.family != st.family {
		return 0, fmt.Errorf("%w: %s (%s) -> %s (%s)", ErrIncompatibleUnits, from, sf.family, to, st.family)
	}
	return sf.scale / st.scale, nil
}

// Convert expresses quantity (measured in from) in the to unit.
func Convert(quantity float64, from, to Unit) (float64, error) {
	if from == to {
		if !from.Valid() {
			return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, string(from))
		}
		return quantity, nil
	}
	if _, err := Ratio(from, to); err != nil {
		return 0, err
	}
	// multiply before dividing: 700 g is exactly 0.7 kg, 700 * 0.001 is not
	return quantity * table[from].scale / table[to].scale, nil
}

// Covers reports whether onHand is enough for needed once float noise from
// conversions is ignored.
func Covers(onHand, needed float64) bool {
	return needed-onHand <= Epsilon*math.Max(1, math.Abs(needed))
}
