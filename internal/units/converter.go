// Package units converts ingredient quantities between compatible units.
// Units are partitioned into fixed groups, each with a canonical base unit;
// quantities may only be compared within a group.
package units

import (
	"errors"
	"fmt"
	"strings"
)

type Group string

const (
	GroupWeight Group = "weight"
	GroupVolume Group = "volume"
	GroupCount  Group = "count"
)

const (
	Grams       = "grams"
	Kilograms   = "kilograms"
	Milliliters = "milliliters"
	Liters      = "liters"
	Pieces      = "pieces"
	Cups        = "cups"
	Tablespoons = "tablespoons"
	Teaspoons   = "teaspoons"
)

var (
	ErrUnknownUnit       = errors.New("unknown unit")
	ErrUnitGroupMismatch = errors.New("unit group mismatch")
)

type unitSpec struct {
	group  Group
	factor float64 // multiplier to the group's base unit
}

// Base units: grams, milliliters, pieces. The kitchen measures carry the
// standard metric culinary volumes (1 cup = 240, 1 tbsp = 15, 1 tsp = 5).
var specs = map[string]unitSpec{
	Grams:       {GroupWeight, 1},
	Kilograms:   {GroupWeight, 1000},
	Milliliters: {GroupVolume, 1},
	Liters:      {GroupVolume, 1000},
	Pieces:      {GroupCount, 1},
	Cups:        {GroupCount, 240},
	Tablespoons: {GroupCount, 15},
	Teaspoons:   {GroupCount, 5},
}

func lookup(unit string) (unitSpec, error) {
	spec, ok := specs[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return unitSpec{}, fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
	return spec, nil
}

// GroupOf returns the group a unit belongs to.
func GroupOf(unit string) (Group, error) {
	spec, err := lookup(unit)
	if err != nil {
		return "", err
	}
	return spec.group, nil
}

// SameGroup reports whether two units may be compared or combined. Unknown
// units never match anything.
func SameGroup(a, b string) bool {
	sa, err := lookup(a)
	if err != nil {
		return false
	}
	sb, err := lookup(b)
	if err != nil {
		return false
	}
	return sa.group == sb.group
}

// ToBase converts value from unit into the group's canonical base unit.
func ToBase(value float64, unit string) (float64, error) {
	spec, err := lookup(unit)
	if err != nil {
		return 0, err
	}
	return value * spec.factor, nil
}

// FromBase converts value from the group's canonical base unit into unit.
func FromBase(value float64, unit string) (float64, error) {
	spec, err := lookup(unit)
	if err != nil {
		return 0, err
	}
	return value / spec.factor, nil
}

// Convert moves value between two units of the same group. Cross-group
// conversion is a caller error and is rejected.
func Convert(value float64, from, to string) (float64, error) {
	sf, err := lookup(from)
	if err != nil {
		return 0, err
	}
	st, err := lookup(to)
	if err != nil {
		return 0, err
	}
	if sf.group != st.group {
		return 0, fmt.Errorf("%w: %s vs %s", ErrUnitGroupMismatch, from, to)
	}
	return value * sf.factor / st.factor, nil
}
