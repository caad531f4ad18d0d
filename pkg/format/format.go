// Package format renders battery rates as display strings.
package format

import (
	"fmt"
	"math"
	"strconv"

	pkgerrors "github.com/pkg/errors"
)

// Precision selects how many decimals a rate is displayed with.
type Precision string

const (
	// Decimal shows two decimals, e.g. "12.50 W+".
	Decimal Precision = "decimal"
	// Integer rounds to whole watts, e.g. "13 W+".
	Integer Precision = "integer"
)

// ParsePrecision parses a precision name.
func ParsePrecision(s string) (Precision, error) {
	switch Precision(s) {
	case Decimal, Integer:
		return Precision(s), nil
	default:
		return "", pkgerrors.Errorf("unknown precision %q, must be %q or %q", s, Decimal, Integer)
	}
}

// Zero is the display string for no power flow. It is also the default
// shown when there is no battery data at all.
func Zero(p Precision) string {
	if p == Integer {
		return "0 W"
	}
	return "0.00 W"
}

// Rate formats a signed rate in milliwatts. The sign is rendered as a
// trailing "+" (charging) or "-" (discharging).
func Rate(milliwatts float64, p Precision) string {
	watts := milliwatts / 1000.0

	if p == Integer && roundHalfUp(math.Abs(watts)) == 0 {
		// A sub-watt flow has no direction worth showing.
		return Zero(p)
	}

	switch {
	case watts > 0:
		return magnitude(watts, p) + " W+"
	case watts < 0:
		return magnitude(-watts, p) + " W-"
	default:
		return Zero(p)
	}
}

// Estimate formats an estimated system draw in watts. It carries no sign
// since the battery is neither charging nor discharging.
func Estimate(watts float64) string {
	return fmt.Sprintf("%.2f W", watts)
}

func magnitude(watts float64, p Precision) string {
	if p == Integer {
		return strconv.Itoa(roundHalfUp(watts))
	}
	return fmt.Sprintf("%.2f", watts)
}

func roundHalfUp(watts float64) int {
	return int(watts + 0.5)
}
