// Package money provides integer minor-unit currency arithmetic.
// All amounts in the engine are expressed in cents (or the equivalent
// minor unit of the group currency); floats never appear past the API
// boundary.
package money

import (
	"fmt"
)

// Cents is a signed amount in currency minor units.
type Cents int64

// Abs returns the absolute value of c.
func (c Cents) Abs() Cents {
	if c < 0 {
		return -c
	}
	return c
}

// String formats the amount with two decimal places, e.g. -1234 -> "-12.34".
func (c Cents) String() string {
	sign := ""
	v := c
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// BasisPoints expresses a percentage in hundredths of a percent, so
// 10000 = 100%. Keeping percentages integral preserves exact arithmetic
// for inputs like 33.33%.
type BasisPoints int64

// TotalBasisPoints is the value a set of percentage shares must sum to.
const TotalBasisPoints BasisPoints = 10000
