package content

import (
	"fmt"
	"math"
	"strconv"
)

var cardinalWords = []string{
	"zero", "one", "two", "three", "four", "five", "six",
	"seven", "eight", "nine", "ten", "eleven", "twelve",
}

var ordinalWords = []string{
	"zeroth", "first", "second", "third", "fourth", "fifth",
	"sixth", "seventh", "eighth", "ninth", "tenth", "eleventh",
	"twelfth",
}

// Cardinal renders small non-negative integers as words and everything else
// as a numeral.
func Cardinal(value float64) string {
	if isInteger(value) && value >= 0 && value <= 12 {
		return cardinalWords[int(value)]
	}
	return numeral(value)
}

// Ordinal renders ordinal words up to twelfth, then numeral suffixes with
// the 11th-19th "th" special case.
func Ordinal(value float64) string {
	if !isInteger(value) || value < 0 {
		return numeral(value)
	}
	if value <= 12 {
		return ordinalWords[int(value)]
	}
	s := numeral(value)
	if len(s) >= 2 && s[len(s)-2] == '1' {
		return s + "th"
	}
	switch s[len(s)-1] {
	case '1':
		return s + "st"
	case '2':
		return s + "nd"
	case '3':
		return s + "rd"
	default:
		return s + "th"
	}
}

// Fudge renders the seven-point qualitative scale, with +N/-N extensions
// past the ends.
func Fudge(value float64) string {
	if !isInteger(value) {
		return numeral(value)
	}
	v := int(value)
	switch {
	case v > 3:
		return fmt.Sprintf("superb+%d", v-3)
	case v < -3:
		return fmt.Sprintf("terrible%d", v+3)
	}
	switch v {
	case 3:
		return "superb"
	case 2:
		return "great"
	case 1:
		return "good"
	case 0:
		return "fair"
	case -1:
		return "mediocre"
	case -2:
		return "poor"
	default:
		return "terrible"
	}
}

// RangeCase is one entry of a user-defined display transform. Nil bounds are
// open.
type RangeCase struct {
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Output string   `json:"output,omitempty"`
}

// FormatRange returns the output of the first matching case, falling back
// to the numeral string.
func FormatRange(value float64, cases []RangeCase) string {
	for _, c := range cases {
		if c.Min != nil && *c.Min > value {
			continue
		}
		if c.Max != nil && *c.Max < value {
			continue
		}
		if c.Output != "" {
			return c.Output
		}
		return numeral(value)
	}
	return numeral(value)
}

func isInteger(v float64) bool {
	return math.Floor(v) == v && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func numeral(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
