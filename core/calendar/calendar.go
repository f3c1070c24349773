// Package calendar converts dates between the Bikram Sambat (BS) and Gregorian (AD) calendars.
//
// Conversion is table driven: bsMonthDays lists the length of every BS month for the
// supported years and both directions accumulate a day offset from a fixed epoch pair.
// All functions are pure and safe for concurrent use.
package calendar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrMalformed is returned when a date string does not match an accepted pattern,
	// or names a month/day that cannot exist.
	ErrMalformed = errors.New("malformed date")
	// ErrOutOfRange is returned when a date is well-formed but outside the supported
	// table window, or a BS day exceeds the length of its month.
	ErrOutOfRange = errors.New("date out of supported range")

	dateRegex = regexp.MustCompile(`^(\d{4})([-/])(\d{1,2})([-/])(\d{1,2})$`)
)

// System is the calendar a Date is expressed in.
type System int

const (
	AD System = iota
	BS
)

func (s System) String() string {
	switch s {
	case AD:
		return "AD"
	case BS:
		return "BS"
	default:
		return "Unknown"
	}
}

// Date is a calendar date tagged with its calendar system.
type Date struct {
	Year   int    `json:"year"`
	Month  int    `json:"month"`
	Day    int    `json:"day"`
	System System `json:"-"`
}

// String renders the canonical YYYY-MM-DD form.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d Date) IsZero() bool { return d.Year == 0 && d.Month == 0 && d.Day == 0 }

// Before reports whether d is earlier than o. Both dates must be in the same system.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses a lexically valid date; the system is left as-is (AD unless set beforehand).
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text), d.System)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Normalize checks the lexical shape of s (YYYY-M-D, YYYY/M/D, YYYY-MM-DD or YYYY/MM/DD)
// and returns it as YYYY-MM-DD. Month and day ranges are not checked.
func Normalize(s string) (string, error) {
	d, err := Parse(s, AD)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

// Parse splits a lexically valid date string into a Date of the given system.
func Parse(s string, sys System) (Date, error) {
	s = strings.TrimSpace(s)
	m := dateRegex.FindStringSubmatch(s)
	if m == nil || m[2] != m[4] {
		return Date{}, errors.Wrapf(ErrMalformed, "parsing %q", s)
	}
	// the regex guarantees digits only
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[3])
	day, _ := strconv.Atoi(m[5])
	return Date{Year: year, Month: month, Day: day, System: sys}, nil
}

// MustParse is like Parse but panics on error. For tests and static values only.
func MustParse(s string, sys System) Date {
	d, err := Parse(s, sys)
	if err != nil {
		panic(err)
	}
	return d
}
