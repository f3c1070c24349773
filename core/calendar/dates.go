package calendar

import (
	"time"

	"github.com/pkg/errors"
)

// DateRange is an inclusive range of AD dates.
type DateRange struct {
	Start Date
	End   Date
}

// NewDateRange validates both ends and returns the range. Start must not be after End.
func NewDateRange(start, end Date) (DateRange, error) {
	if !validAD(start) {
		return DateRange{}, errors.Wrapf(ErrMalformed, "range start %s", start)
	}
	if !validAD(end) {
		return DateRange{}, errors.Wrapf(ErrMalformed, "range end %s", end)
	}
	if end.Before(start) {
		return DateRange{}, errors.Wrapf(ErrOutOfRange, "range start %s is after end %s", start, end)
	}
	start.System, end.System = AD, AD
	return DateRange{Start: start, End: end}, nil
}

// Len returns the number of days in the range, both ends included.
func (r DateRange) Len() int {
	return int(unixDay(r.End)-unixDay(r.Start)) + 1
}

// Each calls fn for every day of the range in order, starting over from Start on every call.
// Iteration stops early when fn returns false.
func (r DateRange) Each(fn func(Date) bool) {
	// UTC midnight has no DST transitions, so adding a day never skips or repeats one
	t := time.Date(r.Start.Year, time.Month(r.Start.Month), r.Start.Day, 0, 0, 0, 0, time.UTC)
	for i := 0; i < r.Len(); i++ {
		if !fn(Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day(), System: AD}) {
			return
		}
		t = t.AddDate(0, 0, 1)
	}
}

// Days returns every day of the range.
func (r DateRange) Days() []Date {
	days := make([]Date, 0, r.Len())
	r.Each(func(d Date) bool {
		days = append(days, d)
		return true
	})
	return days
}

// DatesInRangeAD lists the AD dates from start to end inclusive as YYYY-MM-DD strings.
// The result is empty if either end is invalid or start is after end.
func DatesInRangeAD(start, end string) []string {
	s, err := Parse(start, AD)
	if err != nil {
		return []string{}
	}
	e, err := Parse(end, AD)
	if err != nil {
		return []string{}
	}
	r, err := NewDateRange(s, e)
	if err != nil {
		return []string{}
	}

	dates := make([]string, 0, r.Len())
	r.Each(func(d Date) bool {
		dates = append(dates, d.String())
		return true
	})
	return dates
}

// DaysBetween returns the number of days from a to b (negative if b is before a). Both must be AD dates.
func DaysBetween(a, b Date) int {
	return int(unixDay(b) - unixDay(a))
}

// Today returns the AD date of `now` as seen in loc (UTC when nil).
func Today(now time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	t := now.In(loc)
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day(), System: AD}
}

// Tomorrow returns the AD date following Today(now, loc).
func Tomorrow(now time.Time, loc *time.Location) Date {
	today := Today(now, loc)
	return fromUnixDay(unixDay(today) + 1)
}

// TodayBS returns the BS date of `now` as seen in loc.
func TodayBS(now time.Time, loc *time.Location) (Date, error) {
	return ADToBS(Today(now, loc))
}
