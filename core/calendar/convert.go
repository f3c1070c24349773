package calendar

import (
	"time"

	"github.com/pkg/errors"
)

var (
	// yearStart[i] is the day offset of 1 Baisakh (FirstBSYear+i) from the epoch;
	// the extra trailing entry is the total number of supported days.
	yearStart [LastBSYear - FirstBSYear + 2]int

	epochADDay int64
)

func init() {
	for i, months := range bsMonthDays {
		yearStart[i+1] = yearStart[i] + sumDays(months)
	}
	epochADDay = unixDay(epochAD)
}

func sumDays(months [12]int) int {
	var total int
	for _, n := range months {
		total += n
	}
	return total
}

func unixDay(d Date) int64 {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

func fromUnixDay(day int64) Date {
	t := time.Unix(day*86400, 0).UTC()
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day(), System: AD}
}

// validAD reports whether d names a real Gregorian date.
func validAD(d Date) bool {
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 31 {
		return false
	}
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	return t.Year() == d.Year && int(t.Month()) == d.Month && t.Day() == d.Day
}

// DaysInBSMonth returns the number of days of the given BS month.
func DaysInBSMonth(year, month int) (int, error) {
	if month < 1 || month > 12 {
		return 0, errors.Wrapf(ErrMalformed, "BS month %d", month)
	}
	if year < FirstBSYear || year > LastBSYear {
		return 0, errors.Wrapf(ErrOutOfRange, "BS year %d", year)
	}
	return bsMonthDays[year-FirstBSYear][month-1], nil
}

// DaysInBSYear returns the number of days of the given BS year.
func DaysInBSYear(year int) (int, error) {
	if year < FirstBSYear || year > LastBSYear {
		return 0, errors.Wrapf(ErrOutOfRange, "BS year %d", year)
	}
	return sumDays(bsMonthDays[year-FirstBSYear]), nil
}

// SupportedRange returns the first and last convertible dates, in BS and AD.
func SupportedRange() (firstBS, lastBS, firstAD, lastAD Date) {
	lastMonthDays := bsMonthDays[LastBSYear-FirstBSYear][11]
	lastBS = Date{Year: LastBSYear, Month: 12, Day: lastMonthDays, System: BS}
	lastAD = fromUnixDay(epochADDay + int64(yearStart[len(yearStart)-1]) - 1)
	return epochBS, lastBS, epochAD, lastAD
}

// ADToBS converts a Gregorian date to Bikram Sambat.
func ADToBS(d Date) (Date, error) {
	if !validAD(d) {
		return Date{}, errors.Wrapf(ErrMalformed, "AD date %s", d)
	}
	offset := unixDay(d) - epochADDay
	if offset < 0 || offset >= int64(yearStart[len(yearStart)-1]) {
		return Date{}, errors.Wrapf(ErrOutOfRange, "AD date %s", d)
	}

	days := int(offset)
	yi := 0
	for yearStart[yi+1] <= days {
		yi++
	}
	days -= yearStart[yi]

	month := 0
	for days >= bsMonthDays[yi][month] {
		days -= bsMonthDays[yi][month]
		month++
	}
	return Date{Year: FirstBSYear + yi, Month: month + 1, Day: days + 1, System: BS}, nil
}

// BSToAD converts a Bikram Sambat date to Gregorian.
func BSToAD(d Date) (Date, error) {
	if d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return Date{}, errors.Wrapf(ErrMalformed, "BS date %s", d)
	}
	monthDays, err := DaysInBSMonth(d.Year, d.Month)
	if err != nil {
		return Date{}, errors.Wrapf(err, "BS date %s", d)
	}
	if d.Day > monthDays {
		return Date{}, errors.Wrapf(ErrOutOfRange, "BS date %s: month has %d days", d, monthDays)
	}

	yi := d.Year - FirstBSYear
	days := yearStart[yi]
	for m := 0; m < d.Month-1; m++ {
		days += bsMonthDays[yi][m]
	}
	days += d.Day - 1
	return fromUnixDay(epochADDay + int64(days)), nil
}

// AdToBs converts a YYYY-MM-DD (or any Normalize-accepted) Gregorian date string to a BS date string.
func AdToBs(s string) (string, error) {
	d, err := Parse(s, AD)
	if err != nil {
		return "", err
	}
	bs, err := ADToBS(d)
	if err != nil {
		return "", err
	}
	return bs.String(), nil
}

// BsToAd converts a BS date string to a Gregorian date string.
func BsToAd(s string) (string, error) {
	d, err := Parse(s, BS)
	if err != nil {
		return "", err
	}
	ad, err := BSToAD(d)
	if err != nil {
		return "", err
	}
	return ad.String(), nil
}
