package calendar

import "fmt"

var bsMonthNames = [12]string{
	"Baisakh",
	"Jestha",
	"Asar",
	"Shrawan",
	"Bhadra",
	"Ashwin",
	"Kartik",
	"Mangsir",
	"Poush",
	"Magh",
	"Falgun",
	"Chaitra",
}

// MonthName returns the name of the BS month numbered m (1 = Baisakh), or "Unknown".
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return "Unknown"
	}
	return bsMonthNames[m-1]
}

// FormatBS renders a BS date as e.g. "3 Baisakh 2081".
func FormatBS(d Date) string {
	return fmt.Sprintf("%d %s %d", d.Day, MonthName(d.Month), d.Year)
}
