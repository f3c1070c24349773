package result

import (
	"math"

	"github.com/volatiletech/null/v8"
)

// gradeScale is ordered by strictly descending thresholds; the first match wins.
// Every band but D requires percent > min; D only requires percent >= min.
var gradeScale = []struct {
	min       float64
	inclusive bool
	info      GpaInfo
}{
	{min: 90, info: GpaInfo{Grade: GradeAPlus, Point: 4.0}},
	{min: 80, info: GpaInfo{Grade: GradeA, Point: 3.6}},
	{min: 70, info: GpaInfo{Grade: GradeBPlus, Point: 3.2}},
	{min: 60, info: GpaInfo{Grade: GradeB, Point: 2.8}},
	{min: 50, info: GpaInfo{Grade: GradeCPlus, Point: 2.4}},
	{min: 40, info: GpaInfo{Grade: GradeC, Point: 2.0}},
	{min: 35, inclusive: true, info: GpaInfo{Grade: GradeD, Point: 1.6}},
}

// CalculateGradeAndPoint maps a percentage to its letter grade and grade point.
// Null, NaN and negative percentages are graded N/A.
func CalculateGradeAndPoint(percent null.Float64) GpaInfo {
	if !percent.Valid || math.IsNaN(percent.Float64) || percent.Float64 < 0 {
		return GpaInfo{Grade: GradeNotAvailable, Point: 0}
	}
	p := percent.Float64
	for _, band := range gradeScale {
		if p > band.min || (band.inclusive && p == band.min) {
			return band.info
		}
	}
	return GpaInfo{Grade: GradeNotGraded, Point: 0}
}

// percentage returns obtained/full*100, or null when marks are missing or full marks are not positive.
func percentage(obtained null.Float64, full float64) null.Float64 {
	if !obtained.Valid || full <= 0 {
		return null.Float64{}
	}
	return null.Float64From(obtained.Float64 / full * 100)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
