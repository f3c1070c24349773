package result

import (
	"github.com/volatiletech/null/v8"
)

// ProcessExamResultsForStudent computes every subject outcome and the exam summary of one student's sitting.
// It never fails: missing marks degrade to null, N/A, NG or Awaited outcomes.
// When several entries name the same subject, the first one is used.
func ProcessExamResultsForStudent(subjects []SubjectSpec, marks []MarkEntry, isGpaMode bool) Processed {
	entries := make(map[string]MarkEntry, len(marks))
	for _, m := range marks {
		if _, ok := entries[m.SubjectName]; !ok {
			entries[m.SubjectName] = m
		}
	}

	var (
		examPassed   = true
		allAbsent    = len(subjects) > 0
		allUnentered = true

		gpaSum  float64
		counted int

		grandObtained, grandFull float64
	)

	processed := make([]ProcessedSubjectResult, 0, len(subjects))
	for _, spec := range subjects {
		entry, ok := entries[spec.Name]
		if !ok {
			entry = MarkEntry{SubjectName: spec.Name} // not entered yet, which is not absent
		}
		if !entry.IsAbsent {
			allAbsent = false
		}
		if !entry.isUnentered(spec) {
			allUnentered = false
		}

		res := ProcessedSubjectResult{
			SubjectSpec:            spec,
			TheoryMarksObtained:    entry.TheoryMarksObtained,
			PracticalMarksObtained: entry.PracticalMarksObtained,
			IsAbsent:               entry.IsAbsent,
		}

		switch {
		case entry.IsAbsent:
			examPassed = false
			processAbsent(&res, isGpaMode)
		case isGpaMode:
			if processGpa(&res, entry) {
				gpaSum += res.AveragePoint.Float64
				counted++
			} else {
				examPassed = false
			}
		default:
			obtained, full := processMarks(&res, entry)
			grandObtained += obtained
			grandFull += full
			if res.Status != SubjectPassed {
				examPassed = false
			}
		}
		processed = append(processed, res)
	}

	var summary ExamResultSummary
	if isGpaMode {
		var finalGpa float64
		if counted > 0 {
			finalGpa = round2(gpaSum / float64(counted))
		}
		summary.FinalGpa = null.Float64From(finalGpa)
		summary.FinalGrade = CalculateGradeAndPoint(pointToPercent(finalGpa)).Grade
		summary.OverallResultStatus = StatusFailed
		if examPassed && counted > 0 && finalGpa >= MinPassGpa {
			summary.OverallResultStatus = StatusPassed
		}
	} else {
		var pct float64
		if grandFull > 0 {
			pct = round2(grandObtained / grandFull * 100)
		}
		summary.GrandTotalMarks = null.Float64From(grandObtained)
		summary.TotalFullMarks = null.Float64From(grandFull)
		summary.TotalPercentage = null.Float64From(pct)
		summary.OverallResultStatus = StatusFailed
		if examPassed && len(subjects) > 0 {
			summary.OverallResultStatus = StatusPassed
		}
	}

	switch {
	case len(subjects) == 0:
		summary.OverallResultStatus = StatusAwaited
	case allAbsent:
		summary.OverallResultStatus = StatusFailed
	case allUnentered:
		// nothing recorded yet; this must not read as a fail
		summary.OverallResultStatus = StatusAwaited
	}
	if summary.OverallResultStatus == StatusAwaited {
		summary.FinalGrade = ""
	}

	return Processed{Subjects: processed, Summary: summary}
}

func processAbsent(res *ProcessedSubjectResult, isGpaMode bool) {
	res.Status = SubjectAbsent
	if !isGpaMode {
		// TotalMarksObtained stays null: absent is not zero
		return
	}
	abs := GpaInfo{Grade: GradeAbsent, Point: 0}
	res.Theory = &abs
	if res.HasPractical {
		pAbs := abs
		res.Practical = &pAbs
	}
	res.AveragePoint = null.Float64From(0)
	res.Grade = GradeAbsent
}

// processGpa grades each component, averages their points and regrades the average.
// It reports whether the subject passed and counts toward the final GPA.
func processGpa(res *ProcessedSubjectResult, entry MarkEntry) bool {
	theory := CalculateGradeAndPoint(percentage(entry.TheoryMarksObtained, res.TheoryFM))
	res.Theory = &theory
	sum, n := theory.Point, 1
	anyNG := theory.Grade == GradeNotGraded

	if res.HasPractical {
		var full float64
		if res.PracticalFM.Valid {
			full = res.PracticalFM.Float64
		}
		practical := CalculateGradeAndPoint(percentage(entry.PracticalMarksObtained, full))
		res.Practical = &practical
		sum += practical.Point
		n++
		anyNG = anyNG || practical.Grade == GradeNotGraded
	}

	avg := sum / float64(n)
	res.AveragePoint = null.Float64From(avg)
	res.Grade = CalculateGradeAndPoint(pointToPercent(avg)).Grade

	if anyNG || res.Grade == GradeNotGraded {
		res.Status = SubjectNG
		return false
	}
	res.Status = SubjectPassed
	return true
}

// processMarks checks pass marks and returns the marks obtained and full marks to add to the grand totals.
func processMarks(res *ProcessedSubjectResult, entry MarkEntry) (obtained, full float64) {
	theory, practical := entry.TheoryMarksObtained, entry.PracticalMarksObtained

	passed := theory.Valid && theory.Float64 >= res.TheoryPM
	if theory.Valid {
		obtained = theory.Float64
	}
	full = res.TheoryFM

	if res.HasPractical {
		if res.PracticalPM.Valid {
			passed = passed && practical.Valid && practical.Float64 >= res.PracticalPM.Float64
		}
		if practical.Valid {
			obtained += practical.Float64
		}
		if res.PracticalFM.Valid {
			full += res.PracticalFM.Float64
		}
	}

	res.TotalMarksObtained = null.Float64From(obtained)
	res.Status = SubjectFailed
	if passed {
		res.Status = SubjectPassed
	}
	return obtained, full
}

// pointToPercent converts a grade point back to its percentage equivalent on the 4.0 scale.
func pointToPercent(point float64) null.Float64 {
	return null.Float64From(round2(point / 4.0 * 100))
}
