package result

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/vidyalaya/core"
)

var (
	practicalRequiredTag  = "practical_required"
	practicalRequiredText = "practical marks are required for subjects with a practical"

	practicalRangeTag  = "practical_range"
	practicalRangeText = "{0} must be between 0 and the practical full marks"

	marksNonNegTag  = "marks_gte0"
	marksNonNegText = "{0} cannot be negative"

	uniqueSubjectsTag  = "unique_subjects"
	uniqueSubjectsText = "subject names must be unique"
)

// InitValidators registers the exam & marks validations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(subjectSpecStructValidation, SubjectSpec{})
	validate.RegisterStructValidation(markEntryStructValidation, MarkEntry{})
	validate.RegisterStructValidation(newExamStructValidation, NewExam{})

	core.RegisterCustomTranslation(validate, translator, practicalRequiredTag, practicalRequiredText)
	core.RegisterCustomTranslation(validate, translator, practicalRangeTag, practicalRangeText)
	core.RegisterCustomTranslation(validate, translator, marksNonNegTag, marksNonNegText)
	core.RegisterCustomTranslation(validate, translator, uniqueSubjectsTag, uniqueSubjectsText)
}

// subjectSpecStructValidation checks the practical component of a SubjectSpec:
// - full & pass marks required when HasPractical
// - 0 <= pass marks <= full marks
func subjectSpecStructValidation(sl validator.StructLevel) {
	spec, ok := sl.Current().Interface().(SubjectSpec)
	if !ok || !spec.HasPractical {
		return
	}
	if !spec.PracticalFM.Valid {
		sl.ReportError(spec.PracticalFM, "practical_fm", "PracticalFM", practicalRequiredTag, "")
	}
	if !spec.PracticalPM.Valid {
		sl.ReportError(spec.PracticalPM, "practical_pm", "PracticalPM", practicalRequiredTag, "")
	}
	if !spec.PracticalFM.Valid || !spec.PracticalPM.Valid {
		return
	}
	if spec.PracticalFM.Float64 < 0 {
		sl.ReportError(spec.PracticalFM, "practical_fm", "PracticalFM", marksNonNegTag, "")
	}
	if spec.PracticalPM.Float64 < 0 || spec.PracticalPM.Float64 > spec.PracticalFM.Float64 {
		sl.ReportError(spec.PracticalPM, "practical_pm", "PracticalPM", practicalRangeTag, "")
	}
}

func markEntryStructValidation(sl validator.StructLevel) {
	entry, ok := sl.Current().Interface().(MarkEntry)
	if !ok {
		return
	}
	if isNegative(entry.TheoryMarksObtained) {
		sl.ReportError(entry.TheoryMarksObtained, "theory_marks_obtained", "TheoryMarksObtained", marksNonNegTag, "")
	}
	if isNegative(entry.PracticalMarksObtained) {
		sl.ReportError(entry.PracticalMarksObtained, "practical_marks_obtained", "PracticalMarksObtained", marksNonNegTag, "")
	}
}

func newExamStructValidation(sl validator.StructLevel) {
	ne, ok := sl.Current().Interface().(NewExam)
	if !ok {
		return
	}
	seen := make(map[string]bool, len(ne.Subjects))
	for _, s := range ne.Subjects {
		if seen[s.Name] {
			sl.ReportError(ne.Subjects, "subjects", "Subjects", uniqueSubjectsTag, "")
			return
		}
		seen[s.Name] = true
	}
}

func isNegative(f null.Float64) bool {
	return f.Valid && f.Float64 < 0
}
