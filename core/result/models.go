package result

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/vidyalaya/core"
	"github.com/trezcool/vidyalaya/core/calendar"
)

// Grades
const (
	GradeAPlus        = "A+"
	GradeA            = "A"
	GradeBPlus        = "B+"
	GradeB            = "B"
	GradeCPlus        = "C+"
	GradeC            = "C"
	GradeD            = "D"
	GradeNotGraded    = "NG"
	GradeAbsent       = "ABS"
	GradeNotAvailable = "N/A"
)

// MinPassGpa is the minimum aggregate GPA an exam can be passed with.
const MinPassGpa = 1.6

// SubjectStatus is the outcome of a single subject.
type SubjectStatus string

const (
	SubjectPassed SubjectStatus = "Passed"
	SubjectNG     SubjectStatus = "NG"
	SubjectAbsent SubjectStatus = "Absent"
	SubjectFailed SubjectStatus = "Failed"
)

// ResultStatus is the outcome of a whole exam sitting.
type ResultStatus string

const (
	StatusPassed   ResultStatus = "Passed"
	StatusFailed   ResultStatus = "Failed"
	StatusPromoted ResultStatus = "Promoted"
	StatusAwaited  ResultStatus = "Awaited"
)

// SubjectSpec describes how a subject of an exam is marked.
type SubjectSpec struct {
	Name         string       `json:"name" validate:"required,notblank"`
	TheoryFM     float64      `json:"theory_fm" validate:"gte=0"`
	TheoryPM     float64      `json:"theory_pm" validate:"gte=0,ltefield=TheoryFM"`
	HasPractical bool         `json:"has_practical"`
	PracticalFM  null.Float64 `json:"practical_fm"`
	PracticalPM  null.Float64 `json:"practical_pm"`
}

// MarkEntry is a student's result for one subject.
// Marks are null until entered; IsAbsent overrides any marks present.
type MarkEntry struct {
	SubjectName            string       `json:"subject_name" validate:"required,notblank"`
	TheoryMarksObtained    null.Float64 `json:"theory_marks_obtained"`
	PracticalMarksObtained null.Float64 `json:"practical_marks_obtained"`
	IsAbsent               bool         `json:"is_absent"`
}

func (me MarkEntry) isUnentered(spec SubjectSpec) bool {
	if me.IsAbsent || me.TheoryMarksObtained.Valid {
		return false
	}
	return !spec.HasPractical || !me.PracticalMarksObtained.Valid
}

type GpaInfo struct {
	Grade string  `json:"grade"`
	Point float64 `json:"point"`
}

// ProcessedSubjectResult is the computed outcome of one subject.
// GPA mode fills Theory, Practical, AveragePoint & Grade; marks mode fills TotalMarksObtained.
type ProcessedSubjectResult struct {
	SubjectSpec
	TheoryMarksObtained    null.Float64  `json:"theory_marks_obtained"`
	PracticalMarksObtained null.Float64  `json:"practical_marks_obtained"`
	IsAbsent               bool          `json:"is_absent"`
	Theory                 *GpaInfo      `json:"theory,omitempty"`
	Practical              *GpaInfo      `json:"practical,omitempty"`
	AveragePoint           null.Float64  `json:"average_point"`
	Grade                  string        `json:"grade,omitempty"`
	TotalMarksObtained     null.Float64  `json:"total_marks_obtained"`
	Status                 SubjectStatus `json:"status"`
}

// ExamResultSummary rolls the subjects of one exam up. FinalGpa is set in GPA mode, the totals in marks mode.
type ExamResultSummary struct {
	OverallResultStatus ResultStatus `json:"overall_result_status"`
	FinalGpa            null.Float64 `json:"final_gpa"`
	FinalGrade          string       `json:"final_grade,omitempty"`
	GrandTotalMarks     null.Float64 `json:"grand_total_marks"`
	TotalFullMarks      null.Float64 `json:"total_full_marks"`
	TotalPercentage     null.Float64 `json:"total_percentage"`
}

type Processed struct {
	Subjects []ProcessedSubjectResult `json:"processed_subjects"`
	Summary  ExamResultSummary        `json:"summary"`
}

// Exam is an exam sitting and the subjects it is marked on.
type Exam struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	HeldOn    calendar.Date `json:"held_on"` // BS
	IsGpaMode bool          `json:"is_gpa_mode"`
	Subjects  []SubjectSpec `json:"subjects"`
	CreatedAt time.Time     `json:"created_at"` // UTC
	UpdatedAt time.Time     `json:"updated_at"` // UTC
}

// Subject returns the exam's subject named `name`.
func (e Exam) Subject(name string) (SubjectSpec, bool) {
	for _, s := range e.Subjects {
		if s.Name == name {
			return s, true
		}
	}
	return SubjectSpec{}, false
}

// StudentMarks are all mark entries of one student for one exam.
type StudentMarks struct {
	ExamID    string      `json:"exam_id"`
	StudentID string      `json:"student_id"`
	Entries   []MarkEntry `json:"entries"`
}

// NewExam contains information needed to create a new Exam.
type NewExam struct {
	Name      string        `json:"name" validate:"required,notblank"`
	HeldOn    string        `json:"held_on" validate:"required"` // BS, YYYY-MM-DD
	IsGpaMode bool          `json:"is_gpa_mode"`
	Subjects  []SubjectSpec `json:"subjects" validate:"required,min=1,dive"`
}

// Clean trims user supplied strings.
func (ne *NewExam) Clean() {
	ne.Name = core.CleanString(ne.Name)
	ne.HeldOn = core.CleanString(ne.HeldOn)
	for i := range ne.Subjects {
		ne.Subjects[i].Name = core.CleanString(ne.Subjects[i].Name)
	}
}

// ProcessRequest is the input of a stateless aggregation.
type ProcessRequest struct {
	Subjects  []SubjectSpec `json:"subjects" validate:"dive"`
	Marks     []MarkEntry   `json:"marks" validate:"dive"`
	IsGpaMode bool          `json:"is_gpa_mode"`
}

type QueryFilter struct {
	Search    string `query:"search"`
	IsGpaMode *bool  `query:"is_gpa_mode"`
	HeldFrom  string `query:"held_from"` // BS
	HeldTo    string `query:"held_to"`   // BS
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.HeldFrom = core.CleanString(qf.HeldFrom)
	qf.HeldTo = core.CleanString(qf.HeldTo)
}

// OrderingFields maps the fields exams can be ordered by to their column names.
var OrderingFields = map[string]string{
	"name":       "name",
	"held_on":    "held_on",
	"created_at": "created_at",
}
