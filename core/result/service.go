package result

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/vidyalaya/core"
	"github.com/trezcool/vidyalaya/core/calendar"
)

var (
	// errors
	ErrExamNotFound = errors.New("exam not found")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateExam(ctx context.Context, exam Exam) (Exam, error)
		GetExam(ctx context.Context, id string) (Exam, error)
		// QueryExams applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Exam.Name.
		QueryExams(ctx context.Context, filter *QueryFilter, orderings []core.DBOrdering) ([]Exam, error)
		DeleteExam(ctx context.Context, id string) error
		// SaveMarks upserts entries per (exam, student, subject).
		SaveMarks(ctx context.Context, marks StudentMarks) error
		GetMarks(ctx context.Context, examID, studentID string) (StudentMarks, error)
	}

	// ServiceInterface is what the API layer depends on.
	ServiceInterface interface {
		CreateExam(ctx context.Context, ne NewExam) (Exam, error)
		GetExam(ctx context.Context, id string) (Exam, error)
		QueryExams(ctx context.Context, filter *QueryFilter, orderings []core.DBOrdering) ([]Exam, error)
		DeleteExam(ctx context.Context, id string) error
		RecordMarks(ctx context.Context, examID, studentID string, entries []MarkEntry) (StudentMarks, error)
		StudentResult(ctx context.Context, examID, studentID string) (Processed, error)
		ClassResults(ctx context.Context, examID string, studentIDs []string) (map[string]Processed, error)
		Process(req ProcessRequest) (Processed, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		logger   core.Logger
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, validate *validator.Validate, logger core.Logger) *Service {
	return &Service{repo: repo, validate: validate, logger: logger}
}

func (svc *Service) CreateExam(ctx context.Context, ne NewExam) (Exam, error) {
	ne.Clean()
	if err := svc.validate.Struct(ne); err != nil {
		return Exam{}, err
	}
	heldOn, err := calendar.Parse(ne.HeldOn, calendar.BS)
	if err == nil {
		// must be a real BS date
		_, err = calendar.BSToAD(heldOn)
	}
	if err != nil {
		return Exam{}, core.NewValidationError(err, core.FieldError{Field: "held_on", Error: "invalid BS date"})
	}

	now := NowFunc().UTC()
	exam := Exam{
		ID:        uuid.New().String(),
		Name:      ne.Name,
		HeldOn:    heldOn,
		IsGpaMode: ne.IsGpaMode,
		Subjects:  ne.Subjects,
		CreatedAt: now,
		UpdatedAt: now,
	}
	exam, err = svc.repo.CreateExam(ctx, exam)
	if err != nil {
		return Exam{}, pkgerrors.Wrap(err, "creating exam")
	}
	svc.logger.Info("exam created", map[string]interface{}{"exam_id": exam.ID, "subjects": len(exam.Subjects)})
	return exam, nil
}

func (svc *Service) GetExam(ctx context.Context, id string) (Exam, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Exam{}, ErrExamNotFound
	}
	return svc.repo.GetExam(ctx, id)
}

func (svc *Service) QueryExams(ctx context.Context, filter *QueryFilter, orderings []core.DBOrdering) ([]Exam, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.Clean()
	for _, bound := range []*string{&filter.HeldFrom, &filter.HeldTo} {
		if *bound == "" {
			continue
		}
		norm, err := calendar.Normalize(*bound)
		if err != nil {
			return nil, core.NewValidationError(err, core.FieldError{Field: "held_from/held_to", Error: "invalid BS date"})
		}
		*bound = norm
	}
	return svc.repo.QueryExams(ctx, filter, orderings)
}

func (svc *Service) DeleteExam(ctx context.Context, id string) error {
	if _, err := svc.GetExam(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteExam(ctx, id)
}

// RecordMarks validates entries against the exam's subjects and saves them.
func (svc *Service) RecordMarks(ctx context.Context, examID, studentID string, entries []MarkEntry) (StudentMarks, error) {
	exam, err := svc.GetExam(ctx, examID)
	if err != nil {
		return StudentMarks{}, err
	}
	studentID = core.CleanString(studentID)
	if studentID == "" {
		return StudentMarks{}, core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: "this field is required"})
	}

	var fldErrs []core.FieldError
	for i := range entries {
		entries[i].SubjectName = core.CleanString(entries[i].SubjectName)
		if err := svc.validate.Struct(entries[i]); err != nil {
			return StudentMarks{}, err
		}
		entry := entries[i]
		spec, ok := exam.Subject(entry.SubjectName)
		if !ok {
			fldErrs = append(fldErrs, core.FieldError{Field: entry.SubjectName, Error: "unknown subject"})
			continue
		}
		if entry.TheoryMarksObtained.Valid && entry.TheoryMarksObtained.Float64 > spec.TheoryFM {
			fldErrs = append(fldErrs, core.FieldError{
				Field: entry.SubjectName,
				Error: fmt.Sprintf("theory marks cannot exceed %g", spec.TheoryFM),
			})
		}
		if entry.PracticalMarksObtained.Valid {
			switch {
			case !spec.HasPractical:
				fldErrs = append(fldErrs, core.FieldError{Field: entry.SubjectName, Error: "subject has no practical"})
			case spec.PracticalFM.Valid && entry.PracticalMarksObtained.Float64 > spec.PracticalFM.Float64:
				fldErrs = append(fldErrs, core.FieldError{
					Field: entry.SubjectName,
					Error: fmt.Sprintf("practical marks cannot exceed %g", spec.PracticalFM.Float64),
				})
			}
		}
	}
	if len(fldErrs) > 0 {
		return StudentMarks{}, core.NewValidationError(errors.New("invalid marks"), fldErrs...)
	}

	marks := StudentMarks{ExamID: exam.ID, StudentID: studentID, Entries: entries}
	if err := svc.repo.SaveMarks(ctx, marks); err != nil {
		return StudentMarks{}, pkgerrors.Wrap(err, "saving marks")
	}
	return svc.repo.GetMarks(ctx, exam.ID, studentID)
}

// StudentResult processes the recorded marks of a student in the exam's scoring mode.
func (svc *Service) StudentResult(ctx context.Context, examID, studentID string) (Processed, error) {
	exam, err := svc.GetExam(ctx, examID)
	if err != nil {
		return Processed{}, err
	}
	marks, err := svc.repo.GetMarks(ctx, exam.ID, core.CleanString(studentID))
	if err != nil {
		return Processed{}, pkgerrors.Wrap(err, "getting marks")
	}
	return ProcessExamResultsForStudent(exam.Subjects, marks.Entries, exam.IsGpaMode), nil
}

// ClassResults processes the results of several students of the same exam.
func (svc *Service) ClassResults(ctx context.Context, examID string, studentIDs []string) (map[string]Processed, error) {
	exam, err := svc.GetExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	results := make(map[string]Processed, len(studentIDs))
	for _, sid := range studentIDs {
		sid = core.CleanString(sid)
		if sid == "" {
			continue
		}
		marks, err := svc.repo.GetMarks(ctx, exam.ID, sid)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "getting marks of %s", sid)
		}
		results[sid] = ProcessExamResultsForStudent(exam.Subjects, marks.Entries, exam.IsGpaMode)
	}
	return results, nil
}

// Process validates a stateless request and aggregates it.
func (svc *Service) Process(req ProcessRequest) (Processed, error) {
	if err := svc.validate.Struct(req); err != nil {
		return Processed{}, err
	}
	return ProcessExamResultsForStudent(req.Subjects, req.Marks, req.IsGpaMode), nil
}
