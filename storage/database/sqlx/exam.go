package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/vidyalaya/core"
	"github.com/trezcool/vidyalaya/core/calendar"
	"github.com/trezcool/vidyalaya/core/result"
)

type (
	examRow struct {
		ID        string    `db:"id"`
		Name      string    `db:"name"`
		HeldOn    string    `db:"held_on"`
		IsGpaMode bool      `db:"is_gpa_mode"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}

	subjectRow struct {
		ExamID       string       `db:"exam_id"`
		Position     int          `db:"position"`
		Name         string       `db:"name"`
		TheoryFM     float64      `db:"theory_fm"`
		TheoryPM     float64      `db:"theory_pm"`
		HasPractical bool         `db:"has_practical"`
		PracticalFM  null.Float64 `db:"practical_fm"`
		PracticalPM  null.Float64 `db:"practical_pm"`
	}

	markRow struct {
		ExamID                 string       `db:"exam_id"`
		StudentID              string       `db:"student_id"`
		SubjectName            string       `db:"subject_name"`
		TheoryMarksObtained    null.Float64 `db:"theory_marks_obtained"`
		PracticalMarksObtained null.Float64 `db:"practical_marks_obtained"`
		IsAbsent               bool         `db:"is_absent"`
	}
)

func (r examRow) toExam(subjects []subjectRow) (result.Exam, error) {
	heldOn, err := calendar.Parse(r.HeldOn, calendar.BS)
	if err != nil {
		return result.Exam{}, errors.Wrapf(err, "exam %s: held_on", r.ID)
	}
	exam := result.Exam{
		ID:        r.ID,
		Name:      r.Name,
		HeldOn:    heldOn,
		IsGpaMode: r.IsGpaMode,
		Subjects:  make([]result.SubjectSpec, 0, len(subjects)),
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	for _, s := range subjects {
		exam.Subjects = append(exam.Subjects, result.SubjectSpec{
			Name:         s.Name,
			TheoryFM:     s.TheoryFM,
			TheoryPM:     s.TheoryPM,
			HasPractical: s.HasPractical,
			PracticalFM:  s.PracticalFM,
			PracticalPM:  s.PracticalPM,
		})
	}
	return exam, nil
}

type examRepository struct {
	db *sqlx.DB
}

var _ result.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *sql.DB) result.Repository {
	return &examRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo *examRepository) CreateExam(ctx context.Context, exam result.Exam) (result.Exam, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return result.Exam{}, errors.Wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	row := examRow{
		ID:        exam.ID,
		Name:      exam.Name,
		HeldOn:    exam.HeldOn.String(),
		IsGpaMode: exam.IsGpaMode,
		CreatedAt: exam.CreatedAt,
		UpdatedAt: exam.UpdatedAt,
	}
	const qExam = `
		INSERT INTO exam (id, name, held_on, is_gpa_mode, created_at, updated_at)
		VALUES (:id, :name, :held_on, :is_gpa_mode, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, qExam, row); err != nil {
		return result.Exam{}, errors.Wrap(err, "inserting exam")
	}

	const qSubject = `
		INSERT INTO exam_subject (exam_id, position, name, theory_fm, theory_pm, has_practical, practical_fm, practical_pm)
		VALUES (:exam_id, :position, :name, :theory_fm, :theory_pm, :has_practical, :practical_fm, :practical_pm)`
	for i, s := range exam.Subjects {
		sr := subjectRow{
			ExamID:       exam.ID,
			Position:     i,
			Name:         s.Name,
			TheoryFM:     s.TheoryFM,
			TheoryPM:     s.TheoryPM,
			HasPractical: s.HasPractical,
			PracticalFM:  s.PracticalFM,
			PracticalPM:  s.PracticalPM,
		}
		if _, err = tx.NamedExecContext(ctx, qSubject, sr); err != nil {
			return result.Exam{}, errors.Wrapf(err, "inserting subject %q", s.Name)
		}
	}

	if err = tx.Commit(); err != nil {
		return result.Exam{}, errors.Wrap(err, "committing exam")
	}
	return repo.GetExam(ctx, exam.ID)
}

func (repo *examRepository) GetExam(ctx context.Context, id string) (result.Exam, error) {
	var row examRow
	const q = `SELECT id, name, held_on, is_gpa_mode, created_at, updated_at FROM exam WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return result.Exam{}, result.ErrExamNotFound
		}
		return result.Exam{}, errors.Wrap(err, "selecting exam")
	}
	subjects, err := repo.subjects(ctx, id)
	if err != nil {
		return result.Exam{}, err
	}
	return row.toExam(subjects[id])
}

// subjects returns the subjects of the given exams grouped by exam ID, in creation order.
func (repo *examRepository) subjects(ctx context.Context, examIDs ...string) (map[string][]subjectRow, error) {
	grouped := make(map[string][]subjectRow, len(examIDs))
	if len(examIDs) == 0 {
		return grouped, nil
	}
	q, args, err := sqlx.In(`
		SELECT exam_id, position, name, theory_fm, theory_pm, has_practical, practical_fm, practical_pm
		FROM exam_subject WHERE exam_id IN (?) ORDER BY exam_id, position`, examIDs)
	if err != nil {
		return nil, errors.Wrap(err, "building subjects query")
	}
	var rows []subjectRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting subjects")
	}
	for _, r := range rows {
		grouped[r.ExamID] = append(grouped[r.ExamID], r)
	}
	return grouped, nil
}

func (repo *examRepository) QueryExams(ctx context.Context, filter *result.QueryFilter, orderings []core.DBOrdering) ([]result.Exam, error) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.Search != "" {
		where = append(where, "name ILIKE "+arg("%"+filter.Search+"%"))
	}
	if filter.IsGpaMode != nil {
		where = append(where, "is_gpa_mode = "+arg(*filter.IsGpaMode))
	}
	if filter.HeldFrom != "" {
		where = append(where, "held_on >= "+arg(filter.HeldFrom))
	}
	if filter.HeldTo != "" {
		where = append(where, "held_on <= "+arg(filter.HeldTo))
	}

	q := "SELECT id, name, held_on, is_gpa_mode, created_at, updated_at FROM exam"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	orderings = core.FilterOrderings(orderings, result.OrderingFields)
	if len(orderings) == 0 {
		orderings = []core.DBOrdering{{Field: "held_on"}, {Field: "name", Ascending: true}}
	}
	orderBy := make([]string, 0, len(orderings)+1)
	for _, ord := range orderings {
		orderBy = append(orderBy, ord.String())
	}
	q += " ORDER BY " + strings.Join(append(orderBy, "id ASC"), ", ")

	var rows []examRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting exams")
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	subjects, err := repo.subjects(ctx, ids...)
	if err != nil {
		return nil, err
	}

	exams := make([]result.Exam, 0, len(rows))
	for _, r := range rows {
		exam, err := r.toExam(subjects[r.ID])
		if err != nil {
			return nil, err
		}
		exams = append(exams, exam)
	}
	return exams, nil
}

// DeleteExam relies on ON DELETE CASCADE for subjects & marks.
func (repo *examRepository) DeleteExam(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM exam WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting exam")
	}
	return nil
}

func (repo *examRepository) SaveMarks(ctx context.Context, marks result.StudentMarks) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
		INSERT INTO mark_entry (exam_id, student_id, subject_name, theory_marks_obtained, practical_marks_obtained, is_absent)
		VALUES (:exam_id, :student_id, :subject_name, :theory_marks_obtained, :practical_marks_obtained, :is_absent)
		ON CONFLICT (exam_id, student_id, subject_name) DO UPDATE SET
			theory_marks_obtained = EXCLUDED.theory_marks_obtained,
			practical_marks_obtained = EXCLUDED.practical_marks_obtained,
			is_absent = EXCLUDED.is_absent`
	for _, e := range marks.Entries {
		row := markRow{
			ExamID:                 marks.ExamID,
			StudentID:              marks.StudentID,
			SubjectName:            e.SubjectName,
			TheoryMarksObtained:    e.TheoryMarksObtained,
			PracticalMarksObtained: e.PracticalMarksObtained,
			IsAbsent:               e.IsAbsent,
		}
		if _, err = tx.NamedExecContext(ctx, q, row); err != nil {
			return errors.Wrapf(err, "saving marks of %q", e.SubjectName)
		}
	}
	return errors.Wrap(tx.Commit(), "committing marks")
}

func (repo *examRepository) GetMarks(ctx context.Context, examID, studentID string) (result.StudentMarks, error) {
	var rows []markRow
	const q = `
		SELECT exam_id, student_id, subject_name, theory_marks_obtained, practical_marks_obtained, is_absent
		FROM mark_entry WHERE exam_id = $1 AND student_id = $2 ORDER BY subject_name`
	if err := repo.db.SelectContext(ctx, &rows, q, examID, studentID); err != nil {
		return result.StudentMarks{}, errors.Wrap(err, "selecting marks")
	}
	marks := result.StudentMarks{ExamID: examID, StudentID: studentID, Entries: make([]result.MarkEntry, 0, len(rows))}
	for _, r := range rows {
		marks.Entries = append(marks.Entries, result.MarkEntry{
			SubjectName:            r.SubjectName,
			TheoryMarksObtained:    r.TheoryMarksObtained,
			PracticalMarksObtained: r.PracticalMarksObtained,
			IsAbsent:               r.IsAbsent,
		})
	}
	return marks, nil
}
