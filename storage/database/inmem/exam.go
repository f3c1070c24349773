package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/vidyalaya/core"
	"github.com/trezcool/vidyalaya/core/result"
)

type examRepository struct {
	db *DB
}

var _ result.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *DB) result.Repository {
	return &examRepository{db: db}
}

func copyExam(exam result.Exam) result.Exam {
	exam.Subjects = append([]result.SubjectSpec(nil), exam.Subjects...)
	return exam
}

func (repo *examRepository) CreateExam(_ context.Context, exam result.Exam) (result.Exam, error) {
	repo.db.exam.Lock()
	defer repo.db.exam.Unlock()

	exam = copyExam(exam)
	repo.db.exam.table[exam.ID] = &exam
	return copyExam(exam), nil
}

func (repo *examRepository) GetExam(_ context.Context, id string) (result.Exam, error) {
	repo.db.exam.RLock()
	defer repo.db.exam.RUnlock()

	if exam, ok := repo.db.exam.table[id]; ok {
		return copyExam(*exam), nil
	}
	return result.Exam{}, result.ErrExamNotFound
}

func (repo *examRepository) QueryExams(_ context.Context, filter *result.QueryFilter, orderings []core.DBOrdering) ([]result.Exam, error) {
	repo.db.exam.RLock()
	defer repo.db.exam.RUnlock()

	search := strings.ToLower(filter.Search)
	exams := make([]result.Exam, 0, len(repo.db.exam.table))
	for _, exam := range repo.db.exam.table {
		if search != "" && !strings.Contains(strings.ToLower(exam.Name), search) {
			continue
		}
		if filter.IsGpaMode != nil && exam.IsGpaMode != *filter.IsGpaMode {
			continue
		}
		// YYYY-MM-DD strings sort chronologically
		heldOn := exam.HeldOn.String()
		if filter.HeldFrom != "" && heldOn < filter.HeldFrom {
			continue
		}
		if filter.HeldTo != "" && heldOn > filter.HeldTo {
			continue
		}
		exams = append(exams, copyExam(*exam))
	}

	orderings = core.FilterOrderings(orderings, result.OrderingFields)
	if len(orderings) == 0 {
		orderings = []core.DBOrdering{{Field: "held_on"}, {Field: "name", Ascending: true}}
	}
	sort.SliceStable(exams, func(i, j int) bool {
		for _, ord := range orderings {
			c := compareExams(exams[i], exams[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return exams[i].ID < exams[j].ID
	})
	return exams, nil
}

func compareExams(a, b result.Exam, field string) int {
	switch field {
	case "name":
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case "held_on":
		return strings.Compare(a.HeldOn.String(), b.HeldOn.String())
	case "created_at":
		switch {
		case a.CreatedAt.Before(b.CreatedAt):
			return -1
		case a.CreatedAt.After(b.CreatedAt):
			return 1
		}
	}
	return 0
}

func (repo *examRepository) DeleteExam(_ context.Context, id string) error {
	repo.db.exam.Lock()
	delete(repo.db.exam.table, id)
	repo.db.exam.Unlock()

	repo.db.marks.Lock()
	delete(repo.db.marks.table, id)
	repo.db.marks.Unlock()
	return nil
}

func (repo *examRepository) SaveMarks(_ context.Context, marks result.StudentMarks) error {
	repo.db.marks.Lock()
	defer repo.db.marks.Unlock()

	students, ok := repo.db.marks.table[marks.ExamID]
	if !ok {
		students = make(map[string]map[string]result.MarkEntry)
		repo.db.marks.table[marks.ExamID] = students
	}
	subjects, ok := students[marks.StudentID]
	if !ok {
		subjects = make(map[string]result.MarkEntry)
		students[marks.StudentID] = subjects
	}
	for _, entry := range marks.Entries {
		subjects[entry.SubjectName] = entry
	}
	return nil
}

func (repo *examRepository) GetMarks(_ context.Context, examID, studentID string) (result.StudentMarks, error) {
	repo.db.marks.RLock()
	defer repo.db.marks.RUnlock()

	marks := result.StudentMarks{ExamID: examID, StudentID: studentID, Entries: []result.MarkEntry{}}
	for _, entry := range repo.db.marks.table[examID][studentID] {
		marks.Entries = append(marks.Entries, entry)
	}
	sort.Slice(marks.Entries, func(i, j int) bool {
		return marks.Entries[i].SubjectName < marks.Entries[j].SubjectName
	})
	return marks, nil
}
