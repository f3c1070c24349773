package inmemdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/vidyalaya/core"
	"github.com/trezcool/vidyalaya/core/result"
	"github.com/trezcool/vidyalaya/tests"
)

func setup(t *testing.T) result.Repository {
	db := Open()
	t.Cleanup(db.Reset)
	return NewExamRepository(db)
}

func TestExamRepository_CreateGet(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()

	exam := testutil.CreateExam(t, repo, "First Terminal", "2081-04-15", true, nil)

	got, err := repo.GetExam(ctx, exam.ID)
	require.NoError(t, err)
	assert.Equal(t, exam, got)

	// callers cannot mutate stored subjects
	got.Subjects[0].Name = "Changed"
	again, err := repo.GetExam(ctx, exam.ID)
	require.NoError(t, err)
	assert.Equal(t, "Math", again.Subjects[0].Name)

	_, err = repo.GetExam(ctx, "missing")
	assert.Equal(t, result.ErrExamNotFound, err)
}

func TestExamRepository_QueryExams(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()
	now := time.Now().UTC()

	first := testutil.CreateExam(t, repo, "First Terminal", "2081-04-15", true, nil, now)
	second := testutil.CreateExam(t, repo, "Second Terminal", "2081-08-02", false, nil, now.Add(time.Minute))
	final := testutil.CreateExam(t, repo, "Final", "2081-12-20", true, nil, now.Add(2*time.Minute))

	yes, no := true, false
	tests := []struct {
		name      string
		filter    result.QueryFilter
		orderings []core.DBOrdering
		want      []result.Exam
	}{
		{name: "all, latest first", want: []result.Exam{final, second, first}},
		{name: "search", filter: result.QueryFilter{Search: "terminal"}, want: []result.Exam{second, first}},
		{name: "gpa mode", filter: result.QueryFilter{IsGpaMode: &yes}, want: []result.Exam{final, first}},
		{name: "marks mode", filter: result.QueryFilter{IsGpaMode: &no}, want: []result.Exam{second}},
		{name: "held from", filter: result.QueryFilter{HeldFrom: "2081-08-02"}, want: []result.Exam{final, second}},
		{name: "held between", filter: result.QueryFilter{HeldFrom: "2081-05-01", HeldTo: "2081-12-01"}, want: []result.Exam{second}},
		{
			name:      "order by name",
			orderings: []core.DBOrdering{{Field: "name", Ascending: true}},
			want:      []result.Exam{final, first, second},
		},
		{
			name:      "unknown ordering ignored",
			orderings: []core.DBOrdering{{Field: "password"}},
			want:      []result.Exam{final, second, first},
		},
		{name: "no match", filter: result.QueryFilter{Search: "lol"}, want: []result.Exam{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := tt.filter
			got, err := repo.QueryExams(ctx, &filter, tt.orderings)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExamRepository_Marks(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()
	exam := testutil.CreateExam(t, repo, "First Terminal", "2081-04-15", false, nil)

	marks, err := repo.GetMarks(ctx, exam.ID, "s1")
	require.NoError(t, err)
	assert.Empty(t, marks.Entries)
	assert.NotNil(t, marks.Entries)

	testutil.SaveMarks(t, repo, exam.ID, "s1",
		result.MarkEntry{SubjectName: "Science", TheoryMarksObtained: null.Float64From(50)},
		result.MarkEntry{SubjectName: "Math", TheoryMarksObtained: null.Float64From(30)},
	)
	// upsert
	testutil.SaveMarks(t, repo, exam.ID, "s1", result.MarkEntry{SubjectName: "Math", TheoryMarksObtained: null.Float64From(60)})
	testutil.SaveMarks(t, repo, exam.ID, "s2", result.MarkEntry{SubjectName: "Math", IsAbsent: true})

	marks, err = repo.GetMarks(ctx, exam.ID, "s1")
	require.NoError(t, err)
	assert.Equal(t, []result.MarkEntry{
		{SubjectName: "Math", TheoryMarksObtained: null.Float64From(60)},
		{SubjectName: "Science", TheoryMarksObtained: null.Float64From(50)},
	}, marks.Entries)

	require.NoError(t, repo.DeleteExam(ctx, exam.ID))
	_, err = repo.GetExam(ctx, exam.ID)
	assert.Equal(t, result.ErrExamNotFound, err)
	marks, err = repo.GetMarks(ctx, exam.ID, "s2")
	require.NoError(t, err)
	assert.Empty(t, marks.Entries)
}
