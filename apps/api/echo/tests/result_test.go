package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/vidyalaya/core/result"
	"github.com/trezcool/vidyalaya/tests"
)

func Test_resultApi_process(t *testing.T) {
	app := setup(t)

	math := result.SubjectSpec{Name: "Math", TheoryFM: 100, TheoryPM: 40}
	processed := result.ProcessExamResultsForStudent(
		[]result.SubjectSpec{math},
		[]result.MarkEntry{{SubjectName: "Math", TheoryMarksObtained: null.Float64From(55)}},
		false,
	)

	tests := []httpTest{
		{
			name:   "marks mode",
			method: http.MethodPost,
			path:   "/v1/results/process",
			body: []byte(`{"subjects":[{"name":"Math","theory_fm":100,"theory_pm":40}],` +
				`"marks":[{"subject_name":"Math","theory_marks_obtained":55}],"is_gpa_mode":false}`),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, processed),
		},
		{
			name:     "invalid subject",
			method:   http.MethodPost,
			path:     "/v1/results/process",
			body:     []byte(`{"subjects":[{"name":"Sci","theory_fm":100,"theory_pm":40,"has_practical":true}]}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{
				"subjects[0].practical_fm": "practical marks are required for subjects with a practical",
				"subjects[0].practical_pm": "practical marks are required for subjects with a practical",
			}),
		},
		{
			name:     "negative marks",
			method:   http.MethodPost,
			path:     "/v1/results/process",
			body:     []byte(`{"marks":[{"subject_name":"Math","theory_marks_obtained":-1}]}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"marks[0].theory_marks_obtained": "theory_marks_obtained cannot be negative"}),
		},
		{
			name:     "malformed body",
			method:   http.MethodPost,
			path:     "/v1/results/process",
			body:     []byte(`{"subjects":`),
			wantCode: http.StatusBadRequest,
		},
	}
	runHTTPTests(t, app, tests)
}

func Test_resultApi_createExam(t *testing.T) {
	app := setup(t)

	tests := []httpTest{
		{
			name:     "blank name",
			method:   http.MethodPost,
			path:     "/v1/exams",
			body:     []byte(`{"name":"  ","held_on":"2081-04-15","subjects":[{"name":"Math","theory_fm":100,"theory_pm":40}]}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"name": "this field is required"}),
		},
		{
			name:     "invalid BS date",
			method:   http.MethodPost,
			path:     "/v1/exams",
			body:     []byte(`{"name":"Final","held_on":"2081-01-32","subjects":[{"name":"Math","theory_fm":100,"theory_pm":40}]}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"held_on": "invalid BS date"}),
		},
		{
			name:   "duplicate subjects",
			method: http.MethodPost,
			path:   "/v1/exams",
			body: []byte(`{"name":"Final","held_on":"2081-04-15","subjects":[` +
				`{"name":"Math","theory_fm":100,"theory_pm":40},{"name":"Math","theory_fm":50,"theory_pm":20}]}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"subjects": "subject names must be unique"}),
		},
		{
			name:     "pass marks above full marks",
			method:   http.MethodPost,
			path:     "/v1/exams",
			body:     []byte(`{"name":"Final","held_on":"2081-04-15","subjects":[{"name":"Math","theory_fm":40,"theory_pm":50}]}`),
			wantCode: http.StatusBadRequest,
		},
	}
	runHTTPTests(t, app, tests)

	t.Run("created", func(t *testing.T) {
		body := []byte(`{"name":" Final ","held_on":"2081/4/15","is_gpa_mode":true,` +
			`"subjects":[{"name":"Math","theory_fm":100,"theory_pm":40}]}`)
		req, rec := newRequest(http.MethodPost, "/v1/exams", body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var exam result.Exam
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exam))
		assert.NotEmpty(t, exam.ID)
		assert.Equal(t, "Final", exam.Name)
		assert.Equal(t, "2081-04-15", exam.HeldOn.String())
		assert.True(t, exam.IsGpaMode)
	})
}

func Test_resultApi_exams(t *testing.T) {
	app := setup(t)

	first := testutil.CreateExam(t, examRepo, "First Terminal", "2081-04-15", false, nil)
	final := testutil.CreateExam(t, examRepo, "Final", "2081-12-20", true, nil)
	empty := marshallObj(t, []result.Exam{})

	tests := []httpTest{
		{name: "list", path: "/v1/exams", wantCode: http.StatusOK, wantData: marshallObj(t, []result.Exam{final, first})},
		{name: "search", path: "/v1/exams?search=TERM", wantCode: http.StatusOK, wantData: marshallObj(t, []result.Exam{first})},
		{name: "search (unknown)", path: "/v1/exams?search=lol", wantCode: http.StatusOK, wantData: empty},
		{name: "gpa mode", path: "/v1/exams?is_gpa_mode=true", wantCode: http.StatusOK, wantData: marshallObj(t, []result.Exam{final})},
		{
			name: "held before", path: "/v1/exams?held_to=2081/6/1", wantCode: http.StatusOK,
			wantData: marshallObj(t, []result.Exam{first}),
		},
		{name: "held_from malformed", path: "/v1/exams?held_from=lol", wantCode: http.StatusBadRequest},
		{
			name: "ordering", path: "/v1/exams?ordering=name", wantCode: http.StatusOK,
			wantData: marshallObj(t, []result.Exam{final, first}),
		},
		{
			name: "ordering desc", path: "/v1/exams?ordering=-name", wantCode: http.StatusOK,
			wantData: marshallObj(t, []result.Exam{first, final}),
		},
		{name: "retrieve", path: "/v1/exams/" + first.ID, wantCode: http.StatusOK, wantData: marshallObj(t, first)},
		{
			name: "retrieve (unknown)", path: "/v1/exams/lol", wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "not found"}),
		},
		{name: "delete", method: http.MethodDelete, path: "/v1/exams/" + first.ID, wantCode: http.StatusNoContent},
		{name: "deleted", path: "/v1/exams/" + first.ID, wantCode: http.StatusNotFound},
	}
	runHTTPTests(t, app, tests)
}

func Test_resultApi_marksAndResults(t *testing.T) {
	app := setup(t)

	exam := testutil.CreateExam(t, examRepo, "First Terminal", "2081-04-15", false, nil)
	base := "/v1/exams/" + exam.ID

	tests := []httpTest{
		{
			name:     "unknown subject",
			method:   http.MethodPut,
			path:     base + "/students/s1/marks",
			body:     []byte(`{"entries":[{"subject_name":"Art","theory_marks_obtained":10}]}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"Art": "unknown subject"}),
		},
		{
			name:     "above full marks",
			method:   http.MethodPut,
			path:     base + "/students/s1/marks",
			body:     []byte(`{"entries":[{"subject_name":"Math","theory_marks_obtained":101}]}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"Math": "theory marks cannot exceed 100"}),
		},
		{
			name:     "practical on theory-only subject",
			method:   http.MethodPut,
			path:     base + "/students/s1/marks",
			body:     []byte(`{"entries":[{"subject_name":"Math","theory_marks_obtained":50,"practical_marks_obtained":5}]}`),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"Math": "subject has no practical"}),
		},
		{
			name:   "recorded",
			method: http.MethodPut,
			path:   base + "/students/s1/marks",
			body: []byte(`{"entries":[{"subject_name":"Math","theory_marks_obtained":55},` +
				`{"subject_name":"Science","theory_marks_obtained":40,"practical_marks_obtained":20}]}`),
			wantCode: http.StatusOK,
			wantData: marshallObj(t, result.StudentMarks{
				ExamID:    exam.ID,
				StudentID: "s1",
				Entries: []result.MarkEntry{
					{SubjectName: "Math", TheoryMarksObtained: null.Float64From(55)},
					{SubjectName: "Science", TheoryMarksObtained: null.Float64From(40), PracticalMarksObtained: null.Float64From(20)},
				},
			}),
		},
		{name: "marks of unknown exam", method: http.MethodPut, path: "/v1/exams/lol/students/s1/marks", wantCode: http.StatusNotFound},
		{name: "class results without students", path: base + "/results", wantCode: http.StatusBadRequest},
	}
	runHTTPTests(t, app, tests)

	t.Run("student result", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, base+"/students/s1/result")
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var processed result.Processed
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &processed))
		assert.Equal(t, result.StatusPassed, processed.Summary.OverallResultStatus)
		assert.Equal(t, null.Float64From(115), processed.Summary.GrandTotalMarks)
		assert.Equal(t, null.Float64From(200), processed.Summary.TotalFullMarks)
		assert.Equal(t, null.Float64From(57.5), processed.Summary.TotalPercentage)
	})

	t.Run("class results", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, base+"/results?student=s1&student=s2")
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var results map[string]result.Processed
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
		require.Len(t, results, 2)
		assert.Equal(t, result.StatusPassed, results["s1"].Summary.OverallResultStatus)
		// nothing recorded for s2 yet
		assert.Equal(t, result.StatusAwaited, results["s2"].Summary.OverallResultStatus)
	})
}
