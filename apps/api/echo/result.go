package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/vidyalaya/core"
	"github.com/trezcool/vidyalaya/core/result"
)

// MarksRequest is the body of PUT /exams/:id/students/:student/marks.
type MarksRequest struct {
	Entries []result.MarkEntry `json:"entries"`
}

type resultApi struct {
	svc result.ServiceInterface
}

func registerResultAPI(g *echo.Group, svc result.ServiceInterface) {
	api := resultApi{svc: svc}

	g.POST("/results/process", api.process)

	eg := g.Group("/exams")
	eg.POST("", api.create)
	eg.GET("", api.query)

	// detail endpoints
	dg := eg.Group("/:id", examMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.DELETE("", api.destroy)
	dg.GET("/results", api.classResults)
	dg.PUT("/students/:student/marks", api.recordMarks)
	dg.GET("/students/:student/result", api.studentResult)
}

// Handlers

func (api *resultApi) process(ctx echo.Context) error {
	var data result.ProcessRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProcessRequest")
	}
	processed, err := api.svc.Process(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, processed)
}

func (api *resultApi) create(ctx echo.Context) error {
	var data result.NewExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExam")
	}
	exam, err := api.svc.CreateExam(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating exam")
	}
	return ctx.JSON(http.StatusCreated, exam)
}

func (api *resultApi) query(ctx echo.Context) error {
	filter := new(result.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []result.Exam{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	exams, err := api.svc.QueryExams(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying exams")
	}
	if exams == nil {
		exams = []result.Exam{}
	}
	return ctx.JSON(http.StatusOK, exams)
}

func (api *resultApi) retrieve(ctx echo.Context) error {
	exam, err := getContextExam(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, exam)
}

func (api *resultApi) destroy(ctx echo.Context) error {
	exam, err := getContextExam(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteExam(ctx.Request().Context(), exam.ID); err != nil {
		return errors.Wrap(err, "deleting exam")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *resultApi) recordMarks(ctx echo.Context) error {
	exam, err := getContextExam(ctx)
	if err != nil {
		return err
	}
	var data MarksRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarksRequest")
	}
	marks, err := api.svc.RecordMarks(ctx.Request().Context(), exam.ID, ctx.Param("student"), data.Entries)
	if err != nil {
		return errors.Wrap(err, "recording marks")
	}
	return ctx.JSON(http.StatusOK, marks)
}

func (api *resultApi) studentResult(ctx echo.Context) error {
	exam, err := getContextExam(ctx)
	if err != nil {
		return err
	}
	processed, err := api.svc.StudentResult(ctx.Request().Context(), exam.ID, ctx.Param("student"))
	if err != nil {
		return errors.Wrap(err, "processing result")
	}
	return ctx.JSON(http.StatusOK, processed)
}

// classResults processes "?student=a&student=b".
func (api *resultApi) classResults(ctx echo.Context) error {
	exam, err := getContextExam(ctx)
	if err != nil {
		return err
	}
	students := ctx.QueryParams()["student"]
	if len(students) == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "student", Error: "this field is required"})
	}
	results, err := api.svc.ClassResults(ctx.Request().Context(), exam.ID, students)
	if err != nil {
		return errors.Wrap(err, "processing results")
	}
	return ctx.JSON(http.StatusOK, results)
}
