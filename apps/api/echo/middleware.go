package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/vidyalaya/core/result"
)

var ctxExamKey = "exam"

// examMiddleware loads the exam named by the `:id` path param into the context.
func examMiddleware(svc result.ServiceInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			exam, err := svc.GetExam(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == result.ErrExamNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "getting exam")
			}
			ctx.Set(ctxExamKey, exam)
			return next(ctx)
		}
	}
}

func getContextExam(ctx echo.Context) (result.Exam, error) {
	if exam, ok := ctx.Get(ctxExamKey).(result.Exam); ok {
		return exam, nil
	}
	return result.Exam{}, errors.New("exam object not found in echo.Context")
}
