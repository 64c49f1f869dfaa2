package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tbahati/dojokai/core/exam"
)

type examApi struct {
	svc *exam.Service
}

func registerExamAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *exam.Service) {
	api := examApi{svc: svc}

	eg := g.Group("/exames", jwt)
	eg.POST("", api.create, staffMiddleware())
	eg.GET("", api.query)
	eg.GET("/:id", api.retrieve)
	eg.PATCH("/:id", api.update, staffMiddleware())
	eg.DELETE("/:id", api.destroy, staffMiddleware())
	eg.GET("/:id/banca", api.ranking)

	// score updates address the enrollment, not the exam. POST and PATCH
	// are aliases so grading clients can submit either.
	eg.POST("/notas/:inscricaoID", api.updateScores, staffMiddleware())
	eg.PATCH("/notas/:inscricaoID", api.updateScores, staffMiddleware())
}

// ExamCreatedResponse reports the created exam along with the roster IDs
// that did not match any student and were skipped.
type ExamCreatedResponse struct {
	Exam          exam.Exam `json:"exame"`
	SkippedRoster []string  `json:"alunos_ignorados"`
}

func (api *examApi) create(ctx echo.Context) error {
	var data exam.NewExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExam")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ex, skipped, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating exam")
	}
	if skipped == nil {
		skipped = []string{}
	}
	return ctx.JSON(http.StatusCreated, ExamCreatedResponse{Exam: ex, SkippedRoster: skipped})
}

func (api *examApi) query(ctx echo.Context) error {
	exams, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying exams")
	}
	if exams == nil {
		exams = []exam.Exam{}
	}
	return ctx.JSON(http.StatusOK, exams)
}

func (api *examApi) retrieve(ctx echo.Context) error {
	ex, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting exam")
	}
	return ctx.JSON(http.StatusOK, ex)
}

func (api *examApi) update(ctx echo.Context) error {
	var data exam.UpdateExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateExam")
	}

	orig, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting exam")
	}
	if err := data.Validate(orig); err != nil {
		return err
	}

	ex, err := api.svc.Update(ctx.Request().Context(), orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating exam")
	}
	return ctx.JSON(http.StatusOK, ex)
}

func (api *examApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting exam")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *examApi) ranking(ctx echo.Context) error {
	enrollments, err := api.svc.Ranking(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying ranking")
	}
	if enrollments == nil {
		enrollments = []exam.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrollments)
}

func (api *examApi) updateScores(ctx echo.Context) error {
	var data exam.ScoreUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ScoreUpdate")
	}

	enrl, err := api.svc.UpdateScores(ctx.Request().Context(), ctx.Param("inscricaoID"), data)
	if err != nil {
		return errors.Wrap(err, "updating scores")
	}
	return ctx.JSON(http.StatusOK, exam.ScoreResult{Average: enrl.Average, Passed: enrl.Passed})
}
