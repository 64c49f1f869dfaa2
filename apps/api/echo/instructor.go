package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tbahati/dojokai/core/instructor"
)

type instructorApi struct {
	svc *instructor.Service
}

func registerInstructorAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *instructor.Service) {
	api := instructorApi{svc: svc}

	ig := g.Group("/professores", jwt)
	ig.POST("", api.create, adminMiddleware())
	ig.GET("", api.query)
	ig.GET("/:id", api.retrieve)
	ig.PATCH("/:id", api.update, adminMiddleware())
	ig.DELETE("/:id", api.deactivate, adminMiddleware())
}

func (api *instructorApi) create(ctx echo.Context) error {
	var data instructor.NewInstructor
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInstructor")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	ins, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating instructor")
	}
	return ctx.JSON(http.StatusCreated, ins)
}

func (api *instructorApi) query(ctx echo.Context) error {
	includeInactive := ctx.QueryParam("incluir_inativos") == "true"
	instructors, err := api.svc.Query(ctx.Request().Context(), includeInactive)
	if err != nil {
		return errors.Wrap(err, "querying instructors")
	}
	if instructors == nil {
		instructors = []instructor.Instructor{}
	}
	return ctx.JSON(http.StatusOK, instructors)
}

func (api *instructorApi) retrieve(ctx echo.Context) error {
	ins, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting instructor")
	}
	return ctx.JSON(http.StatusOK, ins)
}

func (api *instructorApi) update(ctx echo.Context) error {
	var data instructor.UpdateInstructor
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateInstructor")
	}

	orig, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting instructor")
	}
	if err := data.Validate(orig); err != nil {
		return err
	}

	ins, err := api.svc.Update(ctx.Request().Context(), orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating instructor")
	}
	return ctx.JSON(http.StatusOK, ins)
}

func (api *instructorApi) deactivate(ctx echo.Context) error {
	if _, err := api.svc.Deactivate(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deactivating instructor")
	}
	return ctx.NoContent(http.StatusNoContent)
}
