package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/montree/core/curriculum"
)

type curriculumApi struct {
	svc      *curriculum.Service
	validate *validator.Validate
}

func registerCurriculumAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *curriculum.Service, validate *validator.Validate) {
	api := curriculumApi{
		svc:      svc,
		validate: validate,
	}

	sg := g.Group("/scopes/:scope", jwt, scopeMiddleware)
	sg.GET("/works", api.queryWorks)
	sg.POST("/match", api.preview)
	sg.POST("/corrections", api.recordCorrection)
	sg.POST("/assignments", api.addAssignments)
	sg.POST("/reconcile", api.reconcile)
	sg.POST("/backfill", api.backfill)

	g.GET("/children/:child/progress", api.queryProgress, jwt, childMiddleware)
}

// Handlers

func (api *curriculumApi) queryWorks(ctx echo.Context) error {
	filter := new(AreaFilter)
	filter.Bind(ctx)

	works, err := api.svc.ListWorks(ctx.Request().Context(), ctx.Param("scope"), filter.Areas...)
	if err != nil {
		return errors.Wrap(err, "listing works")
	}
	if works == nil {
		works = []curriculum.Work{}
	}
	return ctx.JSON(http.StatusOK, works)
}

func (api *curriculumApi) preview(ctx echo.Context) error {
	var data curriculum.PreviewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PreviewRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	res, err := api.svc.Preview(ctx.Request().Context(), ctx.Param("scope"), data)
	if err != nil {
		return errors.Wrap(err, "previewing match")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *curriculumApi) recordCorrection(ctx echo.Context) error {
	var data curriculum.Correction
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Correction")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}
	data.ScopeID = ctx.Param("scope")

	syn, err := api.svc.RecordCorrection(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording correction")
	}
	return ctx.JSON(http.StatusCreated, syn)
}

func (api *curriculumApi) addAssignments(ctx echo.Context) error {
	var data AddAssignmentsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AddAssignmentsRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	asgs, err := api.svc.AddAssignments(ctx.Request().Context(), ctx.Param("scope"), data.Assignments...)
	if err != nil {
		return errors.Wrap(err, "adding assignments")
	}
	return ctx.JSON(http.StatusCreated, asgs)
}

func (api *curriculumApi) reconcile(ctx echo.Context) error {
	sum, err := api.svc.Reconcile(ctx.Request().Context(), ctx.Param("scope"))
	if err != nil {
		return errors.Wrap(err, "reconciling scope")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *curriculumApi) backfill(ctx echo.Context) error {
	sum, err := api.svc.Backfill(ctx.Request().Context(), ctx.Param("scope"))
	if err != nil {
		return errors.Wrap(err, "backfilling scope")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *curriculumApi) queryProgress(ctx echo.Context) error {
	progress, err := api.svc.ListProgress(ctx.Request().Context(), ctx.Param("child"))
	if err != nil {
		return errors.Wrap(err, "listing progress")
	}
	return ctx.JSON(http.StatusOK, progress)
}

type AddAssignmentsRequest struct {
	Assignments []curriculum.NewAssignment `json:"assignments" validate:"required,min=1,dive"`
}
