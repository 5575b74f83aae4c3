package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/appredator/backend/core/essay"
)

type essayApi struct {
	svc *essay.Service
}

func registerEssayAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *essay.Service) {
	api := essayApi{svc: svc}

	eg := g.Group("/essays", jwt)
	eg.POST("", api.submit, studentMiddleware())
	eg.GET("", api.query)

	dg := eg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.DELETE("", api.destroy, adminMiddleware())
	dg.POST("/grade", api.grade, staffMiddleware())
}

// Handlers

func (api *essayApi) submit(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data essay.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sub, err := api.svc.Submit(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		switch errors.Cause(err) {
		case essay.ErrNotEssayActivity, essay.ErrActivityNotOpen, essay.ErrAlreadySubmitted:
			return echo.NewHTTPError(http.StatusConflict, errors.Cause(err).Error())
		case essay.ErrFeatureDisabled:
			return echo.NewHTTPError(http.StatusForbidden, errors.Cause(err).Error())
		}
		return errors.Wrap(err, "submitting essay")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *essayApi) query(ctx echo.Context) error {
	filter := new(essay.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []essay.Submission{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	// students only ever see their own submissions
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !(claims.IsAdmin || claims.IsCorrector) {
		filter.StudentID = claims.Subject
	}

	subs, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	if subs == nil {
		subs = []essay.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *essayApi) retrieve(ctx echo.Context) error {
	sub, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == essay.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting submission")
	}

	// students only ever see their own submissions
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !(claims.IsAdmin || claims.IsCorrector) && sub.StudentID != claims.Subject {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *essayApi) grade(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data essay.GradeInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sub, err := api.svc.GradeSubmission(ctx.Request().Context(), ctx.Param("id"), claims.Subject, data)
	if err != nil {
		if errors.Cause(err) == essay.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "grading submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *essayApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == essay.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting submission")
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting submission")
	}
	return ctx.NoContent(http.StatusNoContent)
}
