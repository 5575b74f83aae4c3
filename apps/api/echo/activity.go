package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/appredator/backend/core/activity"
)

type activityApi struct {
	svc *activity.Service
}

func registerActivityAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *activity.Service) {
	api := activityApi{svc: svc}

	ag := g.Group("/activities", jwt)
	ag.GET("", api.query)
	ag.POST("", api.create, adminMiddleware())
	ag.DELETE("", api.destroyMultiple, adminMiddleware())

	dg := ag.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, adminMiddleware())
	dg.DELETE("", api.destroy, adminMiddleware())
	dg.POST("/attendance", api.registerAttendance, studentMiddleware())
	dg.GET("/attendance", api.queryAttendance, staffMiddleware())
}

// ActivityResponse is an Activity with its status resolved at response time.
type ActivityResponse struct {
	activity.Activity
	Status activity.Status `json:"status"`
}

func newActivityResponse(act activity.Activity, now time.Time) ActivityResponse {
	return ActivityResponse{Activity: act, Status: act.StatusAt(now)}
}

// Handlers

func (api *activityApi) create(ctx echo.Context) error {
	var data activity.NewActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewActivity")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	act, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating activity")
	}
	return ctx.JSON(http.StatusCreated, newActivityResponse(act, time.Now().UTC()))
}

func (api *activityApi) query(ctx echo.Context) error {
	filter := new(activity.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []ActivityResponse{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	// students only ever see activated activities
	if claims, err := getContextClaims(ctx); err == nil && !(claims.IsAdmin || claims.IsCorrector) {
		filter.ActiveOnly = true
	}

	acts, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying activities")
	}

	// one instant for the whole page, so statuses agree with each other
	now := time.Now().UTC()
	resp := make([]ActivityResponse, 0, len(acts))
	for _, act := range acts {
		resp = append(resp, newActivityResponse(act, now))
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *activityApi) retrieve(ctx echo.Context) error {
	act, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == activity.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting activity")
	}
	return ctx.JSON(http.StatusOK, newActivityResponse(act, time.Now().UTC()))
}

func (api *activityApi) update(ctx echo.Context) error {
	orig, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == activity.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting activity")
	}

	var data activity.UpdateActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateActivity")
	}
	if err := data.Validate(orig); err != nil {
		return err
	}

	act, err := api.svc.Update(ctx.Request().Context(), orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating activity")
	}
	return ctx.JSON(http.StatusOK, newActivityResponse(act, time.Now().UTC()))
}

func (api *activityApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == activity.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting activity")
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting activity")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *activityApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting activities")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *activityApi) registerAttendance(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	att, err := api.svc.RegisterAttendance(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		switch errors.Cause(err) {
		case activity.ErrNotFound:
			return errHttpNotFound
		case activity.ErrNotLiveClass, activity.ErrNotOpen, activity.ErrAlreadyRegistered:
			return echo.NewHTTPError(http.StatusConflict, errors.Cause(err).Error())
		}
		return errors.Wrap(err, "registering attendance")
	}
	return ctx.JSON(http.StatusCreated, att)
}

func (api *activityApi) queryAttendance(ctx echo.Context) error {
	if _, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == activity.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting activity")
	}

	atts, err := api.svc.QueryAttendance(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	return ctx.JSON(http.StatusOK, atts)
}
