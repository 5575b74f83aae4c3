package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/appredator/backend/core/plan"
)

type planApi struct {
	svc *plan.Service
}

func registerPlanAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *plan.Service) {
	api := planApi{svc: svc}

	g.GET("/plans", api.queryPlans, jwt)

	// per-student entitlement endpoints; a student may read their own,
	// staff may read anyone's, admin manages subscriptions and overrides.
	sg := g.Group("/students/:id", jwt, selfOrStaffMiddleware())
	sg.GET("/entitlements", api.entitlements)
	sg.GET("/subscription", api.getSubscription)
	sg.PUT("/subscription", api.setSubscription, adminMiddleware())
	sg.DELETE("/subscription", api.cancelSubscription, adminMiddleware())
	sg.GET("/overrides", api.listOverrides, staffMiddleware())
	sg.PUT("/overrides", api.setOverride, adminMiddleware())
	sg.DELETE("/overrides", api.resetOverrides, adminMiddleware())
}

// selfOrStaffMiddleware lets a student through for their own sub-resources,
// and correctors/admins through for anyone's.
func selfOrStaffMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin || claims.IsCorrector || ctx.Param("id") == claims.Subject {
				return next(ctx)
			}
			return errHttpNotFound
		}
	}
}

type (
	// PlanResponse describes a plan and its default feature set.
	PlanResponse struct {
		Name     string          `json:"name"`
		Features map[string]bool `json:"features"`
	}

	EntitlementsResponse struct {
		StudentID string          `json:"student_id"`
		Features  map[string]bool `json:"features"`
	}
)

// Handlers

func (api *planApi) queryPlans(ctx echo.Context) error {
	resp := make([]PlanResponse, 0, len(plan.AllPlans))
	for _, name := range plan.AllPlans {
		resp = append(resp, PlanResponse{Name: name, Features: plan.Entitlements(name, nil)})
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *planApi) entitlements(ctx echo.Context) error {
	feats, err := api.svc.Entitlements(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "resolving entitlements")
	}
	return ctx.JSON(http.StatusOK, EntitlementsResponse{StudentID: ctx.Param("id"), Features: feats})
}

func (api *planApi) getSubscription(ctx echo.Context) error {
	sub, err := api.svc.GetSubscription(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == plan.ErrSubscriptionNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting subscription")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *planApi) setSubscription(ctx echo.Context) error {
	var data plan.NewSubscription
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubscription")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	sub, err := api.svc.SetSubscription(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "setting subscription")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *planApi) cancelSubscription(ctx echo.Context) error {
	if err := api.svc.CancelSubscription(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "cancelling subscription")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *planApi) listOverrides(ctx echo.Context) error {
	ovrs, err := api.svc.ListOverrides(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing overrides")
	}
	return ctx.JSON(http.StatusOK, ovrs)
}

func (api *planApi) setOverride(ctx echo.Context) error {
	var data plan.NewOverride
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewOverride")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ovr, err := api.svc.SetOverride(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "setting override")
	}
	return ctx.JSON(http.StatusOK, ovr)
}

func (api *planApi) resetOverrides(ctx echo.Context) error {
	var query struct {
		Features []string `query:"feature"`
	}
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding override query")
	}

	if err := api.svc.ResetOverrides(ctx.Request().Context(), ctx.Param("id"), query.Features...); err != nil {
		if errors.Cause(err) == plan.ErrUnknownFeature {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return errors.Wrap(err, "resetting overrides")
	}
	return ctx.NoContent(http.StatusNoContent)
}
