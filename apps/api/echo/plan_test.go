package echoapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/appredator/backend/core/plan"
	"github.com/appredator/backend/core/user"
)

func Test_planApi_entitlements(t *testing.T) {
	deps := setup(t)

	admin := createUser(t, deps.userRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	starter := createUser(t, deps.userRepo, "Hero", "hero", "hero@test.cd", "", []string{user.RoleStudent}, true)
	lapsed := createUser(t, deps.userRepo, "Lapsed", "lapsed", "lapsed@test.cd", "", []string{user.RoleStudent}, true)

	subscribe(t, deps.planRepo, starter.ID, plan.PlanStarter)

	// starter gets live classes on top of their plan
	now := time.Now().UTC()
	if _, err := deps.planRepo.UpsertOverride(testCtx(), plan.Override{
		StudentID: starter.ID, Feature: plan.FeatureLiveClasses, Enabled: true, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("UpsertOverride() failed: %v", err)
	}
	// lapsed keeps an override row but no subscription; it must grant nothing
	if _, err := deps.planRepo.UpsertOverride(testCtx(), plan.Override{
		StudentID: lapsed.ID, Feature: plan.FeatureThemes, Enabled: true, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("UpsertOverride() failed: %v", err)
	}

	starterFeats := plan.Entitlements(plan.PlanStarter, map[string]bool{plan.FeatureLiveClasses: true})
	noFeats := plan.Entitlements("", nil)

	tests := []httpTest{
		{name: "no token", path: "/v1/students/" + starter.ID + "/entitlements",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "own entitlements with override", path: "/v1/students/" + starter.ID + "/entitlements", token: getToken(t, starter),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, EntitlementsResponse{StudentID: starter.ID, Features: starterFeats})},
		{name: "no subscription disables all", path: "/v1/students/" + lapsed.ID + "/entitlements", token: getToken(t, lapsed),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, EntitlementsResponse{StudentID: lapsed.ID, Features: noFeats})},
		{name: "peeking at another student", path: "/v1/students/" + starter.ID + "/entitlements", token: getToken(t, lapsed),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})},
		{name: "admin reads any", path: "/v1/students/" + starter.ID + "/entitlements", token: getToken(t, admin),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, EntitlementsResponse{StudentID: starter.ID, Features: starterFeats})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			deps.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_planApi_subscription(t *testing.T) {
	deps := setup(t)

	admin := createUser(t, deps.userRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	student := createUser(t, deps.userRepo, "Hero", "hero", "hero@test.cd", "", []string{user.RoleStudent}, true)
	adminToken := getToken(t, admin)
	base := "/v1/students/" + student.ID + "/subscription"

	tests := []httpTest{
		{name: "student cannot self-subscribe", method: http.MethodPut, path: base, token: getToken(t, student),
			body: []byte(`{"plan": "leadership"}`), wantCode: http.StatusForbidden},
		{name: "unknown plan", method: http.MethodPut, path: base, token: adminToken,
			body:     []byte(`{"plan": "platinum"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"plan": "invalid plan"})},
		{name: "subscribe", method: http.MethodPut, path: base, token: adminToken,
			body: []byte(`{"plan": "polishing"}`), wantCode: http.StatusOK},
		{name: "get", method: http.MethodGet, path: base, token: adminToken, wantCode: http.StatusOK},
		{name: "cancel", method: http.MethodDelete, path: base, token: adminToken, wantCode: http.StatusNoContent},
		{name: "get after cancel", method: http.MethodGet, path: base, token: adminToken, wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			deps.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// cancelling must leave the student entitled to nothing
	feats, err := deps.planSvc.Entitlements(testCtx(), student.ID)
	if err != nil {
		t.Fatalf("Entitlements() failed: %v", err)
	}
	for feat, enabled := range feats {
		if enabled {
			t.Errorf("feature %q still enabled after cancellation", feat)
		}
	}
}

func Test_planApi_overrides(t *testing.T) {
	deps := setup(t)

	admin := createUser(t, deps.userRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	student := createUser(t, deps.userRepo, "Hero", "hero", "hero@test.cd", "", []string{user.RoleStudent}, true)
	adminToken := getToken(t, admin)
	base := "/v1/students/" + student.ID + "/overrides"

	subscribe(t, deps.planRepo, student.ID, plan.PlanLeadership)

	tests := []httpTest{
		{name: "unknown feature", method: http.MethodPut, path: base, token: adminToken,
			body:     []byte(`{"feature": "time_travel", "enabled": true}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"feature": "invalid feature"})},
		{name: "revoke live classes", method: http.MethodPut, path: base, token: adminToken,
			body: []byte(`{"feature": "live_classes", "enabled": false}`), wantCode: http.StatusOK},
		{name: "list", method: http.MethodGet, path: base, token: adminToken, wantCode: http.StatusOK},
		{name: "student cannot set", method: http.MethodPut, path: base, token: getToken(t, student),
			body: []byte(`{"feature": "live_classes", "enabled": true}`), wantCode: http.StatusForbidden},
		{name: "reset", method: http.MethodDelete, path: base, token: adminToken, wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			deps.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.name == "revoke live classes" {
				enabled, err := deps.planSvc.IsEnabled(testCtx(), student.ID, plan.FeatureLiveClasses)
				if err != nil {
					t.Fatalf("IsEnabled() failed: %v", err)
				}
				if enabled {
					t.Error("override did not revoke the plan default")
				}
			}
		})
	}

	// reset restores plan defaults
	enabled, err := deps.planSvc.IsEnabled(testCtx(), student.ID, plan.FeatureLiveClasses)
	if err != nil {
		t.Fatalf("IsEnabled() failed: %v", err)
	}
	if !enabled {
		t.Error("reset did not restore the plan default")
	}
}
