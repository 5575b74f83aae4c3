package echoapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/appredator/backend/core/activity"
	"github.com/appredator/backend/core/user"
)

func Test_activityApi_query(t *testing.T) {
	deps := setup(t)

	now := time.Now().UTC()
	past := now.Add(-2 * time.Hour)
	future := now.Add(2 * time.Hour)

	open := createActivity(t, deps.activityRepo, activity.KindEssay, "June theme", true, &past, &future)
	scheduled := createActivity(t, deps.activityRepo, activity.KindMockExam, "Mock exam", true, &future, nil)
	closed := createActivity(t, deps.activityRepo, activity.KindExercise, "Old drill", true, nil, &past)
	inactive := createActivity(t, deps.activityRepo, activity.KindLiveClass, "Hidden class", false, &past, &future)

	admin := createUser(t, deps.userRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	student := createUser(t, deps.userRepo, "Hero", "hero", "hero@test.cd", "", []string{user.RoleStudent}, true)
	adminToken := getToken(t, admin)
	studentToken := getToken(t, student)

	resp := func(acts ...activity.Activity) []byte {
		objs := make([]interface{}, 0, len(acts))
		for _, act := range acts {
			objs = append(objs, newActivityResponse(act, now))
		}
		return marchallList(t, objs...)
	}

	tests := []httpTest{
		{name: "no token", path: "/v1/activities", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "admin sees all", path: "/v1/activities", token: adminToken, wantCode: http.StatusOK,
			wantData: resp(open, scheduled, closed, inactive)},
		{name: "student sees active only", path: "/v1/activities", token: studentToken, wantCode: http.StatusOK,
			wantData: resp(open, scheduled, closed)},
		{name: "filter by kind", path: "/v1/activities?kind=essay", token: adminToken, wantCode: http.StatusOK,
			wantData: resp(open)},
		{name: "search", path: "/v1/activities?search=drill", token: adminToken, wantCode: http.StatusOK,
			wantData: resp(closed)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			deps.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_activityApi_statuses(t *testing.T) {
	deps := setup(t)

	now := time.Now().UTC()
	past := now.Add(-2 * time.Hour)
	future := now.Add(2 * time.Hour)

	admin := createUser(t, deps.userRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	token := getToken(t, admin)

	tests := []struct {
		name string
		act  activity.Activity
		want activity.Status
	}{
		{"no window", createActivity(t, deps.activityRepo, activity.KindExercise, "A1", true, nil, nil), activity.StatusOpen},
		{"inside window", createActivity(t, deps.activityRepo, activity.KindExercise, "A2", true, &past, &future), activity.StatusOpen},
		{"future window", createActivity(t, deps.activityRepo, activity.KindExercise, "A3", true, &future, nil), activity.StatusScheduled},
		{"past window", createActivity(t, deps.activityRepo, activity.KindExercise, "A4", true, nil, &past), activity.StatusClosed},
		{"inverted window", createActivity(t, deps.activityRepo, activity.KindExercise, "A5", true, &future, &past), activity.StatusClosed},
		{"deactivated", createActivity(t, deps.activityRepo, activity.KindExercise, "A6", false, &past, &future), activity.StatusClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ht := httpTest{
				path:     "/v1/activities/" + tt.act.ID,
				wantCode: http.StatusOK,
				wantData: marchallObj(t, newActivityResponse(tt.act, now)),
			}
			req, rec := newAuthRequest(http.MethodGet, ht.path, token)
			deps.server.ServeHTTP(rec, req)
			checkCodeAndData(t, ht, rec)
		})
	}
}

func Test_activityApi_create(t *testing.T) {
	deps := setup(t)

	admin := createUser(t, deps.userRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	student := createUser(t, deps.userRepo, "Hero", "hero", "hero@test.cd", "", []string{user.RoleStudent}, true)

	tests := []httpTest{
		{name: "student forbidden", token: getToken(t, student),
			body:     []byte(`{"kind": "essay", "title": "July theme"}`),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})},
		{name: "bad kind", token: getToken(t, admin),
			body:     []byte(`{"kind": "karaoke", "title": "Sing!"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"kind": "invalid activity kind"})},
		{name: "missing title", token: getToken(t, admin),
			body:     []byte(`{"kind": "essay"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"title": "this field is required"})},
		{name: "ok", token: getToken(t, admin),
			body:     []byte(`{"kind": "essay", "title": "July theme"}`),
			wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/activities", tt.token, tt.body)
			deps.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_activityApi_attendance(t *testing.T) {
	deps := setup(t)

	now := time.Now().UTC()
	past := now.Add(-2 * time.Hour)
	future := now.Add(2 * time.Hour)

	openClass := createActivity(t, deps.activityRepo, activity.KindLiveClass, "Live grammar", true, &past, &future)
	doneClass := createActivity(t, deps.activityRepo, activity.KindLiveClass, "Yesterday's class", true, nil, &past)
	essayAct := createActivity(t, deps.activityRepo, activity.KindEssay, "June theme", true, &past, &future)

	student := createUser(t, deps.userRepo, "Hero", "hero", "hero@test.cd", "", []string{user.RoleStudent}, true)
	corrector := createUser(t, deps.userRepo, "Red Pen", "redpen", "red@test.cd", "", []string{user.RoleCorrector}, true)
	studentToken := getToken(t, student)

	tests := []httpTest{
		{name: "corrector cannot attend", path: "/v1/activities/" + openClass.ID + "/attendance",
			token: getToken(t, corrector), wantCode: http.StatusForbidden},
		{name: "not a live class", path: "/v1/activities/" + essayAct.ID + "/attendance",
			token: studentToken, wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "activity is not a live class"})},
		{name: "class is over", path: "/v1/activities/" + doneClass.ID + "/attendance",
			token: studentToken, wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "activity is not open"})},
		{name: "unknown activity", path: "/v1/activities/deadbeef/attendance",
			token: studentToken, wantCode: http.StatusNotFound},
		{name: "ok", path: "/v1/activities/" + openClass.ID + "/attendance",
			token: studentToken, wantCode: http.StatusCreated},
		{name: "already registered", path: "/v1/activities/" + openClass.ID + "/attendance",
			token: studentToken, wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "attendance already registered"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, tt.path, tt.token)
			deps.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	atts, err := deps.activitySvc.QueryAttendance(testCtx(), openClass.ID)
	if err != nil {
		t.Fatalf("QueryAttendance() failed: %v", err)
	}
	if len(atts) != 1 || atts[0].StudentID != student.ID {
		t.Errorf("attendance not recorded as expected: %+v", atts)
	}
}
