package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/appredator/backend/core/activity"
	"github.com/appredator/backend/core/essay"
	"github.com/appredator/backend/core/plan"
	"github.com/appredator/backend/core/user"
	emailsvc "github.com/appredator/backend/services/email"
)

func Test_essayApi_submit(t *testing.T) {
	deps := setup(t)

	now := time.Now().UTC()
	past := now.Add(-2 * time.Hour)
	future := now.Add(2 * time.Hour)

	openTheme := createActivity(t, deps.activityRepo, activity.KindEssay, "June theme", true, &past, &future)
	closedTheme := createActivity(t, deps.activityRepo, activity.KindEssay, "May theme", true, nil, &past)
	liveClass := createActivity(t, deps.activityRepo, activity.KindLiveClass, "Live grammar", true, &past, &future)

	subscribed := createUser(t, deps.userRepo, "Hero", "hero", "hero@test.cd", "", []string{user.RoleStudent}, true)
	unsubscribed := createUser(t, deps.userRepo, "Broke", "broke", "broke@test.cd", "", []string{user.RoleStudent}, true)
	subscribe(t, deps.planRepo, subscribed.ID, plan.PlanStarter)

	subscribedToken := getToken(t, subscribed)
	body := func(activityID string) []byte {
		return marchallObj(t, essay.NewSubmission{ActivityID: activityID, Body: "My essay on June's theme."})
	}

	tests := []httpTest{
		{name: "no token", body: body(openTheme.ID),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "no plan", token: getToken(t, unsubscribed), body: body(openTheme.ID),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "essay themes are not part of the student's plan"})},
		{name: "activity closed", token: subscribedToken, body: body(closedTheme.ID),
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "activity is not open for submissions"})},
		{name: "not an essay activity", token: subscribedToken, body: body(liveClass.ID),
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "activity does not accept essays"})},
		{name: "empty body", token: subscribedToken,
			body:     marchallObj(t, essay.NewSubmission{ActivityID: openTheme.ID}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"body": "this field is required"})},
		{name: "ok", token: subscribedToken, body: body(openTheme.ID), wantCode: http.StatusCreated},
		{name: "resubmission rejected", token: subscribedToken, body: body(openTheme.ID),
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "essay already submitted for this activity"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/essays", tt.token, tt.body)
			deps.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_essayApi_grade(t *testing.T) {
	deps := setup(t)

	now := time.Now().UTC()
	past := now.Add(-2 * time.Hour)
	future := now.Add(2 * time.Hour)

	theme := createActivity(t, deps.activityRepo, activity.KindEssay, "June theme", true, &past, &future)
	student := createUser(t, deps.userRepo, "Hero", "hero", "hero@test.cd", "", []string{user.RoleStudent}, true)
	corrector := createUser(t, deps.userRepo, "Red Pen", "redpen", "red@test.cd", "", []string{user.RoleCorrector}, true)
	subscribe(t, deps.planRepo, student.ID, plan.PlanStarter)

	sub, err := deps.essaySvc.Submit(testCtx(), student.ID, essay.NewSubmission{ActivityID: theme.ID, Body: "My essay."})
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	correctorToken := getToken(t, corrector)
	gradeBody := []byte(`{"competency_1": 160, "competency_2": 120, "competency_3": 200, "competency_4": 80, "competency_5": 140, "feedback": "Solid work."}`)

	tests := []httpTest{
		{name: "student cannot grade", path: "/v1/essays/" + sub.ID + "/grade", token: getToken(t, student),
			body: gradeBody, wantCode: http.StatusForbidden},
		{name: "score out of range", path: "/v1/essays/" + sub.ID + "/grade", token: correctorToken,
			body: []byte(`{"competency_1": 250}`), wantCode: http.StatusBadRequest},
		{name: "unknown submission", path: "/v1/essays/deadbeef/grade", token: correctorToken,
			body: gradeBody, wantCode: http.StatusNotFound},
		{name: "ok", path: "/v1/essays/" + sub.ID + "/grade", token: correctorToken,
			body: gradeBody, wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, tt.path, tt.token, tt.body)
			deps.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.name == "ok" {
				var graded essay.Submission
				if err := json.Unmarshal(rec.Body.Bytes(), &graded); err != nil {
					t.Fatalf("unmarshalling graded submission: %v", err)
				}
				if !graded.IsGraded() {
					t.Fatal("submission not graded")
				}
				if total := graded.Grade.Total(); total != 700 {
					t.Errorf("Total() = %d, want 700", total)
				}
				if graded.Grade.CorrectorID != corrector.ID {
					t.Errorf("CorrectorID = %q, want %q", graded.Grade.CorrectorID, corrector.ID)
				}
			}
		})
	}

	// grading emails the student their result
	var emailed bool
	for _, msg := range emailsvc.SentMessages {
		if msg.TemplateName != "essay-graded" {
			continue
		}
		emailed = true
		if len(msg.To) != 1 || msg.To[0].Address != student.Email {
			t.Errorf("To = %v; want %s", msg.To, student.Email)
		}
	}
	if !emailed {
		t.Error("graded-essay email not sent")
	}

	// students only see their own submissions
	other := createUser(t, deps.userRepo, "Other", "other", "other@test.cd", "", []string{user.RoleStudent}, true)
	req, rec := newAuthRequest(http.MethodGet, "/v1/essays/"+sub.ID, getToken(t, other))
	deps.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("peeking at another student's essay: code = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
