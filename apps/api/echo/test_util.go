package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/appredator/backend/core"
	"github.com/appredator/backend/core/activity"
	"github.com/appredator/backend/core/essay"
	"github.com/appredator/backend/core/notice"
	"github.com/appredator/backend/core/plan"
	"github.com/appredator/backend/core/user"
	emailsvc "github.com/appredator/backend/services/email"
	dummydb "github.com/appredator/backend/storage/database/dummy"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

func testCtx() context.Context { return context.Background() }

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

type testDeps struct {
	server       Server
	userRepo     user.Repository
	activityRepo activity.Repository
	planRepo     plan.Repository
	essayRepo    essay.Repository
	noticeRepo   notice.Repository
	userSvc      *user.Service
	activitySvc  *activity.Service
	planSvc      *plan.Service
	essaySvc     *essay.Service
	noticeSvc    *notice.Service
}

func setup(t *testing.T) *testDeps {
	core.Conf.Debug = false
	core.Conf.TestMode = true

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	deps := &testDeps{
		userRepo:     dummydb.NewUserRepository(db),
		activityRepo: dummydb.NewActivityRepository(db),
		planRepo:     dummydb.NewPlanRepository(db),
		essayRepo:    dummydb.NewEssayRepository(db),
		noticeRepo:   dummydb.NewNoticeRepository(db),
	}

	mailSvc := emailsvc.NewConsoleServiceMock()
	deps.userSvc = user.NewService(deps.userRepo, mailSvc)
	deps.activitySvc = activity.NewService(deps.activityRepo)
	deps.planSvc = plan.NewService(deps.planRepo)
	deps.essaySvc = essay.NewService(deps.essayRepo, deps.activitySvc, deps.planSvc, deps.userSvc, mailSvc)
	deps.noticeSvc = notice.NewService(deps.noticeRepo, deps.userSvc, mailSvc)

	deps.server = NewServer(ServerDeps{
		UserSvc:        deps.userSvc,
		ActivitySvc:    deps.activitySvc,
		PlanSvc:        deps.planSvc,
		EssaySvc:       deps.essaySvc,
		NoticeSvc:      deps.noticeSvc,
		DisableReqLogs: true,
	})
	return deps
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func createUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(testCtx(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func createActivity(
	t *testing.T,
	repo activity.Repository,
	kind, title string,
	active bool,
	startAt, endAt *time.Time,
) activity.Activity {
	now := time.Now().UTC()
	act, err := repo.CreateActivity(testCtx(), activity.Activity{
		Kind:      kind,
		Title:     title,
		Active:    active,
		StartAt:   startAt,
		EndAt:     endAt,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("createActivity() failed: %v", err)
	}
	return act
}

func subscribe(t *testing.T, repo plan.Repository, studentID, planName string) plan.Subscription {
	now := time.Now().UTC()
	sub, err := repo.UpsertSubscription(testCtx(), plan.Subscription{
		StudentID: studentID,
		Plan:      planName,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("subscribe() failed: %v", err)
	}
	return sub
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
