package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/appredator/backend/core/notice"
	"github.com/appredator/backend/core/user"
	emailsvc "github.com/appredator/backend/services/email"
)

func createNotice(t *testing.T, repo notice.Repository, title, body, authorID string) notice.Notice {
	now := time.Now().UTC()
	ntc, err := repo.CreateNotice(testCtx(), notice.Notice{
		Title:     title,
		Body:      body,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("createNotice() failed: %v", err)
	}
	return ntc
}

func Test_noticeApi_create(t *testing.T) {
	deps := setup(t)

	admin := createUser(t, deps.userRepo, "Admin", "admin", "admin@test.cd", "", user.AdminRoles, true)
	student := createUser(t, deps.userRepo, "Student", "student", "student@test.cd", "", user.StudentRoles, true)
	// inactive students are left out of broadcasts
	createUser(t, deps.userRepo, "Gone", "gonestu", "gone@test.cd", "", user.StudentRoles, false)

	adminToken := getToken(t, admin)
	studentToken := getToken(t, student)

	tests := []httpTest{
		{
			name: "no token", method: http.MethodPost, path: "/v1/notices",
			body:     marchallObj(t, notice.NewNotice{Title: "Hey", Body: "Ho"}),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "student forbidden", method: http.MethodPost, path: "/v1/notices",
			body: marchallObj(t, notice.NewNotice{Title: "Hey", Body: "Ho"}), token: studentToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "missing body", method: http.MethodPost, path: "/v1/notices",
			body: marchallObj(t, notice.NewNotice{Title: "Hey"}), token: adminToken,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"body": "this field is required"}`),
		},
		{
			name: "ok", method: http.MethodPost, path: "/v1/notices",
			body: marchallObj(t, notice.NewNotice{Title: "Exam schedule", Body: "Mock exams start Monday."}), token: adminToken,
			wantCode: http.StatusCreated,
		},
		{
			name: "ok broadcast", method: http.MethodPost, path: "/v1/notices",
			body: marchallObj(t, notice.NewNotice{Title: "Maintenance window", Body: "We will be away for an hour.", Broadcast: true}), token: adminToken,
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			deps.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if rec.Code != http.StatusCreated {
				return
			}
			var ntc notice.Notice
			if err := json.Unmarshal(rec.Body.Bytes(), &ntc); err != nil {
				t.Fatalf("failed to unmarshal notice: %v", err)
			}
			if ntc.ID == "" {
				t.Error("expected notice ID to be set")
			}
			if ntc.AuthorID != admin.ID {
				t.Errorf("AuthorID = %s; want %s", ntc.AuthorID, admin.ID)
			}
		})
	}

	// the broadcast should have gone out to the active student only, via BCC
	var sent bool
	for _, msg := range emailsvc.SentMessages {
		if msg.Subject != "Maintenance window" {
			continue
		}
		sent = true
		if len(msg.Bcc) != 1 {
			t.Fatalf("Bcc count = %d; want 1", len(msg.Bcc))
		}
		if msg.Bcc[0].Address != student.Email {
			t.Errorf("Bcc = %s; want %s", msg.Bcc[0].Address, student.Email)
		}
	}
	if !sent {
		t.Error("broadcast email not sent")
	}
}

func Test_noticeApi_query(t *testing.T) {
	deps := setup(t)

	admin := createUser(t, deps.userRepo, "Admin", "admin", "admin@test.cd", "", user.AdminRoles, true)
	student := createUser(t, deps.userRepo, "Student", "student", "student@test.cd", "", user.StudentRoles, true)

	ntc1 := createNotice(t, deps.noticeRepo, "Exam schedule", "Mock exams start Monday.", admin.ID)
	ntc2 := createNotice(t, deps.noticeRepo, "New library books", "Fresh essay collections are in.", admin.ID)

	adminToken := getToken(t, admin)
	studentToken := getToken(t, student)

	tests := []httpTest{
		{
			name: "no token", method: http.MethodGet, path: "/v1/notices",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "student sees all", method: http.MethodGet, path: "/v1/notices", token: studentToken,
			wantCode: http.StatusOK, wantData: marchallList(t, ntc1, ntc2),
		},
		{
			name: "search", method: http.MethodGet, path: "/v1/notices?search=library", token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, ntc2),
		},
		{
			name: "search no match", method: http.MethodGet, path: "/v1/notices?search=nothing", token: adminToken,
			wantCode: http.StatusOK, wantData: []byte(`[]`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			deps.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_noticeApi_retrieveAndDestroy(t *testing.T) {
	deps := setup(t)

	admin := createUser(t, deps.userRepo, "Admin", "admin", "admin@test.cd", "", user.AdminRoles, true)
	student := createUser(t, deps.userRepo, "Student", "student", "student@test.cd", "", user.StudentRoles, true)

	ntc := createNotice(t, deps.noticeRepo, "Exam schedule", "Mock exams start Monday.", admin.ID)

	adminToken := getToken(t, admin)
	studentToken := getToken(t, student)

	tests := []httpTest{
		{
			name: "retrieve unknown", method: http.MethodGet, path: "/v1/notices/nope", token: studentToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "retrieve ok", method: http.MethodGet, path: "/v1/notices/" + ntc.ID, token: studentToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, ntc),
		},
		{
			name: "destroy student forbidden", method: http.MethodDelete, path: "/v1/notices/" + ntc.ID, token: studentToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "destroy ok", method: http.MethodDelete, path: "/v1/notices/" + ntc.ID, token: adminToken,
			wantCode: http.StatusNoContent,
		},
		{
			name: "destroy gone", method: http.MethodDelete, path: "/v1/notices/" + ntc.ID, token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			deps.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
