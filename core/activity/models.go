package activity

import (
	"time"

	"github.com/appredator/backend/core"
)

// Kinds of time-windowed activities.
const (
	KindEssay     = "essay"
	KindMockExam  = "mock_exam"
	KindExercise  = "exercise"
	KindLiveClass = "live_class"
)

var AllKinds = []string{KindEssay, KindMockExam, KindExercise, KindLiveClass}

// Activity is any time-windowed, gradable or attendable unit: an essay theme,
// a mock exam, a grammar exercise or a live class.
type Activity struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Active      bool       `json:"active"`
	StartAt     *time.Time `json:"start_at,omitempty"` // UTC; nil = no opening bound
	EndAt       *time.Time `json:"end_at,omitempty"`   // UTC; nil = no closing bound
	CreatedAt   time.Time  `json:"created_at"`         // UTC
	UpdatedAt   time.Time  `json:"updated_at"`         // UTC
}

// StatusAt resolves the activity's lifecycle state at the given instant.
func (a Activity) StatusAt(now time.Time) Status {
	return ResolveStatus(a.Active, a.StartAt, a.EndAt, now)
}

// NewActivity contains information needed to create a new Activity.
type NewActivity struct {
	Kind        string     `json:"kind" validate:"required,activitykind"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	Active      *bool      `json:"active"`
	StartAt     *time.Time `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
}

func (na *NewActivity) Validate() error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	return core.Validate.Struct(na)
}

// UpdateActivity defines what information may be provided to modify an existing Activity.
// Kind is immutable once created.
type UpdateActivity struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Active      *bool      `json:"active"`
	StartAt     *time.Time `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
	ClearWindow bool       `json:"clear_window"`
}

func (ua *UpdateActivity) Validate(orig Activity) error {
	title := core.CleanString(ua.Title)
	if title != "" {
		ua.Title = title
	} else {
		ua.Title = orig.Title
	}
	ua.Description = core.CleanString(ua.Description)
	return core.Validate.Struct(ua)
}

// Attendance records a student's participation in a live class.
// The external "already participated" fact shown by callers; one row per
// (activity, student).
type Attendance struct {
	ID         string    `json:"id"`
	ActivityID string    `json:"activity_id"`
	StudentID  string    `json:"student_id"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

type QueryFilter struct {
	Search     string `query:"search"`
	Kind       string `query:"kind"`
	ActiveOnly bool   `query:"active_only"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Kind = core.CleanString(qf.Kind, true /* lower */)
}
