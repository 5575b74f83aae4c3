package activity

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/appredator/backend/core"
)

var (
	// errors
	ErrNotFound          = errors.New("activity not found")
	ErrNotOpen           = errors.New("activity is not open")
	ErrNotLiveClass      = errors.New("activity is not a live class")
	ErrAlreadyRegistered = errors.New("attendance already registered")

	nowFunc = time.Now // mockable
)

func init() {
	_ = core.Validate.RegisterValidation("activitykind", kindValidation)
	core.RegisterCustomTranslation("activitykind", "invalid activity kind")
}

// kindValidation checks that the provided kind is in AllKinds
func kindValidation(fl validator.FieldLevel) bool {
	kind := fl.Field().String()
	sort.Strings(AllKinds)
	if idx := sort.SearchStrings(AllKinds, kind); idx < len(AllKinds) {
		return AllKinds[idx] == kind
	}
	return false
}

type (
	Repository interface {
		CreateActivity(ctx context.Context, act Activity) (Activity, error)
		GetActivityByID(ctx context.Context, id string) (Activity, error)
		// FilterActivities applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Activity.Title or Activity.Description.
		FilterActivities(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Activity, error)
		UpdateActivity(ctx context.Context, act Activity, active *bool, clearWindow bool) (Activity, error)
		DeleteActivitiesByID(ctx context.Context, ids ...string) error

		CreateAttendance(ctx context.Context, att Attendance) (Attendance, error)
		// GetAttendance returns ErrNotFound when the student never registered.
		GetAttendance(ctx context.Context, activityID, studentID string) (Attendance, error)
		QueryAttendance(ctx context.Context, activityID string) ([]Attendance, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, na NewActivity) (Activity, error) {
	now := nowFunc().UTC()
	act := Activity{
		Kind:        na.Kind,
		Title:       na.Title,
		Description: na.Description,
		Active:      true,
		StartAt:     na.StartAt,
		EndAt:       na.EndAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if na.Active != nil {
		act.Active = *na.Active
	}
	return svc.repo.CreateActivity(ctx, act)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Activity, error) {
	return svc.repo.GetActivityByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Activity, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	return svc.repo.FilterActivities(ctx, *filter, ordering...)
}

func (svc *Service) Update(ctx context.Context, id string, ua UpdateActivity) (Activity, error) {
	act := Activity{
		ID:          id,
		Title:       ua.Title,
		Description: ua.Description,
		StartAt:     ua.StartAt,
		EndAt:       ua.EndAt,
		UpdatedAt:   nowFunc().UTC(),
	}
	return svc.repo.UpdateActivity(ctx, act, ua.Active, ua.ClearWindow)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteActivitiesByID(ctx, ids...)
}

// RegisterAttendance records a student's participation in an open live class.
// Rejected for non live classes, outside the open window and on repeats.
func (svc *Service) RegisterAttendance(ctx context.Context, activityID, studentID string) (Attendance, error) {
	act, err := svc.repo.GetActivityByID(ctx, activityID)
	if err != nil {
		return Attendance{}, err
	}
	if act.Kind != KindLiveClass {
		return Attendance{}, ErrNotLiveClass
	}
	now := nowFunc().UTC()
	if act.StatusAt(now) != StatusOpen {
		return Attendance{}, ErrNotOpen
	}

	if _, err = svc.repo.GetAttendance(ctx, activityID, studentID); err == nil {
		return Attendance{}, ErrAlreadyRegistered
	} else if errors.Cause(err) != ErrNotFound {
		return Attendance{}, errors.Wrap(err, "checking attendance")
	}

	return svc.repo.CreateAttendance(ctx, Attendance{
		ActivityID: activityID,
		StudentID:  studentID,
		CreatedAt:  now,
	})
}

// QueryAttendance lists registered attendance for an activity.
func (svc *Service) QueryAttendance(ctx context.Context, activityID string) ([]Attendance, error) {
	return svc.repo.QueryAttendance(ctx, activityID)
}

// HasAttended reports whether the student already registered attendance.
func (svc *Service) HasAttended(ctx context.Context, activityID, studentID string) (bool, error) {
	if _, err := svc.repo.GetAttendance(ctx, activityID, studentID); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
