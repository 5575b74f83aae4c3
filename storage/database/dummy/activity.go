package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/appredator/backend/core"
	"github.com/appredator/backend/core/activity"
)

type activityRepository struct {
	db  *activityTable
	att *attendanceTable
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *DB) activity.Repository {
	return &activityRepository{db: db.activity, att: db.attendance}
}

func (repo *activityRepository) query() []activity.Activity {
	acts := make([]activity.Activity, 0, len(repo.db.table))
	for _, a := range repo.db.table {
		acts = append(acts, *a)
	}
	sort.Slice(acts, func(i, j int) bool { return acts[i].CreatedAt.Before(acts[j].CreatedAt) })
	return acts
}

func (repo *activityRepository) CreateActivity(ctx context.Context, act activity.Activity) (activity.Activity, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	act.ID = uuid.NewString()
	repo.db.table[act.ID] = &act
	return act, nil
}

func (repo *activityRepository) GetActivityByID(ctx context.Context, id string) (activity.Activity, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if act, ok := repo.db.table[id]; ok {
		return *act, nil
	}
	return activity.Activity{}, activity.ErrNotFound
}

func (repo *activityRepository) FilterActivities(ctx context.Context, filter activity.QueryFilter, ordering ...core.DBOrdering) ([]activity.Activity, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	acts := repo.query()

	if filter.Search != "" {
		var filtered []activity.Activity
		for _, a := range acts {
			if strings.Contains(strings.ToLower(a.Title), strings.ToLower(filter.Search)) ||
				strings.Contains(strings.ToLower(a.Description), strings.ToLower(filter.Search)) {
				filtered = append(filtered, a)
			}
		}
		acts = filtered
	}
	if acts != nil && filter.Kind != "" {
		var filtered []activity.Activity
		for _, a := range acts {
			if a.Kind == filter.Kind {
				filtered = append(filtered, a)
			}
		}
		acts = filtered
	}
	if acts != nil && filter.ActiveOnly {
		var filtered []activity.Activity
		for _, a := range acts {
			if a.Active {
				filtered = append(filtered, a)
			}
		}
		acts = filtered
	}

	return acts, nil
}

func (repo *activityRepository) UpdateActivity(ctx context.Context, act activity.Activity, active *bool, clearWindow bool) (activity.Activity, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	origAct, ok := repo.db.table[act.ID]
	if !ok {
		return activity.Activity{}, activity.ErrNotFound
	}
	if act.Title != "" {
		origAct.Title = act.Title
	}
	if act.Description != "" {
		origAct.Description = act.Description
	}
	if active != nil {
		origAct.Active = *active
	}
	if clearWindow {
		origAct.StartAt, origAct.EndAt = nil, nil
	} else {
		if act.StartAt != nil {
			origAct.StartAt = act.StartAt
		}
		if act.EndAt != nil {
			origAct.EndAt = act.EndAt
		}
	}
	origAct.UpdatedAt = act.UpdatedAt

	repo.db.table[act.ID] = origAct
	return *origAct, nil
}

func (repo *activityRepository) DeleteActivitiesByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func (repo *activityRepository) CreateAttendance(ctx context.Context, att activity.Attendance) (activity.Attendance, error) {
	repo.att.Lock()
	defer repo.att.Unlock()

	att.ID = uuid.NewString()
	repo.att.table[att.ID] = &att
	return att, nil
}

func (repo *activityRepository) GetAttendance(ctx context.Context, activityID, studentID string) (activity.Attendance, error) {
	repo.att.RLock()
	defer repo.att.RUnlock()

	for _, att := range repo.att.table {
		if att.ActivityID == activityID && att.StudentID == studentID {
			return *att, nil
		}
	}
	return activity.Attendance{}, activity.ErrNotFound
}

func (repo *activityRepository) QueryAttendance(ctx context.Context, activityID string) ([]activity.Attendance, error) {
	repo.att.RLock()
	defer repo.att.RUnlock()

	atts := make([]activity.Attendance, 0)
	for _, att := range repo.att.table {
		if att.ActivityID == activityID {
			atts = append(atts, *att)
		}
	}
	sort.Slice(atts, func(i, j int) bool { return atts[i].CreatedAt.Before(atts[j].CreatedAt) })
	return atts, nil
}
