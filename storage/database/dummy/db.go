// Package dummydb provides in-memory repositories for tests and local
// development without a running database.
package dummydb

import (
	"sync"

	"github.com/appredator/backend/core/activity"
	"github.com/appredator/backend/core/essay"
	"github.com/appredator/backend/core/notice"
	"github.com/appredator/backend/core/plan"
	"github.com/appredator/backend/core/user"
)

type (
	DB struct {
		user         *userTable
		activity     *activityTable
		attendance   *attendanceTable
		subscription *subscriptionTable
		override     *overrideTable
		essay        *essayTable
		notice       *noticeTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	activityTable struct {
		sync.RWMutex
		table map[string]*activity.Activity
	}

	attendanceTable struct {
		sync.RWMutex
		table map[string]*activity.Attendance
	}

	subscriptionTable struct {
		sync.RWMutex
		table map[string]*plan.Subscription // keyed by student ID
	}

	overrideTable struct {
		sync.RWMutex
		table map[string]map[string]*plan.Override // student ID -> feature -> override
	}

	essayTable struct {
		sync.RWMutex
		table map[string]*essay.Submission
	}

	noticeTable struct {
		sync.RWMutex
		table map[string]*notice.Notice
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:         &userTable{table: make(map[string]*user.User)},
		activity:     &activityTable{table: make(map[string]*activity.Activity)},
		attendance:   &attendanceTable{table: make(map[string]*activity.Attendance)},
		subscription: &subscriptionTable{table: make(map[string]*plan.Subscription)},
		override:     &overrideTable{table: make(map[string]map[string]*plan.Override)},
		essay:        &essayTable{table: make(map[string]*essay.Submission)},
		notice:       &noticeTable{table: make(map[string]*notice.Notice)},
	}
	return db, nil
}
