package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/appredator/backend/core"
	"github.com/appredator/backend/core/activity"
)

type activityRepository struct {
	db *sqlx.DB
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *sqlx.DB) activity.Repository {
	return &activityRepository{db: db}
}

type activityRow struct {
	ID          string       `db:"id"`
	Kind        string       `db:"kind"`
	Title       string       `db:"title"`
	Description string       `db:"description"`
	Active      bool         `db:"active"`
	StartAt     sql.NullTime `db:"start_at"`
	EndAt       sql.NullTime `db:"end_at"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

func (r activityRow) toActivity() activity.Activity {
	act := activity.Activity{
		ID:          r.ID,
		Kind:        r.Kind,
		Title:       r.Title,
		Description: r.Description,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.StartAt.Valid {
		t := r.StartAt.Time
		act.StartAt = &t
	}
	if r.EndAt.Valid {
		t := r.EndAt.Time
		act.EndAt = &t
	}
	return act
}

const activityColumns = `id, kind, title, description, active, start_at, end_at, created_at, updated_at`

var activitySortable = []string{"kind", "title", "active", "start_at", "end_at", "created_at", "updated_at"}

func (repo *activityRepository) CreateActivity(ctx context.Context, act activity.Activity) (activity.Activity, error) {
	q := `
INSERT INTO activities (kind, title, description, active, start_at, end_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`
	err := repo.db.QueryRowContext(
		ctx, q,
		act.Kind, act.Title, act.Description, act.Active,
		act.StartAt, act.EndAt, act.CreatedAt, act.UpdatedAt,
	).Scan(&act.ID)
	if err != nil {
		return activity.Activity{}, errors.Wrap(err, "creating activity")
	}
	return act, nil
}

func (repo *activityRepository) GetActivityByID(ctx context.Context, id string) (activity.Activity, error) {
	var row activityRow
	q := fmt.Sprintf(`SELECT %s FROM activities WHERE id = $1`, activityColumns)
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return activity.Activity{}, activity.ErrNotFound
		}
		return activity.Activity{}, errors.Wrap(err, "getting activity")
	}
	return row.toActivity(), nil
}

func (repo *activityRepository) FilterActivities(ctx context.Context, filter activity.QueryFilter, ordering ...core.DBOrdering) ([]activity.Activity, error) {
	where := []string{"TRUE"}
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where = append(where, fmt.Sprintf("(title ILIKE %[1]s OR description ILIKE %[1]s)", p))
	}
	if filter.Kind != "" {
		where = append(where, fmt.Sprintf("kind = %s", arg(filter.Kind)))
	}
	if filter.ActiveOnly {
		where = append(where, "active")
	}

	q := fmt.Sprintf(`SELECT %s FROM activities WHERE %s ORDER BY %s`,
		activityColumns, strings.Join(where, " AND "), orderBy(ordering, activitySortable, "created_at ASC"))

	var rows []activityRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering activities")
	}
	acts := make([]activity.Activity, 0, len(rows))
	for _, row := range rows {
		acts = append(acts, row.toActivity())
	}
	return acts, nil
}

func (repo *activityRepository) UpdateActivity(ctx context.Context, act activity.Activity, active *bool, clearWindow bool) (activity.Activity, error) {
	// only save set fields
	set := []string{"updated_at = $1"}
	args := []interface{}{act.UpdatedAt}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if act.Title != "" {
		set = append(set, fmt.Sprintf("title = %s", arg(act.Title)))
	}
	if act.Description != "" {
		set = append(set, fmt.Sprintf("description = %s", arg(act.Description)))
	}
	if active != nil {
		set = append(set, fmt.Sprintf("active = %s", arg(*active)))
	}
	if clearWindow {
		set = append(set, "start_at = NULL", "end_at = NULL")
	} else {
		if act.StartAt != nil {
			set = append(set, fmt.Sprintf("start_at = %s", arg(*act.StartAt)))
		}
		if act.EndAt != nil {
			set = append(set, fmt.Sprintf("end_at = %s", arg(*act.EndAt)))
		}
	}

	q := fmt.Sprintf(`UPDATE activities SET %s WHERE id = %s RETURNING %s`,
		strings.Join(set, ", "), arg(act.ID), activityColumns)

	var row activityRow
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return activity.Activity{}, activity.ErrNotFound
		}
		return activity.Activity{}, errors.Wrap(err, "updating activity")
	}
	return row.toActivity(), nil
}

func (repo *activityRepository) DeleteActivitiesByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := repo.db.ExecContext(ctx, `DELETE FROM activities WHERE id = ANY($1)`, pq.Array(ids))
	return errors.Wrap(err, "deleting activities")
}

func (repo *activityRepository) CreateAttendance(ctx context.Context, att activity.Attendance) (activity.Attendance, error) {
	q := `
INSERT INTO attendance (activity_id, student_id, created_at)
VALUES ($1, $2, $3)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, q, att.ActivityID, att.StudentID, att.CreatedAt).Scan(&att.ID)
	if err != nil {
		return activity.Attendance{}, errors.Wrap(err, "creating attendance")
	}
	return att, nil
}

type attendanceRow struct {
	ID         string    `db:"id"`
	ActivityID string    `db:"activity_id"`
	StudentID  string    `db:"student_id"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r attendanceRow) toAttendance() activity.Attendance {
	return activity.Attendance{ID: r.ID, ActivityID: r.ActivityID, StudentID: r.StudentID, CreatedAt: r.CreatedAt}
}

func (repo *activityRepository) GetAttendance(ctx context.Context, activityID, studentID string) (activity.Attendance, error) {
	var row attendanceRow
	q := `SELECT id, activity_id, student_id, created_at FROM attendance WHERE activity_id = $1 AND student_id = $2`
	if err := repo.db.GetContext(ctx, &row, q, activityID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return activity.Attendance{}, activity.ErrNotFound
		}
		return activity.Attendance{}, errors.Wrap(err, "getting attendance")
	}
	return row.toAttendance(), nil
}

func (repo *activityRepository) QueryAttendance(ctx context.Context, activityID string) ([]activity.Attendance, error) {
	var rows []attendanceRow
	q := `SELECT id, activity_id, student_id, created_at FROM attendance WHERE activity_id = $1 ORDER BY created_at ASC`
	if err := repo.db.SelectContext(ctx, &rows, q, activityID); err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	atts := make([]activity.Attendance, 0, len(rows))
	for _, row := range rows {
		atts = append(atts, row.toAttendance())
	}
	return atts, nil
}
