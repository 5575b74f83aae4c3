package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/appredator/backend/core/plan"
)

type planRepository struct {
	db *sqlx.DB
}

var _ plan.Repository = (*planRepository)(nil) // interface compliance check

func NewPlanRepository(db *sqlx.DB) plan.Repository {
	return &planRepository{db: db}
}

type subscriptionRow struct {
	StudentID string       `db:"student_id"`
	Plan      string       `db:"plan"`
	Active    bool         `db:"active"`
	ExpiresAt sql.NullTime `db:"expires_at"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
}

func (r subscriptionRow) toSubscription() plan.Subscription {
	sub := plan.Subscription{
		StudentID: r.StudentID,
		Plan:      r.Plan,
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.ExpiresAt.Valid {
		t := r.ExpiresAt.Time
		sub.ExpiresAt = &t
	}
	return sub
}

func (repo *planRepository) GetSubscription(ctx context.Context, studentID string) (plan.Subscription, error) {
	var row subscriptionRow
	q := `SELECT student_id, plan, active, expires_at, created_at, updated_at FROM subscriptions WHERE student_id = $1`
	if err := repo.db.GetContext(ctx, &row, q, studentID); err != nil {
		if err == sql.ErrNoRows {
			return plan.Subscription{}, plan.ErrSubscriptionNotFound
		}
		return plan.Subscription{}, errors.Wrap(err, "getting subscription")
	}
	return row.toSubscription(), nil
}

func (repo *planRepository) UpsertSubscription(ctx context.Context, sub plan.Subscription) (plan.Subscription, error) {
	q := `
INSERT INTO subscriptions (student_id, plan, active, expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (student_id) DO UPDATE
SET plan = EXCLUDED.plan, active = EXCLUDED.active, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at
RETURNING created_at`
	err := repo.db.QueryRowContext(
		ctx, q,
		sub.StudentID, sub.Plan, sub.Active, sub.ExpiresAt, sub.CreatedAt, sub.UpdatedAt,
	).Scan(&sub.CreatedAt)
	if err != nil {
		return plan.Subscription{}, errors.Wrap(err, "upserting subscription")
	}
	return sub, nil
}

func (repo *planRepository) DeleteSubscription(ctx context.Context, studentID string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE student_id = $1`, studentID)
	return errors.Wrap(err, "deleting subscription")
}

type overrideRow struct {
	StudentID string    `db:"student_id"`
	Feature   string    `db:"feature"`
	Enabled   bool      `db:"enabled"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r overrideRow) toOverride() plan.Override {
	return plan.Override{
		StudentID: r.StudentID,
		Feature:   r.Feature,
		Enabled:   r.Enabled,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (repo *planRepository) ListOverrides(ctx context.Context, studentID string) ([]plan.Override, error) {
	var rows []overrideRow
	q := `SELECT student_id, feature, enabled, created_at, updated_at FROM feature_overrides WHERE student_id = $1 ORDER BY feature ASC`
	if err := repo.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "listing overrides")
	}
	ovrs := make([]plan.Override, 0, len(rows))
	for _, row := range rows {
		ovrs = append(ovrs, row.toOverride())
	}
	return ovrs, nil
}

func (repo *planRepository) UpsertOverride(ctx context.Context, ovr plan.Override) (plan.Override, error) {
	q := `
INSERT INTO feature_overrides (student_id, feature, enabled, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (student_id, feature) DO UPDATE
SET enabled = EXCLUDED.enabled, updated_at = EXCLUDED.updated_at
RETURNING created_at`
	err := repo.db.QueryRowContext(
		ctx, q,
		ovr.StudentID, ovr.Feature, ovr.Enabled, ovr.CreatedAt, ovr.UpdatedAt,
	).Scan(&ovr.CreatedAt)
	if err != nil {
		return plan.Override{}, errors.Wrap(err, "upserting override")
	}
	return ovr, nil
}

func (repo *planRepository) DeleteOverrides(ctx context.Context, studentID string, features ...string) error {
	if len(features) == 0 {
		_, err := repo.db.ExecContext(ctx, `DELETE FROM feature_overrides WHERE student_id = $1`, studentID)
		return errors.Wrap(err, "deleting overrides")
	}
	_, err := repo.db.ExecContext(
		ctx, `DELETE FROM feature_overrides WHERE student_id = $1 AND feature = ANY($2)`,
		studentID, pq.Array(features),
	)
	return errors.Wrap(err, "deleting overrides")
}
