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
	"github.com/appredator/backend/core/essay"
)

type essayRepository struct {
	db *sqlx.DB
}

var _ essay.Repository = (*essayRepository)(nil) // interface compliance check

func NewEssayRepository(db *sqlx.DB) essay.Repository {
	return &essayRepository{db: db}
}

type submissionRow struct {
	ID          string         `db:"id"`
	ActivityID  string         `db:"activity_id"`
	StudentID   string         `db:"student_id"`
	Body        string         `db:"body"`
	CorrectorID sql.NullString `db:"corrector_id"`
	Competency1 sql.NullInt64  `db:"competency_1"`
	Competency2 sql.NullInt64  `db:"competency_2"`
	Competency3 sql.NullInt64  `db:"competency_3"`
	Competency4 sql.NullInt64  `db:"competency_4"`
	Competency5 sql.NullInt64  `db:"competency_5"`
	Feedback    sql.NullString `db:"feedback"`
	GradedAt    sql.NullTime   `db:"graded_at"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r submissionRow) toSubmission() essay.Submission {
	sub := essay.Submission{
		ID:         r.ID,
		ActivityID: r.ActivityID,
		StudentID:  r.StudentID,
		Body:       r.Body,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.GradedAt.Valid {
		sub.Grade = &essay.Grade{
			CorrectorID: r.CorrectorID.String,
			Competency1: int(r.Competency1.Int64),
			Competency2: int(r.Competency2.Int64),
			Competency3: int(r.Competency3.Int64),
			Competency4: int(r.Competency4.Int64),
			Competency5: int(r.Competency5.Int64),
			Feedback:    r.Feedback.String,
			GradedAt:    r.GradedAt.Time,
		}
	}
	return sub
}

const submissionColumns = `id, activity_id, student_id, body, corrector_id,
competency_1, competency_2, competency_3, competency_4, competency_5,
feedback, graded_at, created_at, updated_at`

var submissionSortable = []string{"activity_id", "student_id", "corrector_id", "graded_at", "created_at", "updated_at"}

func (repo *essayRepository) CreateSubmission(ctx context.Context, sub essay.Submission) (essay.Submission, error) {
	q := `
INSERT INTO essay_submissions (activity_id, student_id, body, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	err := repo.db.QueryRowContext(
		ctx, q,
		sub.ActivityID, sub.StudentID, sub.Body, sub.CreatedAt, sub.UpdatedAt,
	).Scan(&sub.ID)
	if err != nil {
		return essay.Submission{}, errors.Wrap(err, "creating submission")
	}
	return sub, nil
}

func (repo *essayRepository) getBy(ctx context.Context, where string, args ...interface{}) (essay.Submission, error) {
	var row submissionRow
	q := fmt.Sprintf(`SELECT %s FROM essay_submissions WHERE %s`, submissionColumns, where)
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return essay.Submission{}, essay.ErrNotFound
		}
		return essay.Submission{}, errors.Wrap(err, "getting submission")
	}
	return row.toSubmission(), nil
}

func (repo *essayRepository) GetSubmissionByID(ctx context.Context, id string) (essay.Submission, error) {
	return repo.getBy(ctx, `id = $1`, id)
}

func (repo *essayRepository) GetSubmissionByActivityAndStudent(ctx context.Context, activityID, studentID string) (essay.Submission, error) {
	return repo.getBy(ctx, `activity_id = $1 AND student_id = $2`, activityID, studentID)
}

func (repo *essayRepository) FilterSubmissions(ctx context.Context, filter essay.QueryFilter, ordering ...core.DBOrdering) ([]essay.Submission, error) {
	where := []string{"TRUE"}
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.ActivityID != "" {
		where = append(where, fmt.Sprintf("activity_id = %s", arg(filter.ActivityID)))
	}
	if filter.StudentID != "" {
		where = append(where, fmt.Sprintf("student_id = %s", arg(filter.StudentID)))
	}
	if filter.UngradedOnly {
		where = append(where, "graded_at IS NULL")
	}

	q := fmt.Sprintf(`SELECT %s FROM essay_submissions WHERE %s ORDER BY %s`,
		submissionColumns, strings.Join(where, " AND "), orderBy(ordering, submissionSortable, "created_at ASC"))

	var rows []submissionRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering submissions")
	}
	subs := make([]essay.Submission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, row.toSubmission())
	}
	return subs, nil
}

func (repo *essayRepository) SetGrade(ctx context.Context, id string, grade essay.Grade) (essay.Submission, error) {
	q := fmt.Sprintf(`
UPDATE essay_submissions
SET corrector_id = $1, competency_1 = $2, competency_2 = $3, competency_3 = $4,
    competency_4 = $5, competency_5 = $6, feedback = $7, graded_at = $8, updated_at = $8
WHERE id = $9
RETURNING %s`, submissionColumns)

	var row submissionRow
	err := repo.db.GetContext(
		ctx, &row, q,
		grade.CorrectorID, grade.Competency1, grade.Competency2, grade.Competency3,
		grade.Competency4, grade.Competency5, grade.Feedback, grade.GradedAt, id,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return essay.Submission{}, essay.ErrNotFound
		}
		return essay.Submission{}, errors.Wrap(err, "grading submission")
	}
	return row.toSubmission(), nil
}

func (repo *essayRepository) DeleteSubmissionsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := repo.db.ExecContext(ctx, `DELETE FROM essay_submissions WHERE id = ANY($1)`, pq.Array(ids))
	return errors.Wrap(err, "deleting submissions")
}
