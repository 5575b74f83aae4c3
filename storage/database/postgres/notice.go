package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/appredator/backend/core"
	"github.com/appredator/backend/core/notice"
)

type noticeRepository struct {
	db *sqlx.DB
}

var _ notice.Repository = (*noticeRepository)(nil) // interface compliance check

func NewNoticeRepository(db *sqlx.DB) notice.Repository {
	return &noticeRepository{db: db}
}

type noticeRow struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	Body      string    `db:"body"`
	AuthorID  string    `db:"author_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r noticeRow) toNotice() notice.Notice {
	return notice.Notice{
		ID:        r.ID,
		Title:     r.Title,
		Body:      r.Body,
		AuthorID:  r.AuthorID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

const noticeColumns = `id, title, body, author_id, created_at, updated_at`

var noticeSortable = []string{"title", "created_at", "updated_at"}

func (repo *noticeRepository) CreateNotice(ctx context.Context, ntc notice.Notice) (notice.Notice, error) {
	q := `
INSERT INTO notices (title, body, author_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	err := repo.db.QueryRowContext(ctx, q, ntc.Title, ntc.Body, ntc.AuthorID, ntc.CreatedAt, ntc.UpdatedAt).Scan(&ntc.ID)
	if err != nil {
		return notice.Notice{}, errors.Wrap(err, "creating notice")
	}
	return ntc, nil
}

func (repo *noticeRepository) GetNoticeByID(ctx context.Context, id string) (notice.Notice, error) {
	var row noticeRow
	q := fmt.Sprintf(`SELECT %s FROM notices WHERE id = $1`, noticeColumns)
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return notice.Notice{}, notice.ErrNotFound
		}
		return notice.Notice{}, errors.Wrap(err, "getting notice")
	}
	return row.toNotice(), nil
}

func (repo *noticeRepository) FilterNotices(ctx context.Context, filter notice.QueryFilter, ordering ...core.DBOrdering) ([]notice.Notice, error) {
	where := "TRUE"
	var args []interface{}
	if filter.Search != "" {
		where = "(title ILIKE $1 OR body ILIKE $1)"
		args = append(args, "%"+filter.Search+"%")
	}

	q := fmt.Sprintf(`SELECT %s FROM notices WHERE %s ORDER BY %s`,
		noticeColumns, where, orderBy(ordering, noticeSortable, "created_at DESC"))

	var rows []noticeRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering notices")
	}
	ntcs := make([]notice.Notice, 0, len(rows))
	for _, row := range rows {
		ntcs = append(ntcs, row.toNotice())
	}
	return ntcs, nil
}

func (repo *noticeRepository) DeleteNoticesByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := repo.db.ExecContext(ctx, `DELETE FROM notices WHERE id = ANY($1)`, pq.Array(ids))
	return errors.Wrap(err, "deleting notices")
}
