package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/appredator/backend/core"
	"github.com/appredator/backend/core/notice"
)

type noticeRepository struct {
	db *noticeTable
}

var _ notice.Repository = (*noticeRepository)(nil) // interface compliance check

func NewNoticeRepository(db *DB) notice.Repository {
	return &noticeRepository{db: db.notice}
}

func (repo *noticeRepository) CreateNotice(ctx context.Context, ntc notice.Notice) (notice.Notice, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ntc.ID = uuid.NewString()
	repo.db.table[ntc.ID] = &ntc
	return ntc, nil
}

func (repo *noticeRepository) GetNoticeByID(ctx context.Context, id string) (notice.Notice, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ntc, ok := repo.db.table[id]; ok {
		return *ntc, nil
	}
	return notice.Notice{}, notice.ErrNotFound
}

func (repo *noticeRepository) FilterNotices(ctx context.Context, filter notice.QueryFilter, ordering ...core.DBOrdering) ([]notice.Notice, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ntcs := make([]notice.Notice, 0, len(repo.db.table))
	for _, ntc := range repo.db.table {
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(ntc.Title), strings.ToLower(filter.Search)) &&
			!strings.Contains(strings.ToLower(ntc.Body), strings.ToLower(filter.Search)) {
			continue
		}
		ntcs = append(ntcs, *ntc)
	}
	sort.Slice(ntcs, func(i, j int) bool { return ntcs[i].CreatedAt.After(ntcs[j].CreatedAt) })
	return ntcs, nil
}

func (repo *noticeRepository) DeleteNoticesByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
