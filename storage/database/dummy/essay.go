package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/appredator/backend/core"
	"github.com/appredator/backend/core/essay"
)

type essayRepository struct {
	db *essayTable
}

var _ essay.Repository = (*essayRepository)(nil) // interface compliance check

func NewEssayRepository(db *DB) essay.Repository {
	return &essayRepository{db: db.essay}
}

func (repo *essayRepository) query() []essay.Submission {
	subs := make([]essay.Submission, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		subs = append(subs, *s)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].CreatedAt.Before(subs[j].CreatedAt) })
	return subs
}

func (repo *essayRepository) CreateSubmission(ctx context.Context, sub essay.Submission) (essay.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sub.ID = uuid.NewString()
	repo.db.table[sub.ID] = &sub
	return sub, nil
}

func (repo *essayRepository) GetSubmissionByID(ctx context.Context, id string) (essay.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sub, ok := repo.db.table[id]; ok {
		return *sub, nil
	}
	return essay.Submission{}, essay.ErrNotFound
}

func (repo *essayRepository) GetSubmissionByActivityAndStudent(ctx context.Context, activityID, studentID string) (essay.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, sub := range repo.db.table {
		if sub.ActivityID == activityID && sub.StudentID == studentID {
			return *sub, nil
		}
	}
	return essay.Submission{}, essay.ErrNotFound
}

func (repo *essayRepository) FilterSubmissions(ctx context.Context, filter essay.QueryFilter, ordering ...core.DBOrdering) ([]essay.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subs := repo.query()

	if filter.ActivityID != "" {
		var filtered []essay.Submission
		for _, s := range subs {
			if s.ActivityID == filter.ActivityID {
				filtered = append(filtered, s)
			}
		}
		subs = filtered
	}
	if subs != nil && filter.StudentID != "" {
		var filtered []essay.Submission
		for _, s := range subs {
			if s.StudentID == filter.StudentID {
				filtered = append(filtered, s)
			}
		}
		subs = filtered
	}
	if subs != nil && filter.UngradedOnly {
		var filtered []essay.Submission
		for _, s := range subs {
			if !s.IsGraded() {
				filtered = append(filtered, s)
			}
		}
		subs = filtered
	}

	return subs, nil
}

func (repo *essayRepository) SetGrade(ctx context.Context, id string, grade essay.Grade) (essay.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sub, ok := repo.db.table[id]
	if !ok {
		return essay.Submission{}, essay.ErrNotFound
	}
	sub.Grade = &grade
	sub.UpdatedAt = grade.GradedAt
	return *sub, nil
}

func (repo *essayRepository) DeleteSubmissionsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
