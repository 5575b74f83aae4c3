package dummydb

import (
	"context"
	"sort"

	"github.com/appredator/backend/core/plan"
)

type planRepository struct {
	sub *subscriptionTable
	ovr *overrideTable
}

var _ plan.Repository = (*planRepository)(nil) // interface compliance check

func NewPlanRepository(db *DB) plan.Repository {
	return &planRepository{sub: db.subscription, ovr: db.override}
}

func (repo *planRepository) GetSubscription(ctx context.Context, studentID string) (plan.Subscription, error) {
	repo.sub.RLock()
	defer repo.sub.RUnlock()

	if sub, ok := repo.sub.table[studentID]; ok {
		return *sub, nil
	}
	return plan.Subscription{}, plan.ErrSubscriptionNotFound
}

func (repo *planRepository) UpsertSubscription(ctx context.Context, sub plan.Subscription) (plan.Subscription, error) {
	repo.sub.Lock()
	defer repo.sub.Unlock()

	if orig, ok := repo.sub.table[sub.StudentID]; ok {
		sub.CreatedAt = orig.CreatedAt
	}
	repo.sub.table[sub.StudentID] = &sub
	return sub, nil
}

func (repo *planRepository) DeleteSubscription(ctx context.Context, studentID string) error {
	repo.sub.Lock()
	defer repo.sub.Unlock()
	delete(repo.sub.table, studentID)
	return nil
}

func (repo *planRepository) ListOverrides(ctx context.Context, studentID string) ([]plan.Override, error) {
	repo.ovr.RLock()
	defer repo.ovr.RUnlock()

	ovrs := make([]plan.Override, 0, len(repo.ovr.table[studentID]))
	for _, ovr := range repo.ovr.table[studentID] {
		ovrs = append(ovrs, *ovr)
	}
	sort.Slice(ovrs, func(i, j int) bool { return ovrs[i].Feature < ovrs[j].Feature })
	return ovrs, nil
}

func (repo *planRepository) UpsertOverride(ctx context.Context, ovr plan.Override) (plan.Override, error) {
	repo.ovr.Lock()
	defer repo.ovr.Unlock()

	byFeature, ok := repo.ovr.table[ovr.StudentID]
	if !ok {
		byFeature = make(map[string]*plan.Override)
		repo.ovr.table[ovr.StudentID] = byFeature
	}
	if orig, ok := byFeature[ovr.Feature]; ok {
		ovr.CreatedAt = orig.CreatedAt
	}
	byFeature[ovr.Feature] = &ovr
	return ovr, nil
}

func (repo *planRepository) DeleteOverrides(ctx context.Context, studentID string, features ...string) error {
	repo.ovr.Lock()
	defer repo.ovr.Unlock()

	if len(features) == 0 {
		delete(repo.ovr.table, studentID)
		return nil
	}
	for _, feat := range features {
		delete(repo.ovr.table[studentID], feat)
	}
	return nil
}
