package plan

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
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrUnknownPlan          = errors.New("unknown plan")
	ErrUnknownFeature       = errors.New("unknown feature")

	nowFunc = time.Now // mockable
)

func init() {
	_ = core.Validate.RegisterValidation("plankind", planValidation)
	core.RegisterCustomTranslation("plankind", "invalid plan")

	_ = core.Validate.RegisterValidation("featurekind", featureValidation)
	core.RegisterCustomTranslation("featurekind", "invalid feature")
}

func planValidation(fl validator.FieldLevel) bool {
	return KnownPlan(fl.Field().String())
}

func featureValidation(fl validator.FieldLevel) bool {
	sort.Strings(AllFeatures)
	feat := fl.Field().String()
	if idx := sort.SearchStrings(AllFeatures, feat); idx < len(AllFeatures) {
		return AllFeatures[idx] == feat
	}
	return false
}

type (
	Repository interface {
		// GetSubscription returns ErrSubscriptionNotFound when the student
		// never subscribed.
		GetSubscription(ctx context.Context, studentID string) (Subscription, error)
		UpsertSubscription(ctx context.Context, sub Subscription) (Subscription, error)
		DeleteSubscription(ctx context.Context, studentID string) error

		ListOverrides(ctx context.Context, studentID string) ([]Override, error)
		UpsertOverride(ctx context.Context, ovr Override) (Override, error)
		DeleteOverrides(ctx context.Context, studentID string, features ...string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// currentPlan resolves the student's effective plan, "" when they have none.
// A missing subscription row is not an error here.
func (svc *Service) currentPlan(ctx context.Context, studentID string) (string, error) {
	sub, err := svc.repo.GetSubscription(ctx, studentID)
	if err != nil {
		if errors.Cause(err) == ErrSubscriptionNotFound {
			return "", nil
		}
		return "", err
	}
	return sub.CurrentPlan(nowFunc().UTC()), nil
}

func (svc *Service) overrideMap(ctx context.Context, studentID string) (map[string]bool, error) {
	ovrs, err := svc.repo.ListOverrides(ctx, studentID)
	if err != nil {
		return nil, err
	}
	m := make(map[string]bool, len(ovrs))
	for _, ovr := range ovrs {
		m[ovr.Feature] = ovr.Enabled
	}
	return m, nil
}

// Entitlements resolves the full feature map for a student.
func (svc *Service) Entitlements(ctx context.Context, studentID string) (map[string]bool, error) {
	pln, err := svc.currentPlan(ctx, studentID)
	if err != nil {
		return nil, err
	}
	ovrs, err := svc.overrideMap(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return Entitlements(pln, ovrs), nil
}

// IsEnabled answers whether the student may use the given feature right now.
func (svc *Service) IsEnabled(ctx context.Context, studentID, feature string) (bool, error) {
	pln, err := svc.currentPlan(ctx, studentID)
	if err != nil {
		return false, err
	}
	ovrs, err := svc.overrideMap(ctx, studentID)
	if err != nil {
		return false, err
	}
	return IsFeatureEnabled(pln, ovrs, feature), nil
}

// GetSubscription returns the student's subscription row as stored.
func (svc *Service) GetSubscription(ctx context.Context, studentID string) (Subscription, error) {
	return svc.repo.GetSubscription(ctx, studentID)
}

// SetSubscription puts the student on a plan, replacing any previous one.
func (svc *Service) SetSubscription(ctx context.Context, studentID string, ns NewSubscription) (Subscription, error) {
	if !KnownPlan(ns.Plan) {
		return Subscription{}, ErrUnknownPlan
	}
	now := nowFunc().UTC()
	sub := Subscription{
		StudentID: studentID,
		Plan:      ns.Plan,
		Active:    true,
		ExpiresAt: ns.ExpiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ns.Active != nil {
		sub.Active = *ns.Active
	}
	return svc.repo.UpsertSubscription(ctx, sub)
}

// CancelSubscription removes the student's subscription. Their overrides
// survive but grant nothing until they subscribe again.
func (svc *Service) CancelSubscription(ctx context.Context, studentID string) error {
	return svc.repo.DeleteSubscription(ctx, studentID)
}

// ListOverrides returns the student's stored feature exceptions.
func (svc *Service) ListOverrides(ctx context.Context, studentID string) ([]Override, error) {
	return svc.repo.ListOverrides(ctx, studentID)
}

// SetOverride records a feature exception for the student.
func (svc *Service) SetOverride(ctx context.Context, studentID string, no NewOverride) (Override, error) {
	if !KnownFeature(no.Feature) {
		return Override{}, ErrUnknownFeature
	}
	now := nowFunc().UTC()
	return svc.repo.UpsertOverride(ctx, Override{
		StudentID: studentID,
		Feature:   no.Feature,
		Enabled:   no.Enabled != nil && *no.Enabled,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// ResetOverrides drops the given feature exceptions for the student,
// or all of them when no feature is named.
func (svc *Service) ResetOverrides(ctx context.Context, studentID string, features ...string) error {
	for _, feat := range features {
		if !KnownFeature(feat) {
			return ErrUnknownFeature
		}
	}
	return svc.repo.DeleteOverrides(ctx, studentID, features...)
}
