package plan

import (
	"time"

	"github.com/appredator/backend/core"
)

// Commercial plans. An empty Plan means the student has no plan at all
// (expired, cancelled or never subscribed) and is entitled to nothing.
const (
	PlanLeadership  = "leadership"
	PlanPolishing   = "polishing"
	PlanStarter     = "starter"
	PlanScholarship = "scholarship"
)

var AllPlans = []string{PlanLeadership, PlanPolishing, PlanStarter, PlanScholarship}

// Gated features. Keys are stable identifiers persisted in overrides;
// renaming one is a data migration.
const (
	FeatureThemes          = "themes"
	FeatureExercises       = "exercises"
	FeatureMockExams       = "mock_exams"
	FeatureWhiteboard      = "whiteboard"
	FeatureLibrary         = "library"
	FeatureLiveClasses     = "live_classes"
	FeatureRecordedClasses = "recorded_classes"
	FeatureGamification    = "gamification"
)

var AllFeatures = []string{
	FeatureThemes,
	FeatureExercises,
	FeatureMockExams,
	FeatureWhiteboard,
	FeatureLibrary,
	FeatureLiveClasses,
	FeatureRecordedClasses,
	FeatureGamification,
}

// planDefaults is the commercial matrix: what each plan grants out of the box.
// Features absent from a plan's map are disabled for it.
var planDefaults = map[string]map[string]bool{
	PlanLeadership: {
		FeatureThemes:          true,
		FeatureExercises:       true,
		FeatureMockExams:       true,
		FeatureWhiteboard:      true,
		FeatureLibrary:         true,
		FeatureLiveClasses:     true,
		FeatureRecordedClasses: true,
		FeatureGamification:    true,
	},
	PlanPolishing: {
		FeatureThemes:          true,
		FeatureExercises:       true,
		FeatureMockExams:       true,
		FeatureLibrary:         true,
		FeatureRecordedClasses: true,
		FeatureGamification:    true,
	},
	PlanStarter: {
		FeatureThemes:       true,
		FeatureExercises:    true,
		FeatureLibrary:      true,
		FeatureGamification: true,
	},
	PlanScholarship: {
		FeatureThemes:    true,
		FeatureExercises: true,
		FeatureLibrary:   true,
	},
}

// Subscription ties a student to a plan. At most one row per student.
type Subscription struct {
	StudentID string     `json:"student_id"`
	Plan      string     `json:"plan"`
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"` // UTC; nil = no expiry
	CreatedAt time.Time  `json:"created_at"`           // UTC
	UpdatedAt time.Time  `json:"updated_at"`           // UTC
}

// CurrentPlan returns the plan the subscription grants at the given instant,
// or "" when it grants none (inactive or expired).
func (s Subscription) CurrentPlan(now time.Time) string {
	if !s.Active {
		return ""
	}
	if s.ExpiresAt != nil && now.After(*s.ExpiresAt) {
		return ""
	}
	return s.Plan
}

// Override is a per-student, per-feature exception to the plan defaults.
// It wins in both directions: it can grant a feature the plan lacks or
// revoke one the plan includes.
type Override struct {
	StudentID string    `json:"student_id"`
	Feature   string    `json:"feature"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewSubscription contains information needed to put a student on a plan.
type NewSubscription struct {
	Plan      string     `json:"plan" validate:"required,plankind"`
	Active    *bool      `json:"active"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func (ns *NewSubscription) Validate() error {
	ns.Plan = core.CleanString(ns.Plan, true /* lower */)
	return core.Validate.Struct(ns)
}

// NewOverride contains information needed to set a feature exception.
type NewOverride struct {
	Feature string `json:"feature" validate:"required,featurekind"`
	Enabled *bool  `json:"enabled" validate:"required"`
}

func (no *NewOverride) Validate() error {
	no.Feature = core.CleanString(no.Feature, true /* lower */)
	return core.Validate.Struct(no)
}
