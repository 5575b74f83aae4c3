package plan

import (
	"testing"
	"time"
)

func TestIsFeatureEnabled(t *testing.T) {
	tests := []struct {
		name      string
		plan      string
		overrides map[string]bool
		feature   string
		want      bool
	}{
		{"default granted", PlanLeadership, nil, FeatureLiveClasses, true},
		{"default denied", PlanStarter, nil, FeatureLiveClasses, false},
		{"override grants missing feature", PlanStarter, map[string]bool{FeatureLiveClasses: true}, FeatureLiveClasses, true},
		{"override revokes included feature", PlanLeadership, map[string]bool{FeatureLiveClasses: false}, FeatureLiveClasses, false},
		{"override leaves other features alone", PlanStarter, map[string]bool{FeatureLiveClasses: true}, FeatureMockExams, false},
		{"no plan", "", nil, FeatureThemes, false},
		{"no plan, override grants nothing", "", map[string]bool{FeatureThemes: true}, FeatureThemes, false},
		{"unknown plan", "platinum", nil, FeatureThemes, false},
		{"unknown plan, override grants nothing", "platinum", map[string]bool{FeatureThemes: true}, FeatureThemes, false},
		{"unknown feature", PlanLeadership, nil, "time_travel", false},
		{"unknown feature, override grants nothing", PlanLeadership, map[string]bool{"time_travel": true}, "time_travel", false},
		{"scholarship has no gamification", PlanScholarship, nil, FeatureGamification, false},
		{"polishing has recorded classes", PlanPolishing, nil, FeatureRecordedClasses, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFeatureEnabled(tt.plan, tt.overrides, tt.feature); got != tt.want {
				t.Errorf("IsFeatureEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntitlements(t *testing.T) {
	t.Run("covers every feature", func(t *testing.T) {
		ents := Entitlements(PlanLeadership, nil)
		if len(ents) != len(AllFeatures) {
			t.Fatalf("Entitlements() returned %d entries, want %d", len(ents), len(AllFeatures))
		}
		for _, feat := range AllFeatures {
			if !ents[feat] {
				t.Errorf("Entitlements()[%q] = false, want true", feat)
			}
		}
	})

	t.Run("no plan disables everything", func(t *testing.T) {
		ents := Entitlements("", map[string]bool{FeatureThemes: true, FeatureLiveClasses: true})
		for feat, enabled := range ents {
			if enabled {
				t.Errorf("Entitlements()[%q] = true, want false without a plan", feat)
			}
		}
	})

	t.Run("overrides applied per feature", func(t *testing.T) {
		ents := Entitlements(PlanStarter, map[string]bool{
			FeatureLiveClasses:  true,  // granted on top of plan
			FeatureGamification: false, // revoked from plan
		})
		if !ents[FeatureLiveClasses] {
			t.Errorf("Entitlements()[%q] = false, want true via override", FeatureLiveClasses)
		}
		if ents[FeatureGamification] {
			t.Errorf("Entitlements()[%q] = true, want false via override", FeatureGamification)
		}
		if !ents[FeatureThemes] {
			t.Errorf("Entitlements()[%q] = false, want plan default true", FeatureThemes)
		}
	})
}

func TestSubscriptionCurrentPlan(t *testing.T) {
	var (
		now    = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
		future = now.AddDate(0, 1, 0)
		past   = now.AddDate(0, -1, 0)
	)

	tests := []struct {
		name string
		sub  Subscription
		want string
	}{
		{"active, no expiry", Subscription{Plan: PlanStarter, Active: true}, PlanStarter},
		{"active, not yet expired", Subscription{Plan: PlanStarter, Active: true, ExpiresAt: &future}, PlanStarter},
		{"active, expires right now", Subscription{Plan: PlanStarter, Active: true, ExpiresAt: &now}, PlanStarter},
		{"expired", Subscription{Plan: PlanStarter, Active: true, ExpiresAt: &past}, ""},
		{"inactive", Subscription{Plan: PlanStarter, Active: false}, ""},
		{"inactive with future expiry", Subscription{Plan: PlanStarter, Active: false, ExpiresAt: &future}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sub.CurrentPlan(now); got != tt.want {
				t.Errorf("CurrentPlan() = %q, want %q", got, tt.want)
			}
		})
	}
}
