package plan

// IsFeatureEnabled answers the single question access control asks: may a
// student on `plan`, with these overrides, use `feature`?
//
// Rules, in order:
//   - no plan ("" or unknown) means no access, overrides included: an expired
//     student keeps their override rows but they grant nothing until a plan
//     is back;
//   - an unknown feature key is disabled no matter what, so a typo'd key can
//     never grant access, not even through a stray override row;
//   - an override for the feature wins over the plan default, in both
//     directions;
//   - otherwise the plan's default applies.
func IsFeatureEnabled(plan string, overrides map[string]bool, feature string) bool {
	defaults, ok := planDefaults[plan]
	if !ok {
		return false
	}
	if !KnownFeature(feature) {
		return false
	}
	if enabled, ok := overrides[feature]; ok {
		return enabled
	}
	return defaults[feature]
}

// Entitlements resolves the full feature map for a student in one pass,
// one entry per known feature. The snapshot handed to clients at login.
func Entitlements(plan string, overrides map[string]bool) map[string]bool {
	ents := make(map[string]bool, len(AllFeatures))
	for _, feat := range AllFeatures {
		ents[feat] = IsFeatureEnabled(plan, overrides, feat)
	}
	return ents
}

// KnownPlan reports whether the given plan name is one we sell.
func KnownPlan(plan string) bool {
	_, ok := planDefaults[plan]
	return ok
}

// KnownFeature reports whether the given feature key is gated at all.
func KnownFeature(feature string) bool {
	for _, feat := range AllFeatures {
		if feat == feature {
			return true
		}
	}
	return false
}
