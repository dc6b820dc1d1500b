package services

import "github.com/billharmony/backend/pkg/config"

type FeatureFlags struct {
	searchAnalyticsEnabled bool
	facilityLookupEnabled  bool
}

func NewFeatureFlags(cfg config.FeatureConfig) *FeatureFlags {
	return &FeatureFlags{
		searchAnalyticsEnabled: cfg.SearchAnalytics,
		facilityLookupEnabled:  cfg.FacilityLookup,
	}
}

func (f *FeatureFlags) SearchAnalyticsEnabled() bool {
	return f != nil && f.searchAnalyticsEnabled
}

func (f *FeatureFlags) FacilityLookupEnabled() bool {
	return f != nil && f.facilityLookupEnabled
}
