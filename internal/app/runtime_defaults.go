package app

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/assetmgr/assetmgr/pkg/validator"
)

const fallbackModule = "IT"

// ApplyRuntimeDefaults repairs blank values that would otherwise break
// start-up and validates schedules and the default module. It returns the
// keys it filled so callers can log them.
func ApplyRuntimeDefaults(cfg *Config) (map[string]bool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	filled := make(map[string]bool)

	cfg.Catalog.DefaultModule = strings.TrimSpace(cfg.Catalog.DefaultModule)
	if cfg.Catalog.DefaultModule == "" {
		cfg.Catalog.DefaultModule = fallbackModule
		filled["catalog.default_module"] = true
	}
	if !validator.IsModule(cfg.Catalog.DefaultModule) {
		return nil, fmt.Errorf("catalog.default_module %q is not a valid module name", cfg.Catalog.DefaultModule)
	}

	if strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint) == "" {
		cfg.Monitoring.Prometheus.Endpoint = "/metrics"
		filled["monitoring.prometheus.endpoint"] = true
	}
	if cfg.Maintenance.AuditRetentionDays < 0 {
		return nil, fmt.Errorf("maintenance.audit_retention_days must not be negative")
	}

	schedules := map[string]string{
		"catalog.refresh_schedule":   cfg.Catalog.RefreshSchedule,
		"maintenance.audit_schedule": cfg.Maintenance.AuditSchedule,
	}
	for key, spec := range schedules {
		if strings.TrimSpace(spec) == "" {
			continue
		}
		if _, err := cron.ParseStandard(spec); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
	}

	return filled, nil
}
