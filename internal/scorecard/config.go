package scorecard

import (
	"encoding/json"
	"strings"

	"github.com/saulo-duarte/studio-ops/internal/apperror"
	"github.com/saulo-duarte/studio-ops/internal/project"
	"gorm.io/datatypes"
)

type TimeTrackingConfig struct {
	ProjectStatus string `json:"project_status"`
}

type LeadsConfig struct {
	LeadType         LeadType              `json:"lead_type"`
	IncludedStatuses []string              `json:"included_statuses"`
	ExcludedStatuses []string              `json:"excluded_statuses"`
	DateField        project.LeadDateField `json:"date_field"`
}

type FinancialConfig struct {
	Calculation     FinancialCalculation `json:"calculation"`
	QuarterlyTarget *float64             `json:"quarterly_target"`
}

// decodeConfig fills dst from a metric's parameter bag. An empty bag leaves dst untouched.
func decodeConfig(raw datatypes.JSON, dst interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperror.Wrap(apperror.KindInvalid, "malformed automation_config", err)
	}
	return nil
}

func (c LeadsConfig) withDefaults() LeadsConfig {
	if c.LeadType == "" {
		c.LeadType = LeadNew
	}
	if c.DateField == "" {
		c.DateField = project.LeadDateCreated
	}
	if c.LeadType == LeadQualified && len(c.IncludedStatuses) == 0 {
		c.IncludedStatuses = DefaultQualifiedStatuses
	}
	return c
}

type statusSet map[string]struct{}

func newStatusSet(statuses []string) statusSet {
	set := make(statusSet, len(statuses))
	for _, s := range statuses {
		if s = normalizeStatus(s); s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}

func (s statusSet) has(status string) bool {
	_, ok := s[normalizeStatus(status)]
	return ok
}

func normalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type leadFilter struct {
	include statusSet
	exclude statusSet
}

func (c LeadsConfig) filter() leadFilter {
	return leadFilter{
		include: newStatusSet(c.IncludedStatuses),
		exclude: newStatusSet(c.ExcludedStatuses),
	}
}

// admits applies the allow and deny lists to a lead's upstream status.
func (f leadFilter) admits(status string) bool {
	if f.exclude.has(status) {
		return false
	}
	if len(f.include) > 0 && !f.include.has(status) {
		return false
	}
	return true
}
