// Package capability records which optional parts of the schema exist, checked
// once at startup.
package capability

import (
	"context"

	"github.com/saulo-duarte/studio-ops/internal/apperror"
	"github.com/saulo-duarte/studio-ops/internal/config"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Setup steps reported to operators when a capability is missing.
const (
	StepScorecard      = "run the scorecard migration (opsctl migrate)"
	StepColumnMappings = "run the column mapping migration (opsctl migrate)"
	StepProjectSync    = "run the project sync migration and configure at least one Monday board"
	StepTimeTracking   = "run the time tracking migration (opsctl migrate)"
	StepDocuments      = "run the documents migration and configure STORAGE_BUCKET"
	StepFlexi          = "run the flexi credits migration (opsctl migrate)"
	StepXero           = "connect a Xero organisation"
	StepMonday         = "set MONDAY_API_TOKEN"
)

type Set struct {
	Scorecard      bool `json:"scorecard"`
	ColumnMappings bool `json:"column_mappings"`
	ProjectSync    bool `json:"project_sync"`
	TimeTracking   bool `json:"time_tracking"`
	Documents      bool `json:"documents"`
	Flexi          bool `json:"flexi"`
	XeroConnection bool `json:"xero_connection"`

	SchemaVersion uint `json:"schema_version"`
}

// All reports every capability as present. Used by tests and tools that
// migrate before running.
func All() Set {
	return Set{
		Scorecard:      true,
		ColumnMappings: true,
		ProjectSync:    true,
		TimeTracking:   true,
		Documents:      true,
		Flexi:          true,
		XeroConnection: true,
	}
}

// Require returns a not-configured error carrying step when ok is false.
func Require(ok bool, step string) error {
	if ok {
		return nil
	}
	return apperror.NotConfigured(step)
}

func Detect(ctx context.Context, db *gorm.DB) Set {
	m := db.WithContext(ctx).Migrator()
	has := func(tables ...string) bool {
		for _, t := range tables {
			if !m.HasTable(t) {
				return false
			}
		}
		return true
	}

	s := Set{
		Scorecard:      has("metric_categories", "metrics", "weekly_entries"),
		ColumnMappings: has("column_mappings"),
		ProjectSync:    has("projects", "tasks", "monday_boards"),
		TimeTracking:   has("time_entries"),
		Documents:      has("documents"),
		Flexi:          has("flexi_credits"),
		XeroConnection: has("xero_connections"),
	}

	if has("schema_migrations") {
		var version uint
		if err := db.WithContext(ctx).Table("schema_migrations").Select("version").Limit(1).Scan(&version).Error; err == nil {
			s.SchemaVersion = version
		}
	}

	config.WithContext(ctx).WithFields(logrus.Fields{
		"scorecard":       s.Scorecard,
		"column_mappings": s.ColumnMappings,
		"project_sync":    s.ProjectSync,
		"time_tracking":   s.TimeTracking,
		"documents":       s.Documents,
		"flexi":           s.Flexi,
		"xero":            s.XeroConnection,
		"schema_version":  s.SchemaVersion,
	}).Info("Capabilities detected")
	return s
}
