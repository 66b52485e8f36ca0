package scorecard

import (
	"github.com/saulo-duarte/studio-ops/internal/capability"
	"github.com/saulo-duarte/studio-ops/internal/xero"
	"gorm.io/gorm"
)

type ScorecardContainer struct {
	Repo       ScorecardRepository
	Calculator *Calculator
	Service    ScorecardService
	Handler    *Handler
}

// NewScorecardContainer wires the reconciler. finance may be nil when no
// accounting connection is configured; financial metrics then report not configured.
func NewScorecardContainer(db *gorm.DB, caps capability.Set, hours HoursSource, leads LeadSource, finance xero.ReportSource, recentWeeks int, opts ...Option) *ScorecardContainer {
	repo := NewRepository(db)
	calc := NewCalculator(hours, leads, finance)
	service := NewService(repo, calc, caps, opts...)

	return &ScorecardContainer{
		Repo:       repo,
		Calculator: calc,
		Service:    service,
		Handler:    NewHandler(service, recentWeeks),
	}
}
