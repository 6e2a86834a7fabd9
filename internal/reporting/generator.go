// Package reporting renders detection results for human consumption.
package reporting

import (
	"time"

	"solana-sandwich-lab/internal/domain"
)

// Generator produces reports from detection output.
type Generator struct {
	now func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate assembles a report for one detection run. The summary is
// carried over untouched.
func (g *Generator) Generate(mint string, totalTrades int, summary *domain.DetectionSummary) *Report {
	report := &Report{
		GeneratedAt: g.now(),
		Mint:        mint,
		TotalTrades: totalTrades,
	}
	if summary != nil {
		report.FrontRuns = summary.FrontRuns
		report.BackRuns = summary.BackRuns
		report.Sandwiches = summary.Sandwiches
	}
	return report
}
