package reporting

import (
	"time"

	"solana-sandwich-lab/internal/domain"
)

// Report is a rendered-ready view of one detection run over a mint.
// It never filters the detector's output.
type Report struct {
	GeneratedAt time.Time
	Mint        string
	TotalTrades int

	FrontRuns  []domain.FrontRunEvent
	BackRuns   []domain.BackRunEvent
	Sandwiches []domain.SandwichDetection
}

// FrontRunCount returns the number of front-run events.
func (r *Report) FrontRunCount() int { return len(r.FrontRuns) }

// BackRunCount returns the number of back-run events.
func (r *Report) BackRunCount() int { return len(r.BackRuns) }

// SandwichCount returns the number of sandwich detections.
func (r *Report) SandwichCount() int { return len(r.Sandwiches) }
