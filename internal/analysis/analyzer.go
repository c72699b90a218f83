package analysis

import (
	"time"

	"gitlab.com/nevasik7/alerting/logger"

	"walletscope/internal/domain"
)

// Analyzer is the single entry point the service layer calls per scan:
// merge -> score -> detect, assembled into one result. The scorer and
// detector run independently over the same ledger.
type Analyzer struct {
	log logger.Logger
	now func() time.Time
}

func NewAnalyzer(log logger.Logger) *Analyzer {
	return &Analyzer{log: log, now: time.Now}
}

// NewAnalyzerAt pins the evaluation clock; tests use this to make the
// 30-day window deterministic.
func NewAnalyzerAt(log logger.Logger, now func() time.Time) *Analyzer {
	return &Analyzer{log: log, now: now}
}

// Analyze builds a fresh result from two raw transfer lists. It never fails:
// empty or malformed input yields a well-formed zero-valued result. Balance
// and price fields are filled in by the caller.
func (a *Analyzer) Analyze(address string, inbound, outbound []domain.Transfer) *domain.AnalysisResult {
	now := a.now()

	ledger := Merge(inbound, outbound)
	risk := Score(address, ledger, now)
	alerts := DetectAlerts(address, ledger)

	a.log.Debugf("Analyzed wallet %s: ledger=%d risk=%d alerts=%d",
		address, len(ledger), risk.Score, len(alerts))

	return &domain.AnalysisResult{
		Address:   address,
		Transfers: ledger,
		Risk:      risk,
		Alerts:    alerts,
		ScannedAt: now,
	}
}
