package analysis

import (
	"strings"
	"time"

	"walletscope/internal/domain"
)

const (
	// riskWindow is the trailing period the scorer looks at; entries without
	// a parsable timestamp fall outside it.
	riskWindow = 30 * 24 * time.Hour

	// largeSendTokens: a send strictly above this many whole tokens counts
	// as a large send.
	largeSendTokens = 5.0

	elevatedSends      = 50
	elevatedRecipients = 30
	elevatedLargeSends = 5

	quietSends      = 5
	quietRecipients = 3
)

// Score derives a bounded risk assessment from the subject address and its
// ledger, windowed to the trailing 30 days ending at now. Pure and
// deterministic for a fixed now.
//
// First matching rule wins:
//  1. sends >= 50 OR unique recipients >= 30 OR large sends >= 5 -> 75, Elevated
//  2. sends <= 5 AND unique recipients <= 3 AND no large sends   -> 30, Lower
//  3. otherwise                                                  -> 50, Medium
func Score(address string, ledger []domain.Transfer, now time.Time) domain.RiskAssessment {
	var windowCount, sends, largeSends int
	recipients := make(map[string]struct{})

	for i := range ledger {
		t := &ledger[i]

		ts, ok := t.Timestamp()
		if !ok || now.Sub(ts) > riskWindow {
			continue
		}
		windowCount++

		if t.From == "" || !strings.EqualFold(t.From, address) {
			continue
		}
		sends++

		if t.To != "" {
			recipients[strings.ToLower(t.To)] = struct{}{}
		}
		if TokenAmount(t.Value) > largeSendTokens {
			largeSends++
		}
	}

	r := domain.RiskAssessment{
		Score:            50,
		Label:            domain.RiskMedium,
		Color:            "warn",
		Last30DayCount:   windowCount,
		SendsCount:       sends,
		UniqueRecipients: len(recipients),
		LargeSendsCount:  largeSends,
	}

	switch {
	case sends >= elevatedSends || len(recipients) >= elevatedRecipients || largeSends >= elevatedLargeSends:
		r.Score, r.Label, r.Color = 75, domain.RiskElevated, "danger"
	case sends <= quietSends && len(recipients) <= quietRecipients && largeSends == 0:
		r.Score, r.Label, r.Color = 30, domain.RiskLower, "success"
	}

	return r
}
