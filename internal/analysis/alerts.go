package analysis

import (
	"fmt"
	"strings"
	"time"

	"walletscope/internal/domain"
)

const (
	// highValueTokens: an outgoing transfer of at least this many whole
	// tokens raises an alert.
	highValueTokens = 10.0

	// spikeThreshold: a calendar day with this many ledger entries (any
	// direction) raises a spike alert.
	spikeThreshold = 100

	// unknownDay buckets entries whose timestamp is missing or malformed.
	unknownDay = "unknown"
)

// DetectAlerts scans the whole ledger (no time window) and emits operator
// alerts: one per high-value outgoing transfer, in ledger order, followed by
// one per spike day, in first-encounter order. Alerts are advisory only.
func DetectAlerts(address string, ledger []domain.Transfer) []string {
	alerts := make([]string, 0)

	// day buckets must iterate in insertion order, not sorted
	days := make([]string, 0)
	countByDay := make(map[string]int)

	for i := range ledger {
		t := &ledger[i]

		day := unknownDay
		if ts, ok := t.Timestamp(); ok {
			day = ts.UTC().Format(time.DateOnly)
		}
		if _, known := countByDay[day]; !known {
			days = append(days, day)
		}
		countByDay[day]++

		if amount := TokenAmount(t.Value); amount >= highValueTokens && t.From != "" && strings.EqualFold(t.From, address) {
			alerts = append(alerts, fmt.Sprintf("High-value outgoing transfer: %.4f ETH", amount))
		}
	}

	for _, day := range days {
		if n := countByDay[day]; n >= spikeThreshold {
			alerts = append(alerts, fmt.Sprintf("Unusual activity spike: %d transfers on %s", n, day))
		}
	}

	return alerts
}
