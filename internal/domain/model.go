package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// RawAmount keeps the provider's amount literal untouched: hex string,
// decimal string, or a bare JSON number. Empty means zero.
type RawAmount string

func (a *RawAmount) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*a = ""
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = RawAmount(s)
		return nil
	}

	// bare number literal, keep as-is
	*a = RawAmount(b)
	return nil
}

func (a RawAmount) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(a))
}

// Transfer is one raw asset-transfer record as the data provider returns it.
// Only blockNum can be relied on; every other field may be missing.
type Transfer struct {
	Hash     string    `json:"hash,omitempty"`
	UniqueID string    `json:"uniqueId,omitempty"`
	BlockNum string    `json:"blockNum"`
	From     string    `json:"from,omitempty"`
	To       string    `json:"to,omitempty"`
	Value    RawAmount `json:"value,omitempty"`
	LogIndex *uint32   `json:"logIndex,omitempty"`
	Metadata struct {
		BlockTimestamp string `json:"blockTimestamp,omitempty"`
	} `json:"metadata"`
}

// BlockNumber parses blockNum as hex. Unparsable -> 0, so such entries sort last.
func (t *Transfer) BlockNumber() uint64 {
	s := strings.TrimPrefix(strings.TrimPrefix(t.BlockNum, "0x"), "0X")
	if s == "" {
		return 0
	}

	n, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0
	}
	return n
}

// Timestamp parses metadata.blockTimestamp. ok=false when missing or malformed.
func (t *Transfer) Timestamp() (time.Time, bool) {
	if t.Metadata.BlockTimestamp == "" {
		return time.Time{}, false
	}

	ts, err := time.Parse(time.RFC3339, t.Metadata.BlockTimestamp)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// RiskLabel classifies a wallet's recent outgoing activity.
type RiskLabel string

const (
	RiskLower    RiskLabel = "Lower Risk"
	RiskMedium   RiskLabel = "Medium Risk"
	RiskElevated RiskLabel = "Elevated Risk"
)

// RiskAssessment is recomputed wholesale on every scan; there is no
// carried-over history. Color is a rendering hint for the dashboard.
type RiskAssessment struct {
	Score            int       `json:"score"` // 0..100
	Label            RiskLabel `json:"label"`
	Color            string    `json:"color"` // success|warn|danger
	Last30DayCount   int       `json:"last_30d_count"`
	SendsCount       int       `json:"sends_count"`
	UniqueRecipients int       `json:"unique_recipients"`
	LargeSendsCount  int       `json:"large_sends_count"`
}

// AnalysisResult is the unit handed to API clients and broadcast to
// dashboard subscribers. Each scan replaces the previous result atomically.
type AnalysisResult struct {
	Address    string         `json:"address"`
	EthBalance float64        `json:"eth_balance"`
	PriceUSD   float64        `json:"price_usd"`
	TotalUSD   float64        `json:"total_usd"`
	Transfers  []Transfer     `json:"transfers"`
	Risk       RiskAssessment `json:"risk"`
	Alerts     []string       `json:"alerts"`
	ScannedAt  time.Time      `json:"scanned_at"`
}
