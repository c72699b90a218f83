package analysis

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletscope/internal/domain"
)

var alertNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestDetectAlerts_HighValueAtThreshold(t *testing.T) {
	t.Parallel()

	// exactly 10 tokens alerts, 9.9999 does not
	ledger := []domain.Transfer{
		tf("0x1", "0x10", subject, "0xbbb", "0x8AC7230489E80000", rfc3339(alertNow)),
		tf("0x2", "0x11", subject, "0xbbb", "9999900000000000000", rfc3339(alertNow)),
	}

	alerts := DetectAlerts(subject, ledger)

	require.Len(t, alerts, 1)
	assert.Equal(t, "High-value outgoing transfer: 10.0000 ETH", alerts[0])
}

func TestDetectAlerts_InboundNeverHighValue(t *testing.T) {
	t.Parallel()

	ledger := []domain.Transfer{
		tf("0x1", "0x10", "0xccc", subject, "0x8AC7230489E80000", rfc3339(alertNow)),
	}

	assert.Empty(t, DetectAlerts(subject, ledger))
}

func TestDetectAlerts_WholeLedgerNoWindow(t *testing.T) {
	t.Parallel()

	// a year old: outside the risk window, still alertable
	old := rfc3339(alertNow.Add(-365 * 24 * time.Hour))
	ledger := []domain.Transfer{
		tf("0x1", "0x10", subject, "0xbbb", "0x8AC7230489E80000", old),
	}

	assert.Len(t, DetectAlerts(subject, ledger), 1)
}

func TestDetectAlerts_SpikeDay(t *testing.T) {
	t.Parallel()

	// 150 entries on one day, none from the subject
	ledger := make([]domain.Transfer, 0, 150)
	for i := 0; i < 150; i++ {
		ledger = append(ledger, tf(hexBlock(uint64(i+1)), hexBlock(uint64(i+1)), "0xccc", "0xddd", "0x1", rfc3339(alertNow)))
	}

	alerts := DetectAlerts(subject, ledger)

	require.Len(t, alerts, 1)
	assert.Equal(t, fmt.Sprintf("Unusual activity spike: 150 transfers on %s", alertNow.Format(time.DateOnly)), alerts[0])
}

func TestDetectAlerts_SpikeBelowThreshold(t *testing.T) {
	t.Parallel()

	ledger := make([]domain.Transfer, 0, 99)
	for i := 0; i < 99; i++ {
		ledger = append(ledger, tf(hexBlock(uint64(i+1)), hexBlock(uint64(i+1)), "0xccc", "0xddd", "0x1", rfc3339(alertNow)))
	}

	assert.Empty(t, DetectAlerts(subject, ledger))
}

func TestDetectAlerts_UnknownDayBucket(t *testing.T) {
	t.Parallel()

	// entries without timestamps share one "unknown" bucket
	ledger := make([]domain.Transfer, 0, 100)
	for i := 0; i < 100; i++ {
		ledger = append(ledger, tf(hexBlock(uint64(i+1)), hexBlock(uint64(i+1)), "0xccc", "0xddd", "0x1", ""))
	}

	alerts := DetectAlerts(subject, ledger)

	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0], "100 transfers on unknown")
}

func TestDetectAlerts_Ordering(t *testing.T) {
	t.Parallel()

	dayA := rfc3339(alertNow)
	dayB := rfc3339(alertNow.Add(-24 * time.Hour))

	ledger := make([]domain.Transfer, 0, 203)
	// high-value sends interleaved so rule-A order = ledger order
	ledger = append(ledger, tf("0xhv1", "0x1", subject, "0xbbb", "0x8AC7230489E80000", dayA))
	for i := 0; i < 100; i++ {
		ledger = append(ledger, tf(fmt.Sprintf("0xa%d", i), "0x1", "0xccc", "0xddd", "0x1", dayA))
	}
	ledger = append(ledger, tf("0xhv2", "0x1", subject, "0xbbb", "11000000000000000000", dayB))
	for i := 0; i < 100; i++ {
		ledger = append(ledger, tf(fmt.Sprintf("0xb%d", i), "0x1", "0xccc", "0xddd", "0x1", dayB))
	}

	alerts := DetectAlerts(subject, ledger)
	require.Len(t, alerts, 4)

	// rule A first, in ledger order
	assert.Equal(t, "High-value outgoing transfer: 10.0000 ETH", alerts[0])
	assert.Equal(t, "High-value outgoing transfer: 11.0000 ETH", alerts[1])

	// rule B after, day buckets in first-encounter order (dayA before dayB)
	assert.True(t, strings.HasSuffix(alerts[2], alertNow.Format(time.DateOnly)), "got %q", alerts[2])
	assert.True(t, strings.HasSuffix(alerts[3], alertNow.Add(-24*time.Hour).Format(time.DateOnly)), "got %q", alerts[3])
}

func TestDetectAlerts_EmptyLedger(t *testing.T) {
	t.Parallel()

	alerts := DetectAlerts(subject, nil)
	require.NotNil(t, alerts)
	assert.Empty(t, alerts)
}
