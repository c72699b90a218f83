package analysis

import (
	"fmt"
	"time"

	"gitlab.com/nevasik7/alerting/logger"

	"walletscope/internal/domain"
)

// NoopLogger is a logger that does nothing (for testing)
type NoopLogger struct{}

func (n *NoopLogger) Debug(msg string)                          {}
func (n *NoopLogger) Debugf(format string, args ...interface{}) {}
func (n *NoopLogger) Info(msg string)                           {}
func (n *NoopLogger) Infof(format string, args ...interface{})  {}
func (n *NoopLogger) Warn(msg string)                           {}
func (n *NoopLogger) Warnf(format string, args ...interface{})  {}
func (n *NoopLogger) Error(msg string)                          {}
func (n *NoopLogger) Errorf(format string, args ...interface{}) {}
func (n *NoopLogger) Fatal(msg string)                          {}
func (n *NoopLogger) Fatalf(format string, args ...interface{}) {}
func (n *NoopLogger) Panic(msg string)                          {}
func (n *NoopLogger) Panicf(format string, args ...interface{}) {}
func (n *NoopLogger) WithField(key string, value interface{}) logger.Logger {
	return n
}
func (n *NoopLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return n
}

// tf builds a transfer with the fields the pipeline cares about.
func tf(hash, block, from, to string, value domain.RawAmount, ts string) domain.Transfer {
	t := domain.Transfer{
		Hash:     hash,
		BlockNum: block,
		From:     from,
		To:       to,
		Value:    value,
	}
	t.Metadata.BlockTimestamp = ts
	return t
}

func withLogIndex(t domain.Transfer, idx uint32) domain.Transfer {
	t.LogIndex = &idx
	return t
}

func rfc3339(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339)
}

func hexBlock(n uint64) string {
	return fmt.Sprintf("0x%x", n)
}

func keysOf(ledger []domain.Transfer) []string {
	keys := make([]string, 0, len(ledger))
	for i := range ledger {
		keys = append(keys, ledger[i].IdentityKey())
	}
	return keys
}
