package domain

import (
	"fmt"
	"strconv"
)

// logIndex placeholder when the provider omitted the field. Entries without
// a log index still get exactly one ledger slot per transaction key.
const noLogIndex = "x"

// IdentityKey is the dedup key across the inbound/outbound queries.
// Primary identifier: hash, else uniqueId, else (blockNum, from, to);
// always suffixed with the log index so several log entries of one
// transaction stay distinct.
func (t *Transfer) IdentityKey() string {
	id := t.Hash
	if id == "" {
		id = t.UniqueID
	}
	if id == "" {
		id = fmt.Sprintf("%s-%s-%s", t.BlockNum, t.From, t.To)
	}

	suffix := noLogIndex
	if t.LogIndex != nil {
		suffix = strconv.FormatUint(uint64(*t.LogIndex), 10)
	}

	return id + "-" + suffix
}
