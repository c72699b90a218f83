package analysis

import (
	"sort"

	"walletscope/internal/domain"
)

// LedgerCap bounds retention to the most recent activity.
const LedgerCap = 100

// Merge combines the inbound and outbound transfer lists into one ledger:
// first occurrence wins on identity-key duplicates (inbound entries first,
// in input order), then a stable sort by block number descending, then a cap
// at LedgerCap entries. The input slices are not modified.
func Merge(inbound, outbound []domain.Transfer) []domain.Transfer {
	type entry struct {
		t     domain.Transfer
		block uint64
	}

	seen := make(map[string]struct{}, len(inbound)+len(outbound))
	unique := make([]entry, 0, len(inbound)+len(outbound))

	collect := func(list []domain.Transfer) {
		for _, t := range list {
			key := t.IdentityKey()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			unique = append(unique, entry{t: t, block: t.BlockNumber()})
		}
	}
	collect(inbound)
	collect(outbound)

	// stable: equal (or unparsable) block numbers keep their pre-sort order
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].block > unique[j].block
	})

	if len(unique) > LedgerCap {
		unique = unique[:LedgerCap]
	}

	ledger := make([]domain.Transfer, len(unique))
	for i := range unique {
		ledger[i] = unique[i].t
	}
	return ledger
}
