// Package analysis is the scan pipeline core: transfer normalization
// (merge/dedup/order), risk scoring, and alert detection. Everything here is
// pure and synchronous; malformed provider fields degrade to zero values and
// never produce an error.
package analysis

import (
	"math/big"
	"strings"

	"walletscope/internal/domain"
)

// One whole token = 10^18 of the smallest unit.
var weiPerToken = new(big.Float).SetFloat64(1e18)

// TokenAmount converts a raw smallest-unit amount (hex or decimal integer
// string) to whole tokens. Anything unparsable yields 0. float64 precision
// loss on very large amounts is accepted: this feeds display thresholds,
// not accounting.
func TokenAmount(raw domain.RawAmount) float64 {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return 0
	}

	i := new(big.Int)
	var ok bool
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		_, ok = i.SetString(s[2:], 16)
	} else {
		_, ok = i.SetString(s, 10)
	}
	if !ok {
		return 0
	}

	tokens, _ := new(big.Float).Quo(new(big.Float).SetInt(i), weiPerToken).Float64()
	return tokens
}
