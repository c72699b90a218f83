// Package provider defines the external collaborators of a scan: the wallet
// data provider (balance + transfer history) and the USD price oracle. The
// analysis core never talks to these directly; the scanner does.
package provider

import (
	"context"

	"walletscope/internal/domain"
)

type Direction string

const (
	// Inbound selects transfers where the subject is the recipient.
	Inbound Direction = "in"
	// Outbound selects transfers where the subject is the sender.
	Outbound Direction = "out"
)

type WalletData interface {
	// Balance returns the wallet balance in hex-encoded wei.
	Balance(ctx context.Context, address string) (string, error)
	// Transfers returns one direction of the transfer history, newest first,
	// not deduplicated against the other direction.
	Transfers(ctx context.Context, address string, dir Direction) ([]domain.Transfer, error)
}

type PriceOracle interface {
	// USDPrice returns the current USD-per-token quote.
	USDPrice(ctx context.Context) (float64, error)
}
