package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"gitlab.com/nevasik7/alerting/logger"
	"golang.org/x/sync/errgroup"

	"walletscope/internal/analysis"
	"walletscope/internal/config"
	"walletscope/internal/domain"
	"walletscope/internal/metrics"
	"walletscope/internal/provider"
	"walletscope/internal/pubsub"
)

var (
	ErrNotScanned = errors.New("wallet has not been scanned")
	ErrClosed     = errors.New("scanner is closed")
)

const (
	defaultPollInterval = 30 * time.Second
	defaultScanTimeout  = 25 * time.Second
)

// Scanner is the orchestration point of a scan cycle:
// fetch (balance, transfers in/out, price) → analyze → replace snapshot →
// broadcast. It owns one poller per watched address; a manual scan cancels
// that address's outstanding poller before fetching, then restarts it.
type Scanner struct {
	log         logger.Logger
	wallet      provider.WalletData
	oracle      provider.PriceOracle
	analyzer    *analysis.Analyzer
	broadcaster pubsub.Broadcaster

	pollInterval time.Duration
	scanTimeout  time.Duration

	mu      sync.RWMutex
	current map[string]*domain.AnalysisResult
	pollers map[string]context.CancelFunc
	closed  bool
	wg      sync.WaitGroup
}

func NewScanner(
	log logger.Logger,
	wallet provider.WalletData,
	oracle provider.PriceOracle,
	analyzer *analysis.Analyzer,
	broadcaster pubsub.Broadcaster,
	cfg *config.ScannerConfig,
) *Scanner {
	pollInterval := defaultPollInterval
	scanTimeout := defaultScanTimeout
	if cfg != nil {
		if cfg.PollInterval > 0 {
			pollInterval = cfg.PollInterval
		}
		if cfg.ScanTimeout > 0 {
			scanTimeout = cfg.ScanTimeout
		}
	}

	return &Scanner{
		log:          log,
		wallet:       wallet,
		oracle:       oracle,
		analyzer:     analyzer,
		broadcaster:  broadcaster,
		pollInterval: pollInterval,
		scanTimeout:  scanTimeout,
		current:      make(map[string]*domain.AnalysisResult),
		pollers:      make(map[string]context.CancelFunc),
	}
}

// Scan runs one manual scan cycle and (re)starts polling for the address.
// The outstanding poller is stopped first so overlapping cycles for one
// address cannot race.
func (s *Scanner) Scan(ctx context.Context, address string) (*domain.AnalysisResult, error) {
	address = strings.ToLower(address)

	s.stopPoller(address)

	res, err := s.scanOnce(ctx, address, "manual")
	if err != nil {
		return nil, err
	}

	if err = s.watch(address); err != nil {
		return nil, err
	}

	return res, nil
}

// Current returns the latest snapshot for the address, ErrNotScanned if none.
func (s *Scanner) Current(address string) (*domain.AnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.current[strings.ToLower(address)]
	if !ok {
		return nil, ErrNotScanned
	}
	return res, nil
}

// Forget stops polling the address and drops its snapshot.
func (s *Scanner) Forget(address string) {
	address = strings.ToLower(address)

	s.stopPoller(address)

	s.mu.Lock()
	delete(s.current, address)
	s.mu.Unlock()
}

func (s *Scanner) CheckDependency(ctx context.Context) error {
	if err := s.broadcaster.Health(ctx); err != nil {
		return fmt.Errorf("broadcaster unhealthy: %w", err)
	}
	return nil
}

// Close stops all pollers and waits for in-flight poll cycles.
func (s *Scanner) Close() {
	s.mu.Lock()
	s.closed = true
	for address, cancel := range s.pollers {
		cancel()
		delete(s.pollers, address)
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Scanner) scanOnce(ctx context.Context, address, trigger string) (*domain.AnalysisResult, error) {
	start := time.Now()

	var (
		balanceHex string
		inbound    []domain.Transfer
		outbound   []domain.Transfer
		price      float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		balanceHex, err = s.timedBalance(gctx, address)
		return err
	})
	g.Go(func() error {
		var err error
		inbound, err = s.timedTransfers(gctx, address, provider.Inbound)
		return err
	})
	g.Go(func() error {
		var err error
		outbound, err = s.timedTransfers(gctx, address, provider.Outbound)
		return err
	})
	g.Go(func() error {
		var err error
		price, err = s.timedPrice(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		metrics.ScansTotal.WithLabelValues(trigger, "error").Inc()
		return nil, fmt.Errorf("fetch wallet data for %s: %w", address, err)
	}

	res := s.analyzer.Analyze(address, inbound, outbound)
	res.EthBalance = analysis.TokenAmount(domain.RawAmount(balanceHex))
	res.PriceUSD = price
	res.TotalUSD = res.EthBalance * price

	s.mu.Lock()
	s.current[address] = res
	s.mu.Unlock()

	// broadcast is best-effort; subscribers catch up on the next cycle
	if err := s.broadcaster.Publish(ctx, "wallet."+address, res); err != nil {
		metrics.BroadcastFailures.Inc()
		s.log.Errorf("Failed to broadcast scan result for %s: %v", address, err)
	}

	metrics.ScansTotal.WithLabelValues(trigger, "ok").Inc()
	metrics.ScanDuration.Observe(time.Since(start).Seconds())
	metrics.AlertsEmitted.Add(float64(len(res.Alerts)))

	s.log.Debugf("Scan complete for %s (%s): ledger=%d score=%d alerts=%d",
		address, trigger, len(res.Transfers), res.Risk.Score, len(res.Alerts))

	return res, nil
}

// watch starts the poll loop for the address. Callers must have stopped the
// previous poller first.
func (s *Scanner) watch(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if cancel, ok := s.pollers[address]; ok {
		cancel()
	}

	pollCtx, cancel := context.WithCancel(context.Background())
	s.pollers[address] = cancel

	s.wg.Add(1)
	go s.pollLoop(pollCtx, address)

	return nil
}

func (s *Scanner) pollLoop(ctx context.Context, address string) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			scanCtx, cancel := context.WithTimeout(ctx, s.scanTimeout)
			_, err := s.scanOnce(scanCtx, address, "poll")
			cancel()

			if err != nil {
				// keep the previous snapshot, retry next cycle
				s.log.Errorf("Poll update failed for %s, retrying next cycle: %v", address, err)
			}
		}
	}
}

func (s *Scanner) stopPoller(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cancel, ok := s.pollers[address]; ok {
		cancel()
		delete(s.pollers, address)
	}
}

func (s *Scanner) timedBalance(ctx context.Context, address string) (string, error) {
	start := time.Now()
	defer func() {
		metrics.ProviderRequestDuration.WithLabelValues("alchemy", "balance").Observe(time.Since(start).Seconds())
	}()
	return s.wallet.Balance(ctx, address)
}

func (s *Scanner) timedTransfers(ctx context.Context, address string, dir provider.Direction) ([]domain.Transfer, error) {
	start := time.Now()
	defer func() {
		metrics.ProviderRequestDuration.WithLabelValues("alchemy", "transfers_"+string(dir)).Observe(time.Since(start).Seconds())
	}()
	return s.wallet.Transfers(ctx, address, dir)
}

func (s *Scanner) timedPrice(ctx context.Context) (float64, error) {
	start := time.Now()
	defer func() {
		metrics.ProviderRequestDuration.WithLabelValues("coingecko", "price").Observe(time.Since(start).Seconds())
	}()
	return s.oracle.USDPrice(ctx)
}
