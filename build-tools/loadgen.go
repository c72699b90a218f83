//go:build ignore

// Run: go run ./build-tools/loadgen.go -addr http://localhost:8080 -rps 50 -duration 60s -wallets 200

package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	mrand "math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"
)

type scanRequest struct {
	Address string `json:"address"`
}

func main() {
	var (
		addr     = flag.String("addr", "http://localhost:8080", "base URL of the API")
		rps      = flag.Int("rps", 50, "scan requests per second target")
		duration = flag.Duration("duration", 30*time.Second, "how long to run")
		wallets  = flag.Int("wallets", 100, "size of the random wallet pool")
		token    = flag.String("token", "", "bearer token for the protected API")
	)
	flag.Parse()

	if *wallets <= 0 {
		fmt.Println("wallet pool must be positive")
		os.Exit(1)
	}

	// fixed pool so repeated scans hit the same addresses like real users do
	pool := make([]string, *wallets)
	for i := range pool {
		pool[i] = "0x" + randHex(40)
	}

	cli := &http.Client{Timeout: 10 * time.Second}

	fmt.Printf("loadgen → addr=%s rps=%d duration=%s wallets=%d\n", *addr, *rps, duration.String(), *wallets)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	end := start.Add(*duration)

	// steady pace with a little drift
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	perTick := float64(*rps) / 10.0 // 10 ticks in sec
	accum := 0.0

	var sent, failed atomic.Int64

loop:
	for {
		select {
		case <-ctx.Done():
			fmt.Println("signal received, stopping…")
			break loop
		case now := <-tick.C:
			if now.After(end) {
				break loop
			}

			accum += perTick
			batch := int(math.Floor(accum))
			if batch <= 0 {
				continue
			}
			accum -= float64(batch)

			for i := 0; i < batch; i++ {
				address := pool[mrand.Intn(len(pool))]
				go func() {
					if err := postScan(ctx, cli, *addr, *token, address); err != nil {
						failed.Add(1)
						return
					}
					sent.Add(1)
				}()
			}
		}
	}

	// let in-flight requests finish
	fmt.Println("flushing…")
	time.Sleep(500 * time.Millisecond)
	fmt.Printf("done: ok=%d failed=%d\n", sent.Load(), failed.Load())
}

func postScan(ctx context.Context, cli *http.Client, addr, token, address string) error {
	body, _ := json.Marshal(scanRequest{Address: address})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr+"/api/scan", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := cli.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("server error: %s", resp.Status)
	}
	return nil
}

func randHex(n int) string {
	b := make([]byte, n/2)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
