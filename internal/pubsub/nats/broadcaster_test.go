package nats

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	natsserver "github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/nevasik7/alerting/logger"

	"walletscope/internal/config"
)

// NoopLogger is a logger that does nothing (for testing)
type NoopLogger struct{}

func (n *NoopLogger) Debug(msg string)                                      {}
func (n *NoopLogger) Debugf(format string, args ...interface{})             {}
func (n *NoopLogger) Info(msg string)                                       {}
func (n *NoopLogger) Infof(format string, args ...interface{})              {}
func (n *NoopLogger) Warn(msg string)                                       {}
func (n *NoopLogger) Warnf(format string, args ...interface{})              {}
func (n *NoopLogger) Error(msg string)                                      {}
func (n *NoopLogger) Errorf(format string, args ...interface{})             {}
func (n *NoopLogger) Fatal(msg string)                                      {}
func (n *NoopLogger) Fatalf(format string, args ...interface{})             {}
func (n *NoopLogger) Panic(msg string)                                      {}
func (n *NoopLogger) Panicf(format string, args ...interface{})             {}
func (n *NoopLogger) WithField(key string, value interface{}) logger.Logger { return n }
func (n *NoopLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return n
}

func runTestWithInMemoryNATS(t *testing.T, testFunc func(*testing.T, *server.Server, string)) {
	t.Helper()

	opts := natsserver.DefaultTestOptions
	opts.Port = -1 // random port
	s := natsserver.RunServer(&opts)
	defer s.Shutdown()

	testFunc(t, s, s.ClientURL())
}

func TestNew_NilConfig(t *testing.T) {
	client, err := New(&NoopLogger{}, nil)

	assert.Error(t, err)
	assert.Nil(t, client)
	assert.Equal(t, "nats config is required", err.Error())
}

func TestNew_EmptyURL(t *testing.T) {
	client, err := New(&NoopLogger{}, &config.NATSConfig{})

	assert.Error(t, err)
	assert.Nil(t, client)
	assert.Equal(t, "nats url is required", err.Error())
}

func TestHealth_NilConnection(t *testing.T) {
	client := &Client{log: &NoopLogger{}}

	assert.False(t, client.Ready())
	assert.Equal(t, nats.DISCONNECTED, client.Status())
	assert.Error(t, client.Health(context.Background()))
}

func TestClose_NilConnection(t *testing.T) {
	client := &Client{log: &NoopLogger{}}
	assert.NoError(t, client.Close())
}

func TestPublish_RoundTrip(t *testing.T) {
	runTestWithInMemoryNATS(t, func(t *testing.T, s *server.Server, url string) {
		client, err := New(&NoopLogger{}, &config.NATSConfig{URL: url, BroadcastPrefix: "walletscope"})
		require.NoError(t, err)
		defer func() { _ = client.Close() }()

		sub, err := client.nc.SubscribeSync("walletscope.wallet.0xaaa")
		require.NoError(t, err)

		patch := map[string]any{"address": "0xaaa", "score": 30}
		require.NoError(t, client.Publish(context.Background(), "wallet.0xaaa", patch))

		msg, err := sub.NextMsg(2 * time.Second)
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, "0xaaa", got["address"])
	})
}

func TestPublish_NoPrefix(t *testing.T) {
	runTestWithInMemoryNATS(t, func(t *testing.T, s *server.Server, url string) {
		client, err := New(&NoopLogger{}, &config.NATSConfig{URL: url})
		require.NoError(t, err)
		defer func() { _ = client.Close() }()

		sub, err := client.nc.SubscribeSync("wallet.0xbbb")
		require.NoError(t, err)

		require.NoError(t, client.Publish(context.Background(), "wallet.0xbbb", "ping"))

		_, err = sub.NextMsg(2 * time.Second)
		assert.NoError(t, err)
	})
}

func TestHealth_Connected(t *testing.T) {
	runTestWithInMemoryNATS(t, func(t *testing.T, s *server.Server, url string) {
		client, err := New(&NoopLogger{}, &config.NATSConfig{URL: url})
		require.NoError(t, err)

		assert.True(t, client.Ready())
		assert.Equal(t, nats.CONNECTED, client.Status())
		assert.NoError(t, client.Health(context.Background()))

		require.NoError(t, client.Close())
		assert.False(t, client.Ready())
		assert.Equal(t, nats.CLOSED, client.Status())
	})
}

func TestClose_Idempotent(t *testing.T) {
	runTestWithInMemoryNATS(t, func(t *testing.T, s *server.Server, url string) {
		client, err := New(&NoopLogger{}, &config.NATSConfig{URL: url})
		require.NoError(t, err)

		assert.NoError(t, client.Close())
		assert.NoError(t, client.Close())
		assert.NoError(t, client.Close())
	})
}
