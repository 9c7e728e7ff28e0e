package realtime_service

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestServe_HTTPFailureStopsHub(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()

	cfg := testConfig(t)
	cfg.Server.RealtimePort = busy.Addr().(*net.TCPAddr).Port

	deps, err := InitializeDependencies(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer deps.Close()

	done := make(chan error, 1)
	go func() { done <- serve(context.Background(), cfg, deps, zap.NewNop()) }()

	select {
	case err = <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return after HTTP listen failure")
	}
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to serve HTTP")

	select {
	case <-deps.Hub.Done():
	default:
		t.Fatal("hub still running after serve returned")
	}
}

func TestServe_CancelStopsHub(t *testing.T) {
	cfg := testConfig(t)

	deps, err := InitializeDependencies(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer deps.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, deps, zap.NewNop()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err = <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
	require.NoError(t, err)

	select {
	case <-deps.Hub.Done():
	default:
		t.Fatal("hub still running after serve returned")
	}
}
