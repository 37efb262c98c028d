package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MacroCompare/internal/config"
)

func TestNewServeCmd_Flags(t *testing.T) {
	cmd := NewServeCmd()
	require.NotNil(t, cmd.Flags().Lookup("host"))
	require.NotNil(t, cmd.Flags().Lookup("port"))
}

func TestRunServer_StopsOnCancel(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Server.Host, cfg.Server.Port = "127.0.0.1", 0
	cfg.Server.ShutdownTimeout = time.Second
	cfg.Backend.WarmupOnStart = false
	cfg.Log.OutputPaths = []string{"stderr"}
	cfg.Log.Level = "error"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- RunServer(ctx, cfg, "") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("RunServer did not return after cancel")
	}
}

func TestRunServer_InvalidBackend(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Backend.BaseURL = "not a url"
	cfg.Log.OutputPaths = []string{"stderr"}

	err := RunServer(context.Background(), cfg, "")
	require.Error(t, err)
}

//Personal.AI order the ending
