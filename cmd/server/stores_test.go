package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kp9community/portal/internal/core/domain"
	"github.com/kp9community/portal/internal/pkg/config"
)

func TestOpenStores_File(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := filepath.Join(t.TempDir(), "data")
	cfg := &config.Config{Storage: config.StorageConfig{Driver: config.DriverFile, DataDir: dir, Writers: 2}}

	st, err := openStores(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer st.close(ctx)

	require.NoError(t, st.users.Save(ctx, []domain.User{{Username: "a", Role: "SO"}}))
	_, err = os.Stat(filepath.Join(dir, "users.json"))
	assert.NoError(t, err)
	assert.Empty(t, st.pingers)
	assert.Len(t, st.users.Load(ctx), 1)
}

func TestOpenStores_Memory(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Storage: config.StorageConfig{Driver: config.DriverMemory}}

	st, err := openStores(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, st.logs.Load(ctx))
}

func TestOpenStores_UnknownDriver(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: "sqlite"}}

	_, err := openStores(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}
