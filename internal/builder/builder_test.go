package builder

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/futig/ba-assistant/internal/config"
	"github.com/futig/ba-assistant/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetupStoreMemory(t *testing.T) {
	kv, closers, err := setupStore(context.Background(), config.StoreConfig{Driver: config.StoreDriverMemory}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &repository.KVMemory{}, kv)
	assert.Empty(t, closers)
}

func TestSetupStoreSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "kb.db")

	kv, closers, err := setupStore(ctx, config.StoreConfig{Driver: config.StoreDriverSQLite, SQLitePath: path}, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, closers, 1)
	defer closers[0]()

	require.NoError(t, kv.Set(ctx, "kb:s-1", []byte(`{"goals":["ускорить выдачу"]}`)))
	got, ok, err := kv.Get(ctx, "kb:s-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"goals":["ускорить выдачу"]}`, string(got))
}

func TestSetupStorePostgresUnreachable(t *testing.T) {
	_, _, err := setupStore(context.Background(), config.StoreConfig{
		Driver:      config.StoreDriverPostgres,
		DatabaseURL: "postgres://ba:ba@127.0.0.1:1/ba?sslmode=disable&connect_timeout=1",
		DBMaxConns:  1,
	}, zap.NewNop())
	require.Error(t, err)
}

func TestShutdownOrder(t *testing.T) {
	var steps []string
	app := &App{
		server: &http.Server{},
		drain:  func() { steps = append(steps, "drain") },
		closers: []func(){
			func() { steps = append(steps, "store") },
			func() { steps = append(steps, "browser") },
		},
		logger: zap.NewNop(),
	}

	require.NoError(t, app.shutdown())
	assert.Equal(t, []string{"drain", "browser", "store"}, steps)
}

func TestSetupOfficeLicenseWarnsWithoutKey(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	require.NoError(t, setupOfficeLicense("", zap.New(core)))

	entries := logs.FilterMessageSnippet("EXPORT_UNIDOC_LICENSE_KEY").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}
