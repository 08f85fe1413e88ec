package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/rackbook/internal/logging"
	"github.com/dmitrijs2005/rackbook/internal/server/blobstore"
	"github.com/dmitrijs2005/rackbook/internal/server/config"
	"github.com/dmitrijs2005/rackbook/internal/server/events"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.SecretKey = "k"
	c.StoreBackend = config.BackendMemory
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.ShutdownTimeout = time.Second
	return c
}

func TestNewApp_RejectsInvalidConfig(t *testing.T) {
	c := testConfig()
	c.SecretKey = ""
	_, err := NewApp(context.Background(), c, logging.Nop{})
	assert.Error(t, err)
}

func TestNewApp_BlobStoreError(t *testing.T) {
	orig := newBlobStore
	t.Cleanup(func() { newBlobStore = orig })
	newBlobStore = func(context.Context, *config.Config) (blobstore.Store, error) {
		return nil, errors.New("no credentials")
	}

	_, err := NewApp(context.Background(), testConfig(), logging.Nop{})
	assert.ErrorContains(t, err, "no credentials")
}

func TestNewApp_Wiring(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(), logging.Nop{})
	require.NoError(t, err)
	assert.IsType(t, &events.LogPublisher{}, app.publisher)
	assert.NoError(t, app.repomanager.Ping(context.Background()))

	c := testConfig()
	c.KafkaBrokers = []string{"127.0.0.1:9092"}
	app, err = NewApp(context.Background(), c, logging.Nop{})
	require.NoError(t, err)
	assert.IsType(t, &events.KafkaPublisher{}, app.publisher)
	assert.NoError(t, app.publisher.Close())
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(), logging.Nop{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}
