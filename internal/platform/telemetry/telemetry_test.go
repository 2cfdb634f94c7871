package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_NoEndpointIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{ServiceName: "pet-adoption"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_WithEndpoint(t *testing.T) {
	// El exporter HTTP no conecta hasta exportar, así que no hace falta collector.
	shutdown, err := Init(context.Background(), Config{
		ServiceName:  "pet-adoption",
		OTLPEndpoint: "127.0.0.1:4318",
		Insecure:     true,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
