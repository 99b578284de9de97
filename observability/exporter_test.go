package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInitExporter_ConsoleShutsDownCleanly(t *testing.T) {
	shutdown, err := InitExporter(ConsoleExporter, 10*time.Millisecond, time.Second)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestInitExporter_PrometheusShutsDownCleanly(t *testing.T) {
	shutdown, err := InitExporter(PrometheusExporter, 0, 0)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
