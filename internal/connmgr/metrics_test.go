package connmgr

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/srg/hoodctl/internal/device"
	"github.com/srg/hoodctl/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountLifecycle(t *testing.T) {
	transport := testutils.NewFakeTransport()
	m := New(transport, WithIdleTimeout(time.Minute), WithLogger(testutils.NewTestLogger()))
	peer := testutils.NewPeer("SKE", testutils.TestModernAddress)
	noop := func(device.Session) error { return nil }

	opened := testutil.ToFloat64(connectionsOpened)
	reused := testutil.ToFloat64(connectionsReused)
	explicit := testutil.ToFloat64(connectionsClosed.WithLabelValues(reasonExplicit))

	require.NoError(t, m.Do(context.Background(), peer, noop))
	require.NoError(t, m.Do(context.Background(), peer, noop))
	require.NoError(t, m.Disconnect())

	assert.Equal(t, opened+1, testutil.ToFloat64(connectionsOpened))
	assert.Equal(t, reused+1, testutil.ToFloat64(connectionsReused))
	assert.Equal(t, explicit+1, testutil.ToFloat64(connectionsClosed.WithLabelValues(reasonExplicit)))
	assert.Len(t, MetricsCollectors(), 3)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "disconnected", Disconnected.String())
	assert.Equal(t, "connected", Connected.String())
	assert.Equal(t, "pending_teardown", PendingTeardown.String())
	assert.Equal(t, "unknown", State(7).String())
}
