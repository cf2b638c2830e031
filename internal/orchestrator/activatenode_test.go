package orchestrator_test

import (
	"context"
	"testing"
	"time"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivateNodeNoOpWhenAlreadyActive(t *testing.T) {
	h := newHarness(t)
	h.Orc.Store.UpsertCluster(&types.Cluster{Name: "edge-one", ActiveNodeID: "calm-otter"})

	err := h.Orc.ActivateNode(context.Background(), "edge-one", "calm-otter")
	require.NoError(t, err)
	assert.Empty(t, h.Exec.Calls, "an already-active target needs no health check")
}

func TestActivateNodeRejectsUnknownCluster(t *testing.T) {
	h := newHarness(t)
	err := h.Orc.ActivateNode(context.Background(), "ghost", "calm-otter")
	var notFoundErr *dynerr.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestActivateNodeRejectsUnknownNode(t *testing.T) {
	h := newHarness(t)
	h.Orc.Store.UpsertCluster(&types.Cluster{Name: "edge-one", ActiveNodeID: "calm-otter"})
	err := h.Orc.ActivateNode(context.Background(), "edge-one", "lone-heron")
	var notFoundErr *dynerr.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

// TestActivateNodeFailsFastWhenHealthCheckIsCancelled forces
// health.CheckInternal's failure branch without paying its real 8-
// attempt/10s+ retry cost: an already-cancelled context returns
// "cancelled during settling wait" immediately, before any retry.
func TestActivateNodeFailsFastWhenHealthCheckIsCancelled(t *testing.T) {
	h := newHarness(t)
	h.Orc.Store.UpsertCluster(&types.Cluster{Name: "edge-one", ActiveNodeID: "calm-otter", ReservedIPID: "1"})
	h.Orc.Store.UpsertClusterNode(&types.ClusterNode{ClusterName: "edge-one", TwoWordID: "lone-heron", Role: types.NodeRoleStandby, PublicIP: "203.0.113.2"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.Orc.ActivateNode(ctx, "edge-one", "lone-heron")
	var healthErr *dynerr.HealthError
	require.ErrorAs(t, err, &healthErr)
	assert.Equal(t, "internal", healthErr.Check)
	assert.Empty(t, h.Compute.Calls, "the reserved ip must never be reassigned to an unhealthy node")
}

// TestActivateNodeDryRunSkipsHealthCheckAndReassignment exercises the
// full success path without the engine-level health check's real
// settling wait, which DryRun short-circuits before it's ever called.
func TestActivateNodeDryRunSkipsHealthCheckAndReassignment(t *testing.T) {
	h := newHarness(t)
	h.Orc.DryRun = true
	h.Orc.Timeouts.DNSPropagation = 4 * time.Millisecond
	h.Orc.Store.UpsertCluster(&types.Cluster{Name: "edge-one", ActiveNodeID: "calm-otter", ReservedIPID: "1"})
	h.Orc.Store.UpsertClusterNode(&types.ClusterNode{ClusterName: "edge-one", TwoWordID: "calm-otter", Role: types.NodeRoleActive})
	h.Orc.Store.UpsertClusterNode(&types.ClusterNode{ClusterName: "edge-one", TwoWordID: "lone-heron", Role: types.NodeRoleStandby, PublicIP: "203.0.113.2"})

	err := h.Orc.ActivateNode(context.Background(), "edge-one", "lone-heron")
	require.NoError(t, err)

	cluster, _ := h.Orc.Store.GetCluster("edge-one")
	assert.Equal(t, "calm-otter", cluster.ActiveNodeID, "dry-run must not persist the role flip")
	assert.Empty(t, h.Compute.Calls)
}
