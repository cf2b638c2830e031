package orchestrator_test

import (
	"context"
	"testing"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/internal/orchestrator"
	"github.com/cuemby/dynia/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareRejectsUnknownCluster(t *testing.T) {
	h := newHarness(t)
	err := h.Orc.Prepare(context.Background(), "ghost", orchestrator.PrepareInput{})
	var notFoundErr *dynerr.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestPrepareRejectsClusterWithNoNodes(t *testing.T) {
	h := newHarness(t)
	h.Orc.Store.UpsertCluster(&types.Cluster{Name: "edge-one"})
	err := h.Orc.Prepare(context.Background(), "edge-one", orchestrator.PrepareInput{})
	var stateErr *dynerr.StateError
	assert.ErrorAs(t, err, &stateErr)
}

// TestPrepareSkipsAlreadyConvergedNodes exercises the non-Force gating
// health check (its SettlingWait of 0 means the default 45s wait, so
// this test is slow) against an exec fake scripted fully healthy: every
// node reports converged and the preparation engine is never invoked.
func TestPrepareSkipsAlreadyConvergedNodes(t *testing.T) {
	h := newHarness(t)
	h.Orc.Store.UpsertCluster(&types.Cluster{Name: "edge-one", ActiveNodeID: "calm-otter"})
	h.Orc.Store.UpsertClusterNode(&types.ClusterNode{ClusterName: "edge-one", TwoWordID: "calm-otter", Role: types.NodeRoleActive, Priority: 200, PublicIP: "203.0.113.1"})
	require.NoError(t, h.Orc.Store.Save())

	h.Exec.ExecHandler = allHealthy(8443)

	err := h.Orc.Prepare(context.Background(), "edge-one", orchestrator.PrepareInput{})
	require.NoError(t, err)
	assert.Empty(t, h.Exec.CountMethod("UploadContent"), "a converged node should never be re-written")
}

// TestPrepareForceDryRunTargetsEveryNodeRegardlessOfHealth verifies
// Force skips the health-gating check entirely (so an all-unhealthy
// exec fake doesn't change which nodes are targeted), while DryRun
// keeps the test from reaching the engine's real settling wait.
func TestPrepareForceDryRunTargetsEveryNodeRegardlessOfHealth(t *testing.T) {
	h := newHarness(t)
	h.Orc.DryRun = true
	h.Orc.Store.UpsertCluster(&types.Cluster{Name: "edge-one", ActiveNodeID: "calm-otter"})
	h.Orc.Store.UpsertClusterNode(&types.ClusterNode{ClusterName: "edge-one", TwoWordID: "calm-otter", Role: types.NodeRoleActive, Priority: 200, PublicIP: "203.0.113.1"})
	h.Orc.Store.UpsertClusterNode(&types.ClusterNode{ClusterName: "edge-one", TwoWordID: "lone-heron", Role: types.NodeRoleStandby, Priority: 150, PublicIP: "203.0.113.2"})
	require.NoError(t, h.Orc.Store.Save())

	err := h.Orc.Prepare(context.Background(), "edge-one", orchestrator.PrepareInput{Force: true})
	require.NoError(t, err)
	assert.Empty(t, h.Exec.Calls, "dry-run must stop before the engine issues any remote command")
}

func TestPrepareTargetNodesFiltersToNamedSubset(t *testing.T) {
	h := newHarness(t)
	h.Orc.DryRun = true
	h.Orc.Store.UpsertCluster(&types.Cluster{Name: "edge-one", ActiveNodeID: "calm-otter"})
	h.Orc.Store.UpsertClusterNode(&types.ClusterNode{ClusterName: "edge-one", TwoWordID: "calm-otter", Role: types.NodeRoleActive, Priority: 200, PublicIP: "203.0.113.1"})
	h.Orc.Store.UpsertClusterNode(&types.ClusterNode{ClusterName: "edge-one", TwoWordID: "lone-heron", Role: types.NodeRoleStandby, Priority: 150, PublicIP: "203.0.113.2"})
	require.NoError(t, h.Orc.Store.Save())

	// An unknown target id resolves to an empty target set, which
	// short-circuits before DryRun's own log line — either way, no
	// remote command should ever be issued.
	err := h.Orc.Prepare(context.Background(), "edge-one", orchestrator.PrepareInput{Force: true, TargetNodes: []string{"nobody"}})
	require.NoError(t, err)
	assert.Empty(t, h.Exec.Calls)
}
