package orchestrator_test

import (
	"context"
	"testing"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/internal/provider"
	"github.com/cuemby/dynia/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignReservedIPRejectsUnknownCluster(t *testing.T) {
	h := newHarness(t)
	err := h.Orc.AssignReservedIP(context.Background(), "ghost", "calm-otter")
	var notFoundErr *dynerr.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestAssignReservedIPRejectsUnknownNode(t *testing.T) {
	h := newHarness(t)
	h.Orc.Store.UpsertCluster(&types.Cluster{Name: "edge-one"})
	err := h.Orc.AssignReservedIP(context.Background(), "edge-one", "calm-otter")
	var notFoundErr *dynerr.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestAssignReservedIPForciblyRebindsWithoutHealthCheck(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	oldVM, err := h.Compute.CreateVM(ctx, provider.CreateVMRequest{Name: "edge-one-calm-otter"})
	require.NoError(t, err)
	newVM, err := h.Compute.CreateVM(ctx, provider.CreateVMRequest{Name: "edge-one-lone-heron"})
	require.NoError(t, err)
	reservedIP, err := h.Compute.CreateReservedIP(ctx, "nyc3")
	require.NoError(t, err)
	require.NoError(t, h.Compute.AssignReservedIP(ctx, reservedIP.ID, oldVM.ID))

	h.Orc.Store.UpsertCluster(&types.Cluster{Name: "edge-one", ReservedIP: reservedIP.IP, ReservedIPID: reservedIP.ID, ActiveNodeID: "calm-otter"})
	h.Orc.Store.UpsertClusterNode(&types.ClusterNode{ClusterName: "edge-one", TwoWordID: "calm-otter", DropletID: oldVM.ID, Role: types.NodeRoleActive, Priority: 200})
	h.Orc.Store.UpsertClusterNode(&types.ClusterNode{ClusterName: "edge-one", TwoWordID: "lone-heron", DropletID: newVM.ID, Role: types.NodeRoleStandby, Priority: 150})
	require.NoError(t, h.Orc.Store.Save())

	require.NoError(t, h.Orc.AssignReservedIP(ctx, "edge-one", "lone-heron"))
	assert.Empty(t, h.Exec.Calls, "AssignReservedIP never touches a node over the executor")

	cluster, _ := h.Orc.Store.GetCluster("edge-one")
	assert.Equal(t, "lone-heron", cluster.ActiveNodeID)

	promoted, _ := h.Orc.Store.GetClusterNode("edge-one", "lone-heron")
	assert.Equal(t, types.NodeRoleActive, promoted.Role)
	demoted, _ := h.Orc.Store.GetClusterNode("edge-one", "calm-otter")
	assert.Equal(t, types.NodeRoleStandby, demoted.Role)
}

func TestAssignReservedIPDryRunMakesNoChanges(t *testing.T) {
	h := newHarness(t)
	h.Orc.DryRun = true
	h.Orc.Store.UpsertCluster(&types.Cluster{Name: "edge-one", ActiveNodeID: "calm-otter"})
	h.Orc.Store.UpsertClusterNode(&types.ClusterNode{ClusterName: "edge-one", TwoWordID: "calm-otter", Role: types.NodeRoleActive, Priority: 200})
	h.Orc.Store.UpsertClusterNode(&types.ClusterNode{ClusterName: "edge-one", TwoWordID: "lone-heron", Role: types.NodeRoleStandby, Priority: 150})
	require.NoError(t, h.Orc.Store.Save())

	require.NoError(t, h.Orc.AssignReservedIP(context.Background(), "edge-one", "lone-heron"))

	cluster, _ := h.Orc.Store.GetCluster("edge-one")
	assert.Equal(t, "calm-otter", cluster.ActiveNodeID)
}

func TestListReservedIPsDelegatesToCompute(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.Compute.CreateReservedIP(ctx, "nyc3")
	require.NoError(t, err)

	ips, err := h.Orc.ListReservedIPs(ctx)
	require.NoError(t, err)
	require.Len(t, ips, 1)
}
