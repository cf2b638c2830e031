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

func TestDestroyClusterRejectsUnknownCluster(t *testing.T) {
	h := newHarness(t)
	err := h.Orc.DestroyCluster(context.Background(), "ghost")
	var notFoundErr *dynerr.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestDestroyClusterTearsDownNodesRoutesAndReservedIP(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	vm, err := h.Compute.CreateVM(ctx, provider.CreateVMRequest{Name: "edge-one-calm-otter"})
	require.NoError(t, err)
	vpc, err := h.Compute.CreateVPC(ctx, "edge-one", "nyc3", "")
	require.NoError(t, err)
	reservedIP, err := h.Compute.CreateReservedIP(ctx, "nyc3")
	require.NoError(t, err)
	_, err = h.DNS.UpsertA(ctx, "app.example.com", reservedIP.IP, 300, false)
	require.NoError(t, err)

	h.Orc.Store.UpsertCluster(&types.Cluster{
		Name: "edge-one", ReservedIP: reservedIP.IP, ReservedIPID: reservedIP.ID, VPCID: vpc.ID, ActiveNodeID: "calm-otter",
	})
	h.Orc.Store.UpsertClusterNode(&types.ClusterNode{ClusterName: "edge-one", TwoWordID: "calm-otter", DropletID: vm.ID, Role: types.NodeRoleActive})
	h.Orc.Store.UpsertRoute(&types.Route{ClusterName: "edge-one", Host: "app.example.com"})
	require.NoError(t, h.Orc.Store.Save())

	require.NoError(t, h.Orc.DestroyCluster(ctx, "edge-one"))

	_, exists := h.Orc.Store.GetCluster("edge-one")
	assert.False(t, exists)

	_, err = h.Compute.GetVM(ctx, vm.ID)
	assert.Error(t, err, "the node's vm should be deleted")
	_, err = h.DNS.GetByName(ctx, "app.example.com")
	assert.Error(t, err, "the route's dns record should be deleted")

	remainingIPs, err := h.Compute.ListReservedIPs(ctx)
	require.NoError(t, err)
	assert.Empty(t, remainingIPs, "the reserved ip should be permanently deleted")
}

func TestDestroyClusterCollectsPartialFailures(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.Orc.Store.UpsertCluster(&types.Cluster{Name: "edge-one", ActiveNodeID: "calm-otter"})
	// DropletID "does-not-exist" was never created via the fake, so
	// DeleteVM fails — the operation must still finish and report it.
	h.Orc.Store.UpsertClusterNode(&types.ClusterNode{ClusterName: "edge-one", TwoWordID: "calm-otter", DropletID: "does-not-exist", Role: types.NodeRoleActive})
	require.NoError(t, h.Orc.Store.Save())

	err := h.Orc.DestroyCluster(ctx, "edge-one")
	var partialErr *dynerr.PartialFailureError
	require.ErrorAs(t, err, &partialErr)
	assert.Equal(t, "destroyCluster", partialErr.Operation)

	_, exists := h.Orc.Store.GetCluster("edge-one")
	assert.False(t, exists, "state removal still happens despite the vm-deletion failure")
}

func TestDestroyClusterDryRunTouchesNoProviderAndKeepsState(t *testing.T) {
	h := newHarness(t)
	h.Orc.DryRun = true
	h.Orc.Store.UpsertCluster(&types.Cluster{Name: "edge-one", ActiveNodeID: "calm-otter"})
	h.Orc.Store.UpsertClusterNode(&types.ClusterNode{ClusterName: "edge-one", TwoWordID: "calm-otter", DropletID: "1", Role: types.NodeRoleActive})
	require.NoError(t, h.Orc.Store.Save())

	require.NoError(t, h.Orc.DestroyCluster(context.Background(), "edge-one"))

	_, exists := h.Orc.Store.GetCluster("edge-one")
	assert.True(t, exists)
	assert.Empty(t, h.Compute.Calls)
}
