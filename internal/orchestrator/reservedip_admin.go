package orchestrator

import (
	"context"
	"fmt"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/internal/provider"
	"github.com/cuemby/dynia/pkg/types"
)

// AssignReservedIP forcibly (re)binds a cluster's Reserved IP to a
// given node and updates state to match, without the health check or
// settling wait ActivateNode performs. It exists for manual recovery
// from the inconsistent state spec §5's ordering-guarantees note
// describes: a prior activateNode that reassigned the IP but failed
// before the state write completed.
func (o *Orchestrator) AssignReservedIP(ctx context.Context, clusterName, nodeID string) error {
	cluster, ok := o.Store.GetCluster(clusterName)
	if !ok {
		return &dynerr.NotFoundError{Kind: "cluster", Key: clusterName}
	}
	target, ok := o.Store.GetClusterNode(clusterName, nodeID)
	if !ok {
		return &dynerr.NotFoundError{Kind: "cluster_node", Key: nodeID}
	}
	previousActive, hadActive := o.Store.GetActiveClusterNode(clusterName)

	return timeOperation("assignReservedIp", func() error {
		if o.dryRun("reassign reserved ip %s to node %s", cluster.ReservedIP, nodeID) {
			return nil
		}
		if err := o.ReservedIP.Reassign(ctx, cluster.ReservedIPID, target.DropletID); err != nil {
			return fmt.Errorf("reassigning reserved ip: %w", err)
		}

		if hadActive && previousActive.TwoWordID != nodeID {
			// swap priorities along with roles so the newly active node
			// holds the maximum, as ActivateNode does.
			previousActive.Priority, target.Priority = target.Priority, previousActive.Priority
			previousActive.Role = types.NodeRoleStandby
			o.Store.UpsertClusterNode(previousActive)
		}
		target.Role = types.NodeRoleActive
		o.Store.UpsertClusterNode(target)
		cluster.ActiveNodeID = nodeID
		o.Store.UpsertCluster(cluster)
		return o.Store.Save()
	})
}

// ListReservedIPs reports every Reserved IP the configured compute
// provider currently knows about, for operator inspection.
func (o *Orchestrator) ListReservedIPs(ctx context.Context) ([]*provider.ReservedIPInfo, error) {
	return o.Compute.ListReservedIPs(ctx)
}
