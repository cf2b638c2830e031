package orchestrator

import (
	"context"
	"fmt"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/pkg/types"
)

// RemoveNode destroys a node (spec §4.6 "removeNode"). Removing the
// last remaining node is rejected outright. Removing the active node
// first promotes the highest-priority standby via Reserved-IP
// reassignment before the target VM is destroyed, so the Reserved IP
// never goes unbound.
func (o *Orchestrator) RemoveNode(ctx context.Context, clusterName, nodeID string) error {
	cluster, ok := o.Store.GetCluster(clusterName)
	if !ok {
		return &dynerr.NotFoundError{Kind: "cluster", Key: clusterName}
	}
	nodes := o.Store.GetClusterNodes(clusterName)
	if len(nodes) <= 1 {
		return &dynerr.ValidationError{Field: "nodeId", Message: "cannot remove the only remaining node in a cluster"}
	}

	target, ok := o.Store.GetClusterNode(clusterName, nodeID)
	if !ok {
		return &dynerr.NotFoundError{Kind: "cluster_node", Key: nodeID}
	}

	return timeOperation("removeNode", func() error {
		if target.Role == types.NodeRoleActive {
			promoted := highestPriorityStandby(nodes, nodeID)
			if promoted == nil {
				return &dynerr.StateError{Message: "active node has no standby to promote"}
			}

			if !o.dryRun("reassign reserved ip from %s to %s", nodeID, promoted.TwoWordID) {
				if err := o.ReservedIP.Reassign(ctx, cluster.ReservedIPID, promoted.DropletID); err != nil {
					return fmt.Errorf("reassigning reserved ip to %s: %w", promoted.TwoWordID, err)
				}
			}

			if o.dryRun("destroy vm for node %s and promote %s to active", nodeID, promoted.TwoWordID) {
				return nil
			}

			if err := o.Compute.DeleteVM(ctx, target.DropletID); err != nil {
				return fmt.Errorf("destroying vm for node %s: %w", nodeID, err)
			}

			// promoted takes over the vacated active node's priority so
			// it remains the unique maximum once target is gone from the
			// same document version (validate.go rejects two active nodes
			// and a non-maximal active priority, so promotion, demotion
			// of the target, and its removal must land in one Save).
			promoted.Role = types.NodeRoleActive
			promoted.Priority = target.Priority
			o.Store.UpsertClusterNode(promoted)
			cluster.ActiveNodeID = promoted.TwoWordID
			o.Store.UpsertCluster(cluster)
			o.Store.RemoveClusterNode(clusterName, nodeID)
			return o.Store.Save()
		}

		if o.dryRun("destroy vm for node %s and remove it from state", nodeID) {
			return nil
		}

		if err := o.Compute.DeleteVM(ctx, target.DropletID); err != nil {
			return fmt.Errorf("destroying vm for node %s: %w", nodeID, err)
		}
		o.Store.RemoveClusterNode(clusterName, nodeID)
		return o.Store.Save()
	})
}

func highestPriorityStandby(nodes []*types.ClusterNode, excludeID string) *types.ClusterNode {
	var best *types.ClusterNode
	for _, n := range nodes {
		if n.TwoWordID == excludeID || n.Role != types.NodeRoleStandby {
			continue
		}
		if best == nil || n.Priority > best.Priority {
			best = n
		}
	}
	return best
}
