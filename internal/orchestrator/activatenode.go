package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/internal/health"
	"github.com/cuemby/dynia/internal/prepare"
	"github.com/cuemby/dynia/pkg/types"
)

// ActivateNode promotes nodeId to active (spec §4.6 "activateNode"):
// idempotent if it already is; otherwise the target must pass an
// internal readiness check before the Reserved IP is reassigned.
func (o *Orchestrator) ActivateNode(ctx context.Context, clusterName, nodeID string) error {
	cluster, ok := o.Store.GetCluster(clusterName)
	if !ok {
		return &dynerr.NotFoundError{Kind: "cluster", Key: clusterName}
	}
	if cluster.ActiveNodeID == nodeID {
		o.Log.Info().Str("node", nodeID).Msg("node is already active, nothing to do")
		return nil
	}

	target, ok := o.Store.GetClusterNode(clusterName, nodeID)
	if !ok {
		return &dynerr.NotFoundError{Kind: "cluster_node", Key: nodeID}
	}
	previousActive, hadActive := o.Store.GetActiveClusterNode(clusterName)

	return timeOperation("activateNode", func() error {
		if !o.dryRun("health-check %s before activation", nodeID) {
			result := health.CheckInternal(ctx, health.NodeCheckInput{
				Exec: o.Exec, Host: target.PublicIP, ProxyPort: prepare.ProxyPort,
			})
			if !result.Healthy {
				return &dynerr.HealthError{Check: "internal", Message: fmt.Sprintf("node %s is not ready for activation: %s", nodeID, result.Message)}
			}
		}

		if !o.dryRun("reassign reserved ip to %s", nodeID) {
			if err := o.ReservedIP.Reassign(ctx, cluster.ReservedIPID, target.DropletID); err != nil {
				return fmt.Errorf("reassigning reserved ip: %w", err)
			}
		}

		if !o.dryRun("wait for reserved ip propagation") {
			time.Sleep(o.Timeouts.DNSPropagation / 4) // fixed settling interval, not a full propagation wait
		}

		if o.dryRun("update roles: %s -> standby, %s -> active", previousActiveID(previousActive, hadActive), nodeID) {
			return nil
		}

		if hadActive {
			// swap priorities along with roles so the newly active node
			// keeps holding the maximum (validate.go rejects an active
			// node that isn't the priority maximum).
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

func previousActiveID(n *types.ClusterNode, had bool) string {
	if !had {
		return "(none)"
	}
	return n.TwoWordID
}
