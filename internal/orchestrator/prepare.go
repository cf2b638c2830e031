package orchestrator

import (
	"context"
	"fmt"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/internal/health"
	"github.com/cuemby/dynia/internal/prepare"
)

// PrepareInput parameterizes Prepare.
type PrepareInput struct {
	Force       bool
	Parallel    bool
	TargetNodes []string // twoWordIds; nil means every node
}

// Prepare reconverges cluster nodes (spec §4.6 "prepare"). Without
// Force, a node already passing its internal readiness check is
// skipped; the full node list is always passed to the preparation
// engine regardless of which nodes are actually targeted, so
// load-balancer and VRRP config stay cluster-wide even for a
// single-node reconverge.
func (o *Orchestrator) Prepare(ctx context.Context, clusterName string, in PrepareInput) error {
	cluster, ok := o.Store.GetCluster(clusterName)
	if !ok {
		return &dynerr.NotFoundError{Kind: "cluster", Key: clusterName}
	}
	allNodes := o.Store.GetClusterNodes(clusterName)
	if len(allNodes) == 0 {
		return &dynerr.StateError{Message: "cluster has no nodes"}
	}

	descriptors := toDescriptors(allNodes)
	targets := descriptors
	if in.TargetNodes != nil {
		wanted := map[string]bool{}
		for _, id := range in.TargetNodes {
			wanted[id] = true
		}
		targets = nil
		for _, d := range descriptors {
			if wanted[d.TwoWordID] {
				targets = append(targets, d)
			}
		}
	}

	if !in.Force {
		var needsPrep []prepare.NodeDescriptor
		for _, d := range targets {
			result := health.CheckInternal(ctx, health.NodeCheckInput{Exec: o.Exec, Host: d.PublicIP, ProxyPort: prepare.ProxyPort, SettlingWait: 0})
			if !result.Healthy {
				needsPrep = append(needsPrep, d)
			}
		}
		targets = needsPrep
	}

	if len(targets) == 0 {
		o.Log.Info().Str("cluster", clusterName).Msg("every targeted node already converged, nothing to do")
		return nil
	}

	return timeOperation("prepare", func() error {
		if o.dryRun("prepare %d node(s) in cluster %s (parallel=%v)", len(targets), clusterName, in.Parallel) {
			return nil
		}

		routes, err := o.resolveRoutes(clusterName)
		if err != nil {
			return err
		}
		clusterDesc := prepare.ClusterDescriptor{Name: cluster.Name, BaseDomain: cluster.BaseDomain, Region: cluster.Region, ReservedIP: cluster.ReservedIP}

		err = o.Prepare.PrepareClusterNodes(ctx, prepare.ClusterOptions{
			Cluster: clusterDesc, AllNodes: descriptors, Routes: routes,
			TargetNodes: targets, Parallel: in.Parallel,
		})
		if err != nil {
			return fmt.Errorf("preparing cluster %s: %w", clusterName, err)
		}
		return nil
	})
}
