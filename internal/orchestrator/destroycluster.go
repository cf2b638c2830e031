package orchestrator

import (
	"context"
	"fmt"

	"github.com/cuemby/dynia/internal/dynerr"
)

// DestroyCluster tears down every node's VM, releases the Reserved IP
// and removes every route's DNS record, then deletes the cluster and
// its children from state. Per-node/per-route failures are collected
// and returned together rather than stopping at the first one, since
// there is no partial-destroy state worth preserving.
func (o *Orchestrator) DestroyCluster(ctx context.Context, clusterName string) error {
	cluster, ok := o.Store.GetCluster(clusterName)
	if !ok {
		return &dynerr.NotFoundError{Kind: "cluster", Key: clusterName}
	}
	nodes := o.Store.GetClusterNodes(clusterName)
	routes := o.Store.GetClusterRoutes(clusterName)

	return timeOperation("destroyCluster", func() error {
		var failures []error

		for _, r := range routes {
			if o.dryRun("delete dns record %s", r.Host) {
				continue
			}
			record, err := o.DNS.GetByName(ctx, r.Host)
			if err != nil {
				failures = append(failures, fmt.Errorf("looking up dns record %s: %w", r.Host, err))
				continue
			}
			if err := o.DNS.Delete(ctx, record.ID); err != nil {
				failures = append(failures, fmt.Errorf("deleting dns record %s: %w", r.Host, err))
			}
		}

		for _, n := range nodes {
			if o.dryRun("destroy vm for node %s", n.TwoWordID) {
				continue
			}
			if err := o.Compute.DeleteVM(ctx, n.DropletID); err != nil {
				failures = append(failures, fmt.Errorf("destroying vm for node %s: %w", n.TwoWordID, err))
			}
		}

		if cluster.ReservedIPID != "" {
			if !o.dryRun("permanently delete reserved ip %s", cluster.ReservedIP) {
				if err := o.ReservedIP.Delete(ctx, cluster.ReservedIPID); err != nil {
					failures = append(failures, fmt.Errorf("deleting reserved ip: %w", err))
				}
			}
		}

		if cluster.VPCID != "" && cluster.VPCID != "dry-run-vpc" {
			if !o.dryRun("delete vpc %s", cluster.VPCID) {
				if err := o.Compute.DeleteVPC(ctx, cluster.VPCID); err != nil {
					failures = append(failures, fmt.Errorf("deleting vpc: %w", err))
				}
			}
		}

		if o.dryRun("remove cluster %s from state", clusterName) {
			return nil
		}

		o.Store.RemoveCluster(clusterName)
		if err := o.Store.Save(); err != nil {
			failures = append(failures, err)
		}

		if len(failures) > 0 {
			return &dynerr.PartialFailureError{Operation: "destroyCluster", Causes: failures}
		}
		return nil
	})
}
