package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/internal/nameid"
	"github.com/cuemby/dynia/internal/prepare"
	"github.com/cuemby/dynia/internal/provider"
	"github.com/cuemby/dynia/pkg/types"
)

// AddNode provisions count standby nodes for an existing cluster (spec
// §4.6 "addNode"). Priorities decrease by 10 from the cluster's
// current lowest; a failure on one node stops the remaining ones,
// leaving already-created nodes as standby in state.
func (o *Orchestrator) AddNode(ctx context.Context, clusterName string, count int) ([]*types.ClusterNode, error) {
	cluster, ok := o.Store.GetCluster(clusterName)
	if !ok {
		return nil, &dynerr.NotFoundError{Kind: "cluster", Key: clusterName}
	}
	if count <= 0 || count > 10 {
		return nil, &dynerr.ValidationError{Field: "count", Message: "count must be between 1 and 10"}
	}

	existing := o.Store.GetClusterNodes(clusterName)
	existingIDs := map[string]bool{}
	lowestPriority := 200
	for _, n := range existing {
		existingIDs[n.TwoWordID] = true
		if n.Priority < lowestPriority {
			lowestPriority = n.Priority
		}
	}

	var created []*types.ClusterNode
	err := timeOperation("addNode", func() error {
		nextPriority := lowestPriority
		for i := 0; i < count; i++ {
			nextPriority -= 10

			nodeID, err := nameid.Generate(existingIDs)
			if err != nil {
				return fmt.Errorf("generating node id: %w", err)
			}
			existingIDs[nodeID] = true

			var vm *provider.VMInfo
			if o.dryRun("create standby VM %s for cluster %s", nodeID, clusterName) {
				vm = &provider.VMInfo{ID: "dry-run-vm-" + nodeID, PublicIP: "203.0.113.1", PrivateIP: "10.0.0.1", Status: "active"}
			} else {
				req := provider.CreateVMRequest{
					Name: fmt.Sprintf("%s-%s", clusterName, nodeID), Region: cluster.Region, Size: cluster.Size,
					Image: o.VMImage, VPCID: cluster.VPCID, SSHKeys: o.SSHKeyIDs,
				}
				createdVM, err := o.Compute.CreateVM(ctx, req)
				if err != nil {
					return fmt.Errorf("creating vm for node %s: %w", nodeID, err)
				}
				vm, err = o.Compute.WaitVMActive(ctx, createdVM.ID, o.Timeouts.VMActive)
				if err != nil {
					return fmt.Errorf("waiting for node %s vm to become active: %w", nodeID, err)
				}
			}

			newNode := prepare.NodeDescriptor{
				TwoWordID: nodeID, PublicIP: vm.PublicIP, PrivateIP: vm.PrivateIP,
				Role: types.NodeRoleStandby, Priority: nextPriority,
			}
			allNodes := append(toDescriptors(existing), newNode)

			if !o.dryRun("prepare standby node %s with the updated full node list", nodeID) {
				clusterDesc := prepare.ClusterDescriptor{Name: cluster.Name, BaseDomain: cluster.BaseDomain, Region: cluster.Region, ReservedIP: cluster.ReservedIP}
				routes, err := o.resolveRoutes(clusterName)
				if err != nil {
					return err
				}
				if err := o.Prepare.PrepareNode(ctx, prepare.Options{
					Cluster: clusterDesc, AllNodes: allNodes, Self: newNode, Routes: routes, SingleNode: false,
				}); err != nil {
					return fmt.Errorf("preparing standby node %s: %w", nodeID, err)
				}
			}

			clusterNode := &types.ClusterNode{
				ClusterName: clusterName, TwoWordID: nodeID, DropletID: vm.ID,
				Hostname: fmt.Sprintf("%s-%s", clusterName, nodeID), PublicIP: vm.PublicIP, PrivateIP: vm.PrivateIP,
				Role: types.NodeRoleStandby, Priority: nextPriority, Status: types.NodeStatusActive,
				CreatedAt: time.Now(),
			}

			if o.dryRun("persist new node %s", nodeID) {
				continue
			}
			o.Store.UpsertClusterNode(clusterNode)
			if err := o.Store.Save(); err != nil {
				return fmt.Errorf("persisting node %s: %w", nodeID, err)
			}
			existing = append(existing, clusterNode)
			created = append(created, clusterNode)
		}
		return nil
	})
	return created, err
}

func toDescriptors(nodes []*types.ClusterNode) []prepare.NodeDescriptor {
	out := make([]prepare.NodeDescriptor, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, prepare.NodeDescriptor{
			TwoWordID: n.TwoWordID, PublicIP: n.PublicIP, PrivateIP: n.PrivateIP,
			Role: n.Role, Priority: n.Priority,
		})
	}
	return out
}
