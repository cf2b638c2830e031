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

// CreateClusterInput parameterizes CreateCluster.
type CreateClusterInput struct {
	Name       string
	BaseDomain string
	Region     string
	Size       string
}

// CreateCluster runs the five-step sequence from spec §4.6: create a
// VPC, provision the first VM, bind a reserved IP to it, prepare it as
// a single-node cluster, then persist Cluster and its first
// ClusterNode.
func (o *Orchestrator) CreateCluster(ctx context.Context, in CreateClusterInput) (*types.Cluster, error) {
	if err := validateClusterName(in.Name); err != nil {
		return nil, err
	}
	if _, exists := o.Store.GetCluster(in.Name); exists {
		return nil, &dynerr.StateError{Message: fmt.Sprintf("cluster %q already exists", in.Name)}
	}

	var cluster *types.Cluster
	err := timeOperation("createCluster", func() error {
		vpcID := ""
		if o.dryRun("create a VPC for cluster %s in %s", in.Name, in.Region) {
			vpcID = "dry-run-vpc"
		} else {
			vpc, err := o.Compute.CreateVPC(ctx, in.Name, in.Region, "")
			if err != nil {
				return fmt.Errorf("creating vpc: %w", err)
			}
			vpcID = vpc.ID
		}

		nodeID, err := nameid.Generate(map[string]bool{})
		if err != nil {
			return fmt.Errorf("generating node id: %w", err)
		}

		var vm *provider.VMInfo
		if o.dryRun("create the first VM for cluster %s", in.Name) {
			vm = &provider.VMInfo{ID: "dry-run-vm", PublicIP: "203.0.113.1", PrivateIP: "10.0.0.1", Status: "active"}
		} else {
			created, err := o.Compute.CreateVM(ctx, provider.CreateVMRequest{
				Name: fmt.Sprintf("%s-%s", in.Name, nodeID), Region: in.Region, Size: in.Size,
				Image: o.VMImage, VPCID: vpcID, SSHKeys: o.SSHKeyIDs,
			})
			if err != nil {
				return fmt.Errorf("creating vm: %w", err)
			}
			vm, err = o.Compute.WaitVMActive(ctx, created.ID, o.Timeouts.VMActive)
			if err != nil {
				return fmt.Errorf("waiting for vm to become active: %w", err)
			}
		}

		reservedIP, reservedIPID := "", ""
		if o.dryRun("find-or-create and bind a reserved ip in %s to vm %s", in.Region, vm.ID) {
			reservedIP, reservedIPID = "203.0.113.10", "dry-run-reserved-ip"
		} else {
			reservedIP, reservedIPID, err = o.ReservedIP.EnsureForCluster(ctx, "", in.Region)
			if err != nil {
				return fmt.Errorf("ensuring reserved ip: %w", err)
			}
			if err := o.ReservedIP.Reassign(ctx, reservedIPID, vm.ID); err != nil {
				return fmt.Errorf("binding reserved ip to first vm: %w", err)
			}
		}

		node := prepare.NodeDescriptor{
			TwoWordID: nodeID, PublicIP: vm.PublicIP, PrivateIP: vm.PrivateIP,
			Role: types.NodeRoleActive, Priority: 200,
		}
		if o.dryRun("prepare node %s as a single-node cluster", nodeID) {
			// skip engine invocation entirely under dry-run
		} else {
			clusterDesc := prepare.ClusterDescriptor{Name: in.Name, BaseDomain: in.BaseDomain, Region: in.Region, ReservedIP: reservedIP}
			if err := o.Prepare.PrepareNode(ctx, prepare.Options{
				Cluster: clusterDesc, AllNodes: []prepare.NodeDescriptor{node}, Self: node,
				Routes: nil, SingleNode: true,
			}); err != nil {
				return fmt.Errorf("preparing first node: %w", err)
			}
		}

		now := time.Now()
		cluster = &types.Cluster{
			Name: in.Name, BaseDomain: in.BaseDomain, Region: in.Region, Size: in.Size,
			ReservedIP: reservedIP, ReservedIPID: reservedIPID, VPCID: vpcID, ActiveNodeID: nodeID,
			CreatedAt: now,
		}
		clusterNode := &types.ClusterNode{
			ClusterName: in.Name, TwoWordID: nodeID, DropletID: vm.ID,
			Hostname: fmt.Sprintf("%s-%s", in.Name, nodeID), PublicIP: vm.PublicIP, PrivateIP: vm.PrivateIP,
			Role: types.NodeRoleActive, Priority: 200, Status: types.NodeStatusActive,
			CreatedAt: now,
		}

		if o.dryRun("persist cluster %s and its first node", in.Name) {
			return nil
		}
		o.Store.UpsertCluster(cluster)
		o.Store.UpsertClusterNode(clusterNode)
		return o.Store.Save()
	})
	if err != nil {
		return nil, err
	}
	return cluster, nil
}
