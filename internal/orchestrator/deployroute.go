package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/internal/executor"
	"github.com/cuemby/dynia/internal/prepare"
	"github.com/cuemby/dynia/internal/prepare/compose"
	"github.com/cuemby/dynia/pkg/types"
)

// DeployRouteInput parameterizes DeployRoute. Exactly one of
// Placeholder or ComposePath should be set.
type DeployRouteInput struct {
	Placeholder bool
	ComposePath string
	Domain      string // ignored for placeholder routes
	HealthPath  string
	Proxied     bool
}

// DeployRoute deploys a workload and its route (spec §4.6
// "deployRoute"). The reverse-proxy config is always regenerated in
// full from every current route plus this one — never an incremental
// patch — and DNS is upserted only after the proxy already serves the
// new host, so DNS never points at a node before it's ready.
func (o *Orchestrator) DeployRoute(ctx context.Context, clusterName string, in DeployRouteInput) (*types.Route, error) {
	cluster, ok := o.Store.GetCluster(clusterName)
	if !ok {
		return nil, &dynerr.NotFoundError{Kind: "cluster", Key: clusterName}
	}
	activeNode, ok := o.Store.GetActiveClusterNode(clusterName)
	if !ok {
		return nil, &dynerr.StateError{Message: "cluster has no active node"}
	}

	if in.HealthPath == "" {
		in.HealthPath = "/dynia-health"
	}
	if len(in.HealthPath) == 0 || in.HealthPath[0] != '/' || len(in.HealthPath) > 255 {
		return nil, &dynerr.ValidationError{Field: "healthPath", Message: "must start with / and be at most 255 characters"}
	}

	host := in.Domain
	if in.Placeholder {
		host = fmt.Sprintf("dynia-placeholder-%s.%s", clusterName, cluster.BaseDomain)
	}
	if host == "" {
		return nil, &dynerr.ValidationError{Field: "domain", Message: "domain is required for non-placeholder routes"}
	}

	if !in.Placeholder {
		if _, err := validateComposeEntry(in.ComposePath); err != nil {
			return nil, err
		}
	}

	var route *types.Route
	err := timeOperation("deployRoute", func() error {
		if !o.dryRun("deploy workload for route %s on active node %s", host, activeNode.TwoWordID) {
			if err := deployWorkload(ctx, o.Exec, activeNode.PublicIP, in); err != nil {
				return fmt.Errorf("deploying workload: %w", err)
			}
		}

		now := time.Now()
		newRoute := &types.Route{
			ClusterName: clusterName, Host: host, HealthPath: in.HealthPath, Proxied: in.Proxied,
			TLSEnabled: true, IsPlaceholder: in.Placeholder, ComposePath: in.ComposePath,
			CreatedAt: now, UpdatedAt: now,
		}

		allRoutes := append(o.Store.GetClusterRoutes(clusterName), newRoute)
		resolved, err := prepare.ResolveBackends(allRoutes)
		if err != nil {
			return fmt.Errorf("resolving route backends: %w", err)
		}

		allNodes := o.Store.GetClusterNodes(clusterName)
		if !o.dryRun("regenerate reverse-proxy config on %s from all %d routes", activeNode.TwoWordID, len(allRoutes)) {
			clusterDesc := prepare.ClusterDescriptor{Name: cluster.Name, BaseDomain: cluster.BaseDomain, Region: cluster.Region, ReservedIP: cluster.ReservedIP}
			self := toDescriptors([]*types.ClusterNode{activeNode})[0]
			if err := o.Prepare.PrepareNode(ctx, prepare.Options{
				Cluster: clusterDesc, AllNodes: toDescriptors(allNodes), Self: self,
				Routes: resolved, SingleNode: len(allNodes) == 1,
			}); err != nil {
				var healthErr *dynerr.HealthError
				if errors.As(err, &healthErr) {
					o.rollbackToPlaceholder(ctx, clusterDesc, activeNode, allNodes)
				}
				return fmt.Errorf("regenerating reverse-proxy config: %w", err)
			}
		}

		if !o.dryRun("upsert A record %s -> %s (proxied=%v)", host, cluster.ReservedIP, in.Proxied) {
			if _, err := o.DNS.UpsertA(ctx, host, cluster.ReservedIP, 300, in.Proxied); err != nil {
				return fmt.Errorf("upserting dns record: %w", err)
			}
			if err := o.DNS.WaitPropagation(ctx, host, cluster.ReservedIP, o.Timeouts.DNSPropagation); err != nil {
				return fmt.Errorf("waiting for dns propagation: %w", err)
			}
		}

		if o.dryRun("persist route %s", host) {
			route = newRoute
			return nil
		}
		o.Store.UpsertRoute(newRoute)
		if err := o.Store.Save(); err != nil {
			return err
		}
		route = newRoute
		return nil
	})
	if err != nil {
		return nil, err
	}
	return route, nil
}

// rollbackToPlaceholder re-renders the active node's reverse-proxy
// config from the routes already persisted before this deploy attempt
// (spec §7: "deployRoute rolls the active node's reverse-proxy back to
// placeholder" when the readiness check that follows regeneration
// fails). It never returns the new, not-yet-persisted route, so the
// config reverts to whatever was last known healthy. Best-effort: a
// failure here is logged, not propagated, since the caller already has
// the original HealthError to report.
func (o *Orchestrator) rollbackToPlaceholder(ctx context.Context, clusterDesc prepare.ClusterDescriptor, activeNode *types.ClusterNode, allNodes []*types.ClusterNode) {
	previousRoutes, err := o.resolveRoutes(clusterDesc.Name)
	if err != nil {
		o.Log.Warn().Err(err).Str("cluster", clusterDesc.Name).Msg("rollback to placeholder: resolving previous routes failed")
		return
	}
	self := toDescriptors([]*types.ClusterNode{activeNode})[0]
	if err := o.Prepare.PrepareNode(ctx, prepare.Options{
		Cluster: clusterDesc, AllNodes: toDescriptors(allNodes), Self: self,
		Routes: previousRoutes, SingleNode: len(allNodes) == 1,
	}); err != nil {
		o.Log.Warn().Err(err).Str("cluster", clusterDesc.Name).Msg("rollback to placeholder: re-rendering reverse-proxy config failed")
	}
}

func validateComposeEntry(path string) (*compose.Service, error) {
	data, err := readComposeFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := compose.Parse(data)
	if err != nil {
		return nil, err
	}
	svc, err := doc.SelectEntryService()
	if err != nil {
		return nil, err
	}
	if _, err := svc.EntryPort(); err != nil {
		return nil, err
	}
	return svc, nil
}

// deployWorkload uploads the compose file (or a fixed placeholder
// compose document) to the active node and brings it up via the
// container runtime's compose plugin.
func deployWorkload(ctx context.Context, exec executor.Executor, host string, in DeployRouteInput) error {
	const remotePath = "/opt/dynia/workloads/current/compose.yaml"

	var content []byte
	if in.Placeholder {
		content = []byte(placeholderCompose)
	} else {
		data, err := readComposeFile(in.ComposePath)
		if err != nil {
			return err
		}
		content = data
	}

	if err := exec.UploadContent(ctx, host, remotePath, content, 0o644); err != nil {
		return fmt.Errorf("uploading compose file: %w", err)
	}
	if _, err := exec.Exec(ctx, host, "nerdctl compose -f "+remotePath+" up -d"); err != nil {
		return fmt.Errorf("bringing up workload: %w", err)
	}
	return nil
}

const placeholderCompose = `services:
  placeholder:
    image: traefik/whoami:latest
    ports:
      - "8080:80"
`
