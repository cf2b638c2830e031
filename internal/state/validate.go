package state

import (
	"fmt"
	"regexp"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/pkg/types"
)

var (
	clusterNameRE = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$`)
	twoWordIDRE   = regexp.MustCompile(`^[a-z]+-[a-z]+$`)
)

// validate enforces the six invariants of spec §3 over the whole
// document. It runs on every load and save; a violation is a SchemaError
// (or StateError for the role/priority invariants, which are operation
// preconditions the caller should have prevented) — both are surfaced as
// SchemaError here since validate is the document-wide gate, not a
// single-operation precondition check.
func validate(d *Document) error {
	clusterByName := make(map[string]*types.Cluster, len(d.Clusters))
	for _, c := range d.Clusters {
		if !clusterNameRE.MatchString(c.Name) {
			return &dynerr.SchemaError{Message: fmt.Sprintf("invalid cluster name %q", c.Name)}
		}
		if _, dup := clusterByName[c.Name]; dup {
			return &dynerr.SchemaError{Message: fmt.Sprintf("duplicate cluster name %q", c.Name)}
		}
		if (c.ReservedIP == "") != (c.ReservedIPID == "") {
			return &dynerr.SchemaError{Message: fmt.Sprintf("cluster %q: reservedIp and reservedIpId must both be set or both empty", c.Name)}
		}
		clusterByName[c.Name] = c
	}

	nodesByCluster := make(map[string][]*types.ClusterNode)
	for _, n := range d.ClusterNodes {
		if !twoWordIDRE.MatchString(n.TwoWordID) {
			return &dynerr.SchemaError{Message: fmt.Sprintf("invalid node id %q", n.TwoWordID)}
		}
		if _, ok := clusterByName[n.ClusterName]; !ok {
			return &dynerr.SchemaError{Message: fmt.Sprintf("node %q references unknown cluster %q", n.TwoWordID, n.ClusterName)}
		}
		nodesByCluster[n.ClusterName] = append(nodesByCluster[n.ClusterName], n)
	}

	for clusterName, nodes := range nodesByCluster {
		cluster := clusterByName[clusterName]

		activeCount := 0
		var activeID string
		seenPriority := make(map[int]bool)
		for _, n := range nodes {
			if n.Role == types.NodeRoleActive {
				activeCount++
				activeID = n.TwoWordID
			}
			if seenPriority[n.Priority] {
				return &dynerr.SchemaError{Message: fmt.Sprintf("cluster %q: duplicate priority %d", clusterName, n.Priority)}
			}
			seenPriority[n.Priority] = true
		}
		if activeCount > 1 {
			return &dynerr.SchemaError{Message: fmt.Sprintf("cluster %q: more than one active node", clusterName)}
		}
		if activeCount == 1 && cluster.ActiveNodeID != activeID {
			return &dynerr.SchemaError{Message: fmt.Sprintf("cluster %q: activeNodeId does not match the active node", clusterName)}
		}
		if activeCount == 0 && cluster.ActiveNodeID != "" {
			return &dynerr.SchemaError{Message: fmt.Sprintf("cluster %q: activeNodeId set but no node is active", clusterName)}
		}

		maxPriority := -1
		for _, n := range nodes {
			if n.Priority > maxPriority {
				maxPriority = n.Priority
			}
		}
		for _, n := range nodes {
			if n.Role == types.NodeRoleActive && n.Priority != maxPriority {
				return &dynerr.SchemaError{Message: fmt.Sprintf("cluster %q: active node does not hold the maximum priority", clusterName)}
			}
		}
	}

	for _, r := range d.Routes {
		if _, ok := clusterByName[r.ClusterName]; !ok {
			return &dynerr.SchemaError{Message: fmt.Sprintf("route %q references unknown cluster %q", r.Host, r.ClusterName)}
		}
	}

	return checkNoSecrets(d)
}
