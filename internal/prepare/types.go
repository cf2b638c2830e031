package prepare

import "github.com/cuemby/dynia/pkg/types"

// NodeDescriptor is the preparation engine's view of one node — a
// flattened, render-ready projection of types.ClusterNode (spec §4.4
// input (b)).
type NodeDescriptor struct {
	TwoWordID string
	PublicIP  string
	PrivateIP string
	Role      types.NodeRole
	Priority  int
}

// Address returns the node's private IP, falling back to its public
// IP when no private network is attached (spec §4.4 "Rendering
// rules").
func (n NodeDescriptor) Address() string {
	if n.PrivateIP != "" {
		return n.PrivateIP
	}
	return n.PublicIP
}

// ClusterDescriptor is the preparation engine's view of the cluster
// (spec §4.4 input (a)).
type ClusterDescriptor struct {
	Name       string
	BaseDomain string
	Region     string
	ReservedIP string
}

// RouteBackend is a route plus its resolved internal proxy backend,
// derived once per render pass from the route's compose file (or the
// fixed placeholder backend) so the engine never has to re-parse
// compose documents while rendering individual artifacts.
type RouteBackend struct {
	Route   types.Route
	Backend string // "placeholder:8080" or "${service}:${port}"
}
