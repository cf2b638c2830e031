package orchestrator

import (
	"context"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/internal/health"
)

// InspectResult is one remote command's outcome from InspectConfig.
type InspectResult struct {
	Label  string
	Output string
	Err    error
}

var inspectCommands = []struct {
	label string
	cmd   string
}{
	{"caddyfile", "cat /etc/caddy/Caddyfile"},
	{"haproxy.cfg", "cat /etc/haproxy/haproxy.cfg"},
	{"keepalived.conf", "cat /etc/keepalived/keepalived.conf"},
	{"caddy.service", "systemctl is-active caddy"},
	{"haproxy.service", "systemctl is-active haproxy"},
	{"keepalived.service", "systemctl is-active keepalived"},
	{"workload", "nerdctl ps --filter name=edge"},
}

// InspectConfig runs a fixed set of read-only inspection commands
// against one node concurrently (spec §5's "multi-command inspection
// queries on a single node", bounded the same way health.RunCommands
// bounds concurrent internal health checks).
func (o *Orchestrator) InspectConfig(ctx context.Context, clusterName, nodeID string) ([]InspectResult, error) {
	node, ok := o.Store.GetClusterNode(clusterName, nodeID)
	if !ok {
		return nil, &dynerr.NotFoundError{Kind: "cluster_node", Key: nodeID}
	}

	cmds := make([]string, len(inspectCommands))
	for i, c := range inspectCommands {
		cmds[i] = c.cmd
	}
	results, errs := health.RunCommands(ctx, o.Exec, node.PublicIP, cmds)

	out := make([]InspectResult, len(inspectCommands))
	for i, c := range inspectCommands {
		out[i] = InspectResult{Label: c.label, Err: errs[i]}
		if errs[i] == nil {
			out[i].Output = results[i].Stdout
		}
	}
	return out, nil
}
