package orchestrator

import (
	"fmt"
	"os"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/internal/prepare"
)

func readComposeFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &dynerr.IOFailure{Op: "read", Path: path, Cause: err}
	}
	return data, nil
}

// resolveRoutes loads a cluster's routes from state and resolves each
// to its internal proxy backend, ready to pass into the preparation
// engine.
func (o *Orchestrator) resolveRoutes(clusterName string) ([]prepare.RouteBackend, error) {
	routes := o.Store.GetClusterRoutes(clusterName)
	resolved, err := prepare.ResolveBackends(routes)
	if err != nil {
		return nil, fmt.Errorf("resolving route backends: %w", err)
	}
	return resolved, nil
}
