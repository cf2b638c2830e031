package prepare

import (
	"fmt"
	"os"
	"sort"

	"github.com/cuemby/dynia/internal/prepare/compose"
	"github.com/cuemby/dynia/pkg/types"
)

// ResolveBackends computes each route's internal proxy backend (spec
// §4.4 "Per-route reverse-proxy block") and returns them sorted by
// host for deterministic rendering.
func ResolveBackends(routes []*types.Route) ([]RouteBackend, error) {
	out := make([]RouteBackend, 0, len(routes))
	for _, r := range routes {
		backend, err := resolveOne(r)
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", r.Host, err)
		}
		out = append(out, RouteBackend{Route: *r, Backend: backend})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Route.Host < out[j].Route.Host })
	return out, nil
}

func resolveOne(r *types.Route) (string, error) {
	if r.IsPlaceholder {
		return "placeholder:8080", nil
	}
	if r.ComposePath == "" {
		return "", fmt.Errorf("non-placeholder route has no compose path")
	}
	data, err := os.ReadFile(r.ComposePath)
	if err != nil {
		return "", fmt.Errorf("reading compose file %s: %w", r.ComposePath, err)
	}
	doc, err := compose.Parse(data)
	if err != nil {
		return "", err
	}
	svc, err := doc.SelectEntryService()
	if err != nil {
		return "", err
	}
	port, err := svc.EntryPort()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", svc.Name, port), nil
}
