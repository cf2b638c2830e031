package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/pkg/types"
)

// Store is the single versioned control-plane document, persisted as
// state.json under a configurable state directory (spec §4.1, §6.3).
// One Store per invocation; the advisory file lock held for its
// lifetime enforces the single-writer policy of spec §5.
type Store struct {
	path string
	mu   sync.Mutex
	lock *os.File
	doc  *Document
}

// Open loads (or initializes) the state document at
// stateDir/state.json, taking the advisory lock for the lifetime of the
// returned Store. Call Close when the invocation is done.
func Open(stateDir string) (*Store, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, &dynerr.IOFailure{Op: "mkdir", Path: stateDir, Cause: err}
	}

	path := filepath.Join(stateDir, "state.json")

	lockFile, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, &dynerr.IOFailure{Op: "open-lock", Path: path, Cause: err}
	}
	if err := flock(lockFile); err != nil {
		lockFile.Close()
		return nil, &dynerr.IOFailure{Op: "flock", Path: path, Cause: err}
	}

	doc, err := load(path)
	if err != nil {
		funlock(lockFile)
		lockFile.Close()
		return nil, err
	}

	return &Store{path: path, lock: lockFile, doc: doc}, nil
}

// Close releases the advisory lock. It does not save — callers must call
// Save explicitly after their mutations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	funlock(s.lock)
	return s.lock.Close()
}

func load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return newEmptyDocument(), nil
	}
	if err != nil {
		return nil, &dynerr.IOFailure{Op: "read", Path: path, Cause: err}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &dynerr.SchemaError{Message: fmt.Sprintf("invalid state document: %v", err)}
	}
	if err := validate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Save validates and atomically persists the current document: it is
// serialized to a sibling temp file, fsynced, then renamed into place
// (spec §4.1). A document that would leak a secret or violate an
// invariant is rejected and the on-disk file is left untouched.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validate(s.doc); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return &dynerr.IOFailure{Op: "marshal", Path: s.path, Cause: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.json.tmp")
	if err != nil {
		return &dynerr.IOFailure{Op: "create-temp", Path: s.path, Cause: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &dynerr.IOFailure{Op: "write", Path: tmpPath, Cause: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &dynerr.IOFailure{Op: "fsync", Path: tmpPath, Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &dynerr.IOFailure{Op: "close", Path: tmpPath, Cause: err}
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return &dynerr.IOFailure{Op: "rename", Path: s.path, Cause: err}
	}
	return nil
}

// --- Clusters ---

func (s *Store) GetCluster(name string) (*types.Cluster, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.doc.Clusters {
		if c.Name == name {
			cp := *c
			return &cp, true
		}
	}
	return nil, false
}

func (s *Store) ListClusters() []*types.Cluster {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*types.Cluster, 0, len(s.doc.Clusters))
	for _, c := range s.doc.Clusters {
		cp := *c
		out = append(out, &cp)
	}
	return out
}

// UpsertCluster replaces the cluster by primary key (Name).
func (s *Store) UpsertCluster(c *types.Cluster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	for i, existing := range s.doc.Clusters {
		if existing.Name == c.Name {
			s.doc.Clusters[i] = &cp
			return
		}
	}
	s.doc.Clusters = append(s.doc.Clusters, &cp)
}

// RemoveCluster deletes a cluster and cascades to its nodes and routes
// (spec §3 invariant 4). Returns whether anything was removed.
func (s *Store) RemoveCluster(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := false
	clusters := s.doc.Clusters[:0]
	for _, c := range s.doc.Clusters {
		if c.Name == name {
			removed = true
			continue
		}
		clusters = append(clusters, c)
	}
	s.doc.Clusters = clusters

	nodes := s.doc.ClusterNodes[:0]
	for _, n := range s.doc.ClusterNodes {
		if n.ClusterName != name {
			nodes = append(nodes, n)
		}
	}
	s.doc.ClusterNodes = nodes

	routes := s.doc.Routes[:0]
	for _, r := range s.doc.Routes {
		if r.ClusterName != name {
			routes = append(routes, r)
		}
	}
	s.doc.Routes = routes

	return removed
}

// --- ClusterNodes ---

func (s *Store) GetClusterNode(clusterName, twoWordID string) (*types.ClusterNode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.doc.ClusterNodes {
		if n.ClusterName == clusterName && n.TwoWordID == twoWordID {
			cp := *n
			return &cp, true
		}
	}
	return nil, false
}

// GetClusterNodes returns a snapshot of every node in a cluster. The
// caller must not assume freshness across calls that interleave
// mutations elsewhere in the same invocation (spec §4.1).
func (s *Store) GetClusterNodes(clusterName string) []*types.ClusterNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*types.ClusterNode
	for _, n := range s.doc.ClusterNodes {
		if n.ClusterName == clusterName {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out
}

// GetActiveClusterNode returns the cluster's active node, if any.
func (s *Store) GetActiveClusterNode(clusterName string) (*types.ClusterNode, bool) {
	for _, n := range s.GetClusterNodes(clusterName) {
		if n.Role == types.NodeRoleActive {
			return n, true
		}
	}
	return nil, false
}

func (s *Store) UpsertClusterNode(n *types.ClusterNode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *n
	for i, existing := range s.doc.ClusterNodes {
		if existing.ClusterName == n.ClusterName && existing.TwoWordID == n.TwoWordID {
			s.doc.ClusterNodes[i] = &cp
			return
		}
	}
	s.doc.ClusterNodes = append(s.doc.ClusterNodes, &cp)
}

func (s *Store) RemoveClusterNode(clusterName, twoWordID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := false
	nodes := s.doc.ClusterNodes[:0]
	for _, n := range s.doc.ClusterNodes {
		if n.ClusterName == clusterName && n.TwoWordID == twoWordID {
			removed = true
			continue
		}
		nodes = append(nodes, n)
	}
	s.doc.ClusterNodes = nodes
	return removed
}

// --- Routes ---

func (s *Store) GetRoute(clusterName, host string) (*types.Route, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.doc.Routes {
		if r.ClusterName == clusterName && r.Host == host {
			cp := *r
			return &cp, true
		}
	}
	return nil, false
}

func (s *Store) GetClusterRoutes(clusterName string) []*types.Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*types.Route
	for _, r := range s.doc.Routes {
		if r.ClusterName == clusterName {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out
}

func (s *Store) UpsertRoute(r *types.Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	for i, existing := range s.doc.Routes {
		if existing.ClusterName == r.ClusterName && existing.Host == r.Host {
			s.doc.Routes[i] = &cp
			return
		}
	}
	s.doc.Routes = append(s.doc.Routes, &cp)
}

func (s *Store) RemoveRoute(clusterName, host string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := false
	routes := s.doc.Routes[:0]
	for _, r := range s.doc.Routes {
		if r.ClusterName == clusterName && r.Host == host {
			removed = true
			continue
		}
		routes = append(routes, r)
	}
	s.doc.Routes = routes
	return removed
}
