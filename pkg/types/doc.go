// Package types defines the persistent data model shared by every
// component of the Dynia control plane: clusters, their nodes, and the
// routes deployed onto them. Nothing in this package talks to disk, a
// provider, or a remote host — see internal/state for persistence.
package types
