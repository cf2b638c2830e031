// Package orchestrator implements the Cluster Orchestrator (spec §4.6
// "C8"): the explicit, step-sequenced operations a Dynia invocation
// runs — createCluster, addNode, removeNode, activateNode,
// deployRoute, and prepare — each reading state once, calling
// providers/executor/engine in documented order, and writing state at
// most once per affected entity. The phase-sequenced method-per-
// operation shape follows the teacher's pkg/manager.Manager.
package orchestrator

import (
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/dynia/internal/certservice"
	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/internal/executor"
	"github.com/cuemby/dynia/internal/metrics"
	"github.com/cuemby/dynia/internal/prepare"
	"github.com/cuemby/dynia/internal/provider"
	"github.com/cuemby/dynia/internal/reservedip"
	"github.com/cuemby/dynia/internal/state"
)

// Timeouts bundles the fixed per-call timeouts spec §5 documents.
type Timeouts struct {
	VMActive       time.Duration
	DNSPropagation time.Duration
	SSHReady       time.Duration
}

// DefaultTimeouts matches spec §5's defaults.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		VMActive:       5 * time.Minute,
		DNSPropagation: 2 * time.Minute,
		SSHReady:       5 * time.Minute,
	}
}

// Orchestrator wires every dependency an operation needs. One
// Orchestrator is built per invocation in cmd/dynia and shared across
// the single operation that invocation runs.
type Orchestrator struct {
	Store       *state.Store
	Compute     provider.Compute
	DNS         provider.DNS
	Exec        executor.Executor
	ReservedIP  *reservedip.Service
	Certs       *certservice.Service
	Prepare     *prepare.Engine
	Timeouts    Timeouts
	DryRun      bool
	Log         zerolog.Logger
	VMImage     string
	SSHKeyIDs   []string
}

// dryRun logs the structured "[DRY RUN] would ..." line spec §4.6
// requires in place of a side-effectful call, and reports whether the
// caller should skip the real call.
func (o *Orchestrator) dryRun(format string, args ...interface{}) bool {
	if !o.DryRun {
		return false
	}
	o.Log.Info().Msg("[DRY RUN] would " + fmt.Sprintf(format, args...))
	return true
}

// timeOperation wraps op with a metrics timer recording success or
// failure under name (grounded on the teacher's metrics.NewTimer
// idiom).
func timeOperation(name string, op func() error) error {
	timer := metrics.NewTimer()
	err := op()
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	timer.ObserveOperation(name, outcome)
	return err
}

// validateClusterName enforces the same naming rule the state package
// validates on write, surfaced early so operations fail fast with a
// clear message instead of failing deep inside Store.Save.
func validateClusterName(name string) error {
	if name == "" {
		return &dynerr.ValidationError{Field: "name", Message: "cluster name is required"}
	}
	if !regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$`).MatchString(name) {
		return &dynerr.ValidationError{Field: "name", Message: fmt.Sprintf("cluster name %q must be a lowercase DNS label", name)}
	}
	return nil
}
