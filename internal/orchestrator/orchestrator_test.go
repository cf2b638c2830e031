package orchestrator_test

import (
	"testing"

	"github.com/cuemby/dynia/internal/certservice"
	"github.com/cuemby/dynia/internal/executor"
	"github.com/cuemby/dynia/internal/execfake"
	"github.com/cuemby/dynia/internal/orchestrator"
	"github.com/cuemby/dynia/internal/prepare"
	"github.com/cuemby/dynia/internal/providerfake"
	"github.com/cuemby/dynia/internal/reservedip"
	"github.com/cuemby/dynia/internal/state"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// harness bundles a fresh Orchestrator with its fakes for direct
// assertions (call counts, uploaded file content).
type harness struct {
	Orc     *orchestrator.Orchestrator
	Compute *providerfake.Compute
	DNS     *providerfake.DNS
	Exec    *execfake.Executor
}

// allHealthy scripts every internal-readiness probe command
// health.RunCommands/CheckInternal issues as passing, so callers that
// reach a real (non-dry-run) health check return healthy on the very
// first attempt instead of retrying.
func allHealthy(proxyPort int) func(host, cmd string) (executor.Result, error) {
	return func(host, cmd string) (executor.Result, error) {
		switch cmd {
		case "systemctl is-active caddy":
			return executor.Result{Stdout: "active"}, nil
		case "nerdctl ps --filter name=edge --format '{{.Status}}'":
			return executor.Result{Stdout: "Up 2 minutes"}, nil
		default:
			return executor.Result{Stdout: "200"}, nil
		}
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := state.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	compute := providerfake.NewCompute()
	dns := providerfake.NewDNS()
	exec := execfake.New()
	log := zerolog.Nop()

	return &harness{
		Orc: &orchestrator.Orchestrator{
			Store:      store,
			Compute:    compute,
			DNS:        dns,
			Exec:       exec,
			ReservedIP: reservedip.New(compute, log),
			Certs:      certservice.New(nil),
			Prepare:    prepare.New(exec, log),
			Timeouts:   orchestrator.DefaultTimeouts(),
			Log:        log,
			VMImage:    "ubuntu-22-04-x64",
			SSHKeyIDs:  nil,
		},
		Compute: compute,
		DNS:     dns,
		Exec:    exec,
	}
}
