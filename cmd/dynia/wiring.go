package main

import (
	"fmt"
	"os"

	"github.com/cuemby/dynia/internal/certservice"
	"github.com/cuemby/dynia/internal/config"
	"github.com/cuemby/dynia/internal/dynialog"
	execssh "github.com/cuemby/dynia/internal/executor/ssh"
	"github.com/cuemby/dynia/internal/orchestrator"
	"github.com/cuemby/dynia/internal/prepare"
	"github.com/cuemby/dynia/internal/provider/digitalocean"
	"github.com/cuemby/dynia/internal/provider/originca"
	"github.com/cuemby/dynia/internal/reservedip"
	"github.com/cuemby/dynia/internal/state"
	"github.com/spf13/cobra"
)

// buildOrchestrator wires every dependency an operation needs from
// environment configuration and the invocation's --dry-run flag,
// mirroring the teacher's approach of assembling its manager.Manager
// once per command from flags and config rather than holding a long-
// lived daemon process.
func buildOrchestrator(cmd *cobra.Command) (*orchestrator.Orchestrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	store, err := state.Open(cfg.StateDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening state store: %w", err)
	}
	closeFn := func() { store.Close() }

	dryRun, _ := cmd.Flags().GetBool("dry-run")

	compute := digitalocean.NewComputeGateway(cfg.DOToken)
	dns := digitalocean.NewDNSGateway(cfg.DNSToken, cfg.DNSZoneID)
	originCA := originca.New(cfg.OriginCAKey)

	privateKey, err := os.ReadFile(cfg.SSHPrivateKeyPath)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("reading ssh private key at %s: %w", cfg.SSHPrivateKeyPath, err)
	}
	exec, err := execssh.New("root", privateKey, 22)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("building ssh executor: %w", err)
	}

	log := dynialog.WithComponent("orchestrator")
	o := &orchestrator.Orchestrator{
		Store:      store,
		Compute:    compute,
		DNS:        dns,
		Exec:       exec,
		ReservedIP: reservedip.New(compute, dynialog.WithComponent("reservedip")),
		Certs:      certservice.New(originCA),
		Prepare:    prepare.New(exec, dynialog.WithComponent("prepare")),
		Timeouts:   orchestrator.DefaultTimeouts(),
		DryRun:     dryRun,
		Log:        log,
		VMImage:    envOr("DYNIA_VM_IMAGE", "ubuntu-24-04-x64"),
		SSHKeyIDs:  []string{cfg.SSHKeyName},
	}
	return o, closeFn, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
