// Package prepare implements the Node Preparation Engine (spec §4.4
// "C7"): render the proxy, load-balancer, VRRP, and runtime-install
// artifacts from cluster state and converge them onto a node over an
// executor.Executor, hashing each artifact's content so unchanged
// renders never trigger a daemon restart.
package prepare

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/internal/executor"
	"github.com/cuemby/dynia/internal/health"
)

const (
	pathInstallScript = "/opt/dynia/install-runtime.sh"
	pathCaddyfile     = "/etc/caddy/Caddyfile"
	pathHAProxy       = "/etc/haproxy/haproxy.cfg"
	pathKeepalived    = "/etc/keepalived/keepalived.conf"

	// ProxyPort is the port Caddy listens on internally for proxied
	// traffic and the port HAProxy's backend pool targets.
	ProxyPort = 8443
)

// Engine renders and converges the node stack.
type Engine struct {
	exec executor.Executor
	log  zerolog.Logger
}

func New(exec executor.Executor, log zerolog.Logger) *Engine {
	return &Engine{exec: exec, log: log}
}

// Options bounds a single prepareNode call.
type Options struct {
	Cluster    ClusterDescriptor
	AllNodes   []NodeDescriptor // the full cluster, for LB/VRRP rendering
	Self       NodeDescriptor   // which of AllNodes this call is converging
	Routes     []RouteBackend
	SingleNode bool
}

// artifact pairs a rendered file with where it belongs on the node and
// the daemon that must be reloaded when it changes.
type artifact struct {
	path    string
	content []byte
	reload  string // "" means no reload needed (e.g. the install script)
}

// PrepareNode runs the five-step convergence algorithm from spec
// §4.4 against a single node and returns once the node passes the
// internal readiness check (health.CheckInternal); the public-side
// check is not run.
func (e *Engine) PrepareNode(ctx context.Context, opts Options) error {
	log := e.log.With().Str("node", opts.Self.TwoWordID).Logger()

	if err := e.exec.WaitForReady(ctx, opts.Self.PublicIP, 60*time.Second); err != nil {
		return fmt.Errorf("node %s: %w", opts.Self.TwoWordID, &dynerr.TransportError{
			Host: opts.Self.PublicIP, Message: "node did not become reachable: " + err.Error(),
		})
	}

	installScript, err := renderInstallScript()
	if err != nil {
		return err
	}
	if _, err := e.converge(ctx, opts.Self.PublicIP, artifact{path: pathInstallScript, content: installScript}, log); err != nil {
		return err
	}
	if _, err := e.exec.Exec(ctx, opts.Self.PublicIP, "chmod +x "+pathInstallScript+" && "+pathInstallScript); err != nil {
		return &dynerr.ConvergenceError{Artifact: "install-runtime.sh", Message: err.Error()}
	}

	caddyfile, err := renderCaddyfile(opts.Routes)
	if err != nil {
		return err
	}
	haproxyCfg, err := renderHAProxy(opts.AllNodes, ProxyPort)
	if err != nil {
		return err
	}
	keepalivedCfg, err := renderKeepalived(opts.Cluster, opts.Self, opts.SingleNode)
	if err != nil {
		return err
	}

	artifacts := []artifact{
		{path: pathCaddyfile, content: caddyfile, reload: "caddy"},
		{path: pathHAProxy, content: haproxyCfg, reload: "haproxy"},
		{path: pathKeepalived, content: keepalivedCfg, reload: "keepalived"},
	}

	toReload := map[string]bool{}
	for _, a := range artifacts {
		changed, err := e.converge(ctx, opts.Self.PublicIP, a, log)
		if err != nil {
			return err
		}
		if changed && a.reload != "" {
			toReload[a.reload] = true
		}
	}

	// Start or reload, in fixed order: runtime -> edge network -> proxy
	// -> load balancer -> VRRP (spec §4.4 step 4). The runtime and edge
	// network are brought up by the install script above; only the
	// three config-driven daemons are conditionally reloaded here.
	for _, daemon := range []string{"caddy", "haproxy", "keepalived"} {
		if err := e.activateDaemon(ctx, opts.Self.PublicIP, daemon, toReload[daemon]); err != nil {
			return err
		}
	}

	result := health.CheckInternal(ctx, health.NodeCheckInput{
		Exec:      e.exec,
		Host:      opts.Self.PublicIP,
		ProxyPort: ProxyPort,
	})
	if !result.Healthy {
		return &dynerr.HealthError{Check: "internal", Message: result.Message}
	}
	return nil
}

// converge writes a rendered artifact only if its content hash
// differs from what's currently on the node (spec §4.4 step 3).
func (e *Engine) converge(ctx context.Context, host string, a artifact, log zerolog.Logger) (changed bool, err error) {
	wantHash := hashOf(a.content)

	existingResult, execErr := e.exec.Exec(ctx, host, "sha256sum "+a.path+" 2>/dev/null | awk '{print $1}'")
	haveHash := ""
	if execErr == nil {
		haveHash = firstLine(existingResult.Stdout)
	}

	if haveHash == wantHash && haveHash != "" {
		log.Debug().Str("artifact", a.path).Msg("artifact unchanged, skipping write")
		return false, nil
	}

	if err := e.exec.UploadContent(ctx, host, a.path, a.content, 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", a.path, err)
	}
	log.Info().Str("artifact", a.path).Msg("artifact converged")
	return true, nil
}

func (e *Engine) activateDaemon(ctx context.Context, host, name string, reload bool) error {
	action := "start"
	if reload {
		action = "reload"
	}
	cmd := fmt.Sprintf("systemctl is-active --quiet %s && systemctl %s %s || systemctl start %s", name, action, name, name)
	result, err := e.exec.Exec(ctx, host, cmd)
	if err != nil {
		return &dynerr.ConvergenceError{Artifact: name, Message: err.Error(), Stderr: result.Stderr}
	}
	if result.ExitCode != 0 {
		return &dynerr.ConvergenceError{Artifact: name, Message: "daemon activation failed", Stderr: result.Stderr}
	}
	return nil
}

func hashOf(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

// ClusterOptions bounds a prepareClusterNodes call (spec §4.4
// "Parallel preparation of a cluster").
type ClusterOptions struct {
	Cluster     ClusterDescriptor
	AllNodes    []NodeDescriptor
	Routes      []RouteBackend
	TargetNodes []NodeDescriptor // subset to actually converge; nil means all
	Parallel    bool
}

// PrepareClusterNodes converges TargetNodes (or every node, if unset)
// while always rendering load-balancer and VRRP config against the
// full AllNodes set.
func (e *Engine) PrepareClusterNodes(ctx context.Context, opts ClusterOptions) error {
	targets := opts.TargetNodes
	if targets == nil {
		targets = opts.AllNodes
	}
	singleNode := len(opts.AllNodes) == 1

	if !opts.Parallel {
		for _, n := range CanonicalOrder(targets) {
			if err := e.PrepareNode(ctx, Options{
				Cluster: opts.Cluster, AllNodes: opts.AllNodes, Self: n,
				Routes: opts.Routes, SingleNode: singleNode,
			}); err != nil {
				return fmt.Errorf("preparing node %s: %w", n.TwoWordID, err)
			}
		}
		return nil
	}

	var wg sync.WaitGroup
	errs := make([]error, len(targets))
	for i, n := range targets {
		wg.Add(1)
		go func(i int, n NodeDescriptor) {
			defer wg.Done()
			if err := e.PrepareNode(ctx, Options{
				Cluster: opts.Cluster, AllNodes: opts.AllNodes, Self: n,
				Routes: opts.Routes, SingleNode: singleNode,
			}); err != nil {
				errs[i] = fmt.Errorf("preparing node %s: %w", n.TwoWordID, err)
			}
		}(i, n)
	}
	wg.Wait()

	return errors.Join(errs...)
}
