package health

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cuemby/dynia/internal/execfake"
	"github.com/cuemby/dynia/internal/executor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthyHandler(proxyPort int) func(host, cmd string) (executor.Result, error) {
	return func(host, cmd string) (executor.Result, error) {
		switch {
		case strings.Contains(cmd, "systemctl is-active caddy"):
			return executor.Result{Stdout: "active\n", ExitCode: 0}, nil
		case strings.Contains(cmd, fmt.Sprintf("127.0.0.1:%d", proxyPort)):
			return executor.Result{Stdout: "200", ExitCode: 0}, nil
		case strings.Contains(cmd, "2019/config"):
			return executor.Result{Stdout: "200", ExitCode: 0}, nil
		case strings.Contains(cmd, "nerdctl ps"):
			return executor.Result{Stdout: "Up 2 minutes", ExitCode: 0}, nil
		default:
			return executor.Result{}, nil
		}
	}
}

// CheckInternal's retry policy uses multi-second backoff by design
// (spec §4.7), so these tests exercise the underlying probe directly
// rather than going through CheckInternal's retry loop.

func TestInternalCheckerPassesWhenAllFourProbesHealthy(t *testing.T) {
	exec := execfake.New()
	exec.ExecHandler = healthyHandler(8443)

	checker := internalChecker{in: NodeCheckInput{Exec: exec, Host: "203.0.113.1", ProxyPort: 8443}}
	result := checker.Check(context.Background())
	assert.True(t, result.Healthy)
	assert.Equal(t, CheckTypeInternal, checker.Type())
}

func TestInternalCheckerFailsWhenProxyDaemonInactive(t *testing.T) {
	exec := execfake.New()
	exec.ExecHandler = func(host, cmd string) (executor.Result, error) {
		if strings.Contains(cmd, "systemctl is-active caddy") {
			return executor.Result{Stdout: "inactive\n", ExitCode: 3}, nil
		}
		return healthyHandler(8443)(host, cmd)
	}

	checker := internalChecker{in: NodeCheckInput{Exec: exec, Host: "203.0.113.1", ProxyPort: 8443}}
	result := checker.Check(context.Background())
	assert.False(t, result.Healthy)
	assert.Contains(t, result.Message, "reverse proxy daemon")
}

func TestInternalCheckerFailsWhenEntryContainerNotUp(t *testing.T) {
	exec := execfake.New()
	exec.ExecHandler = func(host, cmd string) (executor.Result, error) {
		if strings.Contains(cmd, "nerdctl ps") {
			return executor.Result{Stdout: "Created", ExitCode: 0}, nil
		}
		return healthyHandler(8443)(host, cmd)
	}

	checker := internalChecker{in: NodeCheckInput{Exec: exec, Host: "203.0.113.1", ProxyPort: 8443}}
	result := checker.Check(context.Background())
	assert.False(t, result.Healthy)
	assert.Contains(t, result.Message, "entry container")
}

func TestCheckInternalWaitsOutSettlingPeriodThenPasses(t *testing.T) {
	exec := execfake.New()
	exec.ExecHandler = healthyHandler(8443)

	result := CheckInternal(context.Background(), NodeCheckInput{
		Exec: exec, Host: "203.0.113.1", ProxyPort: 8443, SettlingWait: time.Millisecond,
	})
	assert.True(t, result.Healthy)
}

func TestCheckInternalCancelledDuringSettlingWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := execfake.New()
	result := CheckInternal(ctx, NodeCheckInput{
		Exec: exec, Host: "203.0.113.1", ProxyPort: 8443, SettlingWait: time.Second,
	})
	assert.False(t, result.Healthy)
	assert.Contains(t, result.Message, "cancelled")
}

func TestRunCommandsBoundsConcurrencyAndPreservesOrder(t *testing.T) {
	exec := execfake.New()
	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0
	exec.ExecHandler = func(host, cmd string) (executor.Result, error) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		time.Sleep(2 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return executor.Result{Stdout: cmd}, nil
	}

	cmds := make([]string, 20)
	for i := range cmds {
		cmds[i] = fmt.Sprintf("cmd-%d", i)
	}

	results, errs := RunCommands(context.Background(), exec, "203.0.113.1", cmds)
	require.Len(t, results, 20)
	for i, r := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, cmds[i], r.Stdout)
	}
	assert.LessOrEqual(t, maxInFlight, MaxConcurrentCommands)
}
