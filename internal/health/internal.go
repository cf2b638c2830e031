package health

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/internal/executor"
	"github.com/cuemby/dynia/internal/retry"
)

// NodeCheckInput describes the internal readiness check's target
// (spec §4.7 "Internal").
type NodeCheckInput struct {
	Exec      executor.Executor
	Host      string
	ProxyPort int

	// SettlingWait overrides the default 45s post-start wait when
	// positive; zero means the default 45s.
	SettlingWait time.Duration
}

// internalChecker runs the four internal readiness probes concurrently
// and reports Type() == CheckTypeInternal.
type internalChecker struct {
	in NodeCheckInput
}

func (c internalChecker) Type() CheckType { return CheckTypeInternal }

func (c internalChecker) Check(ctx context.Context) Result {
	start := time.Now()

	cmds := []string{
		"systemctl is-active caddy",
		fmt.Sprintf("curl -s -o /dev/null -w '%%{http_code}' http://127.0.0.1:%d/", c.in.ProxyPort),
		"curl -s -o /dev/null -w '%{http_code}' http://127.0.0.1:2019/config/",
		"nerdctl ps --filter name=edge --format '{{.Status}}'",
	}
	results, errs := RunCommands(ctx, c.in.Exec, c.in.Host, cmds)

	if errs[0] != nil || strings.TrimSpace(results[0].Stdout) != "active" {
		return fail(start, "reverse proxy daemon is not active")
	}
	if errs[1] != nil || !is2xx(results[1].Stdout) {
		return fail(start, "reverse proxy did not return 2xx on loopback")
	}
	if errs[2] != nil || !is2xx(results[2].Stdout) {
		return fail(start, "admin API did not respond on loopback")
	}
	if errs[3] != nil || !strings.Contains(strings.ToLower(results[3].Stdout), "up") {
		return fail(start, "entry container is not running")
	}

	return Result{Healthy: true, Message: "internal checks passed", CheckedAt: start, Duration: time.Since(start)}
}

func is2xx(statusCode string) bool {
	code, err := strconv.Atoi(strings.TrimSpace(statusCode))
	return err == nil && code >= 200 && code < 300
}

func fail(start time.Time, msg string) Result {
	return Result{Healthy: false, Message: msg, CheckedAt: start, Duration: time.Since(start)}
}

// CheckInternal waits out the settling period, then polls the four
// internal probes up to 8 times with 10-30s backoff until all pass
// (spec §4.7).
func CheckInternal(ctx context.Context, in NodeCheckInput) Result {
	settling := in.SettlingWait
	if settling == 0 {
		settling = 45 * time.Second
	}
	select {
	case <-time.After(settling):
	case <-ctx.Done():
		return fail(time.Now(), "cancelled during settling wait")
	}

	checker := internalChecker{in: in}
	var last Result
	err := retry.Do(ctx, retry.Policy{
		MaxAttempts: 8,
		BaseDelay:   10 * time.Second,
		MaxDelay:    30 * time.Second,
		Description: "internal readiness check for " + in.Host,
	}, func(ctx context.Context) error {
		last = checker.Check(ctx)
		if !last.Healthy {
			return dynerr.NewProviderError(dynerr.ProviderErrorServer, "internal check not yet healthy: "+last.Message, true, nil)
		}
		return nil
	})
	if err != nil && last.Message == "" {
		last = fail(time.Now(), err.Error())
	}
	return last
}
