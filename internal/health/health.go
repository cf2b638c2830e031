// Package health implements the two-sided readiness check (spec §4.7
// "C9"): an internal check run over the remote executor, and a public
// check run against the node's FQDN from the control plane's own
// network. The Checker interface mirrors the teacher's pkg/health
// shape (Check(ctx) Result, Type() CheckType) so individual probes
// compose the same way the teacher's HTTP/TCP/exec checkers do.
package health

import (
	"context"
	"time"
)

// CheckType names a category of health probe.
type CheckType string

const (
	CheckTypeInternal CheckType = "internal"
	CheckTypePublic   CheckType = "public"
)

// Result is the outcome of one probe.
type Result struct {
	Healthy   bool
	Message   string
	CheckedAt time.Time
	Duration  time.Duration
}

// Checker runs one health probe.
type Checker interface {
	Check(ctx context.Context) Result
	Type() CheckType
}

// merge folds a collection of probe results into one, healthy only if
// every probe was healthy; the message reports the first failure.
func merge(results []Result) Result {
	out := Result{Healthy: true, CheckedAt: time.Now()}
	for _, r := range results {
		out.Duration += r.Duration
		if !r.Healthy && out.Healthy {
			out.Healthy = false
			out.Message = r.Message
		}
	}
	if out.Healthy {
		out.Message = "all checks passed"
	}
	return out
}
