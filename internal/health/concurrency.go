package health

import (
	"context"
	"sync"

	"github.com/cuemby/dynia/internal/executor"
)

// MaxConcurrentCommands bounds how many remote shell invocations a
// single inspection query may have in flight against one node at once
// (spec §5 "up to 7 concurrent remote shell invocations per node").
const MaxConcurrentCommands = 7

// RunCommands executes cmds against host concurrently, bounded by
// MaxConcurrentCommands, and returns results in the same order as
// cmds.
func RunCommands(ctx context.Context, exec executor.Executor, host string, cmds []string) ([]executor.Result, []error) {
	results := make([]executor.Result, len(cmds))
	errs := make([]error, len(cmds))

	sem := make(chan struct{}, MaxConcurrentCommands)
	var wg sync.WaitGroup

	for i, cmd := range cmds {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, cmd string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i], errs[i] = exec.Exec(ctx, host, cmd)
		}(i, cmd)
	}
	wg.Wait()

	return results, errs
}
