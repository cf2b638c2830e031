//go:build !linux

package state

import "os"

// flock is a no-op outside Linux: the advisory lock is a single-host
// convenience, not a correctness requirement (spec §5 only requires
// supporting it where available). Not exercised in CI.
func flock(f *os.File) error { return nil }

func funlock(f *os.File) error { return nil }
