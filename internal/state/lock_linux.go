//go:build linux

package state

import (
	"os"

	"golang.org/x/sys/unix"
)

// flock takes an advisory, exclusive lock on f for the lifetime of one
// invocation (spec §5: "implementations may use an advisory file lock on
// the state file"). Released automatically when f is closed.
func flock(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX)
}

func funlock(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
