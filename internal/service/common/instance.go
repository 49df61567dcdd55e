//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-ps"
)

// commLength is the Linux limit on process names reported by /proc/<pid>/stat.
const commLength = 15

// ErrAlreadyRunning is returned when another process of the same executable is alive.
var ErrAlreadyRunning = errors.New("another controller instance is already running")

// processLister returns the live processes. Tests replace it.
type processLister func() ([]ps.Process, error)

// EnsureSingleInstance fails when another process with this executable name
// exists, so two controllers never drive the same relay.
func EnsureSingleInstance() error {
	return ensureSingleInstance(ps.Processes, os.Getpid(), executableName())
}

func ensureSingleInstance(list processLister, selfPID int, name string) error {
	processes, err := list()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	for _, process := range processes {
		if process.Pid() == selfPID {
			continue
		}

		if sameExecutable(process.Executable(), name) {
			return fmt.Errorf("%w: pid %d", ErrAlreadyRunning, process.Pid())
		}
	}

	return nil
}

// sameExecutable compares names, tolerating the kernel's truncation of long ones.
func sameExecutable(processName, name string) bool {
	if processName == name {
		return true
	}

	return len(processName) == commLength && len(name) > commLength && strings.HasPrefix(name, processName)
}

func executableName() string {
	path, err := os.Executable()
	if err != nil {
		path = os.Args[0]
	}

	return filepath.Base(path)
}
