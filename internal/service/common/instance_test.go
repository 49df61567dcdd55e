//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"errors"
	"testing"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"
)

// fakeProcess implements ps.Process.
type fakeProcess struct {
	pid  int
	name string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.name }

// listOf returns a processLister with the given entries.
func listOf(processes ...ps.Process) processLister {
	return func() ([]ps.Process, error) {
		return processes, nil
	}
}

// TestEnsureSingleInstance covers self, unrelated, duplicate and truncated names.
func TestEnsureSingleInstance(t *testing.T) {
	t.Parallel()

	self := fakeProcess{pid: 100, name: "auto-watering"}

	require.NoError(t, ensureSingleInstance(listOf(self, fakeProcess{pid: 7, name: "sshd"}), 100, "auto-watering"))

	err := ensureSingleInstance(listOf(self, fakeProcess{pid: 200, name: "auto-watering"}), 100, "auto-watering")
	require.ErrorIs(t, err, ErrAlreadyRunning)

	long := "auto-watering-bench"
	err = ensureSingleInstance(listOf(fakeProcess{pid: 300, name: long[:commLength]}), 100, long)
	require.ErrorIs(t, err, ErrAlreadyRunning)

	// A short name sharing a prefix is a different program.
	require.NoError(t, ensureSingleInstance(listOf(fakeProcess{pid: 400, name: "auto"}), 100, "auto-watering"))
}

// TestEnsureSingleInstance_ListError surfaces process listing failures.
func TestEnsureSingleInstance_ListError(t *testing.T) {
	t.Parallel()

	errList := errors.New("proc unavailable")

	err := ensureSingleInstance(func() ([]ps.Process, error) { return nil, errList }, 1, "auto-watering")
	require.ErrorIs(t, err, errList)
}

// TestEnsureSingleInstance_CurrentProcess passes for the test binary itself.
func TestEnsureSingleInstance_CurrentProcess(t *testing.T) {
	t.Parallel()

	require.NoError(t, EnsureSingleInstance())
}
