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

// ErrAlreadyRunning is returned when another process of the same binary owns the hardware.
var ErrAlreadyRunning = errors.New("another instance is already running")

// EnsureSingleInstance fails when another process runs the current executable.
func EnsureSingleInstance() error {
	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	processes, err := ps.Processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	if pid, found := findOther(processes, filepath.Base(self), os.Getpid()); found {
		return fmt.Errorf("%w: pid %d", ErrAlreadyRunning, pid)
	}

	return nil
}

// findOther looks for a process other than selfPID running executable.
func findOther(processes []ps.Process, executable string, selfPID int) (int, bool) {
	// Linux truncates the process name to 15 bytes.
	const commLength = 15

	name := strings.TrimSuffix(executable, ".exe")
	if len(name) > commLength {
		name = name[:commLength]
	}

	for _, process := range processes {
		if process.Pid() == selfPID {
			continue
		}

		candidate := strings.TrimSuffix(process.Executable(), ".exe")
		if len(candidate) > commLength {
			candidate = candidate[:commLength]
		}

		if candidate == name {
			return process.Pid(), true
		}
	}

	return 0, false
}
