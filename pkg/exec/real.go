package exec

import (
	"fmt"
	"os/exec"
)

// StartError wraps a failure to launch a helper program.
type StartError struct {
	Name string
	Err  error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("start %s: %v", e.Name, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// RealCommandExecutor implements CommandExecutor with os/exec.
type RealCommandExecutor struct{}

// LookPath searches for an executable named file in the directories
// named by the PATH environment variable.
func (e *RealCommandExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Start runs the command in the background and reaps it when it exits.
func (e *RealCommandExecutor) Start(name string, arg ...string) error {
	cmd := exec.Command(name, arg...)
	if err := cmd.Start(); err != nil {
		return &StartError{Name: name, Err: err}
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
