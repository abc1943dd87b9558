package exec

import (
	"strings"
	"sync"
)

// MockCommandExecutor records commands instead of running them.
type MockCommandExecutor struct {
	mu sync.Mutex

	// Commands records every command that was started
	Commands []string

	// LookPathFunc allows custom behavior for LookPath in tests
	LookPathFunc func(file string) (string, error)

	// StartFunc allows custom behavior for Start in tests
	StartFunc func(name string, arg ...string) error
}

// LookPath implements the CommandExecutor interface for testing.
func (m *MockCommandExecutor) LookPath(file string) (string, error) {
	if m.LookPathFunc != nil {
		return m.LookPathFunc(file)
	}
	// By default, assume commands exist
	return "/path/to/" + file, nil
}

// Start implements the CommandExecutor interface for testing.
func (m *MockCommandExecutor) Start(name string, arg ...string) error {
	cmdStr := name
	if len(arg) > 0 {
		cmdStr = name + " " + strings.Join(arg, " ")
	}
	m.mu.Lock()
	m.Commands = append(m.Commands, cmdStr)
	m.mu.Unlock()

	if m.StartFunc != nil {
		return m.StartFunc(name, arg...)
	}
	return nil
}

// Started returns a copy of the recorded commands.
func (m *MockCommandExecutor) Started() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Commands...)
}
