package exec

// CommandExecutor starts external helper programs. The widget uses it to
// hand URLs to the desktop's browser opener; tests substitute the mock.
type CommandExecutor interface {
	// LookPath searches PATH for an executable named file.
	LookPath(file string) (string, error)

	// Start launches the command without waiting for it to exit.
	Start(name string, arg ...string) error
}
