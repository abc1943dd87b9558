package exec

import (
	"errors"
	"fmt"
	"net/url"
	"runtime"
)

// ErrNoOpener is returned when no browser opener is installed.
var ErrNoOpener = errors.New("no browser opener found")

// ErrUnsafeURL is returned for URLs that are not absolute http(s) links.
var ErrUnsafeURL = errors.New("refusing to open non-http url")

// Browser opens URLs in a new browsing context via the platform opener.
type Browser struct {
	Exec CommandExecutor
	GOOS string
}

// NewBrowser returns a Browser for the running platform.
func NewBrowser(executor CommandExecutor) *Browser {
	if executor == nil {
		executor = &RealCommandExecutor{}
	}
	return &Browser{Exec: executor, GOOS: runtime.GOOS}
}

// OpenURL launches the opener for rawURL without waiting for it.
func (b *Browser) OpenURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrUnsafeURL, rawURL)
	}

	name, args := b.opener()
	if _, err := b.Exec.LookPath(name); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNoOpener, name, err)
	}
	return b.Exec.Start(name, append(args, u.String())...)
}

func (b *Browser) opener() (string, []string) {
	switch b.GOOS {
	case "darwin":
		return "open", nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		return "xdg-open", nil
	}
}
