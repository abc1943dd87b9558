package cmd

import (
	"github.com/mattsolo1/grove-widget/pkg/exec"
)

// lineSurface backs the one-shot commands, which have no viewport or
// compose field; only URL opening does anything.
type lineSurface struct {
	browser *exec.Browser
}

func newLineSurface() *lineSurface {
	return &lineSurface{browser: exec.NewBrowser(nil)}
}

func (s *lineSurface) ScrollToLatest() {}
func (s *lineSurface) ClearInput()     {}
func (s *lineSurface) FocusInput()     {}

func (s *lineSurface) OpenURL(url string) error { return s.browser.OpenURL(url) }
