package widget_tui

import (
	"sync/atomic"

	"github.com/mattsolo1/grove-widget/pkg/exec"
)

type eventKind int

const (
	eventScroll eventKind = iota
	eventClear
	eventFocus
	eventLead
)

// URLOpener opens booking links. *exec.Browser satisfies it.
type URLOpener interface {
	OpenURL(url string) error
}

// Surface implements widget.Surface for the terminal. Controllers may call
// it from any goroutine, so it only queues events for the model.
type Surface struct {
	events chan eventKind
	opener URLOpener

	// set by ClearInput, consumed by the model; never lost to a full queue
	clearPending atomic.Bool
}

// NewSurface returns a surface opening links with opener, or the
// platform browser when opener is nil.
func NewSurface(opener URLOpener) *Surface {
	if opener == nil {
		opener = exec.NewBrowser(nil)
	}
	return &Surface{events: make(chan eventKind, 128), opener: opener}
}

func (s *Surface) post(k eventKind) {
	select {
	case s.events <- k:
	default:
		// queue full; views are rebuilt from controller state on the next event
	}
}

func (s *Surface) ScrollToLatest() { s.post(eventScroll) }
func (s *Surface) FocusInput()     { s.post(eventFocus) }

// ClearInput marks the composer for clearing and wakes the model.
func (s *Surface) ClearInput() {
	s.clearPending.Store(true)
	s.post(eventClear)
}

// takeClear reports whether a clear was requested since the last call.
func (s *Surface) takeClear() bool { return s.clearPending.Swap(false) }

// LeadChanged is registered as the lead controller's transition observer.
func (s *Surface) LeadChanged() { s.post(eventLead) }

func (s *Surface) OpenURL(url string) error { return s.opener.OpenURL(url) }
