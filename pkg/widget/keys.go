package widget

import "github.com/mattsolo1/grove-widget/pkg/chat"

// KeyEnter is the key name of the return key.
const KeyEnter = "enter"

// Key is a key press in the compose field.
type Key struct {
	Name  string
	Shift bool
	Alt   bool
	Ctrl  bool
}

// KeyResult tells the surface what to do with a key press.
type KeyResult struct {
	// Suppressed means the surface must not apply the key's default effect.
	Suppressed bool
	// Attempt is set when the key began a send; dispatch it off the UI loop.
	Attempt *chat.Attempt
	// Err is why a suppressed Enter did not begin a send.
	Err error
}

// ComposeKey handles a key press in the compose field. A bare Enter
// submits draft; everything else, Shift+Enter included, passes through.
func (w *Widget) ComposeKey(k Key, draft string) KeyResult {
	if k.Name != KeyEnter || k.Shift || k.Alt || k.Ctrl {
		return KeyResult{}
	}
	attempt, err := w.chat.Begin(draft)
	return KeyResult{Suppressed: true, Attempt: attempt, Err: err}
}
