// internal/message/message.go
//
// Transient user notifications.
//
// Context
//   Every screen reports outcomes through short notices: a loading hint
//   while an upstream call is outstanding, then a success or error text.
//   In a server-rendered portal the notice usually outlives the request
//   that raised it (POST, then 303 redirect, then GET), so the Tray is a
//   flash store kept in the session and drained by the next rendered page.
//
//   The form controller only sees the Notifier interface, which keeps it
//   testable with a recording fake.
//
// Style
//   Two-space sentence spacing, Oxford comma, concise inline notes.
//
//------------------------------------------------------------------------------

package message

import "sync"

// Kind classifies a notice for styling.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Loading Kind = "loading"
	Info    Kind = "info"
)

// Notice is one line of user-facing feedback.
type Notice struct {
	Kind Kind
	Text string
}

// Notifier is what the submission controller talks to.
type Notifier interface {
	Loading(text string)
	Dismiss()
	Success(text string)
	Error(text string)
}

// Tray is a goroutine-safe flash list.  The zero value is ready to use.
//
// Loading replaces any previous loading notice and Dismiss removes it, so at
// most one loading notice is pending at any time.
type Tray struct {
	mu      sync.Mutex
	notices []Notice
}

var _ Notifier = (*Tray)(nil)

// Loading shows an in-progress hint.
func (t *Tray) Loading(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dropLoadingLocked()
	t.notices = append(t.notices, Notice{Kind: Loading, Text: text})
}

// Dismiss removes the pending loading hint, if any.
func (t *Tray) Dismiss() {
	t.mu.Lock()
	t.dropLoadingLocked()
	t.mu.Unlock()
}

func (t *Tray) Success(text string) { t.Push(Success, text) }
func (t *Tray) Error(text string)   { t.Push(Error, text) }
func (t *Tray) Info(text string)    { t.Push(Info, text) }

// Push appends a notice.  Empty texts are ignored.
func (t *Tray) Push(k Kind, text string) {
	if text == "" {
		return
	}
	t.mu.Lock()
	t.notices = append(t.notices, Notice{Kind: k, Text: text})
	t.mu.Unlock()
}

// Drain returns all pending notices and empties the tray.
func (t *Tray) Drain() []Notice {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.notices
	t.notices = nil
	return out
}

// Pending returns a copy without draining.
func (t *Tray) Pending() []Notice {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Notice, len(t.notices))
	copy(out, t.notices)
	return out
}

func (t *Tray) dropLoadingLocked() {
	kept := t.notices[:0]
	for _, n := range t.notices {
		if n.Kind != Loading {
			kept = append(kept, n)
		}
	}
	t.notices = kept
}
