package state

import "sync"

// FocusTracker observes whether the terminal window is foregrounded and
// owns the sticky "new messages" banner. The banner is set by the
// notification path while unfocused and cleared when focus returns or the
// transcript is scrolled to its end.
type FocusTracker struct {
	mu       sync.Mutex
	focused  bool
	banner   bool
	onChange func()
}

// NewFocusTracker starts focused: the program just launched in the
// foreground.
func NewFocusTracker(onChange func()) *FocusTracker {
	return &FocusTracker{focused: true, onChange: onChange}
}

func (f *FocusTracker) SetFocused(focused bool) {
	f.mu.Lock()
	f.focused = focused
	if focused {
		f.banner = false
	}
	f.mu.Unlock()
	f.notify()
}

func (f *FocusTracker) Focused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.focused
}

// RaiseBanner sets the sticky new-messages flag.
func (f *FocusTracker) RaiseBanner() {
	f.mu.Lock()
	f.banner = true
	f.mu.Unlock()
	f.notify()
}

// ClearBanner drops the flag; called when the transcript is scrolled to
// its end.
func (f *FocusTracker) ClearBanner() {
	f.mu.Lock()
	f.banner = false
	f.mu.Unlock()
	f.notify()
}

func (f *FocusTracker) Banner() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.banner
}

func (f *FocusTracker) notify() {
	if f.onChange != nil {
		f.onChange()
	}
}
