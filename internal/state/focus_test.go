package state_test

import (
	"testing"

	"github.com/marcward/clack/internal/state"
)

func TestFocusTracker_StartsFocused(t *testing.T) {
	f := state.NewFocusTracker(nil)
	if !f.Focused() {
		t.Error("Focused() = false at start, want true")
	}
	if f.Banner() {
		t.Error("Banner() = true at start, want false")
	}
}

func TestFocusTracker_BannerClearedOnFocus(t *testing.T) {
	f := state.NewFocusTracker(nil)

	f.SetFocused(false)
	f.RaiseBanner()
	if !f.Banner() {
		t.Fatal("Banner() = false after raise, want true")
	}

	f.SetFocused(true)
	if f.Banner() {
		t.Error("Banner() = true after regaining focus, want false")
	}
}

func TestFocusTracker_BannerClearedOnScrollEnd(t *testing.T) {
	f := state.NewFocusTracker(nil)

	f.SetFocused(false)
	f.RaiseBanner()
	f.ClearBanner()

	if f.Banner() {
		t.Error("Banner() = true after ClearBanner, want false")
	}
	if f.Focused() {
		t.Error("ClearBanner must not change focus state")
	}
}

func TestFocusTracker_OnChange(t *testing.T) {
	changes := 0
	f := state.NewFocusTracker(func() { changes++ })

	f.SetFocused(false)
	f.RaiseBanner()
	f.SetFocused(true)

	if changes != 3 {
		t.Errorf("onChange fired %d times, want 3", changes)
	}
}
