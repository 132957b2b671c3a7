package tui

import "testing"

func TestSpinner_ToggleAdvancesLabel(t *testing.T) {
	s := newSpinner(0)
	if s.enabled {
		t.Fatal("new spinner is enabled")
	}

	s.toggle()
	if !s.enabled {
		t.Error("spinner not enabled after toggle")
	}
	if s.label() != spinnerLabels[1] {
		t.Errorf("label = %q, want %q", s.label(), spinnerLabels[1])
	}

	// Cycling past the last label wraps to the first.
	for range spinnerLabels {
		s.toggle()
	}
	if s.label() != spinnerLabels[1] {
		t.Errorf("label after a full cycle = %q, want %q", s.label(), spinnerLabels[1])
	}
}

func TestSpinner_FramesWrap(t *testing.T) {
	s := newSpinner(0)
	for range spinnerFrames {
		s.advance()
	}
	if s.current() != spinnerFrames[0] {
		t.Errorf("frame after a full cycle = %q, want %q", s.current(), spinnerFrames[0])
	}
}

func TestNewSpinner_ClampsLabelIndex(t *testing.T) {
	if s := newSpinner(99); s.label() != spinnerLabels[0] {
		t.Errorf("label = %q, want %q for an out-of-range index", s.label(), spinnerLabels[0])
	}
}
