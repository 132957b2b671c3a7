package tui

// spinnerLabels are cycled with each 's' key press.
var spinnerLabels = []string{
	"Loading...",
	"Patience, young padawan...",
	"Don't blink",
	"Tinkering...",
	"Coffee time",
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner is the bottom bar activity indicator.
type spinner struct {
	enabled    bool
	labelIndex int
	frame      int
}

func newSpinner(labelIndex int) *spinner {
	if labelIndex < 0 || labelIndex >= len(spinnerLabels) {
		labelIndex = 0
	}
	return &spinner{labelIndex: labelIndex}
}

// toggle flips visibility and advances to the next label.
func (s *spinner) toggle() {
	s.enabled = !s.enabled
	s.labelIndex = (s.labelIndex + 1) % len(spinnerLabels)
}

// advance moves to the next animation frame.
func (s *spinner) advance() {
	s.frame = (s.frame + 1) % len(spinnerFrames)
}

func (s *spinner) label() string {
	return spinnerLabels[s.labelIndex]
}

func (s *spinner) current() string {
	return spinnerFrames[s.frame]
}
