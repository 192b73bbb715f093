package wizard

import (
	"github.com/mirecekd/diktatOR/pkg/client"
)

// Snapshot is a point-in-time copy of the wizard state for rendering. It
// carries no references into the wizard's own mutable state.
type Snapshot struct {
	Step   Step
	Busy   bool
	Status Status

	Session *Session

	HasCapture     bool
	Rotation       int
	PreviewDataURL string

	CanEvaluate bool

	// AudioURL is the playable audio source, empty until synthesis finished.
	AudioURL string

	Result      *client.Evaluation
	ResultImage string
}

// Snapshot returns the current state for rendering.
func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Snapshot{
		Step:        w.step,
		Busy:        w.busy,
		Status:      w.status,
		CanEvaluate: w.session != nil && w.capture != nil && !w.busy,
		Result:      w.result,
		ResultImage: w.resultImage,
	}

	if w.session != nil {
		session := *w.session
		session.Sentences = append([]string(nil), w.session.Sentences...)
		s.Session = &session

		if session.AudioFilename != "" {
			s.AudioURL = "/audio/" + session.AudioFilename
		}
	}

	if w.capture != nil {
		s.HasCapture = true
		s.Rotation = w.capture.Rotation()

		if url, err := w.capture.DataURL(); err == nil {
			s.PreviewDataURL = url
		}
	}

	return s
}
