// Package wizard drives the four-step dictation flow: settings, dictation
// playback, photo upload and results. It owns the only live session and
// capture, sequences the remote generate/synthesize/evaluate calls, and keeps
// the persistent status line shown to the user.
package wizard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mirecekd/diktatOR/pkg/capture"
	"github.com/mirecekd/diktatOR/pkg/client"
	"github.com/mirecekd/diktatOR/pkg/observe"
)

// Step is one of the four wizard panels. Exactly one is active at a time.
type Step int

const (
	StepSettings Step = iota
	StepDictation
	StepUpload
	StepResults
)

func (s Step) String() string {
	switch s {
	case StepSettings:
		return "settings"
	case StepDictation:
		return "dictation"
	case StepUpload:
		return "upload"
	case StepResults:
		return "results"
	}
	return "unknown"
}

// Status severity levels, matching the status line CSS classes.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelError   = "error"
)

// Status is the persistent user-facing status line.
type Status struct {
	Message string
	Level   string
}

var (
	ErrGeneration = errors.New("wizard: sentence generation failed")
	ErrSynthesis  = errors.New("wizard: audio synthesis failed")
	ErrEvaluation = errors.New("wizard: evaluation failed")
)

// Session is the live dictation: the generated sentences and, once synthesis
// finished, the audio file to play.
type Session struct {
	Sentences     []string
	FullText      string
	AudioFilename string
}

// Wizard is the single owned state object of the flow. All action methods
// check their preconditions and no-op when they do not hold. The busy flag
// rejects a second generate or evaluate dispatch while one is pending.
type Wizard struct {
	mu sync.Mutex

	client  *client.Client
	metrics *observe.Metrics

	step Step
	busy bool

	session *Session
	capture *capture.Capture

	status Status

	result      *client.Evaluation
	resultImage string
}

// New creates a wizard in the settings step. metrics may be nil.
func New(c *client.Client, metrics *observe.Metrics) *Wizard {
	return &Wizard{
		client:  c,
		metrics: metrics,
		status:  Status{Message: "Vyberte nastavení a začněte s diktátem", Level: LevelInfo},
	}
}

// Generate runs the two-phase dictation setup: sentence generation, then
// audio synthesis for the returned sentences. Synthesis is never requested
// when generation failed. Either failure leaves the wizard in the dictation
// step with an error status.
func (w *Wizard) Generate(ctx context.Context, grade, numSentences int, pauseDuration float64) error {
	w.mu.Lock()
	if w.step != StepSettings || w.busy {
		w.mu.Unlock()
		return nil
	}
	w.busy = true
	w.step = StepDictation
	w.status = Status{Message: "Generuji věty pro diktát...", Level: LevelInfo}
	w.mu.Unlock()

	err := w.generate(ctx, grade, numSentences, pauseDuration)

	w.mu.Lock()
	w.busy = false
	if err != nil {
		slog.Error("dictation setup failed", "err", err)
		w.status = Status{Message: statusMessage(err), Level: LevelError}
	} else {
		w.status = Status{Message: "Diktát připraven! Stiskněte play a začněte psát.", Level: LevelSuccess}
	}
	w.mu.Unlock()

	return err
}

func (w *Wizard) generate(ctx context.Context, grade, numSentences int, pauseDuration float64) error {
	dictation, err := w.client.Dictations.Generate(ctx, client.GenerateRequest{
		Grade:        grade,
		NumSentences: numSentences,
	})
	w.metrics.RecordOperation(ctx, "generate", err)

	if err != nil {
		return fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	w.setStatus("Generuji audio soubor...", LevelInfo)

	// Always request slow speech for intelligibility.
	synthesis, err := w.client.Dictations.Synthesize(ctx, client.SynthesizeRequest{
		Sentences:     dictation.Sentences,
		PauseDuration: pauseDuration,
		Slow:          true,
	})
	w.metrics.RecordOperation(ctx, "synthesize", err)

	if err != nil {
		return fmt.Errorf("%w: %w", ErrSynthesis, err)
	}

	w.mu.Lock()
	w.session = &Session{
		Sentences:     dictation.Sentences,
		FullText:      dictation.FullText,
		AudioFilename: synthesis.Filename,
	}
	w.mu.Unlock()

	return nil
}

// PlaybackFinished moves from the dictation step to the upload step. It is
// triggered by the audio element's ended event, not by a user click.
func (w *Wizard) PlaybackFinished() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepDictation || w.session == nil || w.busy {
		return
	}

	w.step = StepUpload
	w.status = Status{Message: "Diktát dokončen! Nyní můžete nahrát fotografii.", Level: LevelSuccess}
}

// SelectImage validates and decodes a selected photo into a fresh capture,
// replacing any previous one. Rejected files leave the capture state
// unchanged.
func (w *Wizard) SelectImage(contentType string, size int64, r io.Reader) error {
	w.mu.Lock()
	if w.step != StepUpload || w.busy {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	c, err := capture.New(contentType, size, r)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err != nil {
		slog.Warn("image rejected", "err", err)
		w.status = Status{Message: statusMessage(err), Level: LevelError}
		return err
	}

	w.capture = c
	w.status = Status{Message: "Obrázek nahrán!", Level: LevelSuccess}
	return nil
}

// Rotate turns the captured image by another -90 degrees.
func (w *Wizard) Rotate() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.capture == nil || w.busy {
		return
	}

	w.capture.Rotate()
}

// CanEvaluate reports whether the evaluate action is reachable: both a
// session and a capture must exist.
func (w *Wizard) CanEvaluate() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.session != nil && w.capture != nil && !w.busy
}

// Evaluate exports the rendered capture and submits it with the session texts
// for scoring. On failure the wizard stays on the results step with an error
// status and no result to display.
func (w *Wizard) Evaluate(ctx context.Context) error {
	w.mu.Lock()
	if w.step != StepUpload || w.busy || w.session == nil || w.capture == nil {
		w.mu.Unlock()
		return nil
	}
	w.busy = true
	w.step = StepResults
	w.status = Status{Message: "Vyhodnocuji diktát...", Level: LevelInfo}

	image, err := w.capture.Export()
	preview, _ := w.capture.DataURL()
	session := *w.session
	w.mu.Unlock()

	if err == nil {
		var result *client.Evaluation

		result, err = w.client.Evaluations.New(ctx, client.EvaluationRequest{
			ImageName:     "dictation-" + uuid.NewString() + ".jpg",
			Image:         bytes.NewReader(image),
			OriginalText:  session.FullText,
			Sentences:     session.Sentences,
			AudioFilename: session.AudioFilename,
		})
		w.metrics.RecordOperation(ctx, "evaluate", err)

		if err == nil {
			w.mu.Lock()
			w.busy = false
			w.result = result
			w.resultImage = preview
			w.status = Status{Message: "Vyhodnocení dokončeno!", Level: LevelSuccess}
			w.mu.Unlock()
			return nil
		}
	}

	err = fmt.Errorf("%w: %w", ErrEvaluation, err)
	slog.Error("evaluation failed", "err", err)

	w.mu.Lock()
	w.busy = false
	w.status = Status{Message: statusMessage(err), Level: LevelError}
	w.mu.Unlock()

	return err
}

// Reset discards the session, capture and result atomically and returns to
// the settings step.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepResults || w.busy {
		return
	}

	w.session = nil
	w.capture = nil
	w.result = nil
	w.resultImage = ""
	w.step = StepSettings
	w.status = Status{Message: "Vyberte nastavení a začněte s diktátem", Level: LevelInfo}
}

func (w *Wizard) setStatus(message, level string) {
	w.mu.Lock()
	w.status = Status{Message: message, Level: level}
	w.mu.Unlock()
}

// statusMessage maps a flow error to the Czech status line shown to the user.
func statusMessage(err error) string {
	switch {
	case errors.Is(err, capture.ErrTooLarge):
		return "Soubor je příliš velký (max 10MB)"
	case errors.Is(err, capture.ErrUnsupportedType):
		return "Neplatný formát souboru"
	case errors.Is(err, ErrGeneration):
		return "Chyba při generování vět"
	case errors.Is(err, ErrSynthesis):
		return "Chyba při generování audio"
	case errors.Is(err, ErrEvaluation):
		return "Chyba při vyhodnocení"
	}
	return "Neplatný formát souboru"
}
