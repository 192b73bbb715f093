// Package history fetches and presents past dictation evaluations. Records
// are held in memory for the duration of a page view; detail panels toggle
// from the already-fetched data without further requests.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mirecekd/diktatOR/pkg/client"
	"github.com/mirecekd/diktatOR/pkg/observe"
)

var ErrLoad = errors.New("history: loading evaluations failed")

// Viewer owns the transient list of past evaluations and the per-record
// expansion state.
type Viewer struct {
	mu sync.Mutex

	client  *client.Client
	metrics *observe.Metrics

	loaded  bool
	failed  bool
	records []client.HistoryRecord

	expanded map[int]bool
}

// NewViewer creates an empty viewer. metrics may be nil.
func NewViewer(c *client.Client, metrics *observe.Metrics) *Viewer {
	return &Viewer{
		client:   c,
		metrics:  metrics,
		expanded: map[int]bool{},
	}
}

// Load replaces the record list with a fresh fetch and collapses all detail
// panels. On failure the list is left empty and the error is surfaced as
// inline status text.
func (v *Viewer) Load(ctx context.Context) error {
	records, err := v.client.Evaluations.List(ctx)
	v.metrics.RecordOperation(ctx, "history", err)

	v.mu.Lock()
	defer v.mu.Unlock()

	v.loaded = true
	v.expanded = map[int]bool{}

	if err != nil {
		slog.Error("loading evaluations failed", "err", err)
		v.failed = true
		v.records = nil
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}

	v.failed = false
	v.records = records
	return nil
}

// Toggle flips the detail panel of one record. Toggling twice returns the
// panel to hidden. Out-of-range indices are ignored.
func (v *Viewer) Toggle(index int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if index < 0 || index >= len(v.records) {
		return
	}

	v.expanded[index] = !v.expanded[index]
}

// Entry is one record with its display position and expansion state.
type Entry struct {
	Index    int
	Record   client.HistoryRecord
	Expanded bool
}

// Snapshot is the viewer state for rendering.
type Snapshot struct {
	Entries []Entry

	// Empty holds once a load returned no records.
	Empty bool

	// Error is the inline status text of a failed load.
	Error string
}

// Snapshot returns the current state for rendering.
func (v *Viewer) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := Snapshot{
		Empty: v.loaded && !v.failed && len(v.records) == 0,
	}

	if v.failed {
		s.Error = "Chyba při načítání předešlých diktátů"
	}

	for i, record := range v.records {
		s.Entries = append(s.Entries, Entry{
			Index:    i,
			Record:   record,
			Expanded: v.expanded[i],
		})
	}

	return s
}
