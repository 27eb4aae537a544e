// Package app wires the document, filter pipeline, and color sampler
// together behind the event-driven state the presentation layer talks to.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"refstudio/internal/config"
	"refstudio/internal/document"
	"refstudio/internal/filter"
	img "refstudio/internal/image"
	"refstudio/internal/pipeline"
	"refstudio/internal/sample"
	"refstudio/pkg/geometry"
)

// EventType identifies different application events.
type EventType int

const (
	EventLayersChanged EventType = iota
	EventDocumentLoaded
	EventDocumentSaved
	EventFilterApplied
	EventStatus
)

// EventListener is called when an event occurs.
type EventListener func(data any)

// pendingJob tracks the filter name for a submitted pipeline generation so
// the result can be recorded under it.
type pendingJob struct {
	generation uint64
	filter     string
}

// State holds the application state: the open document, the background
// transform pipeline, and the color sampler. Event listeners may be
// registered from any goroutine; the edit verbs belong to the controlling
// thread.
type State struct {
	doc     *document.Document
	pipe    *pipeline.Pipeline
	samples *sample.Cache[sample.Key, sample.Sample]
	log     *slog.Logger

	pending       map[string]pendingJob
	samplerActive bool

	mu        sync.RWMutex
	listeners map[EventType][]EventListener
}

// NewState creates the application state from configuration. A nil config
// selects defaults; a nil logger discards log output.
func NewState(cfg *config.Config, log *slog.Logger) *State {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &State{
		doc: document.New(cfg.History.Capacity, log),
		pipe: pipeline.New(log,
			pipeline.WithCancelWait(cfg.Pipeline.CancelWait),
			pipeline.WithResultBuffer(cfg.Pipeline.ResultBuffer)),
		samples:   sample.NewCache[sample.Key, sample.Sample](cfg.Sampler.CacheCapacity),
		log:       log,
		pending:   make(map[string]pendingJob),
		listeners: make(map[EventType][]EventListener),
	}
}

// Document exposes the open document.
func (s *State) Document() *document.Document { return s.doc }

// Close stops the background pipeline.
func (s *State) Close() { s.pipe.Close() }

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data any) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// ImportLayer loads an image file as a new top layer.
func (s *State) ImportLayer(path string) (*img.Layer, error) {
	l, err := s.doc.ImportLayer(path)
	if err != nil {
		return nil, err
	}
	s.invalidateSamples()
	s.Emit(EventLayersChanged, l)
	return l, nil
}

// RemoveLayer removes the layer at the given index.
func (s *State) RemoveLayer(index int) error {
	l, err := s.doc.RemoveLayer(index)
	if err != nil {
		return err
	}
	s.invalidateSamples()
	s.Emit(EventLayersChanged, l)
	return nil
}

// MoveLayer changes a layer's z-order.
func (s *State) MoveLayer(from, to int) error {
	if err := s.doc.MoveLayer(from, to); err != nil {
		return err
	}
	s.Emit(EventLayersChanged, nil)
	return nil
}

// SetActiveLayer selects the layer edits and sampling target.
func (s *State) SetActiveLayer(index int) error {
	if err := s.doc.Stack().SetActive(index); err != nil {
		return err
	}
	s.Emit(EventLayersChanged, nil)
	return nil
}

// ScaleLayer sets a layer's per-axis scale factors.
func (s *State) ScaleLayer(id string, sx, sy float64) error {
	if err := s.doc.ScaleLayer(id, sx, sy); err != nil {
		return err
	}
	s.invalidateSamples()
	s.Emit(EventLayersChanged, nil)
	return nil
}

// SetVisibility toggles a layer's visibility.
func (s *State) SetVisibility(id string, visible bool) error {
	if err := s.doc.SetVisibility(id, visible); err != nil {
		return err
	}
	s.Emit(EventLayersChanged, nil)
	return nil
}

// SetLocked toggles a layer's lock state. Lock changes are not recorded in
// history.
func (s *State) SetLocked(id string, locked bool) error {
	l, _ := s.doc.Stack().ByID(id)
	if l == nil {
		return fmt.Errorf("%w: %s", document.ErrNoLayer, id)
	}
	l.SetLocked(locked)
	s.Emit(EventLayersChanged, nil)
	return nil
}

// DuplicateLayer copies the layer at the given index onto the top of the
// stack.
func (s *State) DuplicateLayer(index int) (*img.Layer, error) {
	dup, err := s.doc.DuplicateLayer(index)
	if err != nil {
		return nil, err
	}
	s.Emit(EventLayersChanged, dup)
	return dup, nil
}

// Undo reverts the most recent edit.
func (s *State) Undo() bool {
	cmd, ok := s.doc.Undo()
	if !ok {
		s.Emit(EventStatus, "Nothing to undo")
		return false
	}
	s.invalidateSamples()
	s.Emit(EventLayersChanged, nil)
	s.Emit(EventStatus, fmt.Sprintf("Undid %s", cmd.Name()))
	return true
}

// Redo re-applies the most recently undone edit.
func (s *State) Redo() bool {
	cmd, ok := s.doc.Redo()
	if !ok {
		s.Emit(EventStatus, "Nothing to redo")
		return false
	}
	s.invalidateSamples()
	s.Emit(EventLayersChanged, nil)
	s.Emit(EventStatus, fmt.Sprintf("Redid %s", cmd.Name()))
	return true
}

// Save writes the document to a canvas file.
func (s *State) Save(path string) error {
	if err := s.doc.Save(path); err != nil {
		return err
	}
	s.Emit(EventDocumentSaved, path)
	return nil
}

// Load replaces the document with a canvas file. Running filter jobs keep
// running; their results will target layers that no longer exist and are
// dropped as stale.
func (s *State) Load(path string) error {
	if err := s.doc.Load(path); err != nil {
		return err
	}
	s.pending = make(map[string]pendingJob)
	s.invalidateSamples()
	s.Emit(EventDocumentLoaded, path)
	return nil
}

// ApplyFilter starts the named filter on a layer's pixels in the
// background. A filter already running for the layer is superseded. The
// result lands on the document through PumpResults.
func (s *State) ApplyFilter(id, name string, params pipeline.Params) error {
	l, _ := s.doc.Stack().ByID(id)
	if l == nil {
		return fmt.Errorf("%w: %s", document.ErrNoLayer, id)
	}
	if l.Locked() {
		return img.ErrLayerLocked
	}
	buf := l.Buffer()
	if buf == nil {
		return fmt.Errorf("layer %q has no pixels", l.Name())
	}
	fn, err := filter.Lookup(name)
	if err != nil {
		return err
	}

	gen, err := s.pipe.Submit(id, buf, fn, params)
	if err != nil {
		return err
	}
	s.pending[id] = pendingJob{generation: gen, filter: name}
	s.Emit(EventStatus, fmt.Sprintf("Applying %s...", name))
	return nil
}

// CancelFilter interrupts the filter running on a layer, if any.
func (s *State) CancelFilter(id string) error {
	delete(s.pending, id)
	return s.pipe.Cancel(id)
}

// PumpResults drains finished filter results without blocking and applies
// those that are still current. The controlling thread calls this from its
// idle loop. Returns the number of results applied to the document.
func (s *State) PumpResults() int {
	applied := 0
	for {
		select {
		case r := <-s.pipe.Results():
			if s.handleResult(r) {
				applied++
			}
		default:
			return applied
		}
	}
}

func (s *State) handleResult(r pipeline.Result) bool {
	if r.Err != nil {
		// The job is over either way; a matching pending entry is resolved.
		if job, ok := s.pending[r.Subject]; ok && job.generation == r.Generation {
			delete(s.pending, r.Subject)
		}
		if errors.Is(r.Err, pipeline.ErrJobCancelled) {
			s.log.Debug("filter job cancelled", "layer", r.Subject, "generation", r.Generation)
		} else {
			s.log.Error("filter job failed", "layer", r.Subject, "error", r.Err)
			s.Emit(EventStatus, fmt.Sprintf("Filter failed: %v", r.Err))
		}
		return false
	}
	job, ok := s.pending[r.Subject]
	if !ok || job.generation != r.Generation || !s.pipe.IsCurrent(r.Subject, r.Generation) {
		s.log.Debug("dropping stale filter result", "layer", r.Subject, "generation", r.Generation)
		return false
	}
	delete(s.pending, r.Subject)

	if err := s.doc.ApplyFilterResult(r.Subject, job.filter, r.Buffer); err != nil {
		s.log.Error("failed to apply filter result", "layer", r.Subject, "error", err)
		return false
	}
	s.invalidateSamples()
	s.Emit(EventFilterApplied, job.filter)
	s.Emit(EventLayersChanged, nil)
	return true
}

// ActivateSampler turns the color sampler on with an empty cache.
func (s *State) ActivateSampler() {
	s.samplerActive = true
	s.samples.Clear()
}

// DeactivateSampler turns the color sampler off.
func (s *State) DeactivateSampler() {
	s.samplerActive = false
}

// SamplerActive reports whether the sampler is on.
func (s *State) SamplerActive() bool { return s.samplerActive }

// SampleColor probes the active layer's pixel under a view-space point,
// consulting the sample cache first. The second return is false when the
// sampler is off, there is no active layer, or the point misses the layer.
func (s *State) SampleColor(view geometry.Point2D, viewTransform geometry.AffineTransform) (sample.Sample, bool) {
	if !s.samplerActive {
		return sample.Sample{}, false
	}
	l := s.doc.Stack().Active()
	if l == nil || l.Buffer() == nil {
		return sample.Sample{}, false
	}

	p, ok := geometry.ImageCoords(view, viewTransform, l.Placement())
	if !ok {
		return sample.Sample{}, false
	}
	key := sample.NewKey(p, l.ID(), l.Placement())
	if cached, ok := s.samples.Get(key); ok {
		return cached, true
	}
	result := sample.Sample{Color: l.PixelAt(p.X, p.Y), Point: p}
	s.samples.Put(key, result)
	return result, true
}

// AnalyzeActiveRegion computes channel statistics over a rectangle of the
// active layer's source pixels.
func (s *State) AnalyzeActiveRegion(region geometry.RectInt) (sample.RegionStats, error) {
	l := s.doc.Stack().Active()
	if l == nil {
		return sample.RegionStats{}, document.ErrNoLayer
	}
	return sample.AnalyzeRegion(l.Buffer(), region)
}

// invalidateSamples drops every cached color sample. Any edit that can
// change what a cached probe would read must call this.
func (s *State) invalidateSamples() {
	s.samples.Clear()
}
