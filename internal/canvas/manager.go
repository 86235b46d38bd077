/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"errors"
	"fmt"
	"log/slog"

	applog "leancanvas/internal/log"
)

// RenderFunc is called after the record changed. changed is the edited field, or
// "" when the whole record was replaced. rec is a copy owned by the callee.
type RenderFunc func(rec Record, changed Field)

// Rasterizer turns a record snapshot into an image artifact.
type Rasterizer interface {
	Rasterize(rec Record) error
}

// RasterizerFunc adapts a function to Rasterizer.
type RasterizerFunc func(rec Record) error

func (f RasterizerFunc) Rasterize(rec Record) error { return f(rec) }

// Options configures a Manager.
type Options struct {
	// Scheduler runs render and cursor restoration after each edit. Defaults to Immediate.
	Scheduler Scheduler
	// Lenient disables schema validation in ImportJSON; documents are applied as found.
	Lenient bool
	// Logger defaults to the "canvas" component logger.
	Logger *slog.Logger
}

// Manager owns one canvas document and its transient cursor state. All methods except
// CaptureVisual's background work must be called from the owning surface's event goroutine.
type Manager struct {
	rec       Record
	handles   map[Field]Handle
	pending   *CursorState
	listeners []RenderFunc
	sched     Scheduler
	lenient   bool
	l         *slog.Logger
	closed    bool
}

// New creates a manager with an empty record.
func New(opts Options) *Manager {
	sched := opts.Scheduler
	if sched == nil {
		sched = Immediate{}
	}
	l := opts.Logger
	if l == nil {
		l = applog.WithComponent("canvas")
	}
	return &Manager{
		rec:     NewRecord(),
		handles: make(map[Field]Handle, len(fields)),
		sched:   sched,
		lenient: opts.Lenient,
		l:       l,
	}
}

// Bind attaches the surface control for f, replacing any previous one.
func (m *Manager) Bind(f Field, h Handle) {
	if m.closed {
		return
	}
	if h == nil {
		delete(m.handles, f)
		return
	}
	m.handles[f] = h
}

// OnRender registers a listener invoked after every change.
func (m *Manager) OnRender(fn RenderFunc) {
	if fn != nil && !m.closed {
		m.listeners = append(m.listeners, fn)
	}
}

// SetField replaces the value of f and leaves every other field untouched.
// When a handle is bound for f, its selection is captured before the change and
// restored, together with focus, once the surface has re-rendered.
// f must be a known field; anything else panics.
func (m *Manager) SetField(f Field, value string) {
	if !f.Known() {
		panic(fmt.Sprintf("canvas: SetField with unknown field %q", f))
	}
	if m.closed {
		return
	}
	if h, ok := m.handles[f]; ok {
		start, end := h.Selection()
		m.pending = &CursorState{Field: f, Start: start, End: end}
	}
	m.rec[f] = value
	m.sched.Schedule(func() { m.settle(f) })
}

// Export returns a copy of the current record.
func (m *Manager) Export() Record { return m.rec.Clone() }

// Import replaces the whole record with a copy of rec. No shape checks are made.
func (m *Manager) Import(rec Record) {
	if m.closed {
		return
	}
	m.rec = rec.Clone()
	if m.rec == nil {
		m.rec = Record{}
	}
	m.pending = nil
	m.sched.Schedule(func() { m.settle("") })
}

// ImportJSON parses data and, on success, replaces the record. On any failure the
// error is logged and returned and the current record is kept as it was.
func (m *Manager) ImportJSON(data []byte) error {
	l := applog.WithOperation(m.l, "import")
	res, err := Decode(data, m.lenient)
	if err != nil {
		if errors.Is(err, ErrMalformed) {
			l.Error("import failed: malformed JSON", slog.Any("err", err))
		} else {
			l.Warn("import rejected", slog.Any("err", err))
		}
		return err
	}
	if len(res.Dropped) > 0 {
		l.Warn("import dropped keys", slog.Any("keys", res.Dropped))
	}
	if missing := res.Record.Missing(); len(missing) > 0 {
		l.Warn("imported document lacks fields", slog.Any("fields", missing))
	}
	m.Import(res.Record)
	l.Debug("imported", slog.Int("keys", len(res.Record)))
	return nil
}

// CaptureVisual rasterizes a snapshot of the record on its own goroutine. The
// returned channel yields the outcome once and is then closed; callers may ignore it.
// Edits made while a capture runs do not affect it.
func (m *Manager) CaptureVisual(r Rasterizer) <-chan error {
	done := make(chan error, 1)
	if r == nil {
		done <- errors.New("no rasterizer")
		close(done)
		return done
	}
	snap := m.rec.Clone()
	l := applog.WithOperation(m.l, "capture")
	go func() {
		defer close(done)
		err := r.Rasterize(snap)
		if err != nil {
			l.Error("capture failed", slog.Any("err", err))
		} else {
			l.Debug("capture done")
		}
		done <- err
	}()
	return done
}

// Pending reports the cursor state awaiting restoration, if any.
func (m *Manager) Pending() (CursorState, bool) {
	if m.pending == nil {
		return CursorState{}, false
	}
	return *m.pending, true
}

// Close tears the instance down. Later edits and imports are ignored and
// already scheduled tasks become no-ops.
func (m *Manager) Close() {
	m.closed = true
	m.pending = nil
	m.listeners = nil
	m.handles = map[Field]Handle{}
}

func (m *Manager) settle(changed Field) {
	if m.closed {
		return
	}
	for _, fn := range m.listeners {
		fn(m.rec.Clone(), changed)
	}
	m.restoreCursor()
}

func (m *Manager) restoreCursor() {
	p := m.pending
	if p == nil {
		return
	}
	m.pending = nil
	h, ok := m.handles[p.Field]
	if !ok {
		return
	}
	h.Focus()
	h.Select(p.Start, p.End)
}
