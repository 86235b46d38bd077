/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"leancanvas/internal/canvas"
	"leancanvas/internal/config"
	"leancanvas/internal/crash"
	"leancanvas/internal/grid"
	applog "leancanvas/internal/log"
)

// fieldBox is the terminal control for one field. Offsets are runes; anchor
// equals caret when nothing is selected.
type fieldBox struct {
	field  canvas.Field
	text   []rune
	caret  int
	anchor int
	t      *Terminal
	// top is the first wrapped row shown; kept so the caret stays visible.
	top int
}

func (b *fieldBox) Selection() (int, int) {
	if b.anchor < b.caret {
		return b.anchor, b.caret
	}
	return b.caret, b.anchor
}

func (b *fieldBox) Select(start, end int) {
	b.anchor = clamp(start, 0, len(b.text))
	b.caret = clamp(end, 0, len(b.text))
}

func (b *fieldBox) Focus() { b.t.focus = b.field.Index() }

func (b *fieldBox) hasSelection() bool { return b.anchor != b.caret }

type termMode int

const (
	modeEdit termMode = iota
	modePrompt
)

// captureResult travels from the capture goroutine back to the event loop.
type captureResult struct {
	path string
	err  error
}

// Terminal is the tcell editor. Layout follows the board grid in character cells.
type Terminal struct {
	screen tcell.Screen
	sess   *Session
	queue  *canvas.Queue
	boxes  []*fieldBox
	focus  int
	mode   termMode
	prompt string
	input  []rune
	submit func(string)
	status string
	l      *slog.Logger
}

// NewTerminal binds one box per field to the session's manager. sess must have
// been created with q as its scheduler.
func NewTerminal(screen tcell.Screen, sess *Session, q *canvas.Queue) *Terminal {
	t := &Terminal{screen: screen, sess: sess, queue: q, l: applog.WithComponent("tui")}
	for _, f := range canvas.Fields() {
		b := &fieldBox{field: f, t: t}
		t.boxes = append(t.boxes, b)
		sess.Mgr.Bind(f, b)
	}
	sess.Mgr.OnRender(t.render)
	t.render(sess.Mgr.Export(), "")
	t.status = "Tab next field · Ctrl-S save · Ctrl-E export as · Ctrl-O open · Ctrl-P PNG · Ctrl-Q quit"
	return t
}

// render mirrors the record into the boxes like a controlled input: a box whose
// text changed gets the caret at its end. Cursor restoration follows.
func (t *Terminal) render(rec canvas.Record, _ canvas.Field) {
	for _, b := range t.boxes {
		v := rec.Value(b.field)
		if string(b.text) == v {
			continue
		}
		b.text = []rune(v)
		b.caret, b.anchor = len(b.text), len(b.text)
	}
}

// Run processes events until Ctrl-Q. The screen must be initialised.
func (t *Terminal) Run() error {
	for {
		t.draw()
		ev := t.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if t.handle(ev) {
			return nil
		}
	}
}

// handle processes one event and then drains follow-ups queued by the manager.
// It reports whether the editor should quit.
func (t *Terminal) handle(ev tcell.Event) bool {
	quit := false
	switch ev := ev.(type) {
	case *tcell.EventResize:
		t.screen.Sync()
	case *tcell.EventKey:
		if t.mode == modePrompt {
			t.handlePromptKey(ev)
		} else {
			quit = t.handleKey(ev)
		}
	case *tcell.EventMouse:
		if t.mode == modeEdit && ev.Buttons()&tcell.Button1 != 0 {
			x, y := ev.Position()
			if f, ok := grid.At(t.cells(), grid.Pt{X: float64(x), Y: float64(y)}); ok {
				t.focus = f.Index()
			}
		}
	case *tcell.EventInterrupt:
		if res, ok := ev.Data().(captureResult); ok {
			if res.err != nil {
				t.status = "PNG failed: " + res.err.Error()
			} else {
				t.status = "Saved " + res.path
			}
		}
	}
	t.queue.Run()
	return quit
}

func (t *Terminal) current() *fieldBox { return t.boxes[t.focus] }

func (t *Terminal) handleKey(ev *tcell.EventKey) bool {
	b := t.current()
	shift := ev.Modifiers()&tcell.ModShift != 0
	switch ev.Key() {
	case tcell.KeyCtrlQ:
		return true
	case tcell.KeyCtrlS:
		t.save()
	case tcell.KeyCtrlE:
		t.exportAs()
	case tcell.KeyCtrlO:
		t.ask("Open JSON: ", "", func(p string) {
			if err := t.sess.Open(p); err != nil {
				t.status = "Import failed: " + err.Error()
				return
			}
			t.status = "Opened " + p
		})
	case tcell.KeyCtrlP:
		t.status = "Rendering PNG…"
		t.sess.CapturePNG(func(path string, err error) {
			_ = t.screen.PostEvent(tcell.NewEventInterrupt(captureResult{path: path, err: err}))
		})
	case tcell.KeyTab:
		t.focus = (t.focus + 1) % len(t.boxes)
	case tcell.KeyBacktab:
		t.focus = (t.focus + len(t.boxes) - 1) % len(t.boxes)
	case tcell.KeyCtrlA:
		b.anchor, b.caret = 0, len(b.text)
	case tcell.KeyLeft:
		b.move(b.caret-1, shift)
	case tcell.KeyRight:
		b.move(b.caret+1, shift)
	case tcell.KeyHome:
		b.move(0, shift)
	case tcell.KeyEnd:
		b.move(len(b.text), shift)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if !b.hasSelection() {
			if b.caret == 0 {
				break
			}
			b.anchor = b.caret - 1
		}
		t.replace(b, nil)
	case tcell.KeyDelete:
		if !b.hasSelection() {
			if b.caret == len(b.text) {
				break
			}
			b.anchor = b.caret + 1
		}
		t.replace(b, nil)
	case tcell.KeyEnter:
		t.replace(b, []rune{'\n'})
	case tcell.KeyRune:
		t.replace(b, []rune{ev.Rune()})
	}
	return false
}

func (b *fieldBox) move(to int, extend bool) {
	b.caret = clamp(to, 0, len(b.text))
	if !extend {
		b.anchor = b.caret
	}
}

// replace swaps the selection for ins, leaves the caret after the insertion, and
// hands the new value to the manager.
func (t *Terminal) replace(b *fieldBox, ins []rune) {
	start, end := b.Selection()
	next := make([]rune, 0, len(b.text)-(end-start)+len(ins))
	next = append(next, b.text[:start]...)
	next = append(next, ins...)
	next = append(next, b.text[end:]...)
	b.text = next
	b.caret = start + len(ins)
	b.anchor = b.caret
	t.sess.Mgr.SetField(b.field, string(next))
}

func (t *Terminal) save() {
	if t.sess.Path != "" {
		p, err := t.sess.Save()
		t.report("Saved", p, err)
		return
	}
	t.exportAs()
}

// exportAs prompts for a base name, prefilled from the current document, and
// writes <base>.json next to it (or into the export dir for a new document).
func (t *Terminal) exportAs() {
	dir, base := t.sess.Cfg.Export.Dir, t.sess.Cfg.Export.BaseName
	if t.sess.Path != "" {
		dir = filepath.Dir(t.sess.Path)
		base = strings.TrimSuffix(filepath.Base(t.sess.Path), ".json")
	}
	t.ask("Export as (.json is added): ", base, func(name string) {
		p, err := t.sess.ExportAs(dir, name)
		t.report("Exported", p, err)
	})
}

func (t *Terminal) report(verb, path string, err error) {
	if err != nil {
		t.l.Error(verb+" failed", slog.Any("err", err))
		t.status = verb + " failed: " + err.Error()
		return
	}
	t.status = fmt.Sprintf("%s %s", verb, path)
}

func (t *Terminal) ask(prompt, initial string, submit func(string)) {
	t.mode = modePrompt
	t.prompt = prompt
	t.input = []rune(initial)
	t.submit = submit
}

func (t *Terminal) handlePromptKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlQ:
		t.mode = modeEdit
		t.status = "Cancelled"
	case tcell.KeyEnter:
		t.mode = modeEdit
		if t.submit != nil {
			t.submit(string(t.input))
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(t.input) > 0 {
			t.input = t.input[:len(t.input)-1]
		}
	case tcell.KeyCtrlU:
		t.input = t.input[:0]
	case tcell.KeyRune:
		t.input = append(t.input, ev.Rune())
	}
}

var (
	styleBase   = tcell.StyleDefault
	styleBorder = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleFocus  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleLabel  = tcell.StyleDefault.Bold(true)
	styleHint   = tcell.StyleDefault.Foreground(tcell.ColorGray).Italic(true)
	styleSelect = tcell.StyleDefault.Reverse(true)
	styleStatus = tcell.StyleDefault.Reverse(true)
)

// cells lays the board out in character cells above the status and prompt rows.
func (t *Terminal) cells() []grid.Cell {
	w, h := t.screen.Size()
	return grid.Layout(grid.Options{Width: float64(w), Height: float64(h - 2), TopShare: grid.Defaults().TopShare})
}

// draw paints the grid with two lines reserved for the status bar and prompt.
func (t *Terminal) draw() {
	s := t.screen
	s.Clear()
	s.HideCursor()
	w, h := s.Size()
	for _, c := range t.cells() {
		t.drawBox(t.boxes[c.Field.Index()], c.Rect)
	}
	title := "Lean Canvas"
	if t.sess.Path != "" {
		title += " · " + filepath.Base(t.sess.Path)
	}
	drawText(s, 0, h-2, w, styleStatus, padRight(title+" │ "+t.status, w))
	if t.mode == modePrompt {
		line := t.prompt + string(t.input)
		drawText(s, 0, h-1, w, styleBase, line)
		s.ShowCursor(min(runewidth.StringWidth(line), w-1), h-1)
	}
	s.Show()
}

func (t *Terminal) drawBox(b *fieldBox, r grid.Rect) {
	x0, y0 := int(r.X), int(r.Y)
	x1, y1 := int(r.X+r.W)-1, int(r.Y+r.H)-1
	if x1-x0 < 2 || y1-y0 < 2 {
		return
	}
	focused := t.boxes[t.focus] == b
	border := styleBorder
	if focused {
		border = styleFocus
	}
	s := t.screen
	for x := x0 + 1; x < x1; x++ {
		s.SetContent(x, y0, tcell.RuneHLine, nil, border)
		s.SetContent(x, y1, tcell.RuneHLine, nil, border)
	}
	for y := y0 + 1; y < y1; y++ {
		s.SetContent(x0, y, tcell.RuneVLine, nil, border)
		s.SetContent(x1, y, tcell.RuneVLine, nil, border)
	}
	s.SetContent(x0, y0, tcell.RuneULCorner, nil, border)
	s.SetContent(x1, y0, tcell.RuneURCorner, nil, border)
	s.SetContent(x0, y1, tcell.RuneLLCorner, nil, border)
	s.SetContent(x1, y1, tcell.RuneLRCorner, nil, border)
	drawText(s, x0+2, y0, x1-x0-3, styleLabel, " "+b.field.Label()+" ")

	ix, iy, iw, ih := x0+1, y0+1, x1-x0-1, y1-y0-1
	if len(b.text) == 0 && !focused {
		drawText(s, ix, iy, iw, styleHint, b.field.Placeholder())
		return
	}
	pos, caret := layoutRunes(b.text, b.caret, iw)
	if caret.y < b.top {
		b.top = caret.y
	}
	if caret.y >= b.top+ih {
		b.top = caret.y - ih + 1
	}
	start, end := b.Selection()
	for i, r := range b.text {
		p := pos[i]
		if r == '\n' || p.y < b.top || p.y >= b.top+ih {
			continue
		}
		st := styleBase
		if i >= start && i < end {
			st = styleSelect
		}
		s.SetContent(ix+p.x, iy+p.y-b.top, r, nil, st)
	}
	if focused && t.mode == modeEdit {
		s.ShowCursor(ix+caret.x, iy+caret.y-b.top)
	}
}

type cell struct{ x, y int }

// layoutRunes places each rune on a width-wrapped grid and returns the position
// of every rune plus the caret.
func layoutRunes(text []rune, caretAt, width int) ([]cell, cell) {
	pos := make([]cell, len(text))
	var c, caret cell
	for i, r := range text {
		if r == '\n' {
			pos[i] = c
			if i == caretAt {
				caret = c
			}
			c = cell{0, c.y + 1}
			continue
		}
		rw := runewidth.RuneWidth(r)
		if c.x > 0 && c.x+rw > width {
			c = cell{0, c.y + 1}
		}
		pos[i] = c
		if i == caretAt {
			caret = c
		}
		c.x += rw
	}
	if caretAt >= len(text) {
		if c.x >= width {
			c = cell{0, c.y + 1}
		}
		caret = c
	}
	return pos, caret
}

func drawText(s tcell.Screen, x, y, maxW int, st tcell.Style, text string) {
	col := 0
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if col+rw > maxW {
			return
		}
		s.SetContent(x+col, y, r, nil, st)
		col += rw
	}
}

func padRight(s string, w int) string {
	if n := runewidth.StringWidth(s); n < w {
		return s + fmt.Sprintf("%*s", w-n, "")
	}
	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RunTerminal opens the terminal editor on the real tty, optionally loading path.
func RunTerminal(path string, cfg config.AppConfig) (err error) {
	hist := OpenHistory(cfg)
	if hist != nil {
		defer hist.Close()
	}
	q := &canvas.Queue{}
	sess := NewSession(cfg, q, hist)
	defer crash.Recover(sess.Mgr.Export)
	if path != "" {
		if oerr := sess.Open(path); oerr != nil {
			return oerr
		}
		q.Run()
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	return NewTerminal(screen, sess, q).Run()
}
