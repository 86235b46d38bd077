/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"leancanvas/internal/canvas"
	"leancanvas/internal/config"
	"leancanvas/internal/grid"
)

func newTestTerminal(t *testing.T) (*Terminal, tcell.SimulationScreen, *Session) {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	s.SetSize(120, 40)
	t.Cleanup(s.Fini)

	cfg := config.Defaults()
	cfg.Export.Dir = t.TempDir()
	cfg.Export.PNGWidth, cfg.Export.PNGHeight = 400, 250
	q := &canvas.Queue{}
	sess := NewSession(cfg, q, nil)
	term := NewTerminal(s, sess, q)
	term.draw()
	return term, s, sess
}

func press(term *Terminal, k tcell.Key, mod tcell.ModMask) bool {
	return term.handle(tcell.NewEventKey(k, 0, mod))
}

func typeText(term *Terminal, s string) {
	for _, r := range s {
		term.handle(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
}

func TestTerminalTypingUpdatesRecord(t *testing.T) {
	term, _, sess := newTestTerminal(t)
	typeText(term, "abc")
	if got := sess.Mgr.Export().Value(canvas.Problem); got != "abc" {
		t.Fatalf("problem = %q", got)
	}
	b := term.current()
	if s, e := b.Selection(); s != 3 || e != 3 {
		t.Fatalf("caret = (%d,%d), want (3,3)", s, e)
	}
	if _, ok := sess.Mgr.Pending(); ok {
		t.Fatalf("pending cursor should be consumed after the event")
	}
}

func TestTerminalMidTextEditKeepsCaret(t *testing.T) {
	term, _, sess := newTestTerminal(t)
	typeText(term, "abc")
	press(term, tcell.KeyLeft, tcell.ModNone)
	press(term, tcell.KeyLeft, tcell.ModNone)
	typeText(term, "X")
	if got := sess.Mgr.Export().Value(canvas.Problem); got != "aXbc" {
		t.Fatalf("problem = %q", got)
	}
	if s, e := term.current().Selection(); s != 2 || e != 2 {
		t.Fatalf("caret = (%d,%d), want (2,2)", s, e)
	}
	press(term, tcell.KeyDelete, tcell.ModNone)
	if got := sess.Mgr.Export().Value(canvas.Problem); got != "aXc" {
		t.Fatalf("after delete = %q", got)
	}
}

func TestTerminalSelectionIsReplaced(t *testing.T) {
	term, _, sess := newTestTerminal(t)
	typeText(term, "hello")
	press(term, tcell.KeyLeft, tcell.ModShift)
	press(term, tcell.KeyLeft, tcell.ModShift)
	if s, e := term.current().Selection(); s != 3 || e != 5 {
		t.Fatalf("selection = (%d,%d), want (3,5)", s, e)
	}
	typeText(term, "p")
	if got := sess.Mgr.Export().Value(canvas.Problem); got != "help" {
		t.Fatalf("problem = %q", got)
	}
	press(term, tcell.KeyBackspace2, tcell.ModNone)
	if got := sess.Mgr.Export().Value(canvas.Problem); got != "hel" {
		t.Fatalf("after backspace = %q", got)
	}
}

func TestTerminalTabCyclesFields(t *testing.T) {
	term, _, sess := newTestTerminal(t)
	press(term, tcell.KeyTab, tcell.ModNone)
	if term.current().field != canvas.ExistingAlternatives {
		t.Fatalf("focus = %s", term.current().field)
	}
	typeText(term, "z")
	rec := sess.Mgr.Export()
	if rec.Value(canvas.ExistingAlternatives) != "z" || rec.Value(canvas.Problem) != "" {
		t.Fatalf("edit went to the wrong field: %v", rec)
	}
	press(term, tcell.KeyBacktab, tcell.ModNone)
	press(term, tcell.KeyBacktab, tcell.ModNone)
	if term.current().field != canvas.RevenueStreams {
		t.Fatalf("backtab from first should wrap to last, got %s", term.current().field)
	}
}

func TestTerminalSaveAndReopen(t *testing.T) {
	term, _, sess := newTestTerminal(t)
	typeText(term, "persist me")
	press(term, tcell.KeyCtrlS, tcell.ModNone)
	if term.mode != modePrompt {
		t.Fatalf("Ctrl-S without a file should prompt for a name")
	}
	press(term, tcell.KeyEnter, tcell.ModNone)
	want := filepath.Join(sess.Cfg.Export.Dir, "lean-canvas.json")
	if sess.Path != want {
		t.Fatalf("session path = %q, want %q", sess.Path, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("export missing: %v", err)
	}

	other, _, otherSess := newTestTerminal(t)
	press(other, tcell.KeyCtrlO, tcell.ModNone)
	typeText(other, want)
	press(other, tcell.KeyEnter, tcell.ModNone)
	if got := otherSess.Mgr.Export().Value(canvas.Problem); got != "persist me" {
		t.Fatalf("reopened problem = %q (status %q)", got, other.status)
	}
	if string(other.boxes[0].text) != "persist me" {
		t.Fatalf("box not rendered: %q", string(other.boxes[0].text))
	}
}

func TestTerminalExportAsAfterOpen(t *testing.T) {
	term, _, sess := newTestTerminal(t)
	dir := t.TempDir()
	doc := filepath.Join(dir, "doc.json")
	rec := canvas.NewRecord()
	rec[canvas.Problem] = "p"
	data, err := rec.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(doc, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := sess.Open(doc); err != nil {
		t.Fatalf("open: %v", err)
	}
	term.queue.Run()
	typeText(term, "x")

	press(term, tcell.KeyCtrlE, tcell.ModNone)
	if term.mode != modePrompt {
		t.Fatalf("Ctrl-E should prompt for a name even with a file open")
	}
	if got := string(term.input); got != "doc" {
		t.Fatalf("prompt prefill = %q, want doc", got)
	}
	press(term, tcell.KeyCtrlU, tcell.ModNone)
	typeText(term, "renamed")
	press(term, tcell.KeyEnter, tcell.ModNone)

	want := filepath.Join(dir, "renamed.json")
	if sess.Path != want {
		t.Fatalf("session path = %q, want %q (status %q)", sess.Path, want, term.status)
	}
	b, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("export missing: %v", err)
	}
	if !strings.Contains(string(b), `"problem": "px"`) {
		t.Fatalf("exported content: %s", b)
	}
}

func TestTerminalImportFailureKeepsRecord(t *testing.T) {
	term, _, sess := newTestTerminal(t)
	typeText(term, "keep")
	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	press(term, tcell.KeyCtrlO, tcell.ModNone)
	typeText(term, bad)
	press(term, tcell.KeyEnter, tcell.ModNone)
	if !strings.HasPrefix(term.status, "Import failed") {
		t.Fatalf("status = %q", term.status)
	}
	if got := sess.Mgr.Export().Value(canvas.Problem); got != "keep" {
		t.Fatalf("record changed: %q", got)
	}
}

func TestTerminalCapturePNG(t *testing.T) {
	term, s, sess := newTestTerminal(t)
	typeText(term, "picture")
	got := make(chan tcell.Event, 1)
	go func() {
		for {
			ev := s.PollEvent()
			if ev == nil {
				return
			}
			if _, ok := ev.(*tcell.EventInterrupt); ok {
				got <- ev
				return
			}
		}
	}()
	press(term, tcell.KeyCtrlP, tcell.ModNone)
	select {
	case ev := <-got:
		term.handle(ev)
	case <-time.After(10 * time.Second):
		t.Fatalf("capture did not report back")
	}
	want := filepath.Join(sess.Cfg.Export.Dir, "lean-canvas.png")
	if term.status != "Saved "+want {
		t.Fatalf("status = %q", term.status)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("png missing: %v", err)
	}
}

func TestTerminalDrawShowsLabels(t *testing.T) {
	term, s, _ := newTestTerminal(t)
	term.draw()
	cells, w, h := s.GetContents()
	var rows []string
	for y := 0; y < h; y++ {
		var sb strings.Builder
		for x := 0; x < w; x++ {
			if rs := cells[y*w+x].Runes; len(rs) > 0 {
				sb.WriteRune(rs[0])
			}
		}
		rows = append(rows, sb.String())
	}
	screen := strings.Join(rows, "\n")
	for _, f := range []canvas.Field{canvas.Problem, canvas.CustomerSegments, canvas.RevenueStreams} {
		if !strings.Contains(screen, f.Label()) {
			t.Fatalf("label %q not drawn:\n%s", f.Label(), screen)
		}
	}
	if !strings.Contains(rows[h-2], "Lean Canvas") {
		t.Fatalf("status bar = %q", rows[h-2])
	}
}

func TestTerminalRunQuitsOnCtrlQ(t *testing.T) {
	term, s, sess := newTestTerminal(t)
	done := make(chan error, 1)
	go func() { done <- term.Run() }()
	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	s.InjectKey(tcell.KeyCtrlQ, 0, tcell.ModNone)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return")
	}
	if got := sess.Mgr.Export().Value(canvas.Problem); got != "q" {
		t.Fatalf("problem = %q", got)
	}
}

func TestLayoutRunesWrapsAndPlacesCaret(t *testing.T) {
	pos, caret := layoutRunes([]rune("abcd"), 4, 3)
	if pos[3] != (cell{0, 1}) || caret != (cell{1, 1}) {
		t.Fatalf("pos=%v caret=%v", pos, caret)
	}
	_, caret = layoutRunes([]rune("ab\nc"), 2, 10)
	if caret != (cell{2, 0}) {
		t.Fatalf("caret on newline = %v", caret)
	}
	_, caret = layoutRunes([]rune("abc"), 3, 3)
	if caret != (cell{0, 1}) {
		t.Fatalf("caret at full line = %v", caret)
	}
}

func TestTerminalMouseClickFocusesField(t *testing.T) {
	term, _, _ := newTestTerminal(t)
	var target grid.Cell
	for _, c := range term.cells() {
		if c.Field == canvas.RevenueStreams {
			target = c
		}
	}
	x, y := int(target.Rect.X)+2, int(target.Rect.Y)+2
	term.handle(tcell.NewEventMouse(x, y, tcell.Button1, tcell.ModNone))
	if term.current().field != canvas.RevenueStreams {
		t.Fatalf("focus = %s, want revenueStreams", term.current().field)
	}
	typeText(term, "subscriptions")
	if got := term.sess.Mgr.Export().Value(canvas.RevenueStreams); got != "subscriptions" {
		t.Fatalf("revenueStreams = %q", got)
	}
}
