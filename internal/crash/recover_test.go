/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"leancanvas/internal/canvas"
)

func useTempReportDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := reportDir
	reportDir = func() string { return dir }
	t.Cleanup(func() { reportDir = old })
	return dir
}

func silenceStderr(t *testing.T) {
	t.Helper()
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	t.Cleanup(func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r) // drain pipe
	})
}

func findFile(t *testing.T, dir, prefix, suffix string) string {
	t.Helper()
	ents, _ := os.ReadDir(dir)
	for _, e := range ents {
		if strings.HasPrefix(e.Name(), prefix) && strings.HasSuffix(e.Name(), suffix) {
			return filepath.Join(dir, e.Name())
		}
	}
	return ""
}

// TestRecover_WritesReportAndAutosave ensures Recover handles a panic, writes a
// report and the autosave, and does not terminate the test process due to injected exitFn.
func TestRecover_WritesReportAndAutosave(t *testing.T) {
	dir := useTempReportDir(t)
	silenceStderr(t)

	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	m := canvas.New(canvas.Options{})
	m.SetField(canvas.Problem, "unsaved work")

	func() {
		defer Recover(m.Export)
		panic("boom")
	}()

	report := findFile(t, dir, "leancanvas-crash-", ".log")
	if report == "" {
		t.Fatalf("expected crash report in %s", dir)
	}
	b, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.Contains(b, []byte("Panic: boom")) || !bytes.Contains(b, []byte("ID: ")) {
		t.Fatalf("report content: %s", string(b))
	}

	save := findFile(t, dir, "leancanvas-autosave-", ".json")
	if save == "" {
		t.Fatalf("expected autosave in %s", dir)
	}
	data, err := os.ReadFile(save)
	if err != nil {
		t.Fatalf("read autosave: %v", err)
	}
	res, err := canvas.Decode(data, false)
	if err != nil {
		t.Fatalf("autosave is not a valid canvas: %v", err)
	}
	if res.Record.Value(canvas.Problem) != "unsaved work" {
		t.Fatalf("autosave lost the edit: %v", res.Record)
	}

	if called != 2 {
		t.Fatalf("expected exit code 2, got %d", called)
	}
}

func TestRecover_NoPanicIsNoop(t *testing.T) {
	dir := useTempReportDir(t)
	called := false
	oldExit := exitFn
	exitFn = func(int) { called = true }
	defer func() { exitFn = oldExit }()

	func() {
		defer Recover(nil)
	}()
	if called {
		t.Fatalf("exit must not be called without a panic")
	}
	if f := findFile(t, dir, "leancanvas-crash-", ".log"); f != "" {
		t.Fatalf("unexpected report %s", f)
	}
}

func TestRecover_SnapshotPanicStillReports(t *testing.T) {
	dir := useTempReportDir(t)
	silenceStderr(t)
	oldExit := exitFn
	exitFn = func(int) {}
	defer func() { exitFn = oldExit }()

	func() {
		defer Recover(func() canvas.Record { panic("snapshot broken") })
		panic("first")
	}()
	if findFile(t, dir, "leancanvas-crash-", ".log") == "" {
		t.Fatalf("report missing")
	}
	if f := findFile(t, dir, "leancanvas-autosave-", ".json"); f != "" {
		t.Fatalf("autosave should not exist: %s", f)
	}
}
