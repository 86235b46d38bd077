/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic at an entry point into a crash report, an autosave
// of the open canvas, and exit status 2.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"leancanvas/internal/canvas"
	applog "leancanvas/internal/log"
	"leancanvas/internal/storage"
	"leancanvas/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// reportDir is where reports and autosaves go.
var reportDir = os.TempDir

// Recover captures a panic, logs an error with stacktrace, writes an error report
// file and, when snapshot is set, an autosave of the current record.
//
// Usage: defer crash.Recover(mgr.Export)
func Recover(snapshot func() canvas.Record) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	id := uuid.New()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("crash_id", id.String()), slog.String("stack", string(stack)))

	reportPath, err := writeReport(id, r, stack)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err))
	}
	if snapshot != nil {
		if path, err := autosave(id, snapshot); err != nil {
			l.Error("autosave failed", slog.Any("err", err))
		} else {
			l.Info("autosave written", slog.String("path", path))
			_, _ = fmt.Fprintf(os.Stderr, "Your canvas was saved to: %s\n", path)
		}
	}

	if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
		l.Error("failed to write crash message to stderr", slog.Any("err", err))
	}
	if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
		l.Error("failed to write version info to stderr", slog.Any("err", err))
	}
	// Exit with a non-zero code to indicate failure in CLI context.
	exitFn(2)
}

func autosave(id uuid.UUID, snapshot func() canvas.Record) (path string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("snapshot panicked: %v", r)
		}
	}()
	data, err := snapshot().Encode()
	if err != nil {
		return "", err
	}
	path = filepath.Join(reportDir(), fmt.Sprintf("leancanvas-autosave-%s.json", id))
	return path, storage.WriteFileAtomic(path, data)
}

func writeReport(id uuid.UUID, panicVal any, stack []byte) (string, error) {
	dir := reportDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("leancanvas-crash-%s-%s.log", stamp, id.String()[:8]))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Lean Canvas Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "ID: %s\n", id)
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()
	return path, nil
}
