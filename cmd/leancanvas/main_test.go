/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"leancanvas/internal/canvas"
	"leancanvas/internal/config"
	"leancanvas/internal/export"
)

func testConfig(t *testing.T) config.AppConfig {
	t.Helper()
	t.Setenv("LCV_CONFIG", filepath.Join(t.TempDir(), "config.yaml"))
	cfg := config.Defaults()
	cfg.History.Enabled = false
	cfg.Export.Dir = t.TempDir()
	cfg.Export.PNGWidth = 400
	cfg.Export.PNGHeight = 250
	return cfg
}

func runCmd(t *testing.T, cfg config.AppConfig, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(args, &out, &errOut, cfg)
	return code, out.String(), errOut.String()
}

func TestNewSetShow(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	if code, _, errOut := runCmd(t, cfg, "new", "plan", dir); code != 0 {
		t.Fatalf("new: %d %s", code, errOut)
	}
	file := filepath.Join(dir, "plan.json")
	if code, _, errOut := runCmd(t, cfg, "set", file, "keyMetrics", "weekly actives"); code != 0 {
		t.Fatalf("set: %d %s", code, errOut)
	}
	code, out, _ := runCmd(t, cfg, "show", file)
	if code != 0 {
		t.Fatalf("show exit %d", code)
	}
	if !strings.Contains(out, "KEY METRICS:\n  weekly actives") {
		t.Fatalf("show output missing field:\n%s", out)
	}
	// the previous revision is kept as a backup
	if _, err := os.Stat(file + ".bak"); err != nil {
		t.Fatalf("backup: %v", err)
	}
}

func TestSetRejectsUnknownField(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	runCmd(t, cfg, "new", "plan", dir)
	code, _, errOut := runCmd(t, cfg, "set", filepath.Join(dir, "plan.json"), "vision", "x")
	if code != 1 || !strings.Contains(errOut, "vision") {
		t.Fatalf("code=%d err=%q", code, errOut)
	}
}

func TestValidate(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	rec := canvas.NewRecord()
	rec[canvas.Problem] = "p"
	if err := export.WriteJSONFile(good, rec); err != nil {
		t.Fatal(err)
	}
	if code, out, _ := runCmd(t, cfg, "validate", good); code != 0 || !strings.HasPrefix(out, "OK:") {
		t.Fatalf("validate good: %d %q", code, out)
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"problem":"only"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if code, _, errOut := runCmd(t, cfg, "validate", bad); code != 1 || !strings.Contains(errOut, "Invalid") {
		t.Fatalf("validate bad: %d %q", code, errOut)
	}
}

func TestRenderCommands(t *testing.T) {
	cfg := testConfig(t)
	src := t.TempDir()
	runCmd(t, cfg, "new", "plan", src)
	file := filepath.Join(src, "plan.json")

	out := t.TempDir()
	if code, _, errOut := runCmd(t, cfg, "png", file, out); code != 0 {
		t.Fatalf("png: %s", errOut)
	}
	if _, err := os.Stat(filepath.Join(out, export.PNGFileName)); err != nil {
		t.Fatalf("png file: %v", err)
	}
	pdf := filepath.Join(out, "x.pdf")
	if code, _, errOut := runCmd(t, cfg, "pdf", file, pdf); code != 0 {
		t.Fatalf("pdf: %s", errOut)
	}
	if code, _, errOut := runCmd(t, cfg, "svg", file); code != 0 {
		t.Fatalf("svg: %s", errOut)
	}
	if _, err := os.Stat(filepath.Join(cfg.Export.Dir, export.SVGFileName)); err != nil {
		t.Fatalf("svg default path: %v", err)
	}
	code, stdout, errOut := runCmd(t, cfg, "batch", file, "web", out)
	if code != 0 {
		t.Fatalf("batch: %s", errOut)
	}
	if strings.Count(stdout, "Wrote") != 2 {
		t.Fatalf("web batch should write two files:\n%s", stdout)
	}
}

func TestUsageAndUnknownCommand(t *testing.T) {
	cfg := testConfig(t)
	if code, out, _ := runCmd(t, cfg); code != 0 || !strings.Contains(out, "Usage:") {
		t.Fatalf("usage: %d", code)
	}
	if code, _, _ := runCmd(t, cfg, "frobnicate"); code != 2 {
		t.Fatalf("unknown command exit = %d", code)
	}
	if code, _, _ := runCmd(t, cfg, "set", "only-file"); code != 2 {
		t.Fatalf("missing args exit = %d", code)
	}
}

func TestRecentWithHistoryDisabled(t *testing.T) {
	cfg := testConfig(t)
	if code, out, _ := runCmd(t, cfg, "recent"); code != 0 || !strings.Contains(out, "disabled") {
		t.Fatalf("recent: %d %q", code, out)
	}
}

func TestWatchAndRenderInitialPass(t *testing.T) {
	cfg := testConfig(t)
	src := t.TempDir()
	runCmd(t, cfg, "new", "plan", src)
	out := t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	var buf bytes.Buffer
	err := watchAndRender(ctx, filepath.Join(src, "plan.json"), out, cfg, &buf)
	if err == nil || ctx.Err() == nil {
		t.Fatalf("expected context error, got %v", err)
	}
	if !strings.Contains(buf.String(), "Rendered") {
		t.Fatalf("initial render missing: %q", buf.String())
	}
	if _, err := os.Stat(filepath.Join(out, export.PNGFileName)); err != nil {
		t.Fatalf("png: %v", err)
	}
}

func TestRestoreSwapsWithBackup(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	runCmd(t, cfg, "new", "plan", dir)
	file := filepath.Join(dir, "plan.json")
	runCmd(t, cfg, "set", file, "problem", "first")
	runCmd(t, cfg, "set", file, "problem", "second")

	if code, _, errOut := runCmd(t, cfg, "restore", file); code != 0 {
		t.Fatalf("restore: %s", errOut)
	}
	rec, err := loadRecord(file, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := rec.Value(canvas.Problem); got != "first" {
		t.Fatalf("after restore problem = %q, want first", got)
	}
	runCmd(t, cfg, "restore", file)
	rec, _ = loadRecord(file, false)
	if got := rec.Value(canvas.Problem); got != "second" {
		t.Fatalf("second restore should undo the first, got %q", got)
	}
}

func TestRestoreWithoutBackup(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	runCmd(t, cfg, "new", "plan", dir)
	if code, _, _ := runCmd(t, cfg, "restore", filepath.Join(dir, "plan.json")); code != 1 {
		t.Fatalf("restore without backup exit = %d", code)
	}
}
