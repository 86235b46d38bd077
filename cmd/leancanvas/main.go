/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"leancanvas/internal/canvas"
	"leancanvas/internal/config"
	"leancanvas/internal/crash"
	"leancanvas/internal/export"
	applog "leancanvas/internal/log"
	"leancanvas/internal/storage"
	"leancanvas/internal/ui"
	"leancanvas/internal/version"
	"leancanvas/internal/watch"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "Lean Canvas")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  leancanvas version|-v|--version            Show version")
	fmt.Fprintln(w, "  leancanvas new <base> [dir]                 Write an empty canvas as <base>.json")
	fmt.Fprintln(w, "  leancanvas set <file> <field> <value>       Set one field and save in place")
	fmt.Fprintln(w, "  leancanvas show <file>                      Print the canvas")
	fmt.Fprintln(w, "  leancanvas png <file> [outDir]              Render lean-canvas.png")
	fmt.Fprintln(w, "  leancanvas pdf <file> [out]                 Render a PDF")
	fmt.Fprintln(w, "  leancanvas svg <file> [out]                 Render an SVG")
	fmt.Fprintln(w, "  leancanvas batch <file> <web|print> [outDir] Run an export preset")
	fmt.Fprintln(w, "  leancanvas restore <file>                   Swap <file> with its .bak backup")
	fmt.Fprintln(w, "  leancanvas validate <file>                  Check a canvas file against the schema")
	fmt.Fprintln(w, "  leancanvas watch <file> [outDir]            Re-render the PNG whenever <file> changes")
	fmt.Fprintln(w, "  leancanvas recent                           List recently used files")
	fmt.Fprintln(w, "  leancanvas tui [file]                       Edit in the terminal")
	fmt.Fprintln(w, "  leancanvas ui [file]                        Launch desktop UI (build with -tags fyne for full UI)")
}

func main() {
	cfg, cerr := config.Load()
	applog.Init(cfg.Logging.LogOptions())
	defer applog.Close()
	l := applog.WithComponent("cli")
	if cerr != nil {
		l.Warn("config load failed; using defaults", slog.Any("err", cerr))
	}
	defer crash.Recover(nil)

	l.Debug("start", slog.Int("args", len(os.Args)))
	if code := run(os.Args[1:], os.Stdout, os.Stderr, cfg); code != 0 {
		_ = applog.Close()
		os.Exit(code)
	}
}

// run executes one command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer, cfg config.AppConfig) int {
	l := applog.WithComponent("cli")
	if len(args) == 0 {
		usage(stdout)
		return 0
	}
	need := func(n int, what string) bool {
		if len(args) < n+1 {
			fmt.Fprintf(stderr, "%s requires %s\n", args[0], what)
			usage(stderr)
			return false
		}
		return true
	}
	fail := func(op string, err error) int {
		applog.WithOperation(l, op).Error("command failed", slog.Any("err", err))
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	lenient := !cfg.Import.Strict

	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintln(stdout, "Lean Canvas")
		fmt.Fprintln(stdout, version.String())
		return 0

	case "new":
		if !need(1, "<base>") {
			return 2
		}
		dir := cfg.Export.Dir
		if len(args) >= 3 {
			dir = args[2]
		}
		out, err := export.WriteJSON(dir, args[1], canvas.NewRecord())
		if err != nil {
			return fail("new", err)
		}
		noteHistory(cfg, storage.KindExport, out)
		fmt.Fprintln(stdout, "Created", out)
		return 0

	case "set":
		if !need(3, "<file> <field> <value>") {
			return 2
		}
		f, err := canvas.ParseField(args[2])
		if err != nil {
			return fail("set", err)
		}
		mgr, err := load(args[1], lenient)
		if err != nil {
			return fail("set", err)
		}
		defer mgr.Close()
		mgr.SetField(f, args[3])
		if err := export.WriteJSONFile(args[1], mgr.Export()); err != nil {
			return fail("set", err)
		}
		noteHistory(cfg, storage.KindExport, args[1])
		fmt.Fprintf(stdout, "%s updated in %s\n", f.Label(), args[1])
		return 0

	case "show":
		if !need(1, "<file>") {
			return 2
		}
		mgr, err := load(args[1], lenient)
		if err != nil {
			return fail("show", err)
		}
		defer mgr.Close()
		rec := mgr.Export()
		for _, f := range canvas.Fields() {
			v, ok := rec.Get(f)
			if !ok {
				v = "(missing)"
			}
			fmt.Fprintf(stdout, "%s:\n  %s\n", f.Label(), v)
		}
		return 0

	case "png":
		if !need(1, "<file>") {
			return 2
		}
		rec, err := loadRecord(args[1], lenient)
		if err != nil {
			return fail("png", err)
		}
		dir := cfg.Export.Dir
		if len(args) >= 3 {
			dir = args[2]
		}
		out, err := export.ExportPNG(dir, rec, pngOptions(cfg))
		if err != nil {
			return fail("png", err)
		}
		noteHistory(cfg, storage.KindPNG, out)
		fmt.Fprintln(stdout, "Wrote", out)
		return 0

	case "pdf", "svg":
		if !need(1, "<file>") {
			return 2
		}
		rec, err := loadRecord(args[1], lenient)
		if err != nil {
			return fail(args[0], err)
		}
		name, kind := export.PDFFileName, storage.KindPDF
		if args[0] == "svg" {
			name, kind = export.SVGFileName, storage.KindSVG
		}
		out := filepath.Join(cfg.Export.Dir, name)
		if len(args) >= 3 {
			out = args[2]
		}
		if kind == storage.KindPDF {
			err = export.ExportPDF(out, rec, export.PDFOptions{})
		} else {
			err = export.ExportSVG(out, rec, export.SVGOptions{})
		}
		if err != nil {
			return fail(args[0], err)
		}
		noteHistory(cfg, kind, out)
		fmt.Fprintln(stdout, "Wrote", out)
		return 0

	case "batch":
		if !need(2, "<file> <preset>") {
			return 2
		}
		preset, err := export.ParsePreset(args[2])
		if err != nil {
			return fail("batch", err)
		}
		rec, err := loadRecord(args[1], lenient)
		if err != nil {
			return fail("batch", err)
		}
		dir := cfg.Export.Dir
		if len(args) >= 4 {
			dir = args[3]
		}
		paths, err := export.BatchExport(rec, export.BatchOptions{
			Preset:   preset,
			OutDir:   dir,
			BaseName: cfg.Export.BaseName,
			PNG:      pngOptions(cfg),
		})
		if err != nil {
			return fail("batch", err)
		}
		for _, p := range paths {
			fmt.Fprintln(stdout, "Wrote", p)
		}
		return 0

	case "restore":
		if !need(1, "<file>") {
			return 2
		}
		data, err := storage.ReadBackup(args[1])
		if err != nil {
			return fail("restore", err)
		}
		if _, err := canvas.Decode(data, lenient); err != nil {
			return fail("restore", fmt.Errorf("backup of %s: %w", args[1], err))
		}
		// The current file becomes the new backup, so a second restore undoes the first.
		if err := storage.WriteFileAtomic(args[1], data); err != nil {
			return fail("restore", err)
		}
		fmt.Fprintln(stdout, "Restored", args[1], "from backup")
		return 0

	case "validate":
		if !need(1, "<file>") {
			return 2
		}
		data, err := storage.ReadRecordFile(args[1])
		if err != nil {
			return fail("validate", err)
		}
		res, err := canvas.Decode(data, false)
		if err != nil {
			fmt.Fprintln(stderr, "Invalid:", err)
			return 1
		}
		fmt.Fprintln(stdout, "OK:", args[1])
		for _, k := range res.Dropped {
			fmt.Fprintln(stdout, "  ignored key:", k)
		}
		return 0

	case "watch":
		if !need(1, "<file>") {
			return 2
		}
		dir := cfg.Export.Dir
		if len(args) >= 3 {
			dir = args[2]
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		err := watchAndRender(ctx, args[1], dir, cfg, stdout)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fail("watch", err)
		}
		return 0

	case "recent":
		hist := ui.OpenHistory(cfg)
		if hist == nil {
			fmt.Fprintln(stdout, "History is disabled or unavailable.")
			return 0
		}
		defer hist.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		entries, err := hist.Recent(ctx, 20)
		if err != nil {
			return fail("recent", err)
		}
		for _, e := range entries {
			fmt.Fprintf(stdout, "%s  %-6s %s\n", e.At.Format(time.DateTime), e.Kind, e.Path)
		}
		return 0

	case "tui":
		var path string
		if len(args) >= 2 {
			path = args[1]
		}
		if err := ui.RunTerminal(path, cfg); err != nil {
			return fail("tui", err)
		}
		return 0

	case "ui":
		var path string
		if len(args) >= 2 {
			path = args[1]
		}
		if err := ui.Run(path, cfg); err != nil {
			return fail("ui", err)
		}
		return 0
	}

	fmt.Fprintf(stderr, "unknown command %q\n", args[0])
	usage(stderr)
	return 2
}

// load imports path into a fresh manager. Strictness follows the import config.
func load(path string, lenient bool) (*canvas.Manager, error) {
	data, err := storage.ReadRecordFile(path)
	if err != nil {
		return nil, err
	}
	mgr := canvas.New(canvas.Options{Lenient: lenient})
	if err := mgr.ImportJSON(data); err != nil {
		mgr.Close()
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return mgr, nil
}

func loadRecord(path string, lenient bool) (canvas.Record, error) {
	mgr, err := load(path, lenient)
	if err != nil {
		return nil, err
	}
	defer mgr.Close()
	return mgr.Export(), nil
}

func pngOptions(cfg config.AppConfig) export.PNGOptions {
	return export.PNGOptions{Width: cfg.Export.PNGWidth, Height: cfg.Export.PNGHeight, Scale: cfg.Export.Scale}
}

// watchAndRender renders once, then again after every change to path, until ctx ends.
// Documents that fail to import are reported and skipped.
func watchAndRender(ctx context.Context, path, dir string, cfg config.AppConfig, out io.Writer) error {
	l := applog.WithOperation(applog.WithComponent("cli"), "watch")
	mgr := canvas.New(canvas.Options{Lenient: !cfg.Import.Strict})
	defer mgr.Close()
	render := func(data []byte) {
		if err := mgr.ImportJSON(data); err != nil {
			l.Warn("skipping unreadable revision", slog.String("path", path), slog.Any("err", err))
			fmt.Fprintln(out, "Skipped:", err)
			return
		}
		p, err := export.ExportPNG(dir, mgr.Export(), pngOptions(cfg))
		if err != nil {
			l.Error("render failed", slog.Any("err", err))
			fmt.Fprintln(out, "Error:", err)
			return
		}
		fmt.Fprintln(out, "Rendered", p)
	}
	data, err := storage.ReadRecordFile(path)
	if err != nil {
		return err
	}
	render(data)
	return watch.Watch(applog.WithDocument(ctx, path), path, render)
}

func noteHistory(cfg config.AppConfig, kind, path string) {
	hist := ui.OpenHistory(cfg)
	if hist == nil {
		return
	}
	defer hist.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := hist.Record(ctx, kind, path); err != nil {
		applog.WithComponent("cli").Warn("history record failed", slog.Any("err", err))
	}
}
