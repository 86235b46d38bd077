/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package ui hosts the interactive surfaces: a terminal editor built on tcell
// and, with -tags fyne, a desktop window. Both drive one canvas.Manager through
// a Session.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"leancanvas/internal/canvas"
	"leancanvas/internal/config"
	"leancanvas/internal/export"
	applog "leancanvas/internal/log"
	"leancanvas/internal/storage"
)

// Session ties a manager to the document file, the user config and the
// recent-files history. All methods except CapturePNG's callback run on the
// surface's event goroutine.
type Session struct {
	Mgr  *canvas.Manager
	Cfg  config.AppConfig
	Hist *storage.History // optional
	// Path is the document the session was opened from or last saved to.
	Path string
	l    *slog.Logger
}

// NewSession creates a session whose manager schedules follow-ups on sched.
func NewSession(cfg config.AppConfig, sched canvas.Scheduler, hist *storage.History) *Session {
	l := applog.WithComponent("ui")
	return &Session{
		Mgr:  canvas.New(canvas.Options{Scheduler: sched, Lenient: !cfg.Import.Strict}),
		Cfg:  cfg,
		Hist: hist,
		l:    l,
	}
}

// Open imports the document at path. On error the record is unchanged.
func (s *Session) Open(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("no file given")
	}
	data, err := storage.ReadRecordFile(path)
	if err != nil {
		return err
	}
	if err := s.Mgr.ImportJSON(data); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	s.Path = path
	s.note(storage.KindImport, path)
	s.l.Info("document opened", slog.String("path", path))
	return nil
}

// Save writes the record back to Path, or exports it as a new JSON file into
// the configured export dir when the session has no file yet.
func (s *Session) Save() (string, error) {
	if s.Path == "" {
		return s.ExportAs(s.Cfg.Export.Dir, s.Cfg.Export.BaseName)
	}
	if err := export.WriteJSONFile(s.Path, s.Mgr.Export()); err != nil {
		return "", err
	}
	s.note(storage.KindExport, s.Path)
	return s.Path, nil
}

// ExportAs writes dir/<base>.json and makes it the session's document.
func (s *Session) ExportAs(dir, base string) (string, error) {
	path, err := export.WriteJSON(dir, base, s.Mgr.Export())
	if err != nil {
		return "", err
	}
	s.Path = path
	s.note(storage.KindExport, path)
	s.l.Info("document exported", slog.String("path", path))
	return path, nil
}

// PNGOptions returns raster options from the config.
func (s *Session) PNGOptions() export.PNGOptions {
	return export.PNGOptions{Width: s.Cfg.Export.PNGWidth, Height: s.Cfg.Export.PNGHeight, Scale: s.Cfg.Export.Scale}
}

// CapturePNG rasterizes a snapshot of the record into the export dir. done is
// called from another goroutine; surfaces must hop back to their event loop.
func (s *Session) CapturePNG(done func(path string, err error)) {
	var path string
	ch := s.Mgr.CaptureVisual(export.PNGCapture{
		Dir:     s.Cfg.Export.Dir,
		Options: s.PNGOptions(),
		Done:    func(p string) { path = p },
	})
	go func() {
		err := <-ch
		if err == nil {
			s.note(storage.KindPNG, path)
		}
		if done != nil {
			done(path, err)
		}
	}()
}

// Recent lists recent documents, newest first. JSON documents only.
func (s *Session) Recent(n int) []string {
	if s.Hist == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	entries, err := s.Hist.Recent(ctx, n*2)
	if err != nil {
		s.l.Warn("history query failed", slog.Any("err", err))
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.Kind != storage.KindImport && e.Kind != storage.KindExport {
			continue
		}
		out = append(out, e.Path)
		if len(out) == n {
			break
		}
	}
	return out
}

func (s *Session) note(kind, path string) {
	if s.Hist == nil || path == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Hist.Record(ctx, kind, path); err != nil {
		s.l.Warn("history record failed", slog.Any("err", err))
	}
}

// OpenHistory opens the history database in the config dir when enabled.
// Failures are logged and yield nil; the surfaces work without history.
func OpenHistory(cfg config.AppConfig) *storage.History {
	if !cfg.History.Enabled {
		return nil
	}
	l := applog.WithComponent("ui")
	dir, err := config.Dir()
	if err != nil {
		l.Warn("no config dir for history", slog.Any("err", err))
		return nil
	}
	h, err := storage.OpenHistory(filepath.Join(dir, storage.HistoryFileName))
	if err != nil {
		l.Warn("history unavailable", slog.Any("err", err))
		return nil
	}
	if cfg.History.Keep > 0 {
		_ = h.Prune(context.Background(), cfg.History.Keep)
	}
	return h
}
