/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package watch reports new content of a canvas document whenever it changes on disk.
package watch

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	applog "leancanvas/internal/log"
	"leancanvas/internal/storage"
)

// Debounce collapses the burst of events an editor produces for one save.
const Debounce = 100 * time.Millisecond

// Watcher follows one file. fsnotify watches the parent directory so that
// editors replacing the file by rename are seen too.
type Watcher struct {
	path string
	w    *fsnotify.Watcher
	l    *slog.Logger
	last []byte
}

// New starts watching path's directory. Events are delivered once Run is called.
func New(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	w := &Watcher{path: abs, w: fw, l: applog.WithComponent("watch").With(slog.String("path", abs))}
	// Seed with the current content so an unchanged rewrite is not reported.
	if b, err := os.ReadFile(abs); err == nil {
		w.last = b
	}
	return w, nil
}

// Path is the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Run calls onChange with the file's bytes after each settled change until ctx is
// done. It closes the watcher before returning.
func (w *Watcher) Run(ctx context.Context, onChange func([]byte)) error {
	defer w.w.Close()
	timer := time.NewTimer(Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if abs, _ := filepath.Abs(ev.Name); abs != w.path {
				continue
			}
			timer.Reset(Debounce)
		case <-timer.C:
			b, err := storage.ReadRecordFile(w.path)
			if err != nil {
				w.l.Warn("read after change failed", slog.Any("err", err))
				continue
			}
			if bytes.Equal(b, w.last) {
				continue
			}
			w.last = b
			w.l.Debug("changed", slog.Int("bytes", len(b)))
			if onChange != nil {
				onChange(b)
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			w.l.Warn("watcher error", slog.Any("err", err))
		}
	}
}

// Watch follows path until ctx is done, calling onChange with new content.
func Watch(ctx context.Context, path string, onChange func([]byte)) error {
	w, err := New(path)
	if err != nil {
		return err
	}
	return w.Run(ctx, onChange)
}
