/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "leancanvas/internal/log"
	"leancanvas/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	HistoryFileName = "history.sqlite"

	// schemaVersion tracks the history schema. Bump it with a migration.
	schemaVersion = 1
)

// Entry kinds recorded by the surfaces and the CLI.
const (
	KindImport = "import"
	KindExport = "export"
	KindPNG    = "png"
	KindPDF    = "pdf"
	KindSVG    = "svg"
)

// Entry is one history row.
type Entry struct {
	ID   int64
	Kind string
	Path string
	At   time.Time
}

// History is the recent-files database.
type History struct {
	db   *sql.DB
	path string
	l    *slog.Logger
}

// OpenHistory opens or creates the history database at path, enables WAL mode and
// ensures the schema exists. Callers must Close it.
func OpenHistory(path string) (*History, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "history_open").With(
		slog.String("path", path),
	)
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create history dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureHistorySchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("history ready")
	return &History{db: db, path: path, l: applog.WithComponent("storage")}, nil
}

func ensureHistorySchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS history (
			id    INTEGER PRIMARY KEY AUTOINCREMENT,
			kind  TEXT NOT NULL,
			path  TEXT NOT NULL,
			at    INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_history_path ON history(path);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// Path is the database file location.
func (h *History) Path() string { return h.path }

// Record appends an entry for path. Relative paths are stored absolute.
func (h *History) Record(ctx context.Context, kind, path string) error {
	if h == nil || h.db == nil {
		return errors.New("history is closed")
	}
	if strings.TrimSpace(kind) == "" || strings.TrimSpace(path) == "" {
		return errors.New("kind and path are required")
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if _, err := h.db.ExecContext(ctx, `INSERT INTO history (kind, path, at) VALUES(?, ?, ?)`, kind, path, time.Now().UnixNano()); err != nil {
		h.l.Warn("history insert failed", slog.String("op", "history_record"), slog.Any("err", err))
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// Recent lists up to n distinct paths, newest first. Each path is reported with
// the kind and time of its latest entry.
func (h *History) Recent(ctx context.Context, n int) ([]Entry, error) {
	if h == nil || h.db == nil {
		return nil, errors.New("history is closed")
	}
	if n <= 0 {
		n = 10
	}
	rows, err := h.db.QueryContext(ctx, `
		SELECT MAX(id) AS last, kind, path, at
		FROM history
		GROUP BY path
		ORDER BY last DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var at int64
		if err := rows.Scan(&e.ID, &e.Kind, &e.Path, &at); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.At = time.Unix(0, at)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Prune keeps only the newest keep rows.
func (h *History) Prune(ctx context.Context, keep int) error {
	if h == nil || h.db == nil {
		return errors.New("history is closed")
	}
	_, err := h.db.ExecContext(ctx, `DELETE FROM history WHERE id NOT IN (SELECT id FROM history ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	return nil
}

func (h *History) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	err := h.db.Close()
	h.db = nil
	return err
}
