//go:build fyne && cgo

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
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	fcanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"leancanvas/internal/canvas"
	"leancanvas/internal/config"
	"leancanvas/internal/crash"
	"leancanvas/internal/export"
	"leancanvas/internal/grid"
	applog "leancanvas/internal/log"
	"leancanvas/internal/version"
)

// fyneScheduler defers follow-ups to the Fyne main goroutine. fyne.Do keeps FIFO order.
type fyneScheduler struct{}

func (fyneScheduler) Schedule(task func()) { fyne.Do(task) }

// entryHandle exposes a multi-line entry as a canvas.Handle. Entry widgets only
// expose a caret, so Selection reports an empty range and Select places the caret at end.
type entryHandle struct {
	e     *widget.Entry
	focus func(fyne.Focusable)
}

func (h *entryHandle) Selection() (int, int) {
	o := offsetOf(h.e.Text, h.e.CursorRow, h.e.CursorColumn)
	return o, o
}

func (h *entryHandle) Select(_, end int) {
	h.e.CursorRow, h.e.CursorColumn = rowCol(h.e.Text, end)
	h.e.Refresh()
}

func (h *entryHandle) Focus() {
	if h.focus != nil {
		h.focus(h.e)
	}
}

// board is the grid of tinted cards, one entry per field.
type board struct {
	sess    *Session
	entries map[canvas.Field]*widget.Entry
	root    *fyne.Container
	// syncing suppresses OnChanged while the record is mirrored into entries.
	syncing bool
}

func newBoard(sess *Session, focus func(fyne.Focusable)) *board {
	b := &board{sess: sess, entries: map[canvas.Field]*widget.Entry{}}
	var cards []fyne.CanvasObject
	for _, f := range canvas.Fields() {
		f := f
		e := widget.NewMultiLineEntry()
		e.SetPlaceHolder(f.Placeholder())
		e.Wrapping = fyne.TextWrapWord
		e.OnChanged = func(s string) {
			if b.syncing {
				return
			}
			sess.Mgr.SetField(f, s)
		}
		b.entries[f] = e
		sess.Mgr.Bind(f, &entryHandle{e: e, focus: focus})

		bg := fcanvas.NewRectangle(grid.Tint(f))
		bg.StrokeColor = grid.Border
		bg.StrokeWidth = 1
		bg.CornerRadius = 6
		title := widget.NewLabelWithStyle(f.Label(), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
		cards = append(cards, container.NewStack(bg, container.NewBorder(title, nil, nil, nil, e)))
	}
	b.root = container.New(boardLayout{}, cards...)
	sess.Mgr.OnRender(b.render)
	return b
}

func (b *board) render(rec canvas.Record, _ canvas.Field) {
	b.syncing = true
	defer func() { b.syncing = false }()
	for f, e := range b.entries {
		if v := rec.Value(f); e.Text != v {
			e.SetText(v)
		}
	}
}

// boardLayout places the cards (canonical field order) on the lean canvas grid.
type boardLayout struct{}

func (boardLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	cells := grid.Layout(grid.Options{Width: float64(size.Width), Height: float64(size.Height), Padding: 8, Gap: 8})
	for i, c := range cells {
		if i >= len(objects) {
			return
		}
		objects[i].Move(fyne.NewPos(float32(c.Rect.X), float32(c.Rect.Y)))
		objects[i].Resize(fyne.NewSize(float32(c.Rect.W), float32(c.Rect.H)))
	}
}

func (boardLayout) MinSize([]fyne.CanvasObject) fyne.Size { return fyne.NewSize(900, 560) }

// themeFor maps general.theme to a Fyne theme. nil keeps the system variant.
func themeFor(name string) fyne.Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "light":
		return theme.LightTheme()
	case "dark":
		return theme.DarkTheme()
	default:
		return nil
	}
}

// Run starts the Fyne desktop window, optionally opening path.
func Run(path string, cfg config.AppConfig) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))

	hist := OpenHistory(cfg)
	if hist != nil {
		defer hist.Close()
	}
	sess := NewSession(cfg, fyneScheduler{}, hist)
	defer crash.Recover(sess.Mgr.Export)

	fyneApp := app.NewWithID("leancanvas")
	if th := themeFor(cfg.General.Theme); th != nil {
		fyneApp.Settings().SetTheme(th)
	}
	w := fyneApp.NewWindow("Lean Canvas")
	prefs := fyneApp.Preferences()
	winW := max(prefs.IntWithFallback("window.width", 1400), 900)
	winH := max(prefs.IntWithFallback("window.height", 900), 600)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
	})

	b := newBoard(sess, w.Canvas().Focus)
	status := widget.NewLabel("Ready")
	setTitle := func() {
		t := "Lean Canvas"
		if sess.Path != "" {
			t += " - " + filepath.Base(sess.Path)
		}
		w.SetTitle(t)
	}

	var rebuildMenu func()
	openPath := func(p string) {
		if err := sess.Open(p); err != nil {
			l.Error("import failed", slog.String("path", p), slog.Any("err", err))
			dialog.ShowError(err, w)
			return
		}
		status.SetText("Opened " + p)
		setTitle()
		rebuildMenu()
	}
	importJSON := func() {
		open := dialog.NewFileOpen(func(ur fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if ur == nil {
				return
			}
			p := ur.URI().Path()
			_ = ur.Close()
			openPath(p)
		}, w)
		open.SetFilter(fstorage.NewExtensionFileFilter([]string{".json"}))
		open.Show()
	}
	exportJSON := func() {
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			chosen := uc.URI().Path()
			_ = uc.Close()
			// The dialog creates an empty file at the chosen path.
			if fi, serr := os.Stat(chosen); serr == nil && fi.Size() == 0 {
				_ = os.Remove(chosen)
			}
			base := filepath.Base(chosen)
			if strings.EqualFold(filepath.Ext(base), ".json") {
				base = base[:len(base)-len(".json")]
			}
			out, err := sess.ExportAs(filepath.Dir(chosen), base)
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			status.SetText("Exported " + out)
			setTitle()
			rebuildMenu()
		}, w)
		save.SetFileName(sess.Cfg.Export.BaseName)
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".json"}))
		save.Show()
	}
	savePNG := func() {
		status.SetText("Rendering PNG…")
		sess.CapturePNG(func(p string, err error) {
			fyne.Do(func() {
				if err != nil {
					dialog.ShowError(fmt.Errorf("save PNG: %w", err), w)
					status.SetText("PNG failed.")
					return
				}
				status.SetText("Saved " + p)
			})
		})
	}
	exportVector := func(ext string) func() {
		return func() {
			save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
				if err != nil || uc == nil {
					if err != nil {
						dialog.ShowError(err, w)
					}
					return
				}
				out := uc.URI().Path()
				_ = uc.Close()
				if !strings.HasSuffix(strings.ToLower(out), ext) {
					_ = os.Remove(out)
					out += ext
				}
				rec := sess.Mgr.Export()
				if ext == ".pdf" {
					err = export.ExportPDF(out, rec, export.PDFOptions{})
				} else {
					err = export.ExportSVG(out, rec, export.SVGOptions{})
				}
				if err != nil {
					dialog.ShowError(err, w)
					return
				}
				status.SetText("Exported " + out)
			}, w)
			save.SetFileName(export.DefaultBaseName + ext)
			save.SetFilter(fstorage.NewExtensionFileFilter([]string{ext}))
			save.Show()
		}
	}

	openItem := fyne.NewMenuItem("Import JSON…", importJSON)
	exportItem := fyne.NewMenuItem("Export JSON…", exportJSON)
	pngItem := fyne.NewMenuItem("Save PNG", savePNG)
	pdfItem := fyne.NewMenuItem("Export PDF…", exportVector(".pdf"))
	svgItem := fyne.NewMenuItem("Export SVG…", exportVector(".svg"))
	openItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierControl}
	exportItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierControl}
	pngItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyP, Modifier: fyne.KeyModifierControl}
	recentItem := fyne.NewMenuItem("Open Recent", nil)
	rebuildMenu = func() {
		var items []*fyne.MenuItem
		for _, p := range sess.Recent(8) {
			p := p
			items = append(items, fyne.NewMenuItem(p, func() { openPath(p) }))
		}
		if len(items) == 0 {
			none := fyne.NewMenuItem("(none)", nil)
			none.Disabled = true
			items = append(items, none)
		}
		recentItem.ChildMenu = fyne.NewMenu("", items...)
		fileMenu := fyne.NewMenu("File", openItem, recentItem, exportItem, fyne.NewMenuItemSeparator(), pngItem, pdfItem, svgItem)
		w.SetMainMenu(fyne.NewMainMenu(fileMenu))
	}
	rebuildMenu()
	for _, it := range []*fyne.MenuItem{openItem, exportItem, pngItem} {
		it := it
		w.Canvas().AddShortcut(it.Shortcut, func(fyne.Shortcut) { it.Action() })
	}

	toolbar := container.NewHBox(
		widget.NewButton("Export JSON", exportJSON),
		widget.NewButton("Import JSON", importJSON),
		widget.NewButton("Save PNG", savePNG),
	)
	w.SetContent(container.NewBorder(toolbar, status, nil, nil, b.root))

	if path != "" {
		openPath(path)
	}
	w.ShowAndRun()
	return nil
}
