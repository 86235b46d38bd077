/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"path/filepath"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"leancanvas/internal/canvas"
	"leancanvas/internal/grid"
	"leancanvas/internal/storage"
	"leancanvas/internal/textlayout"
)

// PNGOptions controls raster export.
//   - Width/Height: board size at 1x in pixels; grid.Defaults when zero.
//   - Scale: multiplies every dimension and font size (2 for print).
//   - Provider: text faces; a shared Go-font library when nil.
//   - HidePlaceholders: leave empty areas blank instead of showing the hint text.
type PNGOptions struct {
	Width, Height    int
	Scale            float64
	Provider         textlayout.Provider
	HidePlaceholders bool
}

var (
	sharedFontsOnce sync.Once
	sharedFonts     *textlayout.FontLibrary
	// Faces cached by the library keep glyph state; one raster at a time.
	rasterMu sync.Mutex
)

func defaultProvider() textlayout.Provider {
	sharedFontsOnce.Do(func() { sharedFonts = textlayout.NewFontLibrary() })
	return textlayout.OTProvider{Lib: sharedFonts}
}

func (o PNGOptions) normalized() PNGOptions {
	d := grid.Defaults()
	if o.Width <= 0 {
		o.Width = int(d.Width)
	}
	if o.Height <= 0 {
		o.Height = int(d.Height)
	}
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.Provider == nil {
		o.Provider = defaultProvider()
	}
	return o
}

// RenderPNG draws the grid with each field's text into a new image. Only the grid
// is drawn; no surface chrome.
func RenderPNG(rec canvas.Record, opt PNGOptions) (*image.RGBA, error) {
	opt = opt.normalized()
	k := opt.Scale
	w := int(math.Round(float64(opt.Width) * k))
	h := int(math.Round(float64(opt.Height) * k))
	if w <= 0 || h <= 0 || w > 20000 || h > 20000 {
		return nil, fmt.Errorf("invalid image size %dx%d", w, h)
	}

	rasterMu.Lock()
	defer rasterMu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: grid.Board}, image.Point{}, draw.Src)

	d := grid.Defaults()
	lo := grid.Options{Width: float64(w), Height: float64(h), Padding: d.Padding * k, Gap: d.Gap * k, TopShare: d.TopShare}
	label, _ := textlayout.GetStyle("Label")
	body, _ := textlayout.GetStyle("Body")
	hint, _ := textlayout.GetStyle("Placeholder")
	label, body, hint = label.Scaled(k), body.Scaled(k), hint.Scaled(k)
	pad := 12 * k

	for _, c := range grid.Layout(lo) {
		x0, y0 := int(math.Round(c.Rect.X)), int(math.Round(c.Rect.Y))
		x1, y1 := int(math.Round(c.Rect.X+c.Rect.W))-1, int(math.Round(c.Rect.Y+c.Rect.H))-1
		fillRect(img, x0, y0, x1, y1, grid.Tint(c.Field))
		strokeRect(img, x0, y0, x1, y1, grid.Border)

		inner := c.Rect.Inset(pad, pad)
		if inner.W <= 0 || inner.H <= 0 {
			continue
		}
		lb := textlayout.Fit(opt.Provider, label, c.Field.Label(), inner.W, inner.H)
		y := drawLines(img, opt.Provider, label, lb, inner.X, inner.Y, grid.Ink)
		y += pad / 2
		room := inner.Y + inner.H - y
		if room <= 0 {
			continue
		}

		text, st, col := rec.Value(c.Field), body, grid.Ink
		if text == "" {
			if opt.HidePlaceholders {
				continue
			}
			text, st, col = c.Field.Placeholder(), hint, grid.Placeholder
		}
		box := textlayout.Fit(opt.Provider, st, text, inner.W, room)
		drawLines(img, opt.Provider, st, box, inner.X, y, col)
	}
	return img, nil
}

// drawLines draws a fitted box with its top at y and returns the y below it.
func drawLines(img *image.RGBA, p textlayout.Provider, st textlayout.TextStyle, box textlayout.Box, x, y float64, col color.RGBA) float64 {
	face, met := p.Resolve(st.Font)
	dr := &font.Drawer{Dst: img, Src: image.NewUniform(col), Face: face}
	lh := met.LineHeight() + st.Leading
	for _, ln := range box.Lines {
		dr.Dot = fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6((y + met.Ascent) * 64)}
		dr.DrawString(ln)
		y += lh
	}
	return y
}

// EncodePNG renders rec and writes PNG bytes to w.
func EncodePNG(w io.Writer, rec canvas.Record, opt PNGOptions) error {
	img, err := RenderPNG(rec, opt)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// ExportPNG renders rec and writes dir/lean-canvas.png, returning the path.
func ExportPNG(dir string, rec canvas.Record, opt PNGOptions) (string, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, rec, opt); err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, PNGFileName)
	if err := storage.ReplaceFileAtomic(path, buf.Bytes()); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// PNGCapture is a canvas.Rasterizer that saves the grid into Dir.
// Done, when set, receives the written path.
type PNGCapture struct {
	Dir     string
	Options PNGOptions
	Done    func(path string)
}

func (c PNGCapture) Rasterize(rec canvas.Record) error {
	path, err := ExportPNG(c.Dir, rec, c.Options)
	if err != nil {
		return err
	}
	if c.Done != nil {
		c.Done(path)
	}
	return nil
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	// top and bottom
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	// left and right
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	draw.Draw(img, image.Rect(x0, y0, x1+1, y1+1), &image.Uniform{C: col}, image.Point{}, draw.Src)
}
