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
	"image/color"
	"io"
	"sync"

	tdcanvas "github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/svg"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"leancanvas/internal/canvas"
	"leancanvas/internal/grid"
	"leancanvas/internal/storage"
	"leancanvas/internal/textlayout"
)

// SVGOptions controls vector export. Sizes are millimetres, fonts points.
type SVGOptions struct {
	Width, Height       float64
	LabelSize, BodySize float64
	HidePlaceholders    bool
}

func (o SVGOptions) normalized() SVGOptions {
	if o.Width <= 0 || o.Height <= 0 {
		o.Width, o.Height = 297, 210
	}
	if o.LabelSize <= 0 {
		o.LabelSize = 9
	}
	if o.BodySize <= 0 {
		o.BodySize = 8
	}
	return o
}

var (
	svgFamilyOnce sync.Once
	svgFamily     *tdcanvas.FontFamily
	svgFamilyErr  error
)

func goFamily() (*tdcanvas.FontFamily, error) {
	svgFamilyOnce.Do(func() {
		fam := tdcanvas.NewFontFamily("Go")
		if err := fam.LoadFont(goregular.TTF, 0, tdcanvas.FontRegular); err != nil {
			svgFamilyErr = fmt.Errorf("load go regular: %w", err)
			return
		}
		if err := fam.LoadFont(gobold.TTF, 0, tdcanvas.FontBold); err != nil {
			svgFamilyErr = fmt.Errorf("load go bold: %w", err)
			return
		}
		svgFamily = fam
	})
	return svgFamily, svgFamilyErr
}

// WriteSVG renders rec as an SVG document to w.
func WriteSVG(w io.Writer, rec canvas.Record, opt SVGOptions) error {
	opt = opt.normalized()
	fam, err := goFamily()
	if err != nil {
		return err
	}
	c := tdcanvas.New(opt.Width, opt.Height)
	ctx := tdcanvas.NewContext(c)
	ctx.SetCoordSystem(tdcanvas.CartesianIV) // top-left origin like the grid

	ctx.SetFillColor(grid.Board)
	ctx.SetStrokeColor(color.RGBA{})
	ctx.DrawPath(0, 0, tdcanvas.Rectangle(opt.Width, opt.Height))

	lo := grid.Options{Width: opt.Width, Height: opt.Height, Padding: 6, Gap: 3, TopShare: grid.Defaults().TopShare}
	pad := 3.0
	labelFace := fam.Face(opt.LabelSize, grid.Ink, tdcanvas.FontBold, tdcanvas.FontNormal)
	bodyFace := fam.Face(opt.BodySize, grid.Ink, tdcanvas.FontRegular, tdcanvas.FontNormal)
	hintFace := fam.Face(opt.BodySize, grid.Placeholder, tdcanvas.FontRegular, tdcanvas.FontNormal)

	for _, cell := range grid.Layout(lo) {
		ctx.SetFillColor(grid.Tint(cell.Field))
		ctx.SetStrokeColor(grid.Border)
		ctx.SetStrokeWidth(0.3)
		ctx.DrawPath(cell.Rect.X, cell.Rect.Y, tdcanvas.Rectangle(cell.Rect.W, cell.Rect.H))

		inner := cell.Rect.Inset(pad, pad)
		y := drawFaceLines(ctx, labelFace, []string{cell.Field.Label()}, inner.X, inner.Y)
		y += pad / 2

		text, face := rec.Value(cell.Field), bodyFace
		if text == "" {
			if opt.HidePlaceholders {
				continue
			}
			text, face = cell.Field.Placeholder(), hintFace
		}
		lh := face.Metrics().LineHeight
		lines := textlayout.WrapFunc(face.TextWidth, text, inner.W)
		if lh > 0 {
			lines, _ = textlayout.Clip(face.TextWidth, lines, int((inner.Y+inner.H-y)/lh), inner.W)
		}
		drawFaceLines(ctx, face, lines, inner.X, y)
	}

	writer := svg.New(w, opt.Width, opt.Height, nil)
	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return fmt.Errorf("render svg: %w", err)
	}
	return nil
}

// drawFaceLines draws lines with their top at y and returns the y below them.
func drawFaceLines(ctx *tdcanvas.Context, face *tdcanvas.FontFace, lines []string, x, y float64) float64 {
	m := face.Metrics()
	for _, ln := range lines {
		ctx.DrawText(x, y+m.Ascent, tdcanvas.NewTextLine(face, ln, tdcanvas.Left))
		y += m.LineHeight
	}
	return y
}

// ExportSVG writes rec to path as an SVG.
func ExportSVG(path string, rec canvas.Record, opt SVGOptions) error {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, rec, opt); err != nil {
		return err
	}
	if err := storage.ReplaceFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
