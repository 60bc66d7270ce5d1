/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"

	"beadboard/internal/domain"
	"beadboard/internal/stability"
)

// PNGOptions controls the preview render.
type PNGOptions struct {
	CellPixels   int  // output pixels per peg, default 16
	Smooth       bool // interpolate when scaling, like beads fused by ironing
	MarkUnstable bool // outline pegs the fused piece would shed
}

func (o *PNGOptions) fillDefaults() {
	if o.CellPixels <= 0 {
		o.CellPixels = 16
	}
}

var (
	previewBackground = color.RGBA{0xff, 0xff, 0xff, 0xff}
	unstableOutline   = color.RGBA{0xe5, 0x39, 0x35, 0xff}
)

// WritePreviewPNG renders a design to a PNG preview. The grid is rasterized
// at one pixel per peg and scaled up, so large boards stay cheap to render.
func WritePreviewPNG(d domain.Design, outPath string, opt PNGOptions) error {
	g, err := domain.GridFromDesign(d)
	if err != nil {
		return err
	}
	opt.fillDefaults()
	palette := domain.PaletteFor(d.PaletteVersion)

	base := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			v := g.Cells[y*g.Width+x]
			if v == domain.EmptyCell {
				base.SetRGBA(x, y, previewBackground)
				continue
			}
			if c, ok := domain.ColorByIndex(palette, v); ok {
				base.SetRGBA(x, y, color.RGBA{c.R, c.G, c.B, 0xff})
			} else {
				base.SetRGBA(x, y, color.RGBA{0x00, 0x00, 0x00, 0xff})
			}
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, g.Width*opt.CellPixels, g.Height*opt.CellPixels))
	scaler := xdraw.Interpolator(xdraw.NearestNeighbor)
	if opt.Smooth {
		scaler = xdraw.CatmullRom
	}
	scaler.Scale(out, out.Bounds(), base, base.Bounds(), xdraw.Src, nil)

	if opt.MarkUnstable {
		for idx := range stability.FindUnstable(g.Cells, g.Width, g.Height) {
			cx := (idx % g.Width) * opt.CellPixels
			cy := (idx / g.Width) * opt.CellPixels
			outlineCell(out, cx, cy, opt.CellPixels)
		}
	}

	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, out); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

// outlineCell draws a 1px border inside the cell's pixel block.
func outlineCell(img *image.RGBA, x0, y0, size int) {
	x1 := x0 + size - 1
	y1 := y0 + size - 1
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, unstableOutline)
		img.SetRGBA(x, y1, unstableOutline)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, unstableOutline)
		img.SetRGBA(x1, y, unstableOutline)
	}
}
