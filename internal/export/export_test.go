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
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"beadboard/internal/domain"
)

func testDesign(t *testing.T, width, height int, cells []byte) domain.Design {
	t.Helper()
	if len(cells) != width*height {
		t.Fatalf("bad fixture: %d cells for %dx%d", len(cells), width, height)
	}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return domain.Design{
		ID:             "fixture",
		Width:          width,
		Height:         height,
		PaletteVersion: "v1",
		GridEncoded:    domain.EncodeCells(cells),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestWritePatternPDF(t *testing.T) {
	d := testDesign(t, 3, 3, []byte{
		0, 3, 0,
		3, 3, 3,
		0, 3, 0,
	})
	out := filepath.Join(t.TempDir(), "pattern.pdf")
	if err := WritePatternPDF(d, out, PDFOptions{}); err != nil {
		t.Fatalf("WritePatternPDF: %v", err)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF, starts with %q", raw[:min(8, len(raw))])
	}
	if len(raw) < 500 {
		t.Fatalf("suspiciously small PDF: %d bytes", len(raw))
	}
}

func TestWritePatternPDFRejectsInvalidDesign(t *testing.T) {
	d := testDesign(t, 2, 2, []byte{0, 0, 0, 0})
	d.GridEncoded = domain.EncodeCells([]byte{0})
	out := filepath.Join(t.TempDir(), "bad.pdf")
	if err := WritePatternPDF(d, out, PDFOptions{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("invalid design produced an output file")
	}
}

func TestWritePreviewPNG(t *testing.T) {
	d := testDesign(t, 2, 2, []byte{
		1, 0,
		0, 0,
	})
	out := filepath.Join(t.TempDir(), "preview.png")
	if err := WritePreviewPNG(d, out, PNGOptions{CellPixels: 4}); err != nil {
		t.Fatalf("WritePreviewPNG: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 8 || b.Dy() != 8 {
		t.Fatalf("preview is %dx%d, want 8x8", b.Dx(), b.Dy())
	}

	black, _ := domain.ColorByIndex(domain.PaletteV1, 1)
	r, g, bl, _ := img.At(1, 1).RGBA()
	if uint8(r>>8) != black.R || uint8(g>>8) != black.G || uint8(bl>>8) != black.B {
		t.Fatalf("bead pixel = (%d,%d,%d), want palette color", r>>8, g>>8, bl>>8)
	}
	r, g, bl, _ = img.At(6, 6).RGBA()
	if uint8(r>>8) != 0xff || uint8(g>>8) != 0xff || uint8(bl>>8) != 0xff {
		t.Fatalf("empty pixel = (%d,%d,%d), want white", r>>8, g>>8, bl>>8)
	}
}

func TestWritePreviewPNGMarksUnstable(t *testing.T) {
	// A lone bead sheds when fused, so its cell gets the warning outline.
	d := testDesign(t, 3, 1, []byte{1, 0, 0})
	out := filepath.Join(t.TempDir(), "unstable.png")
	if err := WritePreviewPNG(d, out, PNGOptions{CellPixels: 4, MarkUnstable: true}); err != nil {
		t.Fatalf("WritePreviewPNG: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	r, g, b, _ := img.At(0, 0).RGBA()
	if uint8(r>>8) != unstableOutline.R || uint8(g>>8) != unstableOutline.G || uint8(b>>8) != unstableOutline.B {
		t.Fatalf("unstable cell corner = (%d,%d,%d), want outline color", r>>8, g>>8, b>>8)
	}
}
