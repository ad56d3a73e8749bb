// Zaparoo Steam Desktop
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Steam Desktop.
//
// Zaparoo Steam Desktop is free software: you can redistribute it and/or
// modify it under the terms of the GNU General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Steam Desktop is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Steam Desktop.  If not, see <http://www.gnu.org/licenses/>.

package helpers

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	ico "github.com/sergeymakinen/go-ico"
)

// SolidImage returns a w×h image filled with c.
func SolidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

// EncodePNG returns a w×h solid PNG.
func EncodePNG(w, h int, c color.NRGBA) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, SolidImage(w, h, c)); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// EncodeJPEG returns a w×h solid JPEG.
func EncodeJPEG(w, h int) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, SolidImage(w, h, color.NRGBA{R: 0x80, A: 0xFF}), nil); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// ZipEntry is one file in a fixture archive. A name ending in "/" is a
// directory.
type ZipEntry struct {
	Name string
	Data []byte
}

// EncodeZip builds a zip archive holding entries in order.
func EncodeZip(entries []ZipEntry) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write(e.Data); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// ICOEntry is one image in a fixture icon file. Width and Height are the
// directory's declared dimensions; 256 is stored as 0.
type ICOEntry struct {
	Data     []byte
	Width    int
	Height   int
	BitCount int
}

// EncodeICO builds an icon file with the given images.
func EncodeICO(entries []ICOEntry) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	_ = binary.Write(&buf, le, uint16(0))
	_ = binary.Write(&buf, le, uint16(1))
	_ = binary.Write(&buf, le, uint16(len(entries))) //nolint:gosec // test fixture

	offset := 6 + 16*len(entries)
	for _, e := range entries {
		buf.WriteByte(byte(e.Width % 256))
		buf.WriteByte(byte(e.Height % 256))
		buf.WriteByte(0) // colour count
		buf.WriteByte(0) // reserved
		_ = binary.Write(&buf, le, uint16(1))
		_ = binary.Write(&buf, le, uint16(e.BitCount))  //nolint:gosec // test fixture
		_ = binary.Write(&buf, le, uint32(len(e.Data))) //nolint:gosec // test fixture
		_ = binary.Write(&buf, le, uint32(offset))      //nolint:gosec // test fixture
		offset += len(e.Data)
	}
	for _, e := range entries {
		buf.Write(e.Data)
	}
	return buf.Bytes()
}

// ICOImage encodes img the way icon editors store it, a bitmap with an AND
// mask for anything up to 255 pixels, and returns it as an entry with the
// matching directory fields.
func ICOImage(img image.Image) ICOEntry {
	var buf bytes.Buffer
	if err := ico.Encode(&buf, img); err != nil {
		panic(err)
	}
	data := buf.Bytes()
	offset := binary.LittleEndian.Uint32(data[18:22])
	return ICOEntry{
		Data:     data[offset:],
		Width:    img.Bounds().Dx(),
		Height:   img.Bounds().Dy(),
		BitCount: int(binary.LittleEndian.Uint16(data[12:14])),
	}
}
