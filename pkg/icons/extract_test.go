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

package icons

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	testhelpers "github.com/ZaparooProject/steam-desktop/pkg/testing/helpers"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var red = color.NRGBA{R: 0xFF, A: 0xFF}

func writeContainer(t *testing.T, fs afero.Fs, path string, data []byte) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, data, 0o644))
}

func sizesOf(icons []Icon) []int {
	out := make([]int, len(icons))
	for i, ic := range icons {
		out[i] = ic.Size
	}
	return out
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestExtract_Zip(t *testing.T) {
	t.Parallel()

	t.Run("square_pngs_only", func(t *testing.T) {
		t.Parallel()

		png32 := testhelpers.EncodePNG(32, 32, red)
		fs := afero.NewMemMapFs()
		writeContainer(t, fs, "/c.zip", testhelpers.EncodeZip([]testhelpers.ZipEntry{
			{Name: "128.png", Data: testhelpers.EncodePNG(128, 128, red)},
			{Name: "icons/32.PNG", Data: png32},
			{Name: "wide.png", Data: testhelpers.EncodePNG(64, 32, red)},
			{Name: "photo.png", Data: testhelpers.EncodeJPEG(48, 48)},
			{Name: "broken.png", Data: []byte("not an image")},
			{Name: "readme.txt", Data: []byte("hello")},
			{Name: "dir.png/"},
		}))

		icons, err := Extract(fs, ContainerRef{Path: "/c.zip", Kind: KindZip})
		require.NoError(t, err)
		assert.Equal(t, []int{32, 128}, sizesOf(icons))
		assert.Equal(t, png32, icons[0].Data, "zip payloads are passed through untouched")
	})

	t.Run("first_size_wins", func(t *testing.T) {
		t.Parallel()

		first := testhelpers.EncodePNG(16, 16, red)
		fs := afero.NewMemMapFs()
		writeContainer(t, fs, "/c.zip", testhelpers.EncodeZip([]testhelpers.ZipEntry{
			{Name: "a.png", Data: first},
			{Name: "b.png", Data: testhelpers.EncodePNG(16, 16, color.NRGBA{B: 0xFF, A: 0xFF})},
		}))

		icons, err := Extract(fs, ContainerRef{Path: "/c.zip", Kind: KindZip})
		require.NoError(t, err)
		require.Len(t, icons, 1)
		assert.Equal(t, first, icons[0].Data)
	})

	t.Run("corrupt_archive", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		writeContainer(t, fs, "/c.zip", []byte("PK\x03\x04 definitely not a zip"))

		_, err := Extract(fs, ContainerRef{Path: "/c.zip", Kind: KindZip})
		require.ErrorIs(t, err, ErrUnreadableContainer)
	})

	t.Run("missing_file", func(t *testing.T) {
		t.Parallel()

		_, err := Extract(afero.NewMemMapFs(), ContainerRef{Path: "/nope.zip", Kind: KindZip})
		require.ErrorIs(t, err, ErrUnreadableContainer)
	})
}

func TestExtract_ZipProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 8).Draw(t, "n")
		var entries []testhelpers.ZipEntry
		want := make(map[int]bool)
		for i := range n {
			w := rapid.IntRange(1, 40).Draw(t, fmt.Sprintf("w%d", i))
			h := rapid.IntRange(1, 40).Draw(t, fmt.Sprintf("h%d", i))
			if w == h {
				want[w] = true
			}
			entries = append(entries, testhelpers.ZipEntry{
				Name: fmt.Sprintf("%d.png", i),
				Data: testhelpers.EncodePNG(w, h, red),
			})
		}

		fs := afero.NewMemMapFs()
		if err := afero.WriteFile(fs, "/c.zip", testhelpers.EncodeZip(entries), 0o644); err != nil {
			t.Fatal(err)
		}

		icons, err := Extract(fs, ContainerRef{Path: "/c.zip", Kind: KindZip})
		if err != nil {
			t.Fatal(err)
		}
		if len(icons) != len(want) {
			t.Fatalf("got %d icons, want %d", len(icons), len(want))
		}
		prev := 0
		for _, ic := range icons {
			img, err := png.Decode(bytes.NewReader(ic.Data))
			if err != nil {
				t.Fatal(err)
			}
			b := img.Bounds()
			if b.Dx() != b.Dy() || b.Dx() != ic.Size {
				t.Fatalf("icon size %d decoded as %dx%d", ic.Size, b.Dx(), b.Dy())
			}
			if !want[ic.Size] || ic.Size <= prev {
				t.Fatalf("unexpected or unsorted size %d", ic.Size)
			}
			prev = ic.Size
		}
	})
}

func TestExtract_ICO(t *testing.T) {
	t.Parallel()

	t.Run("png_and_bitmap_images", func(t *testing.T) {
		t.Parallel()

		masked := image.NewPaletted(image.Rect(0, 0, 16, 16), color.Palette{color.Transparent, red})
		for i := range masked.Pix {
			masked.Pix[i] = 1
		}
		masked.SetColorIndex(0, 0, 0)

		fs := afero.NewMemMapFs()
		writeContainer(t, fs, "/c.ico", testhelpers.EncodeICO([]testhelpers.ICOEntry{
			{Width: 256, Height: 256, BitCount: 32, Data: testhelpers.EncodePNG(256, 256, red)},
			testhelpers.ICOImage(testhelpers.SolidImage(32, 32, color.NRGBA{G: 0xFF, A: 0x80})),
			testhelpers.ICOImage(masked),
		}))

		icons, err := Extract(fs, ContainerRef{Path: "/c.ico", Kind: KindICO})
		require.NoError(t, err)
		require.Equal(t, []int{16, 32, 256}, sizesOf(icons))

		small := decodePNG(t, icons[0].Data)
		_, _, _, a := small.At(0, 0).RGBA()
		assert.Zero(t, a, "masked pixel is transparent")
		r, _, _, a := small.At(1, 1).RGBA()
		assert.Equal(t, uint32(0xFFFF), a)
		assert.Equal(t, uint32(0xFFFF), r)

		mid := color.NRGBAModel.Convert(decodePNG(t, icons[1].Data).At(5, 5)).(color.NRGBA)
		assert.Equal(t, color.NRGBA{G: 0xFF, A: 0x80}, mid, "32 bpp alpha is kept")
	})

	t.Run("deepest_variant_per_size", func(t *testing.T) {
		t.Parallel()

		mono := image.NewPaletted(image.Rect(0, 0, 16, 16), color.Palette{color.NRGBA{B: 0xFF, A: 0xFF}})
		deep := testhelpers.ICOImage(testhelpers.SolidImage(16, 16, red))
		shallow := testhelpers.ICOImage(mono)
		require.Greater(t, deep.BitCount, shallow.BitCount)

		fs := afero.NewMemMapFs()
		writeContainer(t, fs, "/c.ico", testhelpers.EncodeICO([]testhelpers.ICOEntry{shallow, deep}))

		icons, err := Extract(fs, ContainerRef{Path: "/c.ico", Kind: KindICO})
		require.NoError(t, err)
		require.Len(t, icons, 1)

		c := color.NRGBAModel.Convert(decodePNG(t, icons[0].Data).At(0, 0)).(color.NRGBA)
		assert.Equal(t, red, c)
	})

	t.Run("non_square_and_undeclared_sizes_dropped", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		writeContainer(t, fs, "/c.ico", testhelpers.EncodeICO([]testhelpers.ICOEntry{
			{Width: 48, Height: 48, BitCount: 32, Data: testhelpers.EncodePNG(48, 24, red)},
			{Width: 64, Height: 64, BitCount: 32, Data: testhelpers.EncodePNG(40, 40, red)},
			{Width: 24, Height: 24, BitCount: 32, Data: testhelpers.EncodePNG(24, 24, red)},
		}))

		icons, err := Extract(fs, ContainerRef{Path: "/c.ico", Kind: KindICO})
		require.NoError(t, err)
		assert.Equal(t, []int{24}, sizesOf(icons))
	})

	t.Run("bad_header", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		writeContainer(t, fs, "/c.ico", []byte{0, 0, 2, 0, 1, 0})

		_, err := Extract(fs, ContainerRef{Path: "/c.ico", Kind: KindICO})
		require.ErrorIs(t, err, ErrUnreadableContainer)
	})

	t.Run("entry_outside_file", func(t *testing.T) {
		t.Parallel()

		data := testhelpers.EncodeICO([]testhelpers.ICOEntry{
			{Width: 16, Height: 16, BitCount: 32, Data: testhelpers.EncodePNG(16, 16, red)},
		})
		fs := afero.NewMemMapFs()
		writeContainer(t, fs, "/c.ico", data[:len(data)-10])

		_, err := Extract(fs, ContainerRef{Path: "/c.ico", Kind: KindICO})
		require.ErrorIs(t, err, ErrUnreadableContainer)
	})

	t.Run("truncated_bitmap_skipped", func(t *testing.T) {
		t.Parallel()

		broken := testhelpers.ICOImage(testhelpers.SolidImage(16, 16, red))
		broken.Data = broken.Data[:60]
		fs := afero.NewMemMapFs()
		writeContainer(t, fs, "/c.ico", testhelpers.EncodeICO([]testhelpers.ICOEntry{
			broken,
			{Width: 32, Height: 32, BitCount: 32, Data: testhelpers.EncodePNG(32, 32, red)},
		}))

		icons, err := Extract(fs, ContainerRef{Path: "/c.ico", Kind: KindICO})
		require.NoError(t, err)
		assert.Equal(t, []int{32}, sizesOf(icons))
	})
}

func TestExtract_ICOProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(t, "n")
		var entries []testhelpers.ICOEntry
		declared := make(map[int]bool)
		for i := range n {
			size := rapid.SampledFrom([]int{16, 24, 32, 48, 64}).Draw(t, fmt.Sprintf("size%d", i))
			w := size
			h := size
			if rapid.Bool().Draw(t, fmt.Sprintf("skew%d", i)) {
				h = rapid.IntRange(1, 64).Draw(t, fmt.Sprintf("h%d", i))
			}
			declared[size] = true

			entry := testhelpers.ICOEntry{BitCount: 32, Data: testhelpers.EncodePNG(w, h, red)}
			if rapid.Bool().Draw(t, fmt.Sprintf("bitmap%d", i)) {
				entry = testhelpers.ICOImage(testhelpers.SolidImage(w, h, red))
			}
			entry.Width, entry.Height = size, size
			entries = append(entries, entry)
		}

		fs := afero.NewMemMapFs()
		if err := afero.WriteFile(fs, "/c.ico", testhelpers.EncodeICO(entries), 0o644); err != nil {
			t.Fatal(err)
		}

		icons, err := Extract(fs, ContainerRef{Path: "/c.ico", Kind: KindICO})
		if err != nil {
			t.Fatal(err)
		}
		for _, ic := range icons {
			if !declared[ic.Size] {
				t.Fatalf("emitted size %d was never declared", ic.Size)
			}
			img, err := png.Decode(bytes.NewReader(ic.Data))
			if err != nil {
				t.Fatal(err)
			}
			if b := img.Bounds(); b.Dx() != ic.Size || b.Dy() != ic.Size {
				t.Fatalf("icon size %d decoded as %dx%d", ic.Size, b.Dx(), b.Dy())
			}
		}
	})
}
