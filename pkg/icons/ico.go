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
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"
	"slices"

	"github.com/rs/zerolog/log"
	ico "github.com/sergeymakinen/go-ico"
	"github.com/spf13/afero"
)

const (
	icoHeaderLen = 6
	icoEntryLen  = 16
)

// icoEntry is one ICONDIRENTRY.
type icoEntry struct {
	data     []byte
	index    int
	width    int
	height   int
	bitCount int
}

func extractICO(fs afero.Fs, p string) ([]Icon, error) {
	data, err := readContainer(fs, p)
	if err != nil {
		return nil, err
	}

	entries, err := parseICO(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadableContainer, p, err)
	}

	declared := make(map[int]bool, len(entries))
	for _, e := range entries {
		if e.width == e.height {
			declared[e.width] = true
		}
	}

	// Deepest colour first so each size keeps its best variant.
	slices.SortStableFunc(entries, func(a, b icoEntry) int { return b.bitCount - a.bitCount })

	bySize := make(map[int]Icon)
	for _, e := range entries {
		img, err := decodeICOImage(e)
		if err != nil {
			log.Warn().Err(err).Str("container", p).Int("index", e.index).Msg("skipping undecodable icon")
			continue
		}

		b := img.Bounds()
		if b.Dx() != b.Dy() {
			log.Warn().Str("container", p).Int("index", e.index).
				Int("width", b.Dx()).Int("height", b.Dy()).
				Msg("skipping non-square icon")
			continue
		}
		size := b.Dx()
		if size != e.width || size != e.height {
			log.Warn().Str("container", p).Int("index", e.index).
				Int("declared", e.width).Int("decoded", size).
				Msg("icon size does not match directory entry")
		}
		if !declared[size] {
			continue
		}
		if _, dup := bySize[size]; dup {
			continue
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			log.Warn().Err(err).Str("container", p).Int("index", e.index).Msg("error encoding icon")
			continue
		}
		bySize[size] = Icon{Size: size, Data: buf.Bytes()}
	}

	return sortedIcons(bySize), nil
}

// parseICO reads the icon directory. Entries pointing outside the file are
// dropped.
func parseICO(data []byte) ([]icoEntry, error) {
	if len(data) < icoHeaderLen {
		return nil, errors.New("file too short for icon header")
	}
	reserved := binary.LittleEndian.Uint16(data[0:2])
	kind := binary.LittleEndian.Uint16(data[2:4])
	count := int(binary.LittleEndian.Uint16(data[4:6]))
	if reserved != 0 || kind != 1 {
		return nil, fmt.Errorf("not an icon file (reserved=%d type=%d)", reserved, kind)
	}
	if count == 0 {
		return nil, errors.New("icon file has no images")
	}
	if len(data) < icoHeaderLen+count*icoEntryLen {
		return nil, fmt.Errorf("icon directory truncated (%d entries)", count)
	}

	entries := make([]icoEntry, 0, count)
	for i := range count {
		raw := data[icoHeaderLen+i*icoEntryLen:]
		w, h := int(raw[0]), int(raw[1])
		if w == 0 {
			w = 256
		}
		if h == 0 {
			h = 256
		}
		size := binary.LittleEndian.Uint32(raw[8:12])
		offset := binary.LittleEndian.Uint32(raw[12:16])
		end := uint64(offset) + uint64(size)
		if size == 0 || end > uint64(len(data)) {
			log.Warn().Int("index", i).Uint32("offset", offset).Uint32("size", size).
				Msg("icon entry points outside the file")
			continue
		}
		entries = append(entries, icoEntry{
			index:    i,
			width:    w,
			height:   h,
			bitCount: int(binary.LittleEndian.Uint16(raw[6:8])),
			data:     data[offset:end],
		})
	}
	if len(entries) == 0 {
		return nil, errors.New("icon file has no readable images")
	}
	return entries, nil
}

// decodeICOImage wraps a single directory entry in a one-image icon file and
// decodes that.
func decodeICOImage(e icoEntry) (image.Image, error) {
	var buf bytes.Buffer
	le := binary.LittleEndian
	_ = binary.Write(&buf, le, [3]uint16{0, 1, 1})
	buf.WriteByte(byte(e.width % 256))
	buf.WriteByte(byte(e.height % 256))
	buf.Write([]byte{0, 0})
	_ = binary.Write(&buf, le, uint16(1))
	_ = binary.Write(&buf, le, uint16(e.bitCount))  //nolint:gosec // read from a uint16
	_ = binary.Write(&buf, le, uint32(len(e.data))) //nolint:gosec // bounded by the file size
	_ = binary.Write(&buf, le, uint32(icoHeaderLen+icoEntryLen))
	buf.Write(e.data)

	img, err := ico.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("decode icon image: %w", err)
	}
	return img, nil
}
