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
	"errors"
	"fmt"
	"image"
	"image/png"
	"path/filepath"
	"strconv"

	"github.com/ZaparooProject/steam-desktop/pkg/helpers"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/image/draw"
)

// IconPath returns where an icon of the given size is placed in the
// hicolor theme under outputRoot.
func IconPath(outputRoot string, size int, name string) string {
	dim := strconv.Itoa(size)
	return filepath.Join(outputRoot, "icons", "hicolor", dim+"x"+dim, "apps", name+".png")
}

// Placer writes extracted icons into a hicolor icon theme.
type Placer struct {
	Fs         afero.Fs
	OutputRoot string
	// MaxSize caps the placed resolution when non-zero. Larger icons are
	// not placed at their native size; the largest one is scaled down to
	// fill the MaxSize slot unless a native icon already does.
	MaxSize int
}

// Place writes every icon under name and returns the paths written. A
// failed write does not stop the remaining icons; all failures are
// returned joined.
func (p *Placer) Place(name string, icons []Icon) ([]string, error) {
	var (
		written []string
		errs    []error
		largest *Icon
		filled  bool
	)

	for i := range icons {
		ic := &icons[i]
		if p.MaxSize > 0 && ic.Size > p.MaxSize {
			if largest == nil || ic.Size > largest.Size {
				largest = ic
			}
			continue
		}
		if ic.Size == p.MaxSize {
			filled = true
		}

		path, err := p.write(name, ic.Size, ic.Data)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		written = append(written, path)
	}

	if largest != nil && !filled {
		data, err := downscale(largest.Data, p.MaxSize)
		if err != nil {
			errs = append(errs, fmt.Errorf("scale %dpx icon: %w", largest.Size, err))
		} else {
			log.Debug().Str("icon", name).Int("from", largest.Size).Int("to", p.MaxSize).
				Msg("scaled down oversized icon")
			path, err := p.write(name, p.MaxSize, data)
			if err != nil {
				errs = append(errs, err)
			} else {
				written = append(written, path)
			}
		}
	}

	return written, errors.Join(errs...)
}

func (p *Placer) write(name string, size int, data []byte) (string, error) {
	path := IconPath(p.OutputRoot, size, name)
	if err := helpers.WriteFileAtomic(p.Fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("place icon: %w", err)
	}
	return path, nil
}

func downscale(data []byte, size int) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}
