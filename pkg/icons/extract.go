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
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // reject GIFs named .png
	_ "image/jpeg" // reject JPEGs named .png
	"io"
	"path"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	// maxContainerSize bounds how much of a container file is read.
	maxContainerSize = 32 << 20
	// maxEntrySize bounds a single decompressed zip entry.
	maxEntrySize = 16 << 20
)

var ErrUnreadableContainer = errors.New("unreadable icon container")

// Extract returns the square icons held in ref, sorted by size. Individual
// images that fail to decode are skipped; a container that cannot be
// opened at all returns ErrUnreadableContainer.
func Extract(fs afero.Fs, ref ContainerRef) ([]Icon, error) {
	switch ref.Kind {
	case KindZip:
		return extractZip(fs, ref.Path)
	case KindICO:
		return extractICO(fs, ref.Path)
	default:
		return nil, fmt.Errorf("%w: %s: unknown kind %d", ErrUnreadableContainer, ref.Path, ref.Kind)
	}
}

func readContainer(fs afero.Fs, p string) ([]byte, error) {
	f, err := fs.Open(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableContainer, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing icon container")
		}
	}()

	data, err := io.ReadAll(io.LimitReader(f, maxContainerSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadableContainer, p, err)
	}
	if len(data) > maxContainerSize {
		return nil, fmt.Errorf("%w: %s: larger than %d bytes", ErrUnreadableContainer, p, maxContainerSize)
	}
	return data, nil
}

func extractZip(fs afero.Fs, p string) ([]Icon, error) {
	data, err := readContainer(fs, p)
	if err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadableContainer, p, err)
	}

	bySize := make(map[int]Icon)
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() || !strings.EqualFold(path.Ext(zf.Name), ".png") {
			continue
		}

		raw, err := readZipEntry(zf)
		if err != nil {
			log.Warn().Err(err).Str("container", p).Str("entry", zf.Name).Msg("skipping unreadable icon")
			continue
		}

		cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
		if err != nil {
			log.Warn().Err(err).Str("container", p).Str("entry", zf.Name).Msg("skipping undecodable icon")
			continue
		}
		if format != "png" {
			log.Warn().Str("container", p).Str("entry", zf.Name).Str("format", format).
				Msg("skipping icon that is not a png")
			continue
		}
		if cfg.Width != cfg.Height {
			log.Warn().Str("container", p).Str("entry", zf.Name).
				Int("width", cfg.Width).Int("height", cfg.Height).
				Msg("skipping non-square icon")
			continue
		}
		// DecodeConfig only reads the header; a full decode catches
		// truncated or corrupt pixel data.
		if _, _, err := image.Decode(bytes.NewReader(raw)); err != nil {
			log.Warn().Err(err).Str("container", p).Str("entry", zf.Name).Msg("skipping corrupt icon")
			continue
		}

		if _, dup := bySize[cfg.Width]; dup {
			log.Debug().Str("container", p).Str("entry", zf.Name).Int("size", cfg.Width).
				Msg("duplicate icon size, keeping first")
			continue
		}
		bySize[cfg.Width] = Icon{Size: cfg.Width, Data: raw}
	}

	return sortedIcons(bySize), nil
}

func readZipEntry(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if len(data) > maxEntrySize {
		return nil, fmt.Errorf("entry larger than %d bytes", maxEntrySize)
	}
	return data, nil
}

func sortedIcons(bySize map[int]Icon) []Icon {
	out := make([]Icon, 0, len(bySize))
	for _, ic := range bySize {
		out = append(out, ic)
	}
	slices.SortFunc(out, func(a, b Icon) int { return a.Size - b.Size })
	return out
}
