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

// Package icons finds an app's cached icon container, extracts square
// PNG icons from it and places them in a hicolor icon theme tree.
package icons

import (
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Kind is the container format of a cached icon.
type Kind int

const (
	// KindZip is a zip archive of PNGs, referenced by linuxclienticon.
	KindZip Kind = iota
	// KindICO is a Windows icon file, referenced by clienticon.
	KindICO
)

func (k Kind) String() string {
	switch k {
	case KindZip:
		return "zip"
	case KindICO:
		return "ico"
	default:
		return "unknown"
	}
}

// Ext returns the file extension Steam uses for the kind.
func (k Kind) Ext() string {
	return "." + k.String()
}

type source struct {
	field string
	kind  Kind
}

// sources are probed in order; the Linux zip beats the Windows icon.
var sources = []source{
	{field: "linuxclienticon", kind: KindZip},
	{field: "clienticon", kind: KindICO},
}

// ContainerRef is a resolved icon container on disk.
type ContainerRef struct {
	Path string
	Kind Kind
}

// Icon is one square icon. Data is always PNG encoded.
type Icon struct {
	Data []byte
	Size int
}

// IconHasher exposes the icon hash fields of an app's metadata.
type IconHasher interface {
	IconHash(field string) (string, bool)
}

// CacheDir returns Steam's icon cache directory under a Steam root.
func CacheDir(steamRoot string) string {
	return filepath.Join(steamRoot, "steam", "games")
}

// Resolve picks the first icon container referenced by meta that exists
// as a regular file in cacheDir.
func Resolve(fs afero.Fs, cacheDir string, meta IconHasher) (ContainerRef, bool) {
	for _, src := range sources {
		hash, ok := meta.IconHash(src.field)
		if !ok {
			continue
		}
		if strings.ContainsAny(hash, `/\`) || hash == "." || hash == ".." {
			log.Warn().Str("field", src.field).Str("hash", hash).Msg("ignoring malformed icon hash")
			continue
		}

		path := filepath.Join(cacheDir, hash+src.kind.Ext())
		fi, err := fs.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			log.Debug().Str("path", path).Msg("icon container not found")
			continue
		}
		return ContainerRef{Path: path, Kind: src.kind}, true
	}
	return ContainerRef{}, false
}
