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

package steam

import (
	"fmt"
	"io"
	"strings"

	"github.com/andygrunwald/vdf"
	"github.com/spf13/afero"
)

// readTextVDF parses a text KeyValues file such as libraryfolders.vdf or an
// appmanifest_*.acf with all keys lower-cased.
func readTextVDF(fs afero.Fs, path string) (map[string]any, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return parseTextVDF(f)
}

func parseTextVDF(r io.Reader) (map[string]any, error) {
	m, err := vdf.NewParser(r).Parse()
	if err != nil {
		return nil, fmt.Errorf("parse vdf: %w", err)
	}
	return normalizeVDFKeys(m), nil
}

// normalizeVDFKeys recursively lowercases all keys in a map[string]any tree.
// Valve's VDF format is case-insensitive, but Go maps use exact string matching.
func normalizeVDFKeys(m map[string]any) map[string]any {
	result := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = normalizeVDFKeys(nested)
		}
		result[strings.ToLower(k)] = v
	}
	return result
}
