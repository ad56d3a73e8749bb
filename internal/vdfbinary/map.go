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

package vdfbinary

import (
	"strconv"
	"strings"
)

// Map is a decoded KeyValues object. Values are Map, string, int32,
// uint32, float32, uint64 or int64. Keys are always lower case.
type Map map[string]any

// GetMap returns the nested object at key.
func (m Map) GetMap(key string) (Map, bool) {
	v, ok := m[strings.ToLower(key)].(Map)
	return v, ok
}

// GetString returns the string at key. Integer values are formatted in
// decimal since Steam is inconsistent about which it stores.
func (m Map) GetString(key string) (string, bool) {
	switch v := m[strings.ToLower(key)].(type) {
	case string:
		return v, true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case uint32:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return "", false
	}
}

// GetUint returns the value at key as an unsigned 32-bit integer. Decimal
// strings are accepted.
func (m Map) GetUint(key string) (uint32, bool) {
	switch v := m[strings.ToLower(key)].(type) {
	case int32:
		if v < 0 {
			return 0, false
		}
		return uint32(v), true
	case uint32:
		return v, true
	case string:
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return 0, false
		}
		return uint32(n), true
	default:
		return 0, false
	}
}

// Has reports whether key is present with any value type.
func (m Map) Has(key string) bool {
	_, ok := m[strings.ToLower(key)]
	return ok
}
