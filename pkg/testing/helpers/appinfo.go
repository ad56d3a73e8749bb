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
	"bytes"
	"encoding/binary"
	"fmt"
	"slices"
)

// AppInfo format versions understood by EncodeAppInfo.
const (
	AppInfoV27 = 27
	AppInfoV28 = 28
	AppInfoV29 = 29
)

// AppInfoRecord is one app in a synthetic appinfo.vdf. Data is the tree
// stored under the "appinfo" key; values may be string, int32, uint64 or
// map[string]any.
type AppInfoRecord struct {
	Data         map[string]any
	AppID        uint32
	ChangeNumber uint32
}

// AppInfoMagic returns the header magic Steam writes for version.
func AppInfoMagic(version int) uint32 {
	switch version {
	case AppInfoV27:
		return 0x07564427
	case AppInfoV28:
		return 0x07564428
	default:
		return 0x07564429
	}
}

// EncodeAppInfo builds an appinfo.vdf image in the given format version.
// Map keys are written in sorted order so output is stable.
func EncodeAppInfo(version int, records []AppInfoRecord) []byte {
	e := &appInfoEncoder{version: version, index: make(map[string]uint32)}

	var body bytes.Buffer
	for _, rec := range records {
		e.writeRecord(&body, rec)
	}
	writeU32(&body, 0)

	var out bytes.Buffer
	writeU32(&out, AppInfoMagic(version))
	writeU32(&out, 1) // universe

	if version >= AppInfoV29 {
		offset := int64(out.Len()) + 8 + int64(body.Len())
		_ = binary.Write(&out, binary.LittleEndian, offset)
		out.Write(body.Bytes())
		writeU32(&out, uint32(len(e.table))) //nolint:gosec // test fixture
		for _, s := range e.table {
			out.WriteString(s)
			out.WriteByte(0)
		}
		return out.Bytes()
	}

	out.Write(body.Bytes())
	return out.Bytes()
}

type appInfoEncoder struct {
	index   map[string]uint32
	table   []string
	version int
}

func (e *appInfoEncoder) writeRecord(w *bytes.Buffer, rec AppInfoRecord) {
	var blob bytes.Buffer
	writeU32(&blob, 2)          // infoState
	writeU32(&blob, 1700000000) // lastUpdated
	_ = binary.Write(&blob, binary.LittleEndian, uint64(0))
	blob.Write(make([]byte, 20)) // sha1
	writeU32(&blob, rec.ChangeNumber)
	if e.version >= AppInfoV28 {
		blob.Write(make([]byte, 20)) // binary sha1
	}
	e.writeObject(&blob, map[string]any{"appinfo": rec.Data})

	writeU32(w, rec.AppID)
	writeU32(w, uint32(blob.Len())) //nolint:gosec // test fixture
	w.Write(blob.Bytes())
}

func (e *appInfoEncoder) writeObject(w *bytes.Buffer, m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		switch v := m[k].(type) {
		case map[string]any:
			w.WriteByte(0x00)
			e.writeKey(w, k)
			e.writeObject(w, v)
		case string:
			w.WriteByte(0x01)
			e.writeKey(w, k)
			w.WriteString(v)
			w.WriteByte(0)
		case int32:
			w.WriteByte(0x02)
			e.writeKey(w, k)
			_ = binary.Write(w, binary.LittleEndian, v)
		case uint64:
			w.WriteByte(0x07)
			e.writeKey(w, k)
			_ = binary.Write(w, binary.LittleEndian, v)
		default:
			panic(fmt.Sprintf("unsupported appinfo fixture value %T at %q", v, k))
		}
	}
	w.WriteByte(0x08)
}

func (e *appInfoEncoder) writeKey(w *bytes.Buffer, k string) {
	if e.version < AppInfoV29 {
		w.WriteString(k)
		w.WriteByte(0)
		return
	}
	idx, ok := e.index[k]
	if !ok {
		idx = uint32(len(e.table)) //nolint:gosec // test fixture
		e.index[k] = idx
		e.table = append(e.table, k)
	}
	writeU32(w, idx)
}

func writeU32(w *bytes.Buffer, v uint32) {
	_ = binary.Write(w, binary.LittleEndian, v)
}

// GameAppInfo returns the appinfo tree of an ordinary game with one launch
// entry. An empty osList omits the field.
func GameAppInfo(name, installDir, executable, osList string) map[string]any {
	launch := map[string]any{
		"executable": executable,
		"type":       "default",
	}
	if osList != "" {
		launch["config"] = map[string]any{"oslist": osList}
	}
	return map[string]any{
		"common": map[string]any{
			"name": name,
			"type": "Game",
		},
		"config": map[string]any{
			"installdir": installDir,
			"launch": map[string]any{
				"0": launch,
			},
		},
	}
}
