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

package vdfbinary_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/ZaparooProject/steam-desktop/internal/vdfbinary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeObject_Empty(t *testing.T) {
	t.Parallel()

	m, err := vdfbinary.NewDecoder(bytes.NewReader([]byte{vdfbinary.TypeEnd})).DecodeObject()
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestDecodeObject_AllTypes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	// appinfo { name "Foo" appid 42 ... }
	buf.WriteByte(vdfbinary.TypeMap)
	buf.WriteString("AppInfo")
	buf.WriteByte(0x00)

	buf.WriteByte(vdfbinary.TypeString)
	buf.WriteString("Name")
	buf.WriteByte(0x00)
	buf.WriteString("Foo")
	buf.WriteByte(0x00)

	buf.WriteByte(vdfbinary.TypeInt32)
	buf.WriteString("appid")
	buf.WriteByte(0x00)
	_ = binary.Write(&buf, binary.LittleEndian, int32(42))

	buf.WriteByte(vdfbinary.TypeInt32)
	buf.WriteString("negative")
	buf.WriteByte(0x00)
	_ = binary.Write(&buf, binary.LittleEndian, int32(-7))

	buf.WriteByte(vdfbinary.TypeFloat32)
	buf.WriteString("ratio")
	buf.WriteByte(0x00)
	_ = binary.Write(&buf, binary.LittleEndian, math.Float32bits(1.5))

	buf.WriteByte(vdfbinary.TypeColor)
	buf.WriteString("color")
	buf.WriteByte(0x00)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(0xFF00FF00))

	buf.WriteByte(vdfbinary.TypeUint64)
	buf.WriteString("token")
	buf.WriteByte(0x00)
	_ = binary.Write(&buf, binary.LittleEndian, uint64(1<<40))

	buf.WriteByte(vdfbinary.TypeInt64)
	buf.WriteString("offset")
	buf.WriteByte(0x00)
	_ = binary.Write(&buf, binary.LittleEndian, int64(-2))

	buf.WriteByte(vdfbinary.TypeWString)
	buf.WriteString("wide")
	buf.WriteByte(0x00)
	for _, r := range "hé" {
		_ = binary.Write(&buf, binary.LittleEndian, uint16(r))
	}
	_ = binary.Write(&buf, binary.LittleEndian, uint16(0))

	buf.WriteByte(vdfbinary.TypeEnd) // end appinfo
	buf.WriteByte(vdfbinary.TypeEnd) // end root

	m, err := vdfbinary.NewDecoder(bytes.NewReader(buf.Bytes())).DecodeObject()
	require.NoError(t, err)

	info, ok := m.GetMap("appinfo")
	require.True(t, ok, "keys are lower-cased")

	name, ok := info.GetString("name")
	require.True(t, ok)
	assert.Equal(t, "Foo", name)

	appID, ok := info.GetUint("appid")
	require.True(t, ok)
	assert.Equal(t, uint32(42), appID)

	_, ok = info.GetUint("negative")
	assert.False(t, ok, "negative ints are not valid unsigned values")

	assert.InDelta(t, float32(1.5), info["ratio"], 0.0001)
	assert.Equal(t, uint32(0xFF00FF00), info["color"])
	assert.Equal(t, uint64(1<<40), info["token"])
	assert.Equal(t, int64(-2), info["offset"])
	assert.Equal(t, "hé", info["wide"])
}

func TestDecodeObject_AlternateEndMarker(t *testing.T) {
	t.Parallel()

	data := []byte{
		vdfbinary.TypeString, 'k', 0x00, 'v', 0x00,
		vdfbinary.TypeEndAlt,
	}
	m, err := vdfbinary.NewDecoder(bytes.NewReader(data)).DecodeObject()
	require.NoError(t, err)
	assert.Equal(t, "v", m["k"])
}

func TestDecodeObject_StringTableKeys(t *testing.T) {
	t.Parallel()

	table := []string{"common", "name", "type"}

	var buf bytes.Buffer
	buf.WriteByte(vdfbinary.TypeMap)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(0)) // common
	buf.WriteByte(vdfbinary.TypeString)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(1)) // name
	buf.WriteString("Half-Life")
	buf.WriteByte(0x00)
	buf.WriteByte(vdfbinary.TypeString)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(2)) // type
	buf.WriteString("Game")
	buf.WriteByte(0x00)
	buf.WriteByte(vdfbinary.TypeEnd)
	buf.WriteByte(vdfbinary.TypeEnd)

	m, err := vdfbinary.NewTableDecoder(bytes.NewReader(buf.Bytes()), table).DecodeObject()
	require.NoError(t, err)

	common, ok := m.GetMap("common")
	require.True(t, ok)
	assert.Equal(t, "Half-Life", common["name"])
	assert.Equal(t, "Game", common["type"])
}

func TestDecodeObject_Errors(t *testing.T) {
	t.Parallel()

	t.Run("truncated_string", func(t *testing.T) {
		t.Parallel()

		data := []byte{vdfbinary.TypeString, 'n', 'a', 'm', 'e', 0x00, 'x'}
		_, err := vdfbinary.NewDecoder(bytes.NewReader(data)).DecodeObject()
		assert.ErrorIs(t, err, vdfbinary.ErrCorruptedVDF)
	})

	t.Run("truncated_number", func(t *testing.T) {
		t.Parallel()

		data := []byte{vdfbinary.TypeInt32, 'n', 0x00, 0x01, 0x02}
		_, err := vdfbinary.NewDecoder(bytes.NewReader(data)).DecodeObject()
		assert.ErrorIs(t, err, vdfbinary.ErrCorruptedVDF)
	})

	t.Run("missing_end_marker", func(t *testing.T) {
		t.Parallel()

		data := []byte{vdfbinary.TypeString, 'k', 0x00, 'v', 0x00}
		_, err := vdfbinary.NewDecoder(bytes.NewReader(data)).DecodeObject()
		assert.ErrorIs(t, err, vdfbinary.ErrCorruptedVDF)
	})

	t.Run("unknown_type", func(t *testing.T) {
		t.Parallel()

		data := []byte{0x09, 'k', 0x00}
		_, err := vdfbinary.NewDecoder(bytes.NewReader(data)).DecodeObject()
		assert.ErrorIs(t, err, vdfbinary.ErrUnknownType)
	})

	t.Run("key_index_out_of_range", func(t *testing.T) {
		t.Parallel()

		data := []byte{vdfbinary.TypeString, 0x05, 0x00, 0x00, 0x00, 'v', 0x00, vdfbinary.TypeEnd}
		_, err := vdfbinary.NewTableDecoder(bytes.NewReader(data), []string{"a"}).DecodeObject()
		assert.ErrorIs(t, err, vdfbinary.ErrBadKeyIndex)
	})

	t.Run("nesting_too_deep", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		for range 100 {
			buf.WriteByte(vdfbinary.TypeMap)
			buf.WriteString("n")
			buf.WriteByte(0x00)
		}
		_, err := vdfbinary.NewDecoder(bytes.NewReader(buf.Bytes())).DecodeObject()
		assert.ErrorIs(t, err, vdfbinary.ErrTooDeep)
	})
}

func TestMap_Accessors(t *testing.T) {
	t.Parallel()

	m := vdfbinary.Map{
		"str":    "value",
		"num":    int32(12),
		"strnum": "340",
		"bad":    "abc",
		"u32":    uint32(9),
		"nested": vdfbinary.Map{"a": "b"},
	}

	s, ok := m.GetString("STR")
	assert.True(t, ok)
	assert.Equal(t, "value", s)

	s, ok = m.GetString("num")
	assert.True(t, ok)
	assert.Equal(t, "12", s)

	n, ok := m.GetUint("strnum")
	assert.True(t, ok)
	assert.Equal(t, uint32(340), n)

	_, ok = m.GetUint("bad")
	assert.False(t, ok)

	n, ok = m.GetUint("u32")
	assert.True(t, ok)
	assert.Equal(t, uint32(9), n)

	_, ok = m.GetMap("str")
	assert.False(t, ok)

	nested, ok := m.GetMap("nested")
	assert.True(t, ok)
	assert.True(t, nested.Has("a"))
	assert.False(t, m.Has("missing"))
}
