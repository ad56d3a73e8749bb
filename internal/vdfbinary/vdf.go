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

// Package vdfbinary decodes Valve's binary KeyValues objects, the encoding
// used for each record blob in Steam's appinfo.vdf cache.
package vdfbinary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf16"
)

// Binary KeyValues type markers.
const (
	TypeMap     byte = 0x00
	TypeString  byte = 0x01
	TypeInt32   byte = 0x02
	TypeFloat32 byte = 0x03
	TypePointer byte = 0x04
	TypeWString byte = 0x05
	TypeColor   byte = 0x06
	TypeUint64  byte = 0x07
	TypeEnd     byte = 0x08
	TypeInt64   byte = 0x0A
	TypeEndAlt  byte = 0x0B
)

// maxDepth bounds nesting so a hostile blob cannot exhaust the stack.
const maxDepth = 64

var (
	ErrCorruptedVDF = errors.New("reached the end of the data earlier than expected, the vdf might be corrupted")
	ErrUnknownType  = errors.New("unknown binary vdf type marker")
	ErrBadKeyIndex  = errors.New("binary vdf key index outside string table")
	ErrTooDeep      = errors.New("binary vdf nesting too deep")
)

// Reader is the input a Decoder consumes. bytes.Reader and bufio.Reader
// both satisfy it.
type Reader interface {
	io.Reader
	io.ByteReader
}

// Decoder reads binary KeyValues objects from a stream. Keys are either
// inline NUL-terminated strings or, when a string table is supplied,
// little-endian uint32 indexes into it.
type Decoder struct {
	r     Reader
	table []string
}

// NewDecoder returns a decoder using inline string keys.
func NewDecoder(r Reader) *Decoder {
	return &Decoder{r: r}
}

// NewTableDecoder returns a decoder whose keys are indexes into table.
func NewTableDecoder(r Reader, table []string) *Decoder {
	return &Decoder{r: r, table: table}
}

// DecodeObject reads key/value pairs up to and including the closing end
// marker. All keys are lower-cased; VDF keys are case-insensitive.
func (d *Decoder) DecodeObject() (Map, error) {
	m, err := d.decodeObject(0)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, ErrCorruptedVDF
	}
	return m, err
}

func (d *Decoder) decodeObject(depth int) (Map, error) {
	if depth > maxDepth {
		return nil, ErrTooDeep
	}

	m := make(Map)
	for {
		t, err := d.r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("read type marker: %w", err)
		}
		if t == TypeEnd || t == TypeEndAlt {
			return m, nil
		}

		key, err := d.readKey()
		if err != nil {
			return nil, err
		}

		var value any
		switch t {
		case TypeMap:
			value, err = d.decodeObject(depth + 1)
		case TypeString:
			value, err = d.readString()
		case TypeWString:
			value, err = d.readWideString()
		case TypeInt32:
			var v uint32
			v, err = d.readUint32()
			value = int32(v) //nolint:gosec // two's complement reinterpretation
		case TypeFloat32:
			var v uint32
			v, err = d.readUint32()
			value = math.Float32frombits(v)
		case TypePointer, TypeColor:
			value, err = d.readUint32()
		case TypeUint64:
			value, err = d.readUint64()
		case TypeInt64:
			var v uint64
			v, err = d.readUint64()
			value = int64(v) //nolint:gosec // two's complement reinterpretation
		default:
			return nil, fmt.Errorf("%w: 0x%02x at key %q", ErrUnknownType, t, key)
		}
		if err != nil {
			return nil, err
		}

		m[strings.ToLower(key)] = value
	}
}

func (d *Decoder) readKey() (string, error) {
	if d.table == nil {
		return d.readString()
	}
	idx, err := d.readUint32()
	if err != nil {
		return "", err
	}
	if int(idx) >= len(d.table) {
		return "", fmt.Errorf("%w: %d of %d", ErrBadKeyIndex, idx, len(d.table))
	}
	return d.table[idx], nil
}

func (d *Decoder) readString() (string, error) {
	var sb strings.Builder
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return "", fmt.Errorf("read string: %w", err)
		}
		if b == 0 {
			return sb.String(), nil
		}
		sb.WriteByte(b)
	}
}

func (d *Decoder) readWideString() (string, error) {
	var units []uint16
	var buf [2]byte
	for {
		if _, err := io.ReadFull(d.r, buf[:]); err != nil {
			return "", fmt.Errorf("read wide string: %w", err)
		}
		u := binary.LittleEndian.Uint16(buf[:])
		if u == 0 {
			return string(utf16.Decode(units)), nil
		}
		units = append(units, u)
	}
}

func (d *Decoder) readUint32() (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		return 0, fmt.Errorf("read uint32: %w", err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func (d *Decoder) readUint64() (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		return 0, fmt.Errorf("read uint64: %w", err)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}
