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
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ZaparooProject/steam-desktop/internal/vdfbinary"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Binary VDF magic numbers (version identifiers)
const (
	magic27 uint32 = 0x07564427 // v27 format
	magic28 uint32 = 0x07564428 // v28 format (adds binaryDataHash)
	magic29 uint32 = 0x07564429 // v29 format (adds string table)
)

const (
	// appid + size
	recordPrefixLen = 8
	// infoState + lastUpdated + picsToken + sha1 + changeNumber
	recordHeaderLen = 4 + 4 + 8 + 20 + 4
	// binaryDataHash, v28 and later
	binaryHashLen = 20
	// largest record blob accepted before the size field is deemed garbage
	maxRecordSize = 64 << 20
	// largest v29 string table entry count accepted
	maxStringTable = 1 << 22
)

var (
	ErrInvalidMagic   = errors.New("invalid appinfo.vdf magic header")
	ErrCorruptAppInfo = errors.New("corrupt appinfo.vdf")
	ErrAppNotFound    = errors.New("app not found in appinfo.vdf")

	errExhausted = errors.New("appinfo.vdf fully read")
)

// AppInfoPath returns the location of the metadata cache under a Steam root.
func AppInfoPath(steamRoot string) string {
	return filepath.Join(steamRoot, "appcache", "appinfo.vdf")
}

// AppInfoStats describes how much of the cache a reader has consumed.
type AppInfoStats struct {
	Decoded int  // records decoded so far
	Done    bool // true once the end of the record stream was reached
}

// AppInfoReader decodes appinfo.vdf forward-only and on demand. Every
// record passed over is kept, so a lookup for an already decoded app never
// touches the stream again and a lookup for a new app resumes where the
// last one stopped.
type AppInfoReader struct {
	src    io.ReadSeeker
	closer io.Closer
	br     *bufio.Reader
	cache  map[uint32]*AppMetadata
	// terminal state: errExhausted at end of stream or the fatal decode error
	err      error
	table    []string
	decoded  int
	magic    uint32
	universe uint32
}

// OpenAppInfo opens an appinfo.vdf file and reads its header.
func OpenAppInfo(fs afero.Fs, path string) (*AppInfoReader, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open appinfo.vdf: %w", err)
	}

	r, err := NewAppInfoReader(f)
	if err != nil {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing appinfo.vdf")
		}
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewAppInfoReader reads the header from src and positions it at the first
// record. src must be seekable for the v29 string table.
func NewAppInfoReader(src io.ReadSeeker) (*AppInfoReader, error) {
	r := &AppInfoReader{
		src:   src,
		cache: make(map[uint32]*AppMetadata),
	}

	var hdr [8]byte
	if _, err := io.ReadFull(src, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ErrCorruptAppInfo, err)
	}
	r.magic = binary.LittleEndian.Uint32(hdr[0:4])
	r.universe = binary.LittleEndian.Uint32(hdr[4:8])

	switch r.magic {
	case magic27, magic28:
	case magic29:
		if err := r.readStringTable(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: 0x%08x", ErrInvalidMagic, r.magic)
	}

	r.br = bufio.NewReader(src)
	return r, nil
}

// readStringTable loads the v29 key table, which lives after the record
// stream, and seeks back to the first record.
func (r *AppInfoReader) readStringTable() error {
	var off int64
	if err := binary.Read(r.src, binary.LittleEndian, &off); err != nil {
		return fmt.Errorf("%w: reading string table offset: %w", ErrCorruptAppInfo, err)
	}

	start, err := r.src.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("seek appinfo.vdf: %w", err)
	}
	if off < start {
		return fmt.Errorf("%w: string table offset %d before records", ErrCorruptAppInfo, off)
	}
	if _, err := r.src.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("seek appinfo.vdf string table: %w", err)
	}

	br := bufio.NewReader(r.src)
	var count uint32
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("%w: reading string table count: %w", ErrCorruptAppInfo, err)
	}
	if count > maxStringTable {
		return fmt.Errorf("%w: string table count %d", ErrCorruptAppInfo, count)
	}

	r.table = make([]string, count)
	for i := range r.table {
		s, err := br.ReadString(0)
		if err != nil {
			return fmt.Errorf("%w: string table entry %d: %w", ErrCorruptAppInfo, i, err)
		}
		r.table[i] = s[:len(s)-1]
	}

	if _, err := r.src.Seek(start, io.SeekStart); err != nil {
		return fmt.Errorf("seek appinfo.vdf records: %w", err)
	}
	return nil
}

// Version returns the format version from the header (27, 28 or 29).
func (r *AppInfoReader) Version() int {
	switch r.magic {
	case magic27:
		return 27
	case magic28:
		return 28
	default:
		return 29
	}
}

// Universe returns the Steam universe recorded in the header.
func (r *AppInfoReader) Universe() uint32 {
	return r.universe
}

// Stats reports decode progress.
func (r *AppInfoReader) Stats() AppInfoStats {
	return AppInfoStats{
		Decoded: r.decoded,
		Done:    errors.Is(r.err, errExhausted),
	}
}

// Lookup returns the metadata for appID, decoding further into the stream
// only when the app has not been seen yet. ErrAppNotFound is returned once
// the stream is exhausted without a match. Any decode failure is sticky.
func (r *AppInfoReader) Lookup(appID uint32) (*AppMetadata, error) {
	if m, ok := r.cache[appID]; ok {
		return m, nil
	}

	for r.err == nil {
		m, err := r.next()
		if errors.Is(err, io.EOF) {
			r.err = errExhausted
			break
		}
		if err != nil {
			r.err = err
			break
		}

		r.decoded++
		if _, dup := r.cache[m.AppID]; dup {
			log.Debug().Uint32("appID", m.AppID).Msg("duplicate appinfo record, keeping first")
			continue
		}
		r.cache[m.AppID] = m
		if m.AppID == appID {
			return m, nil
		}
	}

	if errors.Is(r.err, errExhausted) {
		return nil, fmt.Errorf("%w: %d", ErrAppNotFound, appID)
	}
	return nil, r.err
}

// next decodes one record. io.EOF marks a clean end of stream.
func (r *AppInfoReader) next() (*AppMetadata, error) {
	var prefix [recordPrefixLen]byte
	n, err := io.ReadFull(r.br, prefix[:4])
	if errors.Is(err, io.EOF) && n == 0 {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading app id: %w", ErrCorruptAppInfo, err)
	}

	appID := binary.LittleEndian.Uint32(prefix[:4])
	if appID == 0 {
		return nil, io.EOF
	}

	if _, err := io.ReadFull(r.br, prefix[4:]); err != nil {
		return nil, fmt.Errorf("%w: app %d: reading size: %w", ErrCorruptAppInfo, appID, err)
	}
	size := binary.LittleEndian.Uint32(prefix[4:])

	headerLen := recordHeaderLen
	if r.magic != magic27 {
		headerLen += binaryHashLen
	}
	if size < uint32(headerLen)+1 || size > maxRecordSize {
		return nil, fmt.Errorf("%w: app %d: bad record size %d", ErrCorruptAppInfo, appID, size)
	}

	blob := make([]byte, size)
	if _, err := io.ReadFull(r.br, blob); err != nil {
		return nil, fmt.Errorf("%w: app %d: reading record: %w", ErrCorruptAppInfo, appID, err)
	}

	meta := &AppMetadata{
		AppID:        appID,
		InfoState:    binary.LittleEndian.Uint32(blob[0:4]),
		LastUpdated:  binary.LittleEndian.Uint32(blob[4:8]),
		ChangeNumber: binary.LittleEndian.Uint32(blob[36:40]),
	}

	body := bytes.NewReader(blob[headerLen:])
	var dec *vdfbinary.Decoder
	if r.table != nil {
		dec = vdfbinary.NewTableDecoder(body, r.table)
	} else {
		dec = vdfbinary.NewDecoder(body)
	}

	root, err := dec.DecodeObject()
	if err != nil {
		return nil, fmt.Errorf("%w: app %d: %w", ErrCorruptAppInfo, appID, err)
	}
	if body.Len() > 0 {
		log.Debug().Uint32("appID", appID).Int("trailing", body.Len()).
			Msg("ignoring trailing bytes in appinfo record")
	}

	if info, ok := root.GetMap("appinfo"); ok {
		meta.data = info
	} else {
		meta.data = root
	}
	return meta, nil
}

// Close releases the underlying file, if the reader owns one.
func (r *AppInfoReader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	if err != nil {
		return fmt.Errorf("close appinfo.vdf: %w", err)
	}
	return nil
}
