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

// Package desktop builds and writes freedesktop.org desktop entries for
// Steam games.
package desktop

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ZaparooProject/steam-desktop/pkg/helpers"
	"github.com/ZaparooProject/steam-desktop/pkg/steam"
	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

const (
	Section           = "Desktop Entry"
	DefaultComment    = "Launch this game via Steam"
	DefaultCategories = "Game;X-Steam;"
	DefaultCommand    = "xdg-open"
)

var ErrMissingSection = errors.New("desktop entry section not found")

// Entry is the content of one launcher.
type Entry struct {
	Type       string
	Name       string
	Comment    string
	Exec       string
	Icon       string
	Categories string
}

// FileName returns the desktop file name for an app, without directory.
func FileName(appID uint32) string {
	return "steam_app_" + strconv.FormatUint(uint64(appID), 10) + ".desktop"
}

// IconName returns the icon theme name used for an app.
func IconName(appID uint32) string {
	return "steam_icon_" + strconv.FormatUint(uint64(appID), 10)
}

// Path returns where the app's desktop file is written under outputRoot.
func Path(outputRoot string, appID uint32) string {
	return filepath.Join(outputRoot, "applications", FileName(appID))
}

// NewEntry builds the launcher for appID. An empty command uses
// DefaultCommand.
func NewEntry(appID uint32, name, command string) Entry {
	if command == "" {
		command = DefaultCommand
	}
	return Entry{
		Type:       "Application",
		Name:       singleLine(name),
		Comment:    DefaultComment,
		Exec:       strings.TrimSpace(command) + " " + steam.BuildRunGameURL(appID),
		Icon:       IconName(appID),
		Categories: DefaultCategories,
	}
}

func (e Entry) pairs() [][2]string {
	return [][2]string{
		{"Type", e.Type},
		{"Name", e.Name},
		{"Comment", e.Comment},
		{"Exec", e.Exec},
		{"Icon", e.Icon},
		{"Categories", e.Categories},
	}
}

// Encode renders the entry as a desktop file, escaping values the way the
// desktop entry format defines.
func (e Entry) Encode() []byte {
	var buf bytes.Buffer
	buf.WriteString("[" + Section + "]\n")
	for _, kv := range e.pairs() {
		buf.WriteString(kv[0] + "=" + escapeValue(kv[1]) + "\n")
	}
	return buf.Bytes()
}

// Decode parses a desktop file written by Encode.
func Decode(data []byte) (Entry, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:     true,
		IgnoreContinuation:      true,
		PreserveSurroundedQuote: true,
		KeyValueDelimiters:      "=",
	}, data)
	if err != nil {
		return Entry{}, fmt.Errorf("parse desktop entry: %w", err)
	}
	sec, err := f.GetSection(Section)
	if err != nil {
		return Entry{}, ErrMissingSection
	}
	value := func(key string) string {
		return unescapeValue(sec.Key(key).String())
	}
	return Entry{
		Type:       value("Type"),
		Name:       value("Name"),
		Comment:    value("Comment"),
		Exec:       value("Exec"),
		Icon:       value("Icon"),
		Categories: value("Categories"),
	}, nil
}

// Write encodes e and atomically writes it for appID under outputRoot,
// returning the path written.
func Write(fs afero.Fs, outputRoot string, appID uint32, e Entry) (string, error) {
	path := Path(outputRoot, appID)
	if err := helpers.WriteFileAtomic(fs, path, e.Encode(), 0o644); err != nil {
		return "", fmt.Errorf("write desktop entry: %w", err)
	}
	return path, nil
}

// singleLine folds control whitespace so a name cannot break the key=value
// line it lives on.
func singleLine(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t':
			return ' '
		default:
			return r
		}
	}, s)
	return strings.TrimSpace(s)
}

func escapeValue(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == ' ' && (i == 0 || i == len(s)-1):
			b.WriteString(`\s`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// unescapeValue reverses escapeValue. Unknown escapes are kept verbatim.
func unescapeValue(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		switch s[i+1] {
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 's':
			b.WriteByte(' ')
		default:
			b.WriteByte(s[i])
			continue
		}
		i++
	}
	return b.String()
}
