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

package desktop

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewEntry(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		e := NewEntry(42, "Game", "")
		assert.Equal(t, Entry{
			Type:       "Application",
			Name:       "Game",
			Comment:    "Launch this game via Steam",
			Exec:       "xdg-open steam://rungameid/42",
			Icon:       "steam_icon_42",
			Categories: "Game;X-Steam;",
		}, e)
	})

	t.Run("custom_command", func(t *testing.T) {
		t.Parallel()

		e := NewEntry(7, "Game", "flatpak run com.valvesoftware.Steam ")
		assert.Equal(t, "flatpak run com.valvesoftware.Steam steam://rungameid/7", e.Exec)
	})

	t.Run("name_kept_on_one_line", func(t *testing.T) {
		t.Parallel()

		e := NewEntry(1, "Half-Life\nSource\t", "")
		assert.Equal(t, "Half-Life Source", e.Name)
	})
}

func TestEntry_Encode(t *testing.T) {
	t.Parallel()

	text := string(NewEntry(42, "Portal 2", "steam").Encode())
	assert.Equal(t, "[Desktop Entry]", strings.SplitN(strings.TrimSpace(text), "\n", 2)[0])
	for _, line := range []string{
		"Type=Application",
		"Name=Portal 2",
		"Comment=Launch this game via Steam",
		"Exec=steam steam://rungameid/42",
		"Icon=steam_icon_42",
		"Categories=Game;X-Steam;",
	} {
		assert.Contains(t, text, line+"\n")
	}
	assert.NotContains(t, text, " = ")
}

func TestEntry_RoundTrip(t *testing.T) {
	t.Parallel()

	want := NewEntry(220, "Half-Life 2: Episode #1", "xdg-open")
	got, err := Decode(want.Encode())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = Decode([]byte("[Other]\nA=b\n"))
	require.ErrorIs(t, err, ErrMissingSection)
}

func TestEntry_EncodeEscaping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		line string
	}{
		{name: "backtick_not_quoted", in: "Don`t Starve", line: "Name=Don`t Starve\n"},
		{name: "backslash_escaped", in: `Back\slash`, line: `Name=Back\\slash` + "\n"},
		{name: "trailing_backslash", in: `Dir\`, line: `Name=Dir\\` + "\n"},
		{name: "double_quotes_kept", in: `"Quoted" Game`, line: `Name="Quoted" Game` + "\n"},
		{name: "edge_spaces", in: " Padded ", line: `Name=\sPadded\s` + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewEntry(10, "x", "")
			e.Name = tt.in
			data := e.Encode()
			assert.Contains(t, string(data), tt.line)
			assert.NotContains(t, string(data), `"""`)

			got, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, tt.in, got.Name)
			assert.Equal(t, e, got)
		})
	}
}

func TestEntry_EscapeRoundTripProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		// ini reads a value opening with a backtick or """ as quoted.
		name := rapid.StringOf(rapid.SampledFrom([]rune("ab `\\\"#;=\t\n\r"))).
			Filter(func(s string) bool {
				return !strings.HasPrefix(s, "`") && !strings.HasPrefix(s, `"""`)
			}).
			Draw(t, "name")
		e := NewEntry(10, "x", "")
		e.Name = name
		data := e.Encode()
		if n := strings.Count(string(data), "\n"); n != 7 {
			t.Fatalf("encoded entry has %d lines, want 7", n)
		}
		got, err := Decode(data)
		if err != nil {
			t.Fatal(err)
		}
		if got.Name != name {
			t.Fatalf("name %q decoded as %q", name, got.Name)
		}
	})
}

func TestWrite(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	path, err := Write(fs, "/home/u/.local/share", 42, NewEntry(42, "Game", ""))
	require.NoError(t, err)
	assert.Equal(t, "/home/u/.local/share/applications/steam_app_42.desktop", path)

	_, err = Write(fs, "/home/u/.local/share", 42, NewEntry(42, "Game Renamed", ""))
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "Game Renamed", got.Name)
}

func TestNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "steam_app_570.desktop", FileName(570))
	assert.Equal(t, "steam_icon_570", IconName(570))
}
