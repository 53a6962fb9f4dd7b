// Copyright 2025 The i2crip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package script

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	src := Text("test.rip", `
// sensor bring-up
SET-BUS 1
SET-ID 0x36

WB-8 0x12 0x34 // soft reset
DELAY 10
VB-8 0x12 0x34
`)

	cmds, err := Load(src)
	if err != nil {
		t.Fatalf("could not load script: %+v", err)
	}

	want := []Command{
		{Kind: KindSetBus, Bus: 1, Line: 3},
		{Kind: KindSetID, Addr: 0x36, Line: 4},
		{Kind: KindWrite8Byte, Reg: 0x12, Data: 0x34, Line: 6},
		{Kind: KindDelay, Ms: 10, Line: 7},
		{Kind: KindVerify8Byte, Reg: 0x12, Data: 0x34, Line: 8},
	}
	if got, want := len(cmds), len(want); got != want {
		t.Fatalf("invalid number of commands: got=%d, want=%d", got, want)
	}
	for i, cmd := range cmds {
		if cmd != want[i] {
			t.Fatalf("invalid command %d:\ngot= %#v\nwant=%#v", i, cmd, want[i])
		}
	}
}

func TestLoadCountsOnlyCommands(t *testing.T) {
	// blank and comment-only lines are valid but produce no command.
	src := Text("test.rip", strings.Join([]string{
		"",
		"// header",
		"SET-BUS 0",
		"   ",
		"SET-ID 0x50",
		"// trailer",
	}, "\n"))

	cmds, err := Load(src)
	if err != nil {
		t.Fatalf("could not load script: %+v", err)
	}
	if got, want := len(cmds), 2; got != want {
		t.Fatalf("invalid number of commands: got=%d, want=%d", got, want)
	}
}

func TestLoadError(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   string
		want error
	}{
		{
			name: "empty-source",
			in:   "",
			want: ErrEmptyScript,
		},
		{
			name: "no-commands",
			in:   "// nothing\n\n",
			want: ErrEmptyScript,
		},
		{
			name: "unknown-mnemonic",
			in:   "SET-BUS 0\nBOGUS 1\n",
			want: ErrUnknownCommand,
		},
		{
			name: "arity",
			in:   "SET-BUS\n",
			want: ErrArity,
		},
		{
			name: "range",
			in:   "WB-8 0x1FF 0x00\n",
			want: ErrRange,
		},
		{
			name: "line-too-long",
			in:   "SET-BUS 0\n" + strings.Repeat("x", MaxLineLen+1) + "\n",
			want: ErrLineTooLong,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cmds, err := Load(Text(tc.name, tc.in))
			if !errors.Is(err, tc.want) {
				t.Fatalf("invalid error:\ngot= %+v\nwant=%+v", err, tc.want)
			}
			if cmds != nil {
				t.Fatalf("loaded %d commands from a bad script", len(cmds))
			}
		})
	}
}

func TestLoadTooManyLines(t *testing.T) {
	var buf strings.Builder
	for i := 0; i < MaxScriptLines+1; i++ {
		buf.WriteString("DELAY 1\n")
	}

	_, err := Load(Text("huge.rip", buf.String()))
	if !errors.Is(err, ErrTooManyLines) {
		t.Fatalf("invalid error: got=%+v, want=%+v", err, ErrTooManyLines)
	}
}

func TestLoadFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "init.rip")
	err := os.WriteFile(fname, []byte("SET-BUS 0\r\nSET-ID 0x50\r\nRB-8 0x00\r\n"), 0644)
	if err != nil {
		t.Fatalf("could not create script file: %+v", err)
	}

	cmds, err := Load(FileSource(fname))
	if err != nil {
		t.Fatalf("could not load script file: %+v", err)
	}
	if got, want := len(cmds), 3; got != want {
		t.Fatalf("invalid number of commands: got=%d, want=%d", got, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(FileSource(filepath.Join(t.TempDir(), "missing.rip")))
	if err == nil {
		t.Fatalf("loaded a missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("invalid error: got=%+v, want=%+v", err, os.ErrNotExist)
	}
}
