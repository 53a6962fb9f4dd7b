// Copyright 2025 The i2crip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package script implements the i2crip command language: a line-oriented
// script format of register read/write/verify operations, parsed into a
// flat list of typed commands.
package script // import "github.com/open-daq/i2crip/script"

// Kind discriminates the command variants of the script language.
// A Command carries exactly the fields its Kind declares; register and
// data widths are derived from the Kind, never stored.
type Kind uint8

const (
	KindInvalid Kind = iota // blank or comment-only line

	KindSetBus         // SET-BUS
	KindSetID          // SET-ID
	KindDelay          // DELAY
	KindSuppressErrors // SUPPRESS-ERRORS
	KindLogFile        // LOG-FILE
	KindLogTerm        // LOG-TERM

	KindRead8Byte   // RB-8
	KindRead16Byte  // RB-16
	KindRead8Word   // RW-8
	KindRead16Word  // RW-16
	KindWrite8Byte  // WB-8
	KindWrite16Byte // WB-16
	KindWrite8Word  // WW-8
	KindWrite16Word // WW-16
	KindVerify8Byte // VB-8
	KindVerify16Byte
	KindVerify8Word
	KindVerify16Word
)

// Op is the bus operation a register I/O command performs.
type Op uint8

const (
	NoOp Op = iota
	ReadOp
	WriteOp
	VerifyOp
)

func (op Op) String() string {
	switch op {
	case ReadOp:
		return "read"
	case WriteOp:
		return "write"
	case VerifyOp:
		return "verify"
	}
	return "no-op"
}

// Command is one parsed script command.
//
// Bus is valid for KindSetBus, Addr for KindSetID, Ms for KindDelay,
// Flag for the three toggle kinds, Reg for every register I/O kind and
// Data for the write and verify kinds.
type Command struct {
	Kind Kind

	Bus  int    // bus index
	Addr uint8  // slave address
	Ms   int    // delay in milliseconds
	Flag bool   // toggle value
	Reg  uint16 // register address
	Data uint16 // payload for writes and verifies

	Line int // 1-based source line, recorded by the loader
}

// IsIO reports whether cmd is a register read, write or verify.
func (cmd Command) IsIO() bool { return cmd.Op() != NoOp }

// Op returns the bus operation of a register I/O command, or NoOp.
func (cmd Command) Op() Op {
	switch cmd.Kind {
	case KindRead8Byte, KindRead16Byte, KindRead8Word, KindRead16Word:
		return ReadOp
	case KindWrite8Byte, KindWrite16Byte, KindWrite8Word, KindWrite16Word:
		return WriteOp
	case KindVerify8Byte, KindVerify16Byte, KindVerify8Word, KindVerify16Word:
		return VerifyOp
	}
	return NoOp
}

// RegWidth returns the register address width in bytes (1 or 2) of a
// register I/O command, 0 otherwise.
func (cmd Command) RegWidth() int {
	switch cmd.Kind {
	case KindRead8Byte, KindRead8Word,
		KindWrite8Byte, KindWrite8Word,
		KindVerify8Byte, KindVerify8Word:
		return 1
	case KindRead16Byte, KindRead16Word,
		KindWrite16Byte, KindWrite16Word,
		KindVerify16Byte, KindVerify16Word:
		return 2
	}
	return 0
}

// DataWidth returns the payload width in bytes (1 or 2) of a register
// I/O command, 0 otherwise.
func (cmd Command) DataWidth() int {
	switch cmd.Kind {
	case KindRead8Byte, KindRead16Byte,
		KindWrite8Byte, KindWrite16Byte,
		KindVerify8Byte, KindVerify16Byte:
		return 1
	case KindRead8Word, KindRead16Word,
		KindWrite8Word, KindWrite16Word,
		KindVerify8Word, KindVerify16Word:
		return 2
	}
	return 0
}

// Mnemonic returns the script mnemonic for the command's kind.
func (cmd Command) Mnemonic() string {
	for _, e := range cmdTable {
		if e.kind == cmd.Kind {
			return e.name
		}
	}
	return "<invalid>"
}

type tableEntry struct {
	kind  Kind
	nargs int
	name  string
}

// cmdTable maps mnemonics to command kinds and their exact arity.
// The table must be consulted before any numeric argument parsing:
// argument interpretation depends on the resolved kind.
var cmdTable = []tableEntry{
	{KindSetBus, 1, "SET-BUS"},
	{KindSetID, 1, "SET-ID"},
	{KindDelay, 1, "DELAY"},
	{KindSuppressErrors, 1, "SUPPRESS-ERRORS"},
	{KindLogFile, 1, "LOG-FILE"},
	{KindLogTerm, 1, "LOG-TERM"},
	{KindWrite8Byte, 2, "WB-8"},
	{KindWrite16Byte, 2, "WB-16"},
	{KindWrite8Word, 2, "WW-8"},
	{KindWrite16Word, 2, "WW-16"},
	{KindRead8Byte, 1, "RB-8"},
	{KindRead16Byte, 1, "RB-16"},
	{KindRead8Word, 1, "RW-8"},
	{KindRead16Word, 1, "RW-16"},
	{KindVerify8Byte, 2, "VB-8"},
	{KindVerify16Byte, 2, "VB-16"},
	{KindVerify8Word, 2, "VW-8"},
	{KindVerify16Word, 2, "VW-16"},
}

func lookup(name string) (tableEntry, bool) {
	for _, e := range cmdTable {
		if e.name == name {
			return e, true
		}
	}
	return tableEntry{}, false
}
