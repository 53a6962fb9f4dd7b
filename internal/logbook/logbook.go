// Copyright 2025 The i2crip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logbook routes run output to the terminal and to an optional
// per-run log file.
package logbook // import "github.com/open-daq/i2crip/internal/logbook"

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/uuid"
)

// Book is the log sink of one run. The terminal and file sinks are
// toggled independently; the file is opened lazily, on the first
// enable, and closed exactly once.
type Book struct {
	id   string
	path string

	term   *log.Logger
	termOn bool

	f      *os.File
	file   *log.Logger
	fileOn bool
}

// New returns a Book writing terminal output to w. The file sink, when
// enabled, appends to path.
func New(w io.Writer, path string) *Book {
	return &Book{
		id:   uuid.NewString(),
		path: path,
		term: log.New(w, "i2crip: ", 0),
	}
}

// RunID returns the unique identifier of this run.
func (b *Book) RunID() string { return b.id }

// EnableTerm toggles the terminal sink.
func (b *Book) EnableTerm(on bool) { b.termOn = on }

// EnableFile toggles the file sink, opening the log file on first use.
func (b *Book) EnableFile(on bool) error {
	if on && b.f == nil {
		f, err := os.OpenFile(b.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("logbook: could not open %s: %w", b.path, err)
		}
		b.f = f
		b.file = log.New(f, "", log.LstdFlags)
		b.file.Printf("--- run %s ---", b.id)
	}
	b.fileOn = on
	return nil
}

// Printf writes one line to every enabled sink.
func (b *Book) Printf(format string, args ...interface{}) {
	if b.termOn {
		b.term.Printf(format, args...)
	}
	if b.fileOn && b.file != nil {
		b.file.Printf(format, args...)
	}
}

// Close closes the log file, if one was opened.
func (b *Book) Close() error {
	if b.f == nil {
		return nil
	}
	f := b.f
	b.f = nil
	b.file = nil
	err := f.Close()
	if err != nil {
		return fmt.Errorf("logbook: could not close %s: %w", b.path, err)
	}
	return nil
}
