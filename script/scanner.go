// Copyright 2025 The i2crip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// MaxLineLen is the longest accepted script line, in bytes, after
	// carriage-return removal and excluding the line terminator.
	MaxLineLen = 256

	// MaxTokenLen is the longest accepted single token, in bytes.
	MaxTokenLen = 32

	// MaxScriptLines bounds the total number of lines in a script.
	MaxScriptLines = 65536
)

var (
	// ErrLineTooLong is reported when a script line exceeds MaxLineLen
	// before a terminator or end-of-input is seen.
	ErrLineTooLong = errors.New("line too long")
)

// A Source provides the script text and can be re-opened from the start,
// so the loader may run its two passes over the same input.
type Source interface {
	// Open returns a fresh reader positioned at the start of the script.
	Open() (io.ReadCloser, error)
	// Name identifies the source in diagnostics.
	Name() string
}

// FileSource reads a script from a file on disk.
type FileSource string

func (f FileSource) Open() (io.ReadCloser, error) { return os.Open(string(f)) }
func (f FileSource) Name() string                 { return string(f) }

// Text returns an in-memory Source, mostly useful for tests.
func Text(name, text string) Source {
	return &textSource{name: name, text: text}
}

type textSource struct {
	name string
	text string
}

func (src *textSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(src.text)), nil
}

func (src *textSource) Name() string { return src.name }

// Scanner yields the lines of a script one at a time.
//
// Carriage returns are dropped and do not count toward the line limit.
// The trailing line terminator is stripped. The content of a final,
// unterminated line is still yielded before end-of-input is signaled.
type Scanner struct {
	r    *bufio.Reader
	line int
	eof  bool
}

// NewScanner returns a Scanner reading script lines from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReader(r)}
}

// Line returns the 1-based number of the line most recently returned
// by Scan.
func (sc *Scanner) Line() int { return sc.line }

// Scan returns the next line of the script. ok is false once the input
// is exhausted; every line, including a final unterminated one, is
// returned with ok set before that.
func (sc *Scanner) Scan() (line string, ok bool, err error) {
	if sc.eof {
		return "", false, nil
	}

	var buf strings.Builder
	for {
		c, err := sc.r.ReadByte()
		switch {
		case errors.Is(err, io.EOF):
			sc.eof = true
			if buf.Len() == 0 {
				return "", false, nil
			}
			sc.line++
			return buf.String(), true, nil
		case err != nil:
			return "", false, fmt.Errorf("script: could not read line %d: %w", sc.line+1, err)
		}

		switch c {
		case '\r':
			// ignored, not counted toward the limit
		case '\n':
			sc.line++
			return buf.String(), true, nil
		default:
			if buf.Len() >= MaxLineLen {
				return "", false, fmt.Errorf("script: line %d: %w (max %d bytes)",
					sc.line+1, ErrLineTooLong, MaxLineLen,
				)
			}
			buf.WriteByte(c)
		}
	}
}
