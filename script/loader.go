// Copyright 2025 The i2crip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package script

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyScript  = errors.New("empty script")
	ErrTooManyLines = errors.New("too many lines")
)

// Load reads a whole script from src and returns its commands in script
// order, each annotated with its 1-based source line.
//
// The load runs in two passes: the first counts the commands and
// rejects the script on the first malformed line, the second re-reads
// the source from the start and materializes exactly the counted
// commands. Any failure loads zero commands.
func Load(src Source) ([]Command, error) {
	n, err := count(src)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("script: %s: %w", src.Name(), ErrEmptyScript)
	}

	cmds, err := materialize(src, n)
	if err != nil {
		return nil, err
	}
	return cmds, nil
}

// count runs pass 1: validate every line and count the ones that
// resolve to a command.
func count(src Source) (int, error) {
	r, err := src.Open()
	if err != nil {
		return 0, fmt.Errorf("script: could not open %s: %w", src.Name(), err)
	}
	defer r.Close()

	var (
		sc = NewScanner(r)
		n  = 0
	)
	for {
		line, ok, err := sc.Scan()
		if err != nil {
			return 0, fmt.Errorf("%s: %w", src.Name(), err)
		}
		if !ok {
			return n, nil
		}
		if sc.Line() > MaxScriptLines {
			return 0, fmt.Errorf("script: %s: %w (max %d)",
				src.Name(), ErrTooManyLines, MaxScriptLines,
			)
		}

		cmd, err := Parse(line)
		if err != nil {
			return 0, fmt.Errorf("%s: line %d: %w", src.Name(), sc.Line(), err)
		}
		if cmd.Kind != KindInvalid {
			n++
		}
	}
}

// materialize runs pass 2: re-read the source and collect exactly n
// commands.
func materialize(src Source, n int) ([]Command, error) {
	r, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("script: could not re-open %s: %w", src.Name(), err)
	}
	defer r.Close()

	var (
		sc   = NewScanner(r)
		cmds = make([]Command, 0, n)
	)
	for {
		line, ok, err := sc.Scan()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.Name(), err)
		}
		if !ok {
			break
		}

		cmd, err := Parse(line)
		if err != nil {
			// pass 1 already validated this line.
			return nil, fmt.Errorf("script: internal: %s: line %d changed between passes: %w",
				src.Name(), sc.Line(), err,
			)
		}
		if cmd.Kind == KindInvalid {
			continue
		}
		cmd.Line = sc.Line()
		cmds = append(cmds, cmd)
	}

	if len(cmds) != n {
		return nil, fmt.Errorf("script: internal: %s: loaded %d commands, expected %d",
			src.Name(), len(cmds), n,
		)
	}
	return cmds, nil
}
