// Copyright 2025 The i2crip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package script

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadLiteral     = errors.New("invalid numeric literal")
	ErrTokenTooLong   = errors.New("token too long")
	ErrArity          = errors.New("wrong argument count")
	ErrRange          = errors.New("value out of range")
)

// Parse converts one script line into a Command.
//
// Tokens are separated by runs of spaces and tabs. A trailing "//"
// comment and everything after it is stripped before tokenization.
// A line that is blank after stripping parses as the KindInvalid
// sentinel with a nil error; every malformed line is a hard error.
func Parse(line string) (Command, error) {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}

	toks := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t'
	})
	if len(toks) == 0 {
		return Command{}, nil
	}

	for _, tok := range toks {
		if len(tok) > MaxTokenLen {
			return Command{}, fmt.Errorf("script: %w: %q (max %d bytes)",
				ErrTokenTooLong, tok[:MaxTokenLen]+"...", MaxTokenLen,
			)
		}
	}

	entry, ok := lookup(toks[0])
	if !ok {
		return Command{}, fmt.Errorf("script: %w: %q", ErrUnknownCommand, toks[0])
	}

	if got, want := len(toks)-1, entry.nargs; got != want {
		return Command{}, fmt.Errorf("script: %w: %s takes %d argument(s), got %d",
			ErrArity, entry.name, want, got,
		)
	}

	args := make([]int64, entry.nargs)
	for i, tok := range toks[1:] {
		v, err := parseNum(tok)
		if err != nil {
			return Command{}, err
		}
		args[i] = v
	}

	return build(entry, args)
}

// parseNum converts one argument token: decimal, or hexadecimal when
// prefixed with "0x". The whole token must convert.
func parseNum(tok string) (int64, error) {
	var (
		v   int64
		err error
	)
	switch {
	case strings.HasPrefix(tok, "0x"), strings.HasPrefix(tok, "0X"):
		v, err = strconv.ParseInt(tok[2:], 16, 64)
	default:
		v, err = strconv.ParseInt(tok, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("script: %w: %q", ErrBadLiteral, tok)
	}
	return v, nil
}

// build assembles a Command from a resolved table entry and its
// arguments, range-checking each argument against its destination
// field.
func build(e tableEntry, args []int64) (Command, error) {
	cmd := Command{Kind: e.kind}

	checked := func(v int64, max int64, field string) (uint16, error) {
		if v < 0 || v > max {
			return 0, fmt.Errorf("script: %w: %s %s=0x%x (max 0x%x)",
				ErrRange, e.name, field, v, max,
			)
		}
		return uint16(v), nil
	}

	switch e.kind {
	case KindSetBus:
		v, err := checked(args[0], math.MaxUint8, "bus")
		if err != nil {
			return Command{}, err
		}
		cmd.Bus = int(v)

	case KindSetID:
		v, err := checked(args[0], math.MaxUint8, "address")
		if err != nil {
			return Command{}, err
		}
		cmd.Addr = uint8(v)

	case KindDelay:
		if args[0] > math.MaxInt32 || args[0] < math.MinInt32 {
			return Command{}, fmt.Errorf("script: %w: %s ms=%d",
				ErrRange, e.name, args[0],
			)
		}
		cmd.Ms = int(args[0])

	case KindSuppressErrors, KindLogFile, KindLogTerm:
		switch args[0] {
		case 0:
			cmd.Flag = false
		case 1:
			cmd.Flag = true
		default:
			return Command{}, fmt.Errorf("script: %w: %s flag=%d (want 0 or 1)",
				ErrRange, e.name, args[0],
			)
		}

	default:
		var (
			regMax  = int64(math.MaxUint8)
			dataMax = int64(math.MaxUint8)
		)
		if cmd.RegWidth() == 2 {
			regMax = math.MaxUint16
		}
		if cmd.DataWidth() == 2 {
			dataMax = math.MaxUint16
		}

		reg, err := checked(args[0], regMax, "register")
		if err != nil {
			return Command{}, err
		}
		cmd.Reg = reg

		if cmd.Op() == WriteOp || cmd.Op() == VerifyOp {
			data, err := checked(args[1], dataMax, "data")
			if err != nil {
				return Command{}, err
			}
			cmd.Data = data
		}
	}

	return cmd, nil
}
