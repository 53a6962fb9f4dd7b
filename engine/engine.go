// Copyright 2025 The i2crip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package engine executes a loaded command list against I2C buses,
// tracking per-bus connection state, the active slave address, and the
// error-suppression policy.
package engine // import "github.com/open-daq/i2crip/engine"

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/open-daq/i2crip/internal/logbook"
	"github.com/open-daq/i2crip/script"
	"github.com/open-daq/i2crip/transport"
)

// MaxBuses bounds the bus indices a script may address.
const MaxBuses = 64

var (
	ErrBusRange     = errors.New("bus index out of range")
	ErrNoBus        = errors.New("no bus selected")
	ErrNotConnected = errors.New("bus not connected")
	ErrNoSlave      = errors.New("no slave address set")
	ErrBadDelay     = errors.New("delay must be positive")
	ErrVerify       = errors.New("verification mismatch")
)

// Engine runs commands strictly in script order.
type Engine struct {
	tr    transport.Transport
	book  *logbook.Book
	sleep func(time.Duration)
	debug bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithDebug makes the engine log every command before executing it.
func WithDebug(on bool) Option {
	return func(eng *Engine) { eng.debug = on }
}

// WithSleep overrides the DELAY timer, for tests.
func WithSleep(f func(time.Duration)) Option {
	return func(eng *Engine) { eng.sleep = f }
}

// New returns an Engine issuing transactions through tr and logging
// through book.
func New(tr transport.Transport, book *logbook.Book, opts ...Option) *Engine {
	eng := &Engine{
		tr:    tr,
		book:  book,
		sleep: time.Sleep,
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// busConn is the per-bus connection record of one run.
type busConn struct {
	conn    transport.Conn
	open    bool
	addr    uint8
	hasAddr bool
}

// runCtx is the whole mutable state of one run. It is created at run
// start and torn down at run end; only command execution mutates it.
type runCtx struct {
	buses    [MaxBuses]busConn
	active   int // -1 when no bus is selected
	suppress bool
}

// Run executes cmds in order. With error suppression disabled the
// first failing command stops the run and is returned; with it enabled
// failures are logged and the run continues. Every bus opened during
// the run is closed before Run returns, whatever the outcome.
func (eng *Engine) Run(cmds []script.Command) error {
	ctx := &runCtx{active: -1}
	defer eng.teardown(ctx)

	eng.book.Printf("run %s: %d commands", eng.book.RunID(), len(cmds))

	suppressed := 0
	for _, cmd := range cmds {
		if eng.debug {
			eng.book.Printf("line %d: %s", cmd.Line, cmd.Mnemonic())
		}

		err := eng.exec(ctx, cmd)
		if err == nil {
			continue
		}
		if !ctx.suppress {
			eng.book.Printf("line %d: error: %+v", cmd.Line, err)
			eng.book.Printf("run %s: FAILED", eng.book.RunID())
			return fmt.Errorf("engine: line %d: %w", cmd.Line, err)
		}
		suppressed++
		eng.book.Printf("line %d: suppressed error: %+v", cmd.Line, err)
	}

	switch suppressed {
	case 0:
		eng.book.Printf("run %s: PASSED", eng.book.RunID())
	default:
		eng.book.Printf("run %s: PASSED (%d error(s) suppressed)",
			eng.book.RunID(), suppressed,
		)
	}
	return nil
}

// teardown closes every bus the run opened, exactly once each.
func (eng *Engine) teardown(ctx *runCtx) {
	for i := range ctx.buses {
		b := &ctx.buses[i]
		if !b.open {
			continue
		}
		b.open = false
		err := b.conn.Close()
		if err != nil {
			eng.book.Printf("bus %d: close error: %+v", i, err)
		}
		b.conn = nil
	}
}

func (eng *Engine) exec(ctx *runCtx, cmd script.Command) error {
	switch cmd.Kind {
	case script.KindSetBus:
		return eng.setBus(ctx, cmd)

	case script.KindSetID:
		return eng.setSlave(ctx, cmd)

	case script.KindDelay:
		if cmd.Ms <= 0 {
			return fmt.Errorf("engine: %w: %d ms", ErrBadDelay, cmd.Ms)
		}
		eng.sleep(time.Duration(cmd.Ms) * time.Millisecond)
		return nil

	case script.KindSuppressErrors:
		ctx.suppress = cmd.Flag
		return nil

	case script.KindLogFile:
		return eng.book.EnableFile(cmd.Flag)

	case script.KindLogTerm:
		eng.book.EnableTerm(cmd.Flag)
		return nil
	}
	return eng.execIO(ctx, cmd)
}

// setBus opens the bus on first selection and probes it for the
// required capabilities. A bus that fails to open or probe stays
// unconnected. Re-selecting an open bus preserves its slave address;
// a fresh open resets it.
func (eng *Engine) setBus(ctx *runCtx, cmd script.Command) error {
	if cmd.Bus < 0 || cmd.Bus >= MaxBuses {
		return fmt.Errorf("engine: %w: %d (max %d)", ErrBusRange, cmd.Bus, MaxBuses-1)
	}

	b := &ctx.buses[cmd.Bus]
	if !b.open {
		conn, err := eng.tr.Open(cmd.Bus)
		if err != nil {
			return fmt.Errorf("engine: could not open bus %d: %w", cmd.Bus, err)
		}
		err = conn.Probe()
		if err != nil {
			_ = conn.Close()
			return fmt.Errorf("engine: could not probe bus %d: %w", cmd.Bus, err)
		}
		b.conn = conn
		b.open = true
		b.hasAddr = false
		eng.book.Printf("bus %d: connected (%s)", cmd.Bus, conn.Name())
	}

	ctx.active = cmd.Bus
	return nil
}

func (eng *Engine) setSlave(ctx *runCtx, cmd script.Command) error {
	b, err := ctx.activeBus()
	if err != nil {
		return fmt.Errorf("engine: SET-ID: %w", err)
	}

	err = b.conn.SetSlave(cmd.Addr)
	if err != nil {
		b.hasAddr = false
		return fmt.Errorf("engine: could not select slave 0x%x: %w", cmd.Addr, err)
	}
	b.addr = cmd.Addr
	b.hasAddr = true
	eng.book.Printf("bus %d: slave 0x%02x selected", ctx.active, cmd.Addr)
	return nil
}

func (eng *Engine) execIO(ctx *runCtx, cmd script.Command) error {
	b, err := ctx.activeBus()
	if err != nil {
		return fmt.Errorf("engine: %s: %w", cmd.Mnemonic(), err)
	}
	if !b.hasAddr {
		return fmt.Errorf("engine: %s: %w", cmd.Mnemonic(), ErrNoSlave)
	}

	w := cmd.DataWidth()
	if w >= transport.MaxData {
		return fmt.Errorf("engine: %s: data width %d exceeds transaction cap %d",
			cmd.Mnemonic(), w, transport.MaxData,
		)
	}

	var (
		rw   = cmd.RegWidth()
		name = cmd.Mnemonic()
	)
	switch cmd.Op() {
	case script.ReadOp:
		buf := make([]byte, w)
		err = b.conn.ReadReg(cmd.Reg, rw, buf)
		if err != nil {
			return fmt.Errorf("engine: %s reg=0x%0*x: %w", name, 2*rw, cmd.Reg, err)
		}
		eng.book.Printf("line %d: %s reg=0x%0*x read=[% x]", cmd.Line, name, 2*rw, cmd.Reg, buf)

	case script.WriteOp:
		data := payload(cmd)
		err = b.conn.WriteReg(cmd.Reg, rw, data)
		if err != nil {
			return fmt.Errorf("engine: %s reg=0x%0*x: %w", name, 2*rw, cmd.Reg, err)
		}
		eng.book.Printf("line %d: %s reg=0x%0*x wrote=[% x]", cmd.Line, name, 2*rw, cmd.Reg, data)

	case script.VerifyOp:
		want := payload(cmd)
		got := make([]byte, w)
		err = b.conn.ReadReg(cmd.Reg, rw, got)
		if err != nil {
			return fmt.Errorf("engine: %s reg=0x%0*x: %w", name, 2*rw, cmd.Reg, err)
		}
		if !bytes.Equal(got, want) {
			eng.book.Printf("line %d: %s reg=0x%0*x got=[% x] want=[% x]",
				cmd.Line, name, 2*rw, cmd.Reg, got, want,
			)
			return fmt.Errorf("engine: %s reg=0x%0*x: %w: got=[% x] want=[% x]",
				name, 2*rw, cmd.Reg, ErrVerify, got, want,
			)
		}
		eng.book.Printf("line %d: %s reg=0x%0*x verified=[% x]", cmd.Line, name, 2*rw, cmd.Reg, got)
	}
	return nil
}

func (ctx *runCtx) activeBus() (*busConn, error) {
	if ctx.active < 0 {
		return nil, ErrNoBus
	}
	b := &ctx.buses[ctx.active]
	if !b.open {
		return nil, ErrNotConnected
	}
	return b, nil
}

// payload encodes a write or verify payload MSB first.
func payload(cmd script.Command) []byte {
	if cmd.DataWidth() == 2 {
		return []byte{uint8(cmd.Data >> 8), uint8(cmd.Data)}
	}
	return []byte{uint8(cmd.Data)}
}
