// Copyright 2025 The i2crip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package transport abstracts the register-level I2C transactions the
// execution engine issues, so runs can target real adapters or a
// simulator.
package transport // import "github.com/open-daq/i2crip/transport"

import "errors"

// MaxData is the largest payload, in bytes, of a single register
// transaction.
const MaxData = 64

var (
	ErrRegWidth  = errors.New("transport: invalid register address width")
	ErrDataWidth = errors.New("transport: invalid data width")
	ErrClosed    = errors.New("transport: connection closed")
)

// A Transport opens connections to numbered buses.
type Transport interface {
	Open(bus int) (Conn, error)
}

// A Conn is an open handle on one bus.
//
// Probe checks the adapter supports the transactions i2crip issues.
// SetSlave selects the device subsequent register transactions address.
// ReadReg and WriteReg transfer len(buf) data bytes for the register at
// reg, addressed with regWidth bytes (1 or 2) sent MSB first.
type Conn interface {
	Name() string
	Probe() error
	SetSlave(addr uint8) error
	ReadReg(reg uint16, regWidth int, buf []byte) error
	WriteReg(reg uint16, regWidth int, data []byte) error
	Close() error
}

// regAddrBytes encodes a register address MSB first.
func regAddrBytes(reg uint16, regWidth int) ([]byte, error) {
	switch regWidth {
	case 1:
		return []byte{uint8(reg)}, nil
	case 2:
		return []byte{uint8(reg >> 8), uint8(reg)}, nil
	}
	return nil, ErrRegWidth
}
