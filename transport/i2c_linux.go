// Copyright 2025 The i2crip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package transport

import (
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"github.com/go-daq/smbus"
	"golang.org/x/sys/unix"
)

// New returns the Transport backed by the Linux /dev/i2c-N interface.
func New() Transport { return i2cTransport{} }

type i2cTransport struct{}

func (i2cTransport) Open(bus int) (Conn, error) {
	name := fmt.Sprintf("/dev/i2c-%d", bus)
	f, err := os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("transport: could not open %s: %w", name, err)
	}
	return &i2cConn{bus: bus, name: name, f: f}, nil
}

// i2cConn drives one I2C adapter. Transactions for 8-bit register
// addresses with byte or word payloads go through the SMBus data
// protocols; everything else uses raw I2C_RDWR messages with the
// register address sent MSB first.
type i2cConn struct {
	bus  int
	name string
	f    *os.File

	smb     *smbus.Conn // SMBus fast path, opened on slave selection
	addr    uint8
	hasAddr bool
}

func (c *i2cConn) Name() string { return c.name }

func (c *i2cConn) Probe() error {
	if c.f == nil {
		return ErrClosed
	}
	var funcs uint64
	err := ioctl(c.f.Fd(), i2cFuncs, uintptr(unsafe.Pointer(&funcs)))
	if err != nil {
		return fmt.Errorf("transport: could not query %s functionality: %w", c.name, err)
	}
	if funcs&i2cFuncI2C == 0 {
		return fmt.Errorf("transport: %s does not support plain I2C transfers", c.name)
	}
	return nil
}

func (c *i2cConn) SetSlave(addr uint8) error {
	if c.f == nil {
		return ErrClosed
	}
	err := ioctl(c.f.Fd(), i2cSlave, uintptr(addr))
	if err != nil {
		return fmt.Errorf("transport: could not select slave 0x%x on %s: %w", addr, c.name, err)
	}

	switch {
	case c.smb != nil:
		err = c.smb.SetAddr(addr)
		if err != nil {
			return fmt.Errorf("transport: could not select slave 0x%x on %s: %w", addr, c.name, err)
		}
	default:
		smb, err := smbus.Open(c.bus, addr)
		if err == nil {
			c.smb = smb
		}
		// on failure, fall back to raw I2C_RDWR transfers only
	}

	c.addr = addr
	c.hasAddr = true
	return nil
}

func (c *i2cConn) ReadReg(reg uint16, regWidth int, buf []byte) error {
	if c.f == nil {
		return ErrClosed
	}
	if len(buf) == 0 || len(buf) > MaxData {
		return ErrDataWidth
	}

	if c.smb != nil && regWidth == 1 {
		switch len(buf) {
		case 1:
			v, err := c.smb.ReadReg(c.addr, uint8(reg))
			if err != nil {
				return fmt.Errorf("transport: could not read register 0x%x on %s: %w", reg, c.name, err)
			}
			buf[0] = v
			return nil
		case 2:
			v, err := c.smb.ReadWord(c.addr, uint8(reg))
			if err != nil {
				return fmt.Errorf("transport: could not read register 0x%x on %s: %w", reg, c.name, err)
			}
			// SMBus words travel LSB first, registers are MSB first.
			buf[0] = uint8(v)
			buf[1] = uint8(v >> 8)
			return nil
		}
	}

	regBuf, err := regAddrBytes(reg, regWidth)
	if err != nil {
		return err
	}

	msgs := [2]i2cMsg{
		{
			addr: uint16(c.addr),
			len:  uint16(len(regBuf)),
			buf:  uintptr(unsafe.Pointer(&regBuf[0])),
		},
		{
			addr:  uint16(c.addr),
			flags: i2cMRd,
			len:   uint16(len(buf)),
			buf:   uintptr(unsafe.Pointer(&buf[0])),
		},
	}
	err = c.rdwr(msgs[:])
	runtime.KeepAlive(regBuf)
	runtime.KeepAlive(buf)
	if err != nil {
		return fmt.Errorf("transport: could not read register 0x%x on %s: %w", reg, c.name, err)
	}
	return nil
}

func (c *i2cConn) WriteReg(reg uint16, regWidth int, data []byte) error {
	if c.f == nil {
		return ErrClosed
	}
	if len(data) == 0 || len(data) > MaxData {
		return ErrDataWidth
	}

	if c.smb != nil && regWidth == 1 {
		switch len(data) {
		case 1:
			err := c.smb.WriteReg(c.addr, uint8(reg), data[0])
			if err != nil {
				return fmt.Errorf("transport: could not write register 0x%x on %s: %w", reg, c.name, err)
			}
			return nil
		case 2:
			v := uint16(data[0]) | uint16(data[1])<<8
			err := c.smb.WriteWord(c.addr, uint8(reg), v)
			if err != nil {
				return fmt.Errorf("transport: could not write register 0x%x on %s: %w", reg, c.name, err)
			}
			return nil
		}
	}

	regBuf, err := regAddrBytes(reg, regWidth)
	if err != nil {
		return err
	}
	p := make([]byte, 0, len(regBuf)+len(data))
	p = append(p, regBuf...)
	p = append(p, data...)

	msgs := [1]i2cMsg{
		{
			addr: uint16(c.addr),
			len:  uint16(len(p)),
			buf:  uintptr(unsafe.Pointer(&p[0])),
		},
	}
	err = c.rdwr(msgs[:])
	runtime.KeepAlive(p)
	if err != nil {
		return fmt.Errorf("transport: could not write register 0x%x on %s: %w", reg, c.name, err)
	}
	return nil
}

func (c *i2cConn) Close() error {
	if c.f == nil {
		return nil
	}
	if c.smb != nil {
		_ = c.smb.Close()
		c.smb = nil
	}
	f := c.f
	c.f = nil
	err := f.Close()
	if err != nil {
		return fmt.Errorf("transport: could not close %s: %w", c.name, err)
	}
	return nil
}

// ioctl requests and flags from the kernel's <linux/i2c-dev.h> and
// <linux/i2c.h>; golang.org/x/sys/unix does not export them.
const (
	i2cSlave = 0x0703
	i2cFuncs = 0x0705
	i2cRdwr  = 0x0707

	i2cMRd     = 0x0001
	i2cFuncI2C = 0x00000001
)

// i2cMsg mirrors the kernel's struct i2c_msg.
type i2cMsg struct {
	addr  uint16
	flags uint16
	len   uint16
	_     uint16
	buf   uintptr
}

// i2cRdwrData mirrors the kernel's struct i2c_rdwr_ioctl_data.
type i2cRdwrData struct {
	msgs  uintptr
	nmsgs uint32
}

func (c *i2cConn) rdwr(msgs []i2cMsg) error {
	data := i2cRdwrData{
		msgs:  uintptr(unsafe.Pointer(&msgs[0])),
		nmsgs: uint32(len(msgs)),
	}
	err := ioctl(c.f.Fd(), i2cRdwr, uintptr(unsafe.Pointer(&data)))
	runtime.KeepAlive(msgs)
	return err
}

func ioctl(fd uintptr, req uint, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(req), arg)
	if errno != 0 {
		return errno
	}
	return nil
}
