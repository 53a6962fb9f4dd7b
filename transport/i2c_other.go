// Copyright 2025 The i2crip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package transport

import "fmt"

// New returns the real I2C transport. Only Linux exposes the
// /dev/i2c-N interface; elsewhere opening any bus fails.
func New() Transport { return unsupported{} }

type unsupported struct{}

func (unsupported) Open(bus int) (Conn, error) {
	return nil, fmt.Errorf("transport: real I2C buses are not supported on this platform")
}
