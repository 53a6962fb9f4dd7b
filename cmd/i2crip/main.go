// Copyright 2025 The i2crip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command i2crip runs register read/write/verify scripts against I2C
// devices, for sensor and serdes bring-up.
package main // import "github.com/open-daq/i2crip/cmd/i2crip"

import "github.com/open-daq/i2crip/cmd/i2crip/cmd"

func main() {
	cmd.Execute()
}
