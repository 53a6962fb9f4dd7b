// Copyright 2025 The i2crip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-daq/i2crip"
)

var rootCmd = &cobra.Command{
	Use:   "i2crip",
	Short: "scripted I2C register read/write/verify runner",
	Long: `i2crip executes line-oriented scripts of I2C register transactions
for hardware bring-up and regression testing.

Examples:
  i2crip run init-sensor.rip            # run against real buses
  i2crip run --simulate init-sensor.rip # dry run, no device files
  i2crip check init-sensor.rip          # validate without running`,
	SilenceUsage: true,
}

func init() {
	version, sum := i2crip.Version()
	if version == "" {
		version = "devel"
	}
	if sum != "" {
		version += " (" + sum + ")"
	}
	rootCmd.Version = version
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "i2crip: %+v\n", err)
		os.Exit(1)
	}
}
