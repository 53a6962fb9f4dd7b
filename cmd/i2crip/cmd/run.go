// Copyright 2025 The i2crip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/open-daq/i2crip/engine"
	"github.com/open-daq/i2crip/internal/logbook"
	"github.com/open-daq/i2crip/script"
	"github.com/open-daq/i2crip/transport"
)

var (
	flagYes   bool
	flagSim   bool
	flagQuiet bool
	flagDebug bool
	flagLog   string
)

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Load a script and execute it against the I2C buses",
	Args:  cobra.ExactArgs(1),
	RunE:  runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVarP(&flagYes, "yes", "y", false,
		"skip the interactive confirmation")
	runCmd.Flags().BoolVar(&flagSim, "simulate", false,
		"run against simulated buses, never touching device files")
	runCmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false,
		"start with terminal logging disabled")
	runCmd.Flags().BoolVar(&flagDebug, "debug", false,
		"log every command with its source line before executing it")
	runCmd.Flags().StringVar(&flagLog, "log-file", "i2crip.log",
		"path of the log file used when the script enables file logging")
}

func runScript(cmd *cobra.Command, args []string) error {
	cmds, err := script.Load(script.FileSource(args[0]))
	if err != nil {
		return fmt.Errorf("could not load %s: %w", args[0], err)
	}

	if !flagYes && !flagSim {
		ok, err := confirm()
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("aborted on user request")
		}
	}

	var tr transport.Transport
	switch {
	case flagSim:
		tr = transport.NewSim()
	default:
		tr = transport.New()
	}

	book := logbook.New(os.Stdout, flagLog)
	defer book.Close()
	book.EnableTerm(!flagQuiet)

	eng := engine.New(tr, book, engine.WithDebug(flagDebug))
	return eng.Run(cmds)
}

// confirm asks before touching real hardware. Writing to the wrong
// register can wedge a bus or brick a device.
func confirm() (bool, error) {
	fmt.Fprintln(os.Stderr, "WARNING! this program can confuse your I2C bus and cause data loss")

	l := liner.NewLiner()
	defer l.Close()
	l.SetCtrlCAborts(true)

	ans, err := l.Prompt("continue? [y/N] ")
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return false, nil
		}
		return false, fmt.Errorf("could not read answer: %w", err)
	}
	return strings.EqualFold(strings.TrimSpace(ans), "y"), nil
}
