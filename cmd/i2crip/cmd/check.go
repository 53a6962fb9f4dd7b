// Copyright 2025 The i2crip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-daq/i2crip/script"
)

var checkCmd = &cobra.Command{
	Use:   "check <script>",
	Short: "Validate a script without executing it",
	Args:  cobra.ExactArgs(1),
	RunE:  checkScript,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func checkScript(cmd *cobra.Command, args []string) error {
	cmds, err := script.Load(script.FileSource(args[0]))
	if err != nil {
		return fmt.Errorf("could not load %s: %w", args[0], err)
	}

	fmt.Printf("%s: ok (%d commands)\n", args[0], len(cmds))
	return nil
}
