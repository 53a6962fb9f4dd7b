// Copyright 2025 The i2crip Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func writeScript(t *testing.T, text string) string {
	t.Helper()
	fname := filepath.Join(t.TempDir(), "test.rip")
	err := os.WriteFile(fname, []byte(text), 0644)
	if err != nil {
		t.Fatalf("could not create script: %+v", err)
	}
	return fname
}

func TestRunSimulateE2E(t *testing.T) {
	fname := writeScript(t, `
SET-BUS 0
SET-ID 0x50
WB-8 0x00 0xAA
VB-8 0x00 0xAA
RW-16 0x0100
`)

	rootCmd.SetArgs([]string{"run", "--simulate", "--quiet", fname})
	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("simulated run failed: %+v", err)
	}
}

func TestRunLoadFailure(t *testing.T) {
	fname := writeScript(t, "SET-BUS 0\nBOGUS 1\n")

	rootCmd.SetArgs([]string{"run", "--simulate", "--quiet", fname})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatalf("run succeeded on a malformed script")
	}
}

func TestCheckE2E(t *testing.T) {
	fname := writeScript(t, "SET-BUS 0\nSET-ID 0x50\nRB-8 0x00\n")

	rootCmd.SetArgs([]string{"check", fname})
	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("check failed: %+v", err)
	}
}
