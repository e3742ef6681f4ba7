// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the cord-loader version, Go runtime, and VCS revision",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeVersion(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// writeVersion prints the ldflags version, the Go runtime, and the VCS
// revision embedded by the toolchain when one is available.
func writeVersion(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "cord-loader %s (%s %s/%s)\n",
		version, runtime.Version(), runtime.GOOS, runtime.GOARCH); err != nil {
		return err
	}
	if rev := vcsRevision(); rev != "" {
		_, err := fmt.Fprintf(w, "revision %s\n", rev)
		return err
	}
	return nil
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var rev, dirty string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			if s.Value == "true" {
				dirty = "-dirty"
			}
		}
	}
	if rev == "" {
		return ""
	}
	return rev + dirty
}
