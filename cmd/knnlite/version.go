package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/hupe1980/knnlite"
	"github.com/hupe1980/knnlite/distance"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newVersionCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "knnlite %s\n", version)
			if !verbose {
				return
			}

			fmt.Fprintf(w, "  go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			for _, c := range distance.Capabilities() {
				mark := ""
				if c.Active {
					mark = " (active)"
				}
				fmt.Fprintf(w, "  kernel: %-8s lanes=%-2d supported=%t%s\n", c.Name, c.Lanes, c.Supported, mark)
			}
			for _, b := range knnlite.Backends() {
				fmt.Fprintf(w, "  backend: %-6s available=%t\n", b.Name, b.Available)
			}
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show build and runtime details")
	return cmd
}
