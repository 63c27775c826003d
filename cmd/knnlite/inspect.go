package main

import (
	"fmt"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/hupe1980/knnlite/persistence"
)

type inspectOutput struct {
	Path        string `json:"path"`
	Format      string `json:"format"`
	Compression string `json:"compression"`
	Dimension   int    `json:"dimension"`
	Records     int64  `json:"records"`
	FileSize    int64  `json:"file_size"`
	Verified    bool   `json:"verified,omitempty"`
}

func newInspectCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		verify bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [path]",
		Short: "Print a snapshot header",
		Long: `Print the header of a snapshot file. With --verify the whole file is
decoded, which checks the body length and, for v1, the checksum.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Index
			if len(args) == 1 {
				path = args[0]
			}

			info, err := persistence.Stat(path)
			if err != nil {
				return err
			}
			if verify {
				if _, err := persistence.LoadFile(path); err != nil {
					return err
				}
			}

			out := inspectOutput{
				Path:        info.Path,
				Format:      info.Format.String(),
				Compression: info.Compression.String(),
				Dimension:   info.Dim,
				Records:     info.Count,
				FileSize:    info.Size,
				Verified:    verify,
			}

			w := cmd.OutOrStdout()
			if asJSON {
				b, err := gojson.MarshalIndent(out, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(w, string(b))
				return err
			}

			fmt.Fprintf(w, "path:        %s\n", out.Path)
			fmt.Fprintf(w, "format:      %s\n", out.Format)
			fmt.Fprintf(w, "compression: %s\n", out.Compression)
			fmt.Fprintf(w, "dimension:   %d\n", out.Dimension)
			fmt.Fprintf(w, "records:     %d\n", out.Records)
			fmt.Fprintf(w, "file size:   %d\n", out.FileSize)
			if verify {
				fmt.Fprintln(w, "verified:    ok")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().BoolVar(&verify, "verify", false, "decode the whole snapshot")
	return cmd
}
