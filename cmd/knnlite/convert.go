package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/knnlite/persistence"
)

func newConvertCmd(a *app) *cobra.Command {
	var format, compression string

	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Rewrite a snapshot in another format",
		Long: `Decode a snapshot of any format and write it to output in the format
given by --format and --compression (default: KNNLITE_FORMAT and
KNNLITE_COMPRESSION).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("format") {
				cfg.Format = format
			}
			if cmd.Flags().Changed("compression") {
				cfg.Compression = compression
			}
			opts, err := cfg.EncodeOptions()
			if err != nil {
				return err
			}

			snap, err := persistence.LoadFile(args[0])
			if err != nil {
				return err
			}
			if err := persistence.SaveFile(args[1], *snap, opts); err != nil {
				return err
			}

			info, err := persistence.Stat(args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s (%s, %s, %d bytes)\n",
				snap.Len(), args[1], opts.Format, opts.Compression, info.Size)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "output format: v0 or v1")
	cmd.Flags().StringVar(&compression, "compression", "", "v1 compression: none, zstd or lz4")
	return cmd
}
