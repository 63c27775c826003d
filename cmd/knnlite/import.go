package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// record is one line of import input.
type record struct {
	ID     int64     `json:"id"`
	Vector []float32 `json:"vector"`
}

func newImportCmd(a *app) *cobra.Command {
	var (
		input     string
		appendTo  bool
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Build a snapshot from JSON lines",
		Long: `Read records of the form {"id": 1, "vector": [0.1, 0.2]} and save them
to the index. The first record sets the dimension unless --append loads an
existing index first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if batchSize <= 0 {
				return fmt.Errorf("batch size must be positive, got %d", batchSize)
			}

			r := cmd.InOrStdin()
			if input != "-" {
				f, err := os.Open(input)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			eng, err := a.newEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			ctx := cmd.Context()
			if appendTo {
				if _, err := eng.LoadIfExists(ctx, a.cfg.Index); err != nil {
					return err
				}
			}

			var (
				ids     []int64
				vectors []float32
				total   int
			)
			flush := func() error {
				if len(ids) == 0 {
					return nil
				}
				n, err := eng.Add(ctx, ids, vectors, eng.Dimension())
				total += n
				ids, vectors = ids[:0], vectors[:0]
				return err
			}

			dec := gojson.NewDecoder(bufio.NewReader(r))
			for line := 1; ; line++ {
				var rec record
				if err := dec.Decode(&rec); err != nil {
					if errors.Is(err, io.EOF) {
						break
					}
					return fmt.Errorf("record %d: %w", line, err)
				}

				if !eng.Ready() {
					if err := eng.Initialize(ctx, len(rec.Vector)); err != nil {
						return err
					}
				}
				if dim := eng.Dimension(); len(rec.Vector) != dim || dim <= 0 {
					return fmt.Errorf("record %d: vector has %d values, dimension is %d", line, len(rec.Vector), dim)
				}

				ids = append(ids, rec.ID)
				vectors = append(vectors, rec.Vector...)
				if len(ids) >= batchSize {
					if err := flush(); err != nil {
						return err
					}
				}
			}
			if err := flush(); err != nil {
				return err
			}
			if !eng.Ready() {
				return fmt.Errorf("no records to import")
			}

			if err := eng.Save(ctx, a.cfg.Index); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d records (dimension %d, %d total) into %s\n",
				total, eng.Dimension(), eng.Len(), a.cfg.Index)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "-", "JSON lines file, - for stdin")
	cmd.Flags().BoolVar(&appendTo, "append", false, "add to the existing index instead of replacing it")
	cmd.Flags().IntVar(&batchSize, "batch", 1024, "records per Add call")
	return cmd
}
