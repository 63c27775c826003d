package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/knnlite"
	"github.com/hupe1980/knnlite/distance"
)

type benchConfig struct {
	count   int
	dim     int
	queries int
	k       int
	seed    uint64
}

func newBenchCmd(a *app) *cobra.Command {
	var bc benchConfig

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure add and search throughput on random vectors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if bc.count <= 0 || bc.dim <= 0 || bc.queries <= 0 || bc.k <= 0 {
				return fmt.Errorf("count, dim, queries and k must be positive")
			}

			metrics := &knnlite.BasicMetricsCollector{}
			eng, err := a.newEngine(knnlite.WithDimension(bc.dim), knnlite.WithMetricsCollector(metrics))
			if err != nil {
				return err
			}
			defer eng.Close()

			rng := rand.New(rand.NewPCG(bc.seed, bc.seed^0x9e3779b97f4a7c15))
			ids := make([]int64, bc.count)
			vectors := make([]float32, bc.count*bc.dim)
			for i := range ids {
				ids[i] = int64(i)
			}
			for i := range vectors {
				vectors[i] = rng.Float32()
			}

			ctx := cmd.Context()
			start := time.Now()
			if _, err := eng.Add(ctx, ids, vectors, bc.dim); err != nil {
				return err
			}
			addElapsed := time.Since(start)

			query := make([]float32, bc.dim)
			start = time.Now()
			for range bc.queries {
				for i := range query {
					query[i] = rng.Float32()
				}
				if _, err := eng.Search(ctx, query, bc.k); err != nil {
					return err
				}
			}
			searchElapsed := time.Since(start)

			stats := metrics.GetStats()
			kernel := distance.Default()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "kernel:   %s (%d lanes), workers %d\n", kernel.Name(), kernel.Lanes(), eng.Stats().Workers)
			fmt.Fprintf(w, "add:      %d vectors x %d dims in %s\n", bc.count, bc.dim, addElapsed)
			fmt.Fprintf(w, "search:   %d queries, k=%d in %s (%.1f qps, avg %s)\n",
				stats.SearchCount, bc.k, searchElapsed,
				float64(bc.queries)/searchElapsed.Seconds(),
				time.Duration(stats.SearchAvgNanos))
			return nil
		},
	}

	cmd.Flags().IntVar(&bc.count, "count", 10000, "number of vectors")
	cmd.Flags().IntVar(&bc.dim, "dim", 128, "vector dimension")
	cmd.Flags().IntVar(&bc.queries, "queries", 100, "number of queries")
	cmd.Flags().IntVarP(&bc.k, "k", "k", 10, "neighbors per query")
	cmd.Flags().Uint64Var(&bc.seed, "seed", 1, "random seed")
	return cmd
}
