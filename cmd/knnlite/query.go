package main

import (
	"fmt"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/hupe1980/knnlite"
)

type queryHit struct {
	ID       int64   `json:"id"`
	Distance float32 `json:"distance"`
}

func newQueryCmd(a *app) *cobra.Command {
	var (
		vector string
		k      int
		filter []int64
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Search a snapshot for the nearest neighbors of a vector",
		Long: `Load a snapshot and print the ids of the k records nearest to --vector,
nearest first, with their squared L2 distance.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query, err := parseVector(vector)
			if err != nil {
				return err
			}

			eng, err := a.newEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			ctx := cmd.Context()
			if err := eng.Load(ctx, a.cfg.Index); err != nil {
				return err
			}
			if dim := eng.Dimension(); len(query) != dim {
				return fmt.Errorf("query has %d values, index dimension is %d", len(query), dim)
			}

			var searchOpts []knnlite.SearchOption
			if len(filter) > 0 {
				searchOpts = append(searchOpts, knnlite.WithFilter(knnlite.NewIDFilter(filter...)))
			}

			results, err := eng.SearchResults(ctx, query, k, searchOpts...)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				hits := make([]queryHit, len(results))
				for i, r := range results {
					hits[i] = queryHit{ID: r.ID, Distance: r.Distance}
				}
				b, err := gojson.Marshal(hits)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(w, string(b))
				return err
			}

			for _, r := range results {
				fmt.Fprintf(w, "%d\t%g\n", r.ID, r.Distance)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&vector, "vector", "", "comma-separated query values")
	cmd.Flags().IntVarP(&k, "k", "k", 10, "number of neighbors")
	cmd.Flags().Int64SliceVar(&filter, "filter", nil, "only consider these ids")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("vector")
	return cmd
}

func parseVector(s string) ([]float32, error) {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	if s == "" {
		return nil, fmt.Errorf("empty vector")
	}

	parts := strings.Split(s, ",")
	out := make([]float32, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("vector value %d: %w", i, err)
		}
		out[i] = float32(v)
	}
	return out, nil
}
