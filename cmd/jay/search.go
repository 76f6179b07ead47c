package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Query the workspace vector index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withComponents(false, func(c *components) error {
			k, _ := cmd.Flags().GetInt("top")
			if k <= 0 {
				k = cfg.Index.TopK
			}

			hits, err := c.Index.Query(cmd.Context(), strings.Join(args, " "), k)
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				fmt.Println("no matches; build the index first with `jay index`")
				return nil
			}

			for i, hit := range hits {
				fmt.Printf("%d. [%.3f] %s\n%s\n\n", i+1, hit.Score, hit.ChunkID, hit.Snippet)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntP("top", "k", 0, "maximum number of results")
}
