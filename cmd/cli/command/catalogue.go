package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "List categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		result, err := newClient().ListCategories(cmd.Context(), search, page, pageSize)
		if err != nil {
			return fmt.Errorf("failed to list categories: %w", err)
		}
		for _, c := range result.Data {
			fmt.Printf("%-20s %s\n", c.Slug, c.Name)
		}
		return nil
	},
}

var genreCmd = &cobra.Command{
	Use:   "genre",
	Short: "List genres",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		result, err := newClient().ListGenres(cmd.Context(), search, page, pageSize)
		if err != nil {
			return fmt.Errorf("failed to list genres: %w", err)
		}
		for _, g := range result.Data {
			fmt.Printf("%-20s %s\n", g.Slug, g.Name)
		}
		return nil
	},
}

func init() {
	categoryCmd.Flags().String("search", "", "filter by part of the name")
	genreCmd.Flags().String("search", "", "filter by part of the name")
}
