package command

import (
	"fmt"
	"strconv"
	"strings"

	"yamdb/cmd/cli/command/client"
	"yamdb/internal/microservices/http-api/dto"

	"github.com/spf13/cobra"
)

var titleCmd = &cobra.Command{
	Use:   "title",
	Short: "Browse titles",
}

var listTitlesCmd = &cobra.Command{
	Use:   "list",
	Short: "List titles, optionally filtered",
	RunE: func(cmd *cobra.Command, args []string) error {
		var filter client.TitleFilter
		filter.Name, _ = cmd.Flags().GetString("name")
		filter.Year, _ = cmd.Flags().GetInt("year")
		filter.Genre, _ = cmd.Flags().GetString("genre")
		filter.Category, _ = cmd.Flags().GetString("category")

		result, err := newClient().ListTitles(cmd.Context(), filter, page, pageSize)
		if err != nil {
			return fmt.Errorf("failed to list titles: %w", err)
		}
		if len(result.Data) == 0 {
			fmt.Println("No titles found.")
			return nil
		}

		fmt.Printf("Page %d of %d (%d titles)\n", result.Page, result.TotalPages, result.Total)
		for _, t := range result.Data {
			fmt.Printf("[%d] %s (%d) %s\n", t.ID, t.Name, t.Year, formatRating(t.Rating))
		}
		return nil
	},
}

var getTitleCmd = &cobra.Command{
	Use:   "get [title-id]",
	Short: "Show one title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid title ID: %w", err)
		}

		t, err := newClient().GetTitle(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to get title: %w", err)
		}
		printTitle(t)
		return nil
	},
}

func printTitle(t *dto.TitleResponse) {
	genres := make([]string, 0, len(t.Genre))
	for _, g := range t.Genre {
		genres = append(genres, g.Name)
	}
	fmt.Printf("%s (%d)\n", t.Name, t.Year)
	fmt.Printf("Category: %s\n", t.Category.Name)
	fmt.Printf("Genres:   %s\n", strings.Join(genres, ", "))
	fmt.Printf("Rating:   %s\n", formatRating(t.Rating))
	if t.Description != nil {
		fmt.Println()
		fmt.Println(*t.Description)
	}
}

func formatRating(r *float64) string {
	if r == nil {
		return "unrated"
	}
	return fmt.Sprintf("%.1f/10", *r)
}

func init() {
	titleCmd.AddCommand(listTitlesCmd, getTitleCmd)
	listTitlesCmd.Flags().String("name", "", "filter by part of the name")
	listTitlesCmd.Flags().Int("year", 0, "filter by year")
	listTitlesCmd.Flags().String("genre", "", "filter by genre slug")
	listTitlesCmd.Flags().String("category", "", "filter by category slug")
}
