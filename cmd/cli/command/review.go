package command

import (
	"fmt"
	"strconv"
	"strings"

	"yamdb/internal/microservices/http-api/dto"

	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review management commands",
	Long:  `Read, post and delete reviews of a title`,
}

var listReviewsCmd = &cobra.Command{
	Use:   "list [title-id]",
	Short: "List reviews of a title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid title ID: %w", err)
		}

		result, err := newClient().ListReviews(cmd.Context(), titleID, page, pageSize)
		if err != nil {
			return fmt.Errorf("failed to list reviews: %w", err)
		}
		if len(result.Data) == 0 {
			fmt.Println("No reviews yet.")
			return nil
		}
		for _, r := range result.Data {
			fmt.Printf("[%d] %s rated %d/10 on %s\n", r.ID, r.Author, r.Score, r.PubDate.Format("2006-01-02"))
			fmt.Printf("    %s\n", r.Text)
		}
		return nil
	},
}

var createReviewCmd = &cobra.Command{
	Use:   "add [title-id] [score] [text]",
	Short: "Review a title (score 1-10)",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid title ID: %w", err)
		}
		score, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid score: %w", err)
		}
		if score < 1 || score > 10 {
			return fmt.Errorf("score must be between 1 and 10")
		}

		c, err := requireClient()
		if err != nil {
			return err
		}
		req := &dto.CreateReviewDTO{Text: strings.Join(args[2:], " "), Score: score}
		result, err := c.CreateReview(cmd.Context(), titleID, req)
		if err != nil {
			return fmt.Errorf("failed to post review: %w", err)
		}

		fmt.Println("✓ Review posted!")
		fmt.Printf("Review ID: %d\n", result.ID)
		return nil
	},
}

var deleteReviewCmd = &cobra.Command{
	Use:   "delete [title-id] [review-id]",
	Short: "Delete a review you wrote or moderate",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}

		c, err := requireClient()
		if err != nil {
			return err
		}
		if err := c.DeleteReview(cmd.Context(), ids[0], ids[1]); err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}
		fmt.Printf("✓ Review %d deleted\n", ids[1])
		return nil
	},
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, len(args))
	for i, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ID %q: %w", a, err)
		}
		ids[i] = id
	}
	return ids, nil
}

func init() {
	reviewCmd.AddCommand(listReviewsCmd, createReviewCmd, deleteReviewCmd)
}
