package command

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Comment management commands",
	Long:  `Read, post and delete comments on a review`,
}

var listCommentsCmd = &cobra.Command{
	Use:   "list [title-id] [review-id]",
	Short: "List comments on a review",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}

		result, err := newClient().ListComments(cmd.Context(), ids[0], ids[1], page, pageSize)
		if err != nil {
			return fmt.Errorf("failed to list comments: %w", err)
		}
		if len(result.Data) == 0 {
			fmt.Println("No comments yet.")
			return nil
		}
		for _, c := range result.Data {
			fmt.Printf("[%d] %s (%s): %s\n", c.ID, c.Author, c.PubDate.Format("2006-01-02 15:04"), c.Text)
		}
		return nil
	},
}

var createCommentCmd = &cobra.Command{
	Use:   "add [title-id] [review-id] [text]",
	Short: "Comment on a review",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args[:2])
		if err != nil {
			return err
		}

		c, err := requireClient()
		if err != nil {
			return err
		}
		result, err := c.CreateComment(cmd.Context(), ids[0], ids[1], strings.Join(args[2:], " "))
		if err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}

		fmt.Println("✓ Comment created successfully!")
		fmt.Printf("Comment ID: %d\n", result.ID)
		return nil
	},
}

var deleteCommentCmd = &cobra.Command{
	Use:   "delete [title-id] [review-id] [comment-id]",
	Short: "Delete a comment you wrote or moderate",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}

		c, err := requireClient()
		if err != nil {
			return err
		}
		if err := c.DeleteComment(cmd.Context(), ids[0], ids[1], ids[2]); err != nil {
			return fmt.Errorf("failed to delete comment: %w", err)
		}
		fmt.Printf("✓ Comment %d deleted\n", ids[2])
		return nil
	},
}

func init() {
	commentCmd.AddCommand(listCommentsCmd, createCommentCmd, deleteCommentCmd)
}
