package command

import (
	"fmt"

	"yamdb/internal/microservices/http-api/dto"

	"github.com/spf13/cobra"
)

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireClient()
		if err != nil {
			return err
		}
		user, err := c.Me(cmd.Context())
		if err != nil {
			return err
		}
		printUser(user)
		return nil
	},
}

var updateMeCmd = &cobra.Command{
	Use:   "update",
	Short: "Edit your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.UpdateUserDTO
		for flag, target := range map[string]**string{
			"first-name": &req.FirstName,
			"last-name":  &req.LastName,
			"bio":        &req.Bio,
		} {
			if cmd.Flags().Changed(flag) {
				v, _ := cmd.Flags().GetString(flag)
				*target = &v
			}
		}

		c, err := requireClient()
		if err != nil {
			return err
		}
		user, err := c.UpdateMe(cmd.Context(), &req)
		if err != nil {
			return err
		}
		fmt.Println("✓ Profile updated")
		printUser(user)
		return nil
	},
}

func printUser(u *dto.UserResponse) {
	fmt.Printf("Username: %s\n", u.Username)
	fmt.Printf("Email:    %s\n", u.Email)
	fmt.Printf("Role:     %s\n", u.Role)
	if u.FirstName != "" || u.LastName != "" {
		fmt.Printf("Name:     %s %s\n", u.FirstName, u.LastName)
	}
	if u.Bio != "" {
		fmt.Printf("Bio:      %s\n", u.Bio)
	}
}

func init() {
	meCmd.AddCommand(updateMeCmd)
	updateMeCmd.Flags().String("first-name", "", "first name")
	updateMeCmd.Flags().String("last-name", "", "last name")
	updateMeCmd.Flags().String("bio", "", "short biography")
}
