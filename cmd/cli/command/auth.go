package command

import (
	"fmt"

	"yamdb/cmd/cli/authentication"
	"yamdb/cmd/cli/command/client"
	"yamdb/internal/microservices/http-api/dto"

	"github.com/spf13/cobra"
)

// authCmd represents the auth command for authentication related subcommands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Sign up, exchange a confirmation code for a token, and sign out.`,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Register, or request a new confirmation code",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.SignupRequest
		req.Username, _ = cmd.Flags().GetString("username")
		req.Email, _ = cmd.Flags().GetString("email")

		resp, err := client.NewHTTPClient(apiURL).Signup(cmd.Context(), &req)
		if err != nil {
			return fmt.Errorf("signup failed: %w", err)
		}

		fmt.Printf("✓ Confirmation code sent to %s\n", resp.Email)
		fmt.Printf("Run: yamdb auth token -u %s -c <code>\n", resp.Username)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Exchange a confirmation code for an access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.TokenRequest
		req.Username, _ = cmd.Flags().GetString("username")
		req.ConfirmationCode, _ = cmd.Flags().GetString("code")

		resp, err := client.NewHTTPClient(apiURL).Token(cmd.Context(), &req)
		if err != nil {
			return fmt.Errorf("sign in failed: %w", err)
		}

		creds := &authentication.StoredCredentials{AccessToken: resp.Token, Username: req.Username, APIURL: apiURL}
		if err := authentication.StoreTokens(creds); err != nil {
			return fmt.Errorf("could not store token: %w", err)
		}
		fmt.Println("✓ Successfully signed in!")
		return nil
	},
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authentication.DeleteTokens(); err != nil {
			return err
		}
		fmt.Println("✓ Successfully logged out.")
		return nil
	},
}

// init function to add auth commands to root command
func init() {
	authCmd.AddCommand(signupCmd, tokenCmd, logoutCmd)

	signupCmd.Flags().StringP("username", "u", "", "Username for the account")
	signupCmd.Flags().StringP("email", "e", "", "Email address for the account")
	signupCmd.MarkFlagRequired("username")
	signupCmd.MarkFlagRequired("email")

	tokenCmd.Flags().StringP("username", "u", "", "Username for the account")
	tokenCmd.Flags().StringP("code", "c", "", "Confirmation code from the email")
	tokenCmd.MarkFlagRequired("username")
	tokenCmd.MarkFlagRequired("code")
}
