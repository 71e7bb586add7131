package command

// root.go defines the root command for the yamdb CLI and its global flags.

import (
	"fmt"
	"os"

	"yamdb/cmd/cli/authentication"
	"yamdb/cmd/cli/command/client"

	"github.com/spf13/cobra"
)

var (
	apiURL   string // Global flag for API server URL
	page     int
	pageSize int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "yamdb",
	Short: "yamdb - command line client for the YaMDb review API",
	Long: `yamdb talks to a YaMDb API server. Use it to:
- Sign up and sign in with an emailed confirmation code
- Browse titles, categories and genres
- Post and moderate reviews and comments

Use "yamdb [command] --help" to see all available commands.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err) // Print error to standard error
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("YAMDB_API_URL", "http://localhost:8080"), "API server URL")
	rootCmd.PersistentFlags().IntVar(&page, "page", 1, "page number for list commands")
	rootCmd.PersistentFlags().IntVar(&pageSize, "page-size", 20, "page size for list commands")

	rootCmd.AddCommand(authCmd, meCmd, titleCmd, reviewCmd, commentCmd, categoryCmd, genreCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newClient returns a client carrying the stored token, if any. Reads work
// anonymously so a missing keyring entry is not an error here.
func newClient() *client.HTTPClient {
	c := client.NewHTTPClient(apiURL)
	if creds, err := authentication.GetTokens(); err == nil {
		c.SetToken(creds.AccessToken)
	}
	return c
}

// requireClient is newClient for commands that need a signed-in user.
func requireClient() (*client.HTTPClient, error) {
	creds, err := authentication.GetTokens()
	if err != nil || creds.AccessToken == "" {
		return nil, fmt.Errorf("not signed in; run 'yamdb auth token' first")
	}
	c := client.NewHTTPClient(apiURL)
	c.SetToken(creds.AccessToken)
	return c, nil
}
