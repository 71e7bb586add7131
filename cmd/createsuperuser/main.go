package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/logger"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"

	"github.com/spf13/cobra"
)

var (
	username string
	email    string
)

var rootCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create or promote a superuser account",
	Long: `createsuperuser creates an active superuser with the admin role, or promotes
the existing account with that username. The account signs in through the
normal confirmation-code flow using the same username and email.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		log := logger.New("yamdb-createsuperuser", cfg.GoEnv, cfg.LogLevel, cfg.LogFormat)

		db, err := database.Connect(cfg, log)
		if err != nil {
			return err
		}
		defer database.Close(db)
		if cfg.DBAutoMigrate {
			if err := database.Migrate(db, log); err != nil {
				return err
			}
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		user, created, err := ensureSuperuser(ctx, repository.NewUserRepository(db), username, email)
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("✓ Superuser %s created\n", user.Username)
		} else {
			fmt.Printf("✓ %s promoted to superuser\n", user.Username)
		}
		return nil
	},
}

// ensureSuperuser creates the account or promotes the one already holding
// the username. An email that belongs to another account is refused.
func ensureSuperuser(ctx context.Context, users repository.UserRepository, name, mail string) (*models.User, bool, error) {
	mail = strings.ToLower(strings.TrimSpace(mail))
	if name == "me" {
		return nil, false, fmt.Errorf("username %q is reserved", name)
	}

	owner, err := users.FindByEmail(ctx, mail)
	switch {
	case err == nil && owner.Username != name:
		return nil, false, fmt.Errorf("email %s is already used by %s", mail, owner.Username)
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return nil, false, err
	}

	user, err := users.FindByUsername(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		user = &models.User{
			Username:    name,
			Email:       mail,
			Role:        models.RoleAdmin,
			IsActive:    true,
			IsSuperuser: true,
		}
		if err := users.Create(ctx, user); err != nil {
			return nil, false, err
		}
		return user, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	user.Email = mail
	user.Role = models.RoleAdmin
	user.IsActive = true
	user.IsSuperuser = true
	if err := users.Update(ctx, user, "email", "role", "is_active", "is_superuser"); err != nil {
		return nil, false, err
	}
	return user, false, nil
}

func init() {
	rootCmd.Flags().StringVarP(&username, "username", "u", "", "Username of the superuser")
	rootCmd.Flags().StringVarP(&email, "email", "e", "", "Email address of the superuser")
	rootCmd.MarkFlagRequired("username")
	rootCmd.MarkFlagRequired("email")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
