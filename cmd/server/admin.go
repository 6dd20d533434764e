package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"landmarket/server/internal/account"
	"landmarket/server/internal/authz"
	"landmarket/server/internal/models"
)

// createAdminCmd opens the first administrator account; self-registration
// never grants the admin role.
func createAdminCmd() *cobra.Command {
	var in account.RegisterInput

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a verified administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer db.Close()

			accounts := account.NewService(db, authz.NewGuard(nil), nil, account.Options{MaxPageSize: cfg.Listing.MaxPageSize}, logger)
			in.Role = models.RoleAdmin
			u, err := accounts.CreateUser(cmd.Context(), authz.System, in)
			if err != nil {
				return err
			}

			logger.WithFields(logrus.Fields{
				"user_id": u.ID,
				"email":   u.Email,
			}).Info("Administrator created")
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "login email")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password")
	for _, name := range []string{"name", "email", "phone", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
