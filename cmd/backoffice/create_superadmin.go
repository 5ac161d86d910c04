package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cabinet-comptable/backoffice/internal/core/service"
	mongostore "github.com/cabinet-comptable/backoffice/internal/infrastructure/db/mongo"
	"github.com/cabinet-comptable/backoffice/internal/infrastructure/memory"
)

func newCreateSuperadminCmd(e *env) *cobra.Command {
	var email, fullName, password string
	cmd := &cobra.Command{
		Use:     "create-superadmin",
		Short:   "Create the first account with the highest role",
		Example: "backoffice create-superadmin --email direction@cabinet.ma --full-name \"Direction\"",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("SUPERADMIN_PASSWORD")
			}
			if strings.TrimSpace(email) == "" || password == "" {
				return fmt.Errorf("--email and a password (--password or SUPERADMIN_PASSWORD) are required")
			}

			st, err := openStores(cmd.Context(), e.cfg, e.log)
			if err != nil {
				return err
			}
			defer st.Close()

			users := mongostore.NewUserRepository(st.db)
			if err := users.EnsureIndexes(cmd.Context()); err != nil {
				return err
			}
			auth := service.NewAuthService(users, memory.NewSessionStore(), memory.NewGuard(), st.registry, e.cfg.JWTSecret, e.cfg.TokenTTL, e.log)
			u, err := auth.Bootstrap(cmd.Context(), email, fullName, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) with role %s\n", u.Email, u.ID, u.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&fullName, "full-name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "initial password, defaults to $SUPERADMIN_PASSWORD")
	return cmd
}
