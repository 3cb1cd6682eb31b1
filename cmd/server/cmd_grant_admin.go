package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vnfurniture/internal/auth"
	"vnfurniture/internal/models"
)

var grantEmail string

var grantAdminCmd = &cobra.Command{
	Use:   "grant-admin",
	Short: "Give an existing account the admin role",
	RunE:  runGrantAdmin,
}

func init() {
	grantAdminCmd.Flags().StringVar(&grantEmail, "email", "", "account email")
	_ = grantAdminCmd.MarkFlagRequired("email")
}

func runGrantAdmin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	backend, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	c, closeCache := openCache(ctx, cfg)
	defer closeCache()

	svc := auth.NewService(backend.Users, c, auth.Options{Secret: []byte(cfg.JWTSecret)})
	u, err := svc.GrantRole(ctx, grantEmail, models.RoleAdmin)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ %s is now %s\n", u.Email, u.Role)
	return nil
}
