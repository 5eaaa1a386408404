package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var adminEmail, adminPassword string

// adminCmd groups admin account commands
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:     "create",
	Short:   "Create an admin account",
	Example: `  bakery admin create --email owner@example.com --password 's3cret-pass'`,
	RunE:    runAdminCreate,
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email (required)")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "Admin password (required)")
	_ = adminCreateCmd.MarkFlagRequired("email")
	_ = adminCreateCmd.MarkFlagRequired("password")
	adminCmd.AddCommand(adminCreateCmd)
}

func runAdminCreate(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	admin, err := store.CreateAdmin(cmd.Context(), adminEmail, adminPassword)
	if err != nil {
		return err
	}
	logger.Info("admin created", zap.String("id", admin.ID), zap.String("email", admin.Email))
	fmt.Fprintf(cmd.OutOrStdout(), "created admin %s\n", admin.Email)
	return nil
}
