package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/bazaar/internal/config"
	"github.com/example/bazaar/internal/notify"
	"github.com/example/bazaar/internal/services"
	"github.com/example/bazaar/internal/store"
)

var adminInput services.RegisterInput

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Creates an admin account or promotes an existing user",
	Long: `Creates an admin account or promotes an existing user. Usage:

	bazaar create-admin --phone 9999999999 --first-name Asha
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		db, err := connectDatabase(cfg)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		auth := services.NewAuthService(store.NewUserStore(db), store.NewChallengeStore(db), notify.LogSender{}, services.AuthConfigFrom(cfg))
		user, err := auth.RegisterAdmin(cmd.Context(), adminInput)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "admin %s (%s) is ready\n", user.ID, user.Phone)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createAdminCmd)

	createAdminCmd.Flags().StringVar(&adminInput.Phone, "phone", "", "phone number of the admin")
	createAdminCmd.Flags().StringVar(&adminInput.FirstName, "first-name", "", "first name")
	createAdminCmd.Flags().StringVar(&adminInput.LastName, "last-name", "", "last name")
	_ = createAdminCmd.MarkFlagRequired("phone")
}
