package main

import (
	"github.com/spf13/cobra"

	"contracting/internal/auth"
)

var (
	userEmail    string
	userPassword string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage sign-in accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account that can sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pool, gw, err := connect(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		provider := auth.NewProvider(gw, cfg.JWTSecret, cfg.SessionTTL, auth.WithLogger(logger))
		user, err := provider.CreateUser(ctx, userEmail, userPassword)
		if err != nil {
			return err
		}
		logger.Info().Str("id", user.ID).Str("email", user.Email).Msg("user created")
		return nil
	},
}

func init() {
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "account email")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "account password, at least 8 characters")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")
	userCmd.AddCommand(userCreateCmd)
}
