package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/sangkips/clinic-billing/internal/config"
	"github.com/sangkips/clinic-billing/pkg/utils"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		doctorID string
		email    string
		roles    []string
		secret   string
		expiry   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for local testing",
		Long: `Mint a signed access token for a doctor. The signing secret defaults to
JWT_SECRET from the service configuration.`,
		Example: `  billingctl token --doctor 64b7f0c2a1e4d5f6a7b8c9d0 --email dr@example.com`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if doctorID == "" {
				return errors.New("--doctor is required")
			}
			if secret == "" {
				secret = config.Load().JWT.Secret
			}
			token, err := utils.NewJWTManager(secret, expiry).GenerateAccessToken(doctorID, email, roles)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&doctorID, "doctor", "", "doctor id")
	cmd.Flags().StringVar(&email, "email", "", "doctor email")
	cmd.Flags().StringSliceVar(&roles, "roles", []string{"doctor"}, "roles")
	cmd.Flags().StringVar(&secret, "secret", "", "signing secret")
	cmd.Flags().DurationVar(&expiry, "expiry", 24*time.Hour, "token lifetime")
	return cmd
}
