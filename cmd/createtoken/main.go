package main

import (
	"fmt"
	"os"
	"time"

	"axiapac.com/timeclock/security"
	"axiapac.com/timeclock/timeclock/v1/common/role"
	"github.com/spf13/cobra"
)

// createtoken signs a development token the local agent accepts when it
// runs with TIMECLOCK_JWT_SECRET.
func main() {
	var userID, roleName string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:           "createtoken --user <id>",
		Short:         "Sign a development token for the local agent",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret := os.Getenv("TIMECLOCK_JWT_SECRET")
			if secret == "" {
				return fmt.Errorf("TIMECLOCK_JWT_SECRET is required")
			}
			if userID == "" {
				return fmt.Errorf("--user is required")
			}
			r, err := role.Parse(roleName)
			if err != nil {
				return err
			}

			token, err := security.CreateIdentityToken(security.Identity{UserID: userID, Role: r}, []byte(secret), ttl)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringVar(&roleName, "role", string(role.Field), "admin, office or field")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")

	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
