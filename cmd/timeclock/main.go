package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"axiapac.com/timeclock/geo"
	"axiapac.com/timeclock/utils"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "timeclock",
		Short:         "Clock in and out of projects and export worked hours",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "timeclock.yaml", "YAML config file")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")
	root.PersistentFlags().BoolVar(&opts.useSSM, "ssm", false, "overlay config from the SSM parameter named by ssm_parameter")

	root.AddCommand(newLoginCmd(opts), newLogoutCmd(opts), newWhoamiCmd(opts))
	root.AddCommand(newStartCmd(opts), newStatusCmd(opts), newWatchCmd(opts), newEndCmd(opts))
	root.AddCommand(newProjectsCmd(opts), newClockinsCmd(opts), newHistoryCmd(opts), newExportCmd(opts))
	root.AddCommand(newSummaryCmd(opts), newChartCmd(opts), newGeofenceCmd(opts))
	root.AddCommand(newAccountCmd(opts), newUsersCmd(opts), newLocationsCmd(opts))
	root.AddCommand(newServeCmd(opts), newMigrateCmd(opts))
	return root
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login --username <name>",
		Short: "Sign in and store the access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(username) == "" {
				return fmt.Errorf("--username is required")
			}
			if password == "" {
				password = os.Getenv("TIMECLOCK_PASSWORD")
			}
			if password == "" {
				return fmt.Errorf("--password or TIMECLOCK_PASSWORD is required")
			}

			ctx := cmd.Context()
			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.client.Auth.Login(ctx, username, password)
			if err != nil {
				return err
			}
			var expiresAt time.Time
			if resp.ExpiresAt != "" {
				if t, err := utils.ParseISOTime(resp.ExpiresAt); err == nil {
					expiresAt = *t
				}
			}
			if err := a.auth.SignIn(resp.AccessToken, resp.UserID, resp.Role, expiresAt); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s)\n", resp.UserID, resp.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "user name")
	cmd.Flags().StringVar(&password, "password", "", "password (defaults to TIMECLOCK_PASSWORD)")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.auth.Logout(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			identity, err := a.identity()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "user=%s role=%s", identity.UserID, identity.Role)
			if !identity.ExpiresAt.IsZero() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), " expires=%s", identity.ExpiresAt.In(a.cfg.Location()).Format(time.RFC3339))
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}

func newGeofenceCmd(_ *rootOptions) *cobra.Command {
	var center, position []float64
	var radius float64
	cmd := &cobra.Command{
		Use:   "geofence --center <lat,lng> --position <lat,lng>",
		Short: "Check whether a position is outside the work area",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(center) != 2 || len(position) != 2 {
				return fmt.Errorf("--center and --position take lat,lng")
			}
			res := geo.Check(geo.Point{Lat: center[0], Lng: center[1]}, geo.Point{Lat: position[0], Lng: position[1]}, radius)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "distance=%.1fm radius=%.0fm exited=%t\n", res.Distance, radius, res.Exited)
			return nil
		},
	}
	cmd.Flags().Float64SliceVar(&center, "center", nil, "reference point lat,lng")
	cmd.Flags().Float64SliceVar(&position, "position", nil, "current position lat,lng")
	cmd.Flags().Float64Var(&radius, "radius", geo.DefaultRadius, "radius in meters")
	return cmd
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, 2*time.Minute)
}
