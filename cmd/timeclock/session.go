package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"axiapac.com/timeclock/geo"
	"axiapac.com/timeclock/service"
	"axiapac.com/timeclock/session"
	"axiapac.com/timeclock/timeclock/v1/common"
	"github.com/spf13/cobra"
)

func newStartCmd(opts *rootOptions) *cobra.Command {
	var projectID, photoPath string
	var lat, lng float64
	var address common.Address
	cmd := &cobra.Command{
		Use:   "start --project <id> --lat <lat> --lng <lng> --photo <file>",
		Short: "Clock in to a project with a photo",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(projectID) == "" {
				return service.ErrProjectRequired
			}
			if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lng") {
				return service.ErrLocationRequired
			}
			if photoPath == "" {
				return service.ErrPhotoRequired
			}
			photo, err := os.ReadFile(photoPath)
			if err != nil {
				return fmt.Errorf("read photo: %w", err)
			}

			ctx := cmd.Context()
			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			svc, err := a.clockinService(ctx, nil)
			if err != nil {
				return err
			}
			defer svc.Tracker().Close()
			if _, err := svc.Resume(ctx); err != nil {
				return err
			}

			clockin, err := svc.Start(ctx, service.StartRequest{
				ProjectID: projectID,
				Location:  &geo.Point{Lat: lat, Lng: lng},
				Address:   address,
				Photo:     photo,
				PhotoName: filepath.Base(photoPath),
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "clocked in: %s at %s\n", clockin.ID, clockin.StartTime.Raw)
			return nil
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "project id")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude")
	cmd.Flags().StringVar(&photoPath, "photo", "", "photo file")
	cmd.Flags().StringVar(&address.State, "state", "", "state")
	cmd.Flags().StringVar(&address.City, "city", "", "city")
	cmd.Flags().StringVar(&address.Street, "street", "", "street")
	cmd.Flags().StringVar(&address.StreetNumber, "street-number", "", "street number")
	cmd.Flags().StringVar(&address.PostalCode, "postal-code", "", "postal code")
	return cmd
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the open session and its elapsed time",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			svc, err := a.clockinService(ctx, nil)
			if err != nil {
				return err
			}
			defer svc.Tracker().Close()
			if _, err := svc.Resume(ctx); err != nil {
				return err
			}

			st := svc.Status()
			if st.State == session.StateIdle {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "not clocked in")
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "clock-in=%s started=%s elapsed=%s\n", st.ClockinID, st.StartTime, st.Display)
			return nil
		},
	}
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var positionFile string
	var lat, lng float64
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show the running timer and report the position until clock-out",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			svc, err := a.clockinService(ctx, func(display string) {
				_, _ = fmt.Fprintf(out, "\r%s", display)
			})
			if err != nil {
				return err
			}
			defer svc.Tracker().Close()

			active, err := svc.Resume(ctx)
			if err != nil {
				return err
			}
			if !active {
				return session.ErrNoSession
			}

			var fixed *geo.Point
			if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
				fixed = &geo.Point{Lat: lat, Lng: lng}
			}
			identity, err := a.identity()
			if err != nil {
				return err
			}
			pinger, err := a.pinger(svc, identity.UserID, positionFile, fixed)
			if err != nil {
				return err
			}

			err = pinger.Run(ctx)
			_, _ = fmt.Fprintln(out)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&positionFile, "position-file", "", `file holding {"lat":..,"lng":..}`)
	cmd.Flags().Float64Var(&lat, "lat", 0, "fixed latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "fixed longitude")
	return cmd
}

func newEndCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "end",
		Short: "Clock out of the open session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			svc, err := a.clockinService(ctx, nil)
			if err != nil {
				return err
			}
			defer svc.Tracker().Close()
			if _, err := svc.Resume(ctx); err != nil {
				return err
			}

			elapsed, err := svc.End(ctx)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "clocked out after %s\n", session.FormatElapsed(elapsed))
			return nil
		},
	}
}
