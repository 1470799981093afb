package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"axiapac.com/timeclock/config"
	"axiapac.com/timeclock/session/store"
	"axiapac.com/timeclock/web"
	"axiapac.com/timeclock/web/handlers"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local agent HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			if addr == "" {
				addr = a.cfg.Agent.Addr
			}

			owner, err := a.identity()
			if err != nil {
				return err
			}
			svc, err := a.clockinService(ctx, nil)
			if err != nil {
				return err
			}
			defer svc.Tracker().Close()
			if _, err := svc.Resume(ctx); err != nil {
				return err
			}

			if a.cfg.LogLevel != "debug" && a.cfg.LogLevel != "trace" {
				gin.SetMode(gin.ReleaseMode)
			}
			h := &handlers.Handlers{
				Sessions:       svc,
				History:        a.client.History,
				ProjectHistory: a.client.ProjectHistory,
				Summary:        a.client.Summary,
				Chart:          a.client.Clockins,
				PhotoBaseURL:   photoBaseURL(a.cfg.APIURL),
				Location:       a.cfg.Location(),
				GeofenceRadius: a.cfg.GeofenceRadius,
				Clock:          a.clock,
				Logger:         a.logger.Named("agent"),
			}
			router := web.NewRouter(h, web.Options{
				Owner:     owner.UserID,
				JWTSecret: []byte(a.cfg.Agent.JWTSecret),
				Clock:     a.clock,
				Logger:    a.logger.Named("http"),
			})

			srv := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("agent listening", "addr", addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to agent.addr)")
	return cmd
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the shared session table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := loadApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.cfg.SessionStore != config.SessionStoreMySQL {
				return fmt.Errorf("session_store is %q, nothing to migrate", a.cfg.SessionStore)
			}
			st, err := a.sessionStore(ctx)
			if err != nil {
				return err
			}
			if _, ok := st.(*store.GormStore); !ok {
				return fmt.Errorf("unexpected session store %T", st)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "clockin_sessions is up to date")
			return nil
		},
	}
}
