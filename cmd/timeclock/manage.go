package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	v1 "axiapac.com/timeclock/timeclock/v1"
	"axiapac.com/timeclock/timeclock/v1/common"
	"axiapac.com/timeclock/timeclock/v1/common/role"
	"axiapac.com/timeclock/utils"
	"github.com/spf13/cobra"
)

var errAdminRequired = errors.New("admin role required")

// withApp loads the app for a short request/response command.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app) error) error {
	ctx, cancel := withTimeout(cmd.Context())
	defer cancel()
	a, err := loadApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func (a *app) requireAdmin() error {
	identity, err := a.identity()
	if err != nil {
		return err
	}
	if !identity.Role.IsAdmin() {
		return errAdminRequired
	}
	return nil
}

func printUser(w io.Writer, u *v1.UserDTO) {
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, u.Role)
}

func printProject(w io.Writer, p *v1.ProjectDTO) {
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Status, p.Address.String())
}

func printLocations(out io.Writer, locations []v1.LocationDTO, loc *time.Location) error {
	if len(locations) == 0 {
		_, _ = fmt.Fprintln(out, "no locations")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, l := range locations {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.6f\t%.6f\t%s\n", l.ID, l.Username, l.Latitude, l.Longitude,
			l.Timestamp.In(loc).Format(time.DateTime))
	}
	return w.Flush()
}

func newAccountCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				me, err := a.client.Users.Me(ctx)
				if err != nil {
					return err
				}
				printUser(cmd.OutOrStdout(), me)
				return nil
			})
		},
	}
	cmd.AddCommand(newAccountUpdateCmd(opts), newAccountPasswordCmd(opts))
	return cmd
}

func newAccountUpdateCmd(opts *rootOptions) *cobra.Command {
	var update v1.ProfileUpdate
	var photoPath string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change your username, email or profile photo",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if photoPath != "" {
				photo, err := os.ReadFile(photoPath)
				if err != nil {
					return fmt.Errorf("read photo: %w", err)
				}
				update.Photo, update.PhotoName = photo, filepath.Base(photoPath)
			}
			if update.Username == "" && update.Email == "" && len(update.Photo) == 0 {
				return errors.New("nothing to update")
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				me, err := a.client.Users.UpdateMe(ctx, update)
				if err != nil {
					return err
				}
				printUser(cmd.OutOrStdout(), me)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&update.Username, "username", "", "new username")
	cmd.Flags().StringVar(&update.Email, "email", "", "new email")
	cmd.Flags().StringVar(&photoPath, "photo", "", "profile photo file")
	return cmd
}

func newAccountPasswordCmd(opts *rootOptions) *cobra.Command {
	var oldPassword, newPassword string
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if newPassword == "" {
				return errors.New("--new is required")
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.client.Users.ChangePassword(ctx, oldPassword, newPassword); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "password changed")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&oldPassword, "old", "", "current password")
	cmd.Flags().StringVar(&newPassword, "new", "", "new password")
	return cmd
}

func newUsersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users (admin)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.requireAdmin(); err != nil {
					return err
				}
				users, err := a.client.AdminUsers.List(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for i := range users {
					printUser(w, &users[i])
				}
				return w.Flush()
			})
		},
	}
	cmd.AddCommand(newUserCreateCmd(opts), newUserUpdateCmd(opts), newUserDeleteCmd(opts), newUserPasswordCmd(opts))
	return cmd
}

func newUserCreateCmd(opts *rootOptions) *cobra.Command {
	var user v1.NewUser
	var roleName string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if user.Username == "" || user.Password == "" {
				return errors.New("--username and --password are required")
			}
			r, err := role.Parse(roleName)
			if err != nil {
				return err
			}
			user.Role = r
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.requireAdmin(); err != nil {
					return err
				}
				created, err := a.client.AdminUsers.Create(ctx, user)
				if err != nil {
					return err
				}
				printUser(cmd.OutOrStdout(), created)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&user.Username, "username", "", "username")
	cmd.Flags().StringVar(&user.Email, "email", "", "email")
	cmd.Flags().StringVar(&user.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&roleName, "role", string(role.Field), "admin, office or field")
	return cmd
}

func newUserUpdateCmd(opts *rootOptions) *cobra.Command {
	var username, email, roleName string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a user's username, email or role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r role.Role
			if roleName != "" {
				parsed, err := role.Parse(roleName)
				if err != nil {
					return err
				}
				r = parsed
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.requireAdmin(); err != nil {
					return err
				}
				updated, err := a.client.AdminUsers.Update(ctx, args[0], username, email, r)
				if err != nil {
					return err
				}
				printUser(cmd.OutOrStdout(), updated)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "new username")
	cmd.Flags().StringVar(&email, "email", "", "new email")
	cmd.Flags().StringVar(&roleName, "role", "", "new role")
	return cmd
}

func newUserDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.requireAdmin(); err != nil {
					return err
				}
				if err := a.client.AdminUsers.Delete(ctx, args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted user %s\n", args[0])
				return nil
			})
		},
	}
}

func newUserPasswordCmd(opts *rootOptions) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "password <id>",
		Short: "Reset a user's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return errors.New("--password is required")
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.requireAdmin(); err != nil {
					return err
				}
				if err := a.client.AdminUsers.ChangePassword(ctx, args[0], password); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "password reset for %s\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "new password")
	return cmd
}

// projectFlags maps the flags a caller actually set onto a ProjectInput.
type projectFlags struct {
	name, description, status, start, end string
	address                               common.Address
	lat, lng                              float64
}

func (f *projectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "project name")
	cmd.Flags().StringVar(&f.description, "description", "", "description")
	cmd.Flags().StringVar(&f.status, "status", "", "start, in_progress or finished")
	cmd.Flags().StringVar(&f.start, "start", "", "start date, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.end, "end", "", "end date, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.address.State, "state", "", "state")
	cmd.Flags().StringVar(&f.address.City, "city", "", "city")
	cmd.Flags().StringVar(&f.address.Street, "street", "", "street")
	cmd.Flags().StringVar(&f.address.StreetNumber, "street-number", "", "street number")
	cmd.Flags().StringVar(&f.address.PostalCode, "postal-code", "", "postal code")
	cmd.Flags().Float64Var(&f.lat, "lat", 0, "site latitude")
	cmd.Flags().Float64Var(&f.lng, "lng", 0, "site longitude")
}

func (f *projectFlags) input(cmd *cobra.Command) (v1.ProjectInput, error) {
	changed := cmd.Flags().Changed
	str := func(flag, value string) *string {
		if !changed(flag) {
			return nil
		}
		return utils.Ptr(value)
	}

	in := v1.ProjectInput{
		Name:         str("name", f.name),
		Description:  str("description", f.description),
		State:        str("state", f.address.State),
		City:         str("city", f.address.City),
		Street:       str("street", f.address.Street),
		StreetNumber: str("street-number", f.address.StreetNumber),
		PostalCode:   str("postal-code", f.address.PostalCode),
		StartDate:    str("start", f.start),
		EndDate:      str("end", f.end),
	}
	if changed("lat") {
		in.LocationLat = utils.Ptr(f.lat)
	}
	if changed("lng") {
		in.LocationLong = utils.Ptr(f.lng)
	}
	if changed("status") {
		switch s := common.ProjectStatus(f.status); s {
		case common.ProjectStart, common.ProjectInProgress, common.ProjectFinished:
			in.Status = &s
		default:
			return v1.ProjectInput{}, fmt.Errorf("unknown project status %q", f.status)
		}
	}
	for _, d := range []*string{in.StartDate, in.EndDate} {
		if d == nil {
			continue
		}
		if _, err := time.Parse(utils.DateLayout, *d); err != nil {
			return v1.ProjectInput{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", *d)
		}
	}
	return in, nil
}

func newProjectShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				p, err := a.client.Projects.Get(ctx, args[0])
				if err != nil {
					return err
				}
				printProject(cmd.OutOrStdout(), p)
				if p.TotalHours != nil {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "total hours: %.2f\n", *p.TotalHours)
				}
				return nil
			})
		},
	}
}

func newProjectCreateCmd(opts *rootOptions) *cobra.Command {
	flags := &projectFlags{}
	cmd := &cobra.Command{
		Use:   "create --name <name>",
		Short: "Create a project (admin)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.name == "" {
				return errors.New("--name is required")
			}
			in, err := flags.input(cmd)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.requireAdmin(); err != nil {
					return err
				}
				p, err := a.client.Projects.Create(ctx, in)
				if err != nil {
					return err
				}
				printProject(cmd.OutOrStdout(), p)
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newProjectUpdateCmd(opts *rootOptions) *cobra.Command {
	flags := &projectFlags{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the given fields of a project (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := flags.input(cmd)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.requireAdmin(); err != nil {
					return err
				}
				p, err := a.client.Projects.Update(ctx, args[0], in)
				if err != nil {
					return err
				}
				printProject(cmd.OutOrStdout(), p)
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newProjectDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.requireAdmin(); err != nil {
					return err
				}
				if err := a.client.Projects.Delete(ctx, args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted project %s\n", args[0])
				return nil
			})
		},
	}
}

func newClockinModifyCmd(opts *rootOptions) *cobra.Command {
	var hours float64
	cmd := &cobra.Command{
		Use:   "modify <id> --hours <h>",
		Short: "Correct the hours of a clock-in (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("hours") {
				return errors.New("--hours is required")
			}
			if hours < 0 {
				return errors.New("--hours must not be negative")
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.requireAdmin(); err != nil {
					return err
				}
				clk, err := a.client.Clockins.Modify(ctx, args[0], hours)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "clock-in %s set to %.2f hours\n", clk.ID, hours)
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&hours, "hours", 0, "worked hours")
	return cmd
}

func newClockinDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a clock-in (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.requireAdmin(); err != nil {
					return err
				}
				if err := a.client.Clockins.Delete(ctx, args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted clock-in %s\n", args[0])
				return nil
			})
		},
	}
}

func newClockinLocationsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "locations <id>",
		Short: "List the positions reported for a clock-in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				locations, err := a.client.Clockins.Locations(ctx, args[0])
				if err != nil {
					return err
				}
				return printLocations(cmd.OutOrStdout(), locations, a.cfg.Location())
			})
		},
	}
}

func newClockinLocateCmd(opts *rootOptions) *cobra.Command {
	var lat, lng float64
	cmd := &cobra.Command{
		Use:   "locate <id> --lat <lat> --lng <lng>",
		Short: "Record a position against a clock-in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lng") {
				return errors.New("--lat and --lng are required")
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				l, err := a.client.Clockins.AddLocation(ctx, args[0], lat, lng)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "location %s recorded\n", l.ID)
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude")
	return cmd
}

func newHistoryUpdateCmd(opts *rootOptions) *cobra.Command {
	var address common.Address
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace the address of a history entry (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.requireAdmin(); err != nil {
					return err
				}
				h, err := a.client.History.Update(ctx, args[0], address)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", h.ID, h.Address.String())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&address.State, "state", "", "state")
	cmd.Flags().StringVar(&address.City, "city", "", "city")
	cmd.Flags().StringVar(&address.Street, "street", "", "street")
	cmd.Flags().StringVar(&address.StreetNumber, "street-number", "", "street number")
	cmd.Flags().StringVar(&address.PostalCode, "postal-code", "", "postal code")
	return cmd
}

func newHistoryDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a history entry (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if err := a.requireAdmin(); err != nil {
					return err
				}
				if err := a.client.History.Delete(ctx, args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted history entry %s\n", args[0])
				return nil
			})
		},
	}
}

func newLocationsCmd(opts *rootOptions) *cobra.Command {
	var clockinID string
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "List reported positions, all of them (admin) or for one clock-in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				var (
					locations []v1.LocationDTO
					err       error
				)
				if clockinID != "" {
					locations, err = a.client.Locations.ByClockin(ctx, clockinID)
				} else {
					if err := a.requireAdmin(); err != nil {
						return err
					}
					locations, err = a.client.Locations.All(ctx)
				}
				if err != nil {
					return err
				}
				return printLocations(cmd.OutOrStdout(), locations, a.cfg.Location())
			})
		},
	}
	cmd.Flags().StringVar(&clockinID, "clockin", "", "only positions of this clock-in")
	return cmd
}
