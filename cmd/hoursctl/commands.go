package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/timesheet-hr/timesheet-backend-go/internal/config"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/auth"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/calendar"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/device"
	"github.com/timesheet-hr/timesheet-backend-go/internal/domain/user"
	"github.com/timesheet-hr/timesheet-backend-go/internal/pkg/jwt"
)

func newMigrateLedgerKeysCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate-ledger-keys",
		Short: "Rewrite zero-padded ledger documents under canonical keys",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = withSession(opts, func(ctx context.Context, s *session) error {
		report, err := s.services.Ledger.MigrateLegacyKeys(ctx)
		if err != nil {
			return err
		}
		if err := printJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
		if len(report.Failed) > 0 {
			return fmt.Errorf("%d ledger documents could not be migrated", len(report.Failed))
		}
		return nil
	})
	return cmd
}

func newSweepCmd(opts *rootOptions) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Close in-progress sessions left open on previous days",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&userID, "user", "", "only sweep this user")
	cmd.RunE = withSession(opts, func(ctx context.Context, s *session) error {
		report, err := s.services.TimeClock.AutoCloseStale(ctx, userID)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), report)
	})
	return cmd
}

func newHolidaysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "holidays <year>",
		Short: "Print the national holidays of a year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil || !calendar.ValidMonth(1, year) {
				return fmt.Errorf("invalid year %q", args[0])
			}

			table := calendar.HolidaysForYear(year)
			keys := make([]string, 0, len(table))
			for k := range table {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, k := range keys {
				date, _ := time.Parse("2006-01-02", fmt.Sprintf("%d-%s", year, k))
				fmt.Fprintf(tw, "%s\t%s\t%s\n", calendar.FormatDate(date), date.Weekday(), table[k])
			}
			return tw.Flush()
		},
	}
}

func newDeviceCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Manage kiosk devices",
	}

	var req device.CreateDeviceRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "Register a kiosk and print its key once",
		Args:  cobra.NoArgs,
	}
	create.Flags().StringVar(&req.Name, "name", "", "device name")
	create.Flags().StringVar(&req.Location, "location", "", "where the kiosk is installed")
	_ = create.MarkFlagRequired("name")
	create.RunE = withSession(opts, func(ctx context.Context, s *session) error {
		created, err := s.services.Devices.Create(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(create.OutOrStdout(), created)
	})

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered kiosks",
		Args:  cobra.NoArgs,
	}
	list.RunE = withSession(opts, func(ctx context.Context, s *session) error {
		devices, err := s.services.Devices.List(ctx)
		if err != nil {
			return err
		}
		return printJSON(list.OutOrStdout(), devices)
	})

	cmd.AddCommand(create, list)
	return cmd
}

func newUserCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user profiles",
	}

	var (
		req  user.UpsertUserRequest
		role string
	)
	upsert := &cobra.Command{
		Use:   "upsert",
		Short: "Create or refresh a user profile",
		Args:  cobra.NoArgs,
	}
	upsert.Flags().StringVar(&req.ID, "id", "", "identity provider subject")
	upsert.Flags().StringVar(&req.Email, "email", "", "email address")
	upsert.Flags().StringVar(&req.DisplayName, "name", "", "display name")
	upsert.Flags().StringVar(&role, "role", string(user.RoleUser), "user or admin")
	_ = upsert.MarkFlagRequired("id")
	_ = upsert.MarkFlagRequired("email")
	upsert.RunE = withSession(opts, func(ctx context.Context, s *session) error {
		req.Role = user.Role(role)
		profile, err := s.services.Users.Upsert(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(upsert.OutOrStdout(), profile)
	})

	cmd.AddCommand(upsert)
	return cmd
}

// newTokenCmd signs an access token with the configured secret, for local testing
// without the identity provider.
func newTokenCmd() *cobra.Command {
	var (
		sess auth.Session
		role string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an access token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}

			sess.Role = user.Role(role)
			if sess.Role != user.RoleUser && sess.Role != user.RoleAdmin {
				return fmt.Errorf("role must be one of: user, admin")
			}

			tokens := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessExpiration)
			token, expiresAt, err := tokens.GenerateAccessToken(sess)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"access_token": token,
				"expires_at":   time.Unix(expiresAt, 0).UTC().Format(time.RFC3339),
			})
		},
	}
	cmd.Flags().StringVar(&sess.UserID, "user", "", "user id")
	cmd.Flags().StringVar(&sess.Email, "email", "", "email claim")
	cmd.Flags().StringVar(&role, "role", string(user.RoleUser), "user or admin")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
