package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Jaemnie/sellog/api"
	"github.com/Jaemnie/sellog/gateway"
	apperrors "github.com/Jaemnie/sellog/internal/errors"
	"github.com/spf13/cobra"
)

func (c *cli) loginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login [userId]",
		Short: "Log in; the password is prompted for",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var userID string
			if len(args) == 1 {
				userID = args[0]
			} else {
				var err error
				if userID, err = c.readLine("User ID: "); err != nil {
					return err
				}
			}
			if userID == "" {
				return apperrors.ErrMissingUserID
			}
			password, err := c.readPassword("Password: ")
			if err != nil {
				return err
			}

			env, err := c.app.client.Login(ctx, api.LoginRequest{UserID: userID, Password: password})
			if err != nil {
				if gateway.StatusCode(err) == http.StatusUnauthorized {
					return fmt.Errorf("login failed: wrong user ID or password")
				}
				return err
			}
			if err := env.Err(); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			c.app.state.Login(ctx)
			c.printer.Success("Logged in as %s", userID)
			if c.app.newGuard().IsAuthRoute(c.app.nav.Current()) {
				c.app.nav.Redirect(ctx, homeRoute)
			}
			return nil
		},
	}
}

func (c *cli) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.state.Logout(cmd.Context()); err != nil {
				return err
			}
			c.printer.Success("Logged out")
			return nil
		},
	}
}

func (c *cli) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := c.statusRows(cmd.Context())
			if err != nil {
				return err
			}
			c.printer.Table([]string{"field", "value"}, rows)
			return nil
		},
	}
}

func (c *cli) statusRows(ctx context.Context) ([][]string, error) {
	rows := [][]string{
		{"store", c.cfg.GetStoreBackend()},
		{"view", c.app.nav.Current()},
	}
	if !c.app.state.Snapshot().IsLoggedIn {
		return append(rows, []string{"session", "logged out"}), nil
	}

	user, err := c.app.client.CurrentUserID(ctx)
	if err != nil {
		user = "unknown"
	}
	tok, err := c.app.gw.TokenSource(ctx).Token()
	if errors.Is(err, gateway.ErrRefreshFailed) || errors.Is(err, gateway.ErrNoSession) {
		return append(rows, []string{"session", "expired, log in again"}), nil
	}
	if err != nil {
		return nil, err
	}

	expires, remaining := "unknown", "unknown"
	if !tok.Expiry.IsZero() {
		expires = tok.Expiry.Local().Format(time.RFC1123)
		remaining = time.Until(tok.Expiry).Round(time.Second).String()
	}
	return append(rows,
		[]string{"session", "logged in"},
		[]string{"user", user},
		[]string{"expires", expires},
		[]string{"remaining", remaining},
	), nil
}

// requireLogin runs fn only with a session, otherwise prompts the user to log in.
func (c *cli) requireLogin(ctx context.Context, message string, fn func() error) error {
	var err error
	ran := c.app.newGuard().RequireAction(ctx, c.app.state.Snapshot(), func() { err = fn() }, message)
	if !ran {
		return apperrors.ErrNotLoggedIn
	}
	return err
}
