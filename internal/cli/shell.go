package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Jaemnie/sellog/guard"
	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

const shellHelp = `Commands:
  login [userId]            log in
  logout                    log out
  status                    show the session
  feed [--type ...]         list posts
  post --title ... ...      write a post
  follow|block [userId]     follow/block a user, --undo to reverse, no user to list
  search <keyword>          search, --suggest to autocomplete
  open <path>               go to a view, e.g. open /mypage
  focus | hide | show       window events
  help | exit`

// view is the page the shell is on, with the guard protecting it.
type view struct {
	path   string
	cancel func()
}

func (c *cli) shellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runShell(cmd.Context())
		},
	}
}

func (c *cli) runShell(ctx context.Context) error {
	fmt.Fprintln(c.out, figure.NewFigure(c.cfg.GetAppName(), "cybermedium", true).String())
	c.printer.Info("Connected to %s. Type 'help' for commands.", c.cfg.GetAPIBaseURL())

	v := &view{}
	defer func() {
		if v.cancel != nil {
			v.cancel()
		}
	}()
	c.syncView(ctx, v)

	for {
		line, err := c.readLine(c.prompt())
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(c.out)
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}

		c.app.state.OnActivity()
		if quit := c.dispatch(ctx, strings.Fields(line)); quit {
			return nil
		}
		c.syncView(ctx, v)

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *cli) dispatch(ctx context.Context, fields []string) (quit bool) {
	switch fields[0] {
	case "exit", "quit":
		return true
	case "help":
		c.printer.Print(shellHelp)
	case "open":
		if len(fields) != 2 || !strings.HasPrefix(fields[1], "/") {
			c.printer.Error("usage: open /path")
			return false
		}
		c.app.nav.Redirect(ctx, fields[1])
	case "focus":
		c.app.state.OnFocus(ctx)
	case "hide":
		c.app.state.OnVisibilityChange(ctx, false)
	case "show":
		c.app.state.OnVisibilityChange(ctx, true)
	default:
		sub := &cobra.Command{Use: "socialctl", SilenceUsage: true, SilenceErrors: true}
		sub.AddCommand(c.commands()...)
		sub.SetArgs(fields)
		sub.SetOut(c.out)
		sub.SetErr(c.errOut)
		if err := sub.ExecuteContext(ctx); err != nil {
			c.printer.Error("%v", err)
		}
	}
	return false
}

// syncView mounts a guard on the current view whenever the view changes. A guard that
// redirects changes the view again, so this runs until the view is stable.
func (c *cli) syncView(ctx context.Context, v *view) {
	for {
		path := c.app.nav.Current()
		if path == v.path {
			return
		}
		if v.cancel != nil {
			v.cancel()
			v.cancel = nil
		}
		v.path = path

		g := c.app.newGuard()
		if g.IsAuthRoute(path) {
			return
		}
		v.cancel = g.Bind(ctx, c.app.state, c.app.nav.Current, func(d guard.Decision) {
			if d.Render && c.app.nav.Current() == path {
				c.printer.Print("%s", c.printer.Dim("viewing "+path))
			}
		})
	}
}

func (c *cli) prompt() string {
	marker := "○"
	if c.app.state.Snapshot().IsLoggedIn {
		marker = "●"
	}
	return fmt.Sprintf("%s %s:%s> ", marker, c.cfg.GetAppName(), c.app.nav.Current())
}
