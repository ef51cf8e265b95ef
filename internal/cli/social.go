package cli

import (
	"context"

	"github.com/Jaemnie/sellog/api"
	"github.com/Jaemnie/sellog/gateway"
	"github.com/spf13/cobra"
)

type (
	relationFunc func(client *api.Client, ctx context.Context, userID string) (*gateway.Envelope[api.Void], error)
	listFunc     func(client *api.Client, ctx context.Context) (*gateway.Envelope[api.CursorPage[api.UserBasic]], error)
)

// relation describes follow and block, which share their shape: act on a user, undo it, or
// list the users involved.
type relation struct {
	use, short string
	done       string
	undone     string
	message    string
	do, undo   relationFunc
	list       listFunc
}

func (c *cli) followCommand() *cobra.Command {
	return c.relationCommand(relation{
		use:     "follow [userId]",
		short:   "Follow a user, or list your followers",
		done:    "Following %s",
		undone:  "Unfollowed %s",
		message: "Log in to follow people.",
		do:      (*api.Client).Follow,
		undo:    (*api.Client).Unfollow,
		list: func(client *api.Client, ctx context.Context) (*gateway.Envelope[api.CursorPage[api.UserBasic]], error) {
			me, err := client.CurrentUserID(ctx)
			if err != nil {
				return nil, err
			}
			return client.Followers(ctx, me, api.CursorParams{})
		},
	})
}

func (c *cli) blockCommand() *cobra.Command {
	return c.relationCommand(relation{
		use:     "block [userId]",
		short:   "Block a user, or list blocked users",
		done:    "Blocked %s",
		undone:  "Unblocked %s",
		message: "Log in to block people.",
		do:      (*api.Client).Block,
		undo:    (*api.Client).Unblock,
		list: func(client *api.Client, ctx context.Context) (*gateway.Envelope[api.CursorPage[api.UserBasic]], error) {
			return client.Blocks(ctx, api.CursorParams{})
		},
	})
}

func (c *cli) relationCommand(r relation) *cobra.Command {
	cmd := &cobra.Command{
		Use:   r.use,
		Short: r.short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			undo, _ := cmd.Flags().GetBool("undo")

			return c.requireLogin(ctx, r.message, func() error {
				if len(args) == 0 {
					return c.listUsers(ctx, r.list)
				}

				userID := args[0]
				fn, msg := r.do, r.done
				if undo {
					fn, msg = r.undo, r.undone
				}
				env, err := fn(c.app.client, ctx, userID)
				if err != nil {
					return err
				}
				if err := env.Err(); err != nil {
					return err
				}
				c.printer.Success(msg, userID)
				return nil
			})
		},
	}
	cmd.Flags().Bool("undo", false, "reverse the relation")
	return cmd
}

func (c *cli) listUsers(ctx context.Context, list listFunc) error {
	env, err := list(c.app.client, ctx)
	if err != nil {
		return err
	}
	if err := env.Err(); err != nil {
		return err
	}
	if len(env.Payload.Content) == 0 {
		c.printer.Info("Nobody here yet.")
		return nil
	}
	rows := make([][]string, 0, len(env.Payload.Content))
	for _, u := range env.Payload.Content {
		rows = append(rows, []string{u.UserID, u.Nickname})
	}
	c.printer.Table([]string{"user", "nickname"}, rows)
	return nil
}
