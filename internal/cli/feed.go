package cli

import (
	"strconv"
	"strings"

	"github.com/Jaemnie/sellog/api"
	apperrors "github.com/Jaemnie/sellog/internal/errors"
	"github.com/spf13/cobra"
)

func (c *cli) feedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "List recent posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			postType, _ := cmd.Flags().GetString("type")
			limit, _ := cmd.Flags().GetInt("limit")
			after, _ := cmd.Flags().GetString("after")
			afterID, _ := cmd.Flags().GetString("after-id")

			env, err := c.app.client.ListPosts(cmd.Context(), api.PostListParams{
				Type:         api.PostType(strings.ToUpper(postType)),
				CursorParams: api.CursorParams{LastCreateAt: after, LastID: afterID, Limit: limit},
			})
			if err != nil {
				return err
			}
			if err := env.Err(); err != nil {
				return err
			}

			page := env.Payload
			if len(page.Content) == 0 {
				c.printer.Info("No posts.")
				return nil
			}
			rows := make([][]string, 0, len(page.Content))
			for _, p := range page.Content {
				rows = append(rows, []string{p.PostID, string(p.Type), p.Title, author(p), price(p), strconv.FormatInt(p.LikeCount, 10)})
			}
			c.printer.Table([]string{"id", "type", "title", "author", "price", "likes"}, rows)
			if page.HasNext {
				c.printer.Print("%s", c.printer.Dim("more: --after "+page.LastCreateAt+" --after-id "+page.LastID))
			}
			return nil
		},
	}
	cmd.Flags().String("type", "", "POST or PRODUCT")
	cmd.Flags().Int("limit", 20, "page size")
	cmd.Flags().String("after", "", "cursor: creation time of the last post seen")
	cmd.Flags().String("after-id", "", "cursor: ID of the last post seen")
	return cmd
}

func (c *cli) postCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Write a post or put something up for sale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := api.PostRequest{TagNames: []string{}}
			req.Title, _ = cmd.Flags().GetString("title")
			req.Contents, _ = cmd.Flags().GetString("contents")
			req.Place, _ = cmd.Flags().GetString("place")
			req.Price, _ = cmd.Flags().GetInt64("price")
			tags, _ := cmd.Flags().GetStringSlice("tag")
			req.TagNames = append(req.TagNames, tags...)
			postType, _ := cmd.Flags().GetString("type")
			req.Type = api.PostType(strings.ToUpper(postType))

			if err := validatePost(req); err != nil {
				return err
			}

			ctx := cmd.Context()
			return c.requireLogin(ctx, "Log in to write a post.", func() error {
				env, err := c.app.client.CreatePost(ctx, req)
				if err != nil {
					return err
				}
				if err := env.Err(); err != nil {
					return err
				}
				c.printer.Success("Posted %q (%s)", req.Title, env.Payload.PostID)
				return nil
			})
		},
	}
	cmd.Flags().String("title", "", "title")
	cmd.Flags().String("contents", "", "body text")
	cmd.Flags().Int64("price", 0, "price, required for PRODUCT")
	cmd.Flags().String("type", string(api.PostTypePost), "POST or PRODUCT")
	cmd.Flags().String("place", "", "meeting place")
	cmd.Flags().StringSlice("tag", nil, "tag, repeatable")
	return cmd
}

func validatePost(req api.PostRequest) error {
	switch {
	case req.Title == "":
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "title is required")
	case req.Type != api.PostTypePost && req.Type != api.PostTypeProduct:
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "unknown post type %q", req.Type)
	case req.Type == api.PostTypeProduct && req.Price <= 0:
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "price is required for a product")
	case req.Contents == "":
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "contents are required")
	}
	return nil
}

func author(p api.Post) string {
	if p.Nickname != "" {
		return p.Nickname
	}
	return p.UserID
}

func price(p api.Post) string {
	if p.Type != api.PostTypeProduct {
		return "-"
	}
	return strconv.FormatInt(p.Price, 10)
}
