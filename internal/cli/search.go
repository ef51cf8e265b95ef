package cli

import (
	"strconv"
	"strings"

	"github.com/Jaemnie/sellog/api"
	"github.com/Jaemnie/sellog/internal/utils"
	"github.com/spf13/cobra"
)

func (c *cli) searchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search users, posts and products",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			keyword := args[0]
			flags := cmd.Flags()

			if suggest, _ := flags.GetBool("suggest"); suggest {
				limit, _ := flags.GetInt("size")
				words, err := c.app.client.Autocomplete(ctx, keyword, limit)
				if err != nil {
					return err
				}
				for _, w := range words {
					c.printer.Print("%s", w)
				}
				return nil
			}

			target, _ := flags.GetString("type")
			sortBy, _ := flags.GetString("sort")
			req := api.SearchRequest{
				Keyword:    keyword,
				TargetType: api.SourceType(strings.ToUpper(target)),
				SortBy:     sortBy,
			}
			friends, _ := flags.GetBool("friends")
			pageNo, _ := flags.GetInt("page")
			size, _ := flags.GetInt("size")
			req.SearchOnlyFriends = utils.PtrIf(flags.Changed("friends"), friends)
			req.Page = utils.PtrIf(flags.Changed("page"), pageNo)
			req.Size = utils.PtrIf(flags.Changed("size"), size)

			env, err := c.app.client.Search(ctx, req)
			if err != nil {
				return err
			}
			if err := env.Err(); err != nil {
				return err
			}

			page := env.Payload
			if req.TargetType != "" {
				page = api.FilterByType(page, req.TargetType)
			}
			if len(page.Content) == 0 {
				c.printer.Info("No results for %q.", keyword)
				return nil
			}
			c.printResults(api.GroupByType(page))
			return nil
		},
	}
	cmd.Flags().String("type", "", "USER, POST or PRODUCT")
	cmd.Flags().String("sort", "", "sort order understood by the backend")
	cmd.Flags().Bool("friends", false, "only people you follow")
	cmd.Flags().Int("page", 0, "page number")
	cmd.Flags().Int("size", 10, "page size, or number of suggestions")
	cmd.Flags().Bool("suggest", false, "autocomplete the keyword instead of searching")
	return cmd
}

func (c *cli) printResults(g api.GroupedResults) {
	if len(g.Users) > 0 {
		c.printer.Header("Users")
		rows := make([][]string, 0, len(g.Users))
		for _, u := range g.Users {
			rows = append(rows, []string{u.UserID, u.Nickname})
		}
		c.printer.Table([]string{"user", "nickname"}, rows)
	}
	if len(g.Posts) > 0 {
		c.printer.Header("Posts")
		rows := make([][]string, 0, len(g.Posts))
		for _, p := range g.Posts {
			rows = append(rows, []string{p.SourceID, p.Title, p.Nickname})
		}
		c.printer.Table([]string{"id", "title", "author"}, rows)
	}
	if len(g.Products) > 0 {
		c.printer.Header("Products")
		rows := make([][]string, 0, len(g.Products))
		for _, p := range g.Products {
			rows = append(rows, []string{p.SourceID, p.Title, strconv.FormatInt(p.Price, 10), p.Nickname})
		}
		c.printer.Table([]string{"id", "title", "price", "seller"}, rows)
	}
}
