package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/Jaemnie/sellog/gateway"
	apperrors "github.com/Jaemnie/sellog/internal/errors"
)

// Search runs the unified search over users, posts and products.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*gateway.Envelope[SearchPage], error) {
	if req.Keyword == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "keyword is required")
	}
	return get[SearchPage](ctx, c, "/api/search", req.values())
}

// Autocomplete suggests search terms for a prefix. The endpoint answers with a bare list.
func (c *Client) Autocomplete(ctx context.Context, query string, limit int) ([]string, error) {
	if query == "" {
		return nil, nil
	}
	q := url.Values{"query": {query}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	req := gateway.NewRequest("GET", "/api/search/suggestions/autocomplete").WithQuery(q)
	return gateway.CallRaw[[]string](ctx, c.gw, req)
}

// FilterByType keeps only results of one source type.
func FilterByType(page SearchPage, t SourceType) SearchPage {
	out := page
	out.Content = nil
	for _, item := range page.Content {
		if item.SourceType == t {
			out.Content = append(out.Content, item)
		}
	}
	out.NumberOfElements = len(out.Content)
	return out
}

func GroupByType(page SearchPage) GroupedResults {
	var g GroupedResults
	for _, item := range page.Content {
		switch item.SourceType {
		case SourceUser:
			g.Users = append(g.Users, item)
		case SourcePost:
			g.Posts = append(g.Posts, item)
		case SourceProduct:
			g.Products = append(g.Products, item)
		}
	}
	return g
}
