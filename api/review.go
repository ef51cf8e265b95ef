package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Jaemnie/sellog/gateway"
)

func (c *Client) ListReviews(ctx context.Context, postID string, params CursorParams) (*gateway.Envelope[CursorPage[Review]], error) {
	if err := requireID("post ID", postID); err != nil {
		return nil, err
	}
	return get[CursorPage[Review]](ctx, c, "/review/"+url.PathEscape(postID), params.values())
}

func (c *Client) CreateReview(ctx context.Context, postID string, req ReviewRequest) (*gateway.Envelope[Void], error) {
	if err := requireID("post ID", postID); err != nil {
		return nil, err
	}
	return callJSON[Void](ctx, c, http.MethodPost, "/review/"+url.PathEscape(postID), req)
}

func (c *Client) UpdateReview(ctx context.Context, reviewID string, req ReviewRequest) (*gateway.Envelope[Void], error) {
	if err := requireID("review ID", reviewID); err != nil {
		return nil, err
	}
	return callJSON[Void](ctx, c, http.MethodPatch, "/review/"+url.PathEscape(reviewID), req)
}

func (c *Client) DeleteReview(ctx context.Context, reviewID string) (*gateway.Envelope[Void], error) {
	if err := requireID("review ID", reviewID); err != nil {
		return nil, err
	}
	return call[Void](ctx, c, http.MethodDelete, "/review/"+url.PathEscape(reviewID), nil)
}
