package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Jaemnie/sellog/gateway"
)

func (c *Client) Followers(ctx context.Context, userID string, params CursorParams) (*gateway.Envelope[CursorPage[UserBasic]], error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	q := params.values()
	q.Set("userId", userID)
	return get[CursorPage[UserBasic]](ctx, c, "/api/followers", q)
}

func (c *Client) Follow(ctx context.Context, otherID string) (*gateway.Envelope[Void], error) {
	if err := requireUserID(otherID); err != nil {
		return nil, err
	}
	return callJSON[Void](ctx, c, http.MethodPost, "/api/followers", OtherUserRequest{OtherID: otherID})
}

func (c *Client) Unfollow(ctx context.Context, otherID string) (*gateway.Envelope[Void], error) {
	if err := requireUserID(otherID); err != nil {
		return nil, err
	}
	return call[Void](ctx, c, http.MethodDelete, "/api/followers/"+url.PathEscape(otherID), nil)
}

func (c *Client) Blocks(ctx context.Context, params CursorParams) (*gateway.Envelope[CursorPage[UserBasic]], error) {
	return get[CursorPage[UserBasic]](ctx, c, "/api/blocks", params.values())
}

func (c *Client) Block(ctx context.Context, otherID string) (*gateway.Envelope[Void], error) {
	if err := requireUserID(otherID); err != nil {
		return nil, err
	}
	return callJSON[Void](ctx, c, http.MethodPost, "/api/blocks", OtherUserRequest{OtherID: otherID})
}

func (c *Client) Unblock(ctx context.Context, otherID string) (*gateway.Envelope[Void], error) {
	if err := requireUserID(otherID); err != nil {
		return nil, err
	}
	return call[Void](ctx, c, http.MethodDelete, "/api/blocks/"+url.PathEscape(otherID), nil)
}
