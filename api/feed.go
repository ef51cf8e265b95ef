package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Jaemnie/sellog/gateway"
)

func (c *Client) ListPosts(ctx context.Context, params PostListParams) (*gateway.Envelope[CursorPage[Post]], error) {
	return get[CursorPage[Post]](ctx, c, "/api/post", params.values())
}

func (c *Client) GetPost(ctx context.Context, postID string) (*gateway.Envelope[Post], error) {
	if err := requireID("post ID", postID); err != nil {
		return nil, err
	}
	return get[Post](ctx, c, "/api/post/"+url.PathEscape(postID), nil)
}

func (c *Client) CreatePost(ctx context.Context, req PostRequest) (*gateway.Envelope[Post], error) {
	return callJSON[Post](ctx, c, http.MethodPost, "/api/post", req)
}

func (c *Client) UpdatePost(ctx context.Context, postID string, req PostRequest) (*gateway.Envelope[Post], error) {
	if err := requireID("post ID", postID); err != nil {
		return nil, err
	}
	return callJSON[Post](ctx, c, http.MethodPatch, "/api/post/"+url.PathEscape(postID), req)
}

func (c *Client) DeletePost(ctx context.Context, postID string) (*gateway.Envelope[Void], error) {
	if err := requireID("post ID", postID); err != nil {
		return nil, err
	}
	return call[Void](ctx, c, http.MethodDelete, "/api/post/"+url.PathEscape(postID), nil)
}

// ToggleLike flips the caller's like on a post.
func (c *Client) ToggleLike(ctx context.Context, postID string) (*gateway.Envelope[LikeToggle], error) {
	if err := requireID("post ID", postID); err != nil {
		return nil, err
	}
	return call[LikeToggle](ctx, c, http.MethodPatch, "/api/post/"+url.PathEscape(postID)+"/like", nil)
}

func (c *Client) ToggleDislike(ctx context.Context, postID string) (*gateway.Envelope[LikeToggle], error) {
	if err := requireID("post ID", postID); err != nil {
		return nil, err
	}
	return call[LikeToggle](ctx, c, http.MethodPatch, "/api/post/"+url.PathEscape(postID)+"/dislike", nil)
}
