package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Jaemnie/sellog/gateway"
)

func (c *Client) ListComments(ctx context.Context, postID string, params CommentListParams) (*gateway.Envelope[CursorPage[Comment]], error) {
	if err := requireID("post ID", postID); err != nil {
		return nil, err
	}
	return get[CursorPage[Comment]](ctx, c, "/api/comment/"+url.PathEscape(postID), params.values())
}

// CreateComment comments on a post. A non-empty parentID makes it a reply.
func (c *Client) CreateComment(ctx context.Context, postID, parentID string, req CommentRequest) (*gateway.Envelope[Comment], error) {
	if err := requireID("post ID", postID); err != nil {
		return nil, err
	}
	r, err := gateway.NewJSONRequest(http.MethodPost, "/api/comment/"+url.PathEscape(postID), req)
	if err != nil {
		return nil, err
	}
	r.WithQuery(url.Values{"parentId": {parentID}})
	return gateway.Call[Comment](ctx, c.gw, r)
}

func (c *Client) UpdateComment(ctx context.Context, commentID string, req CommentRequest) (*gateway.Envelope[Comment], error) {
	if err := requireID("comment ID", commentID); err != nil {
		return nil, err
	}
	return callJSON[Comment](ctx, c, http.MethodPatch, "/api/comment/"+url.PathEscape(commentID), req)
}

func (c *Client) DeleteComment(ctx context.Context, commentID string) (*gateway.Envelope[Void], error) {
	if err := requireID("comment ID", commentID); err != nil {
		return nil, err
	}
	return call[Void](ctx, c, http.MethodDelete, "/api/comment/"+url.PathEscape(commentID), nil)
}
