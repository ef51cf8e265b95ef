package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Jaemnie/sellog/gateway"
)

// MyProfile fetches the logged-in user's full profile.
func (c *Client) MyProfile(ctx context.Context) (*gateway.Envelope[MyProfile], error) {
	userID, err := c.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	return get[MyProfile](ctx, c, "/api/profile/"+url.PathEscape(userID), nil)
}

func (c *Client) UpdateMyProfile(ctx context.Context, profile MyProfile) (*gateway.Envelope[MyProfile], error) {
	if _, err := c.CurrentUserID(ctx); err != nil {
		return nil, err
	}
	return callJSON[MyProfile](ctx, c, http.MethodPatch, "/api/profile", profile)
}

// UploadProfileImage uploads a new profile picture.
func (c *Client) UploadProfileImage(ctx context.Context, f File) (*gateway.Envelope[FileUpload], error) {
	return c.UploadFile(ctx, f, FileTypeProfile)
}

// UserProfile is another member's profile as seen by a logged-in user.
func (c *Client) UserProfile(ctx context.Context, userID string, params PostListParams) (*gateway.Envelope[UserProfile], error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	return get[UserProfile](ctx, c, "/api/profile/"+url.PathEscape(userID), params.values())
}

// ProfilePreview is the public part of a profile, available without a session.
func (c *Client) ProfilePreview(ctx context.Context, userID string, params PostListParams) (*gateway.Envelope[UserProfile], error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	return get[UserProfile](ctx, c, "/api/preview/"+url.PathEscape(userID), params.values())
}
