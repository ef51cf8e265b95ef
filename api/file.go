package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/Jaemnie/sellog/gateway"
	apperrors "github.com/Jaemnie/sellog/internal/errors"
)

func (c *Client) UploadFile(ctx context.Context, f File, fileType FileType) (*gateway.Envelope[FileUpload], error) {
	return c.upload(ctx, "/api/file", "file", []File{f}, fileType)
}

func (c *Client) UploadFiles(ctx context.Context, files []File, fileType FileType) (*gateway.Envelope[FileUpload], error) {
	return c.upload(ctx, "/api/file/multi", "files", files, fileType)
}

func (c *Client) DeleteFile(ctx context.Context, fileHash string) (*gateway.Envelope[Void], error) {
	if err := requireID("file hash", fileHash); err != nil {
		return nil, err
	}
	return call[Void](ctx, c, http.MethodDelete, "/api/file/"+url.PathEscape(fileHash), nil)
}

func (c *Client) upload(ctx context.Context, path, field string, files []File, fileType FileType) (*gateway.Envelope[FileUpload], error) {
	if len(files) == 0 {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "no files to upload")
	}

	body, contentType, err := multipartBody(field, files)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Client upload] %s", path)
	}

	req := gateway.NewRequest(http.MethodPost, path).
		WithQuery(url.Values{"fileType": {string(fileType)}}).
		WithHeader("Content-Type", contentType)
	req.Body = body
	return gateway.Call[FileUpload](ctx, c.gw, req)
}

// multipartBody encodes files into a buffered body so the gateway can replay it on retry.
func multipartBody(field string, files []File) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile(field, f.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
