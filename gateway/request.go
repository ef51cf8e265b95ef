package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	HeaderRequestID = "X-Request-ID"

	authPrefix  = "/auth/"
	refreshPath = "/auth/refresh"
	logoutPath  = "/auth/logout"
)

// Request is a backend call the gateway may send twice: once, and once more after a
// refresh. The body is kept as bytes so it can be replayed.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

func NewRequest(method, path string) *Request {
	return &Request{Method: strings.ToUpper(method), Path: path}
}

func NewJSONRequest(method, path string, v any) (*Request, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("[NewJSONRequest] %s %s: %w", method, path, err)
	}
	r := NewRequest(method, path)
	r.Body = body
	return r, nil
}

// WithQuery sets the query string; empty values are dropped.
func (r *Request) WithQuery(q url.Values) *Request {
	clean := make(url.Values, len(q))
	for k, vs := range q {
		if len(vs) == 0 || (len(vs) == 1 && vs[0] == "") {
			continue
		}
		clean[k] = vs
	}
	r.Query = clean
	return r
}

func (r *Request) WithHeader(key, value string) *Request {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Set(key, value)
	return r
}

// Response is a fully read backend response.
type Response struct {
	Status    int
	Header    http.Header
	Body      []byte
	RequestID string
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// isAuthEndpoint reports whether path belongs to the pre-authentication endpoints, which
// are never refreshed on 401.
func isAuthEndpoint(path string) bool {
	return strings.HasPrefix(path, authPrefix)
}
