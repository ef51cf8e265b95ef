package gateway

import (
	"context"
	"encoding/json"
	"fmt"
)

// Envelope is the backend's standard response wrapper.
type Envelope[T any] struct {
	IsSuccess bool   `json:"isSuccess"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Payload   T      `json:"payload,omitempty"`
}

// Err converts a business failure (isSuccess:false) into a *BusinessError.
func (e *Envelope[T]) Err() error {
	if e.IsSuccess {
		return nil
	}
	return &BusinessError{Code: e.Code, Message: e.Message}
}

// AuthTokens is the payload of login and refresh responses. The refresh token normally
// arrives as an httpOnly cookie and is never read by the client.
type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	UserID       string `json:"userId,omitempty"`
}

// Decode reads resp as an Envelope. An empty body decodes to a successful, empty envelope.
func Decode[T any](resp *Response) (*Envelope[T], error) {
	env := &Envelope[T]{}
	if len(resp.Body) == 0 {
		env.IsSuccess = true
		return env, nil
	}
	if err := json.Unmarshal(resp.Body, env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return env, nil
}

// Call sends req through g and decodes the envelope. Business failures are returned as a
// normal envelope with IsSuccess false.
func Call[T any](ctx context.Context, g *Gateway, req *Request) (*Envelope[T], error) {
	resp, err := g.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return Decode[T](resp)
}

// CallRaw is Call for endpoints that answer with a bare JSON value instead of an envelope.
func CallRaw[T any](ctx context.Context, g *Gateway, req *Request) (T, error) {
	var out T
	resp, err := g.Do(ctx, req)
	if err != nil {
		return out, err
	}
	if len(resp.Body) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return out, nil
}
