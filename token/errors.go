package token

import "errors"

var (
	// ErrTokenDecode is reported internally for tokens whose payload cannot be read.
	// It never escapes ExpirationTime.
	ErrTokenDecode = errors.New("token decode failed")
	ErrEmptyToken  = errors.New("empty access token")
)
