package token

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// DefaultExpiryThreshold is how close to expiry a token counts as "expiring soon".
const DefaultExpiryThreshold = 5 * time.Minute

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Payloads are decoded only; signatures are the server's business.
var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// ExpirationTime reads the exp claim of a JWT-shaped token without verifying it. ok is false
// when the token is malformed or carries no usable exp claim.
func ExpirationTime(tok string) (exp time.Time, ok bool) {
	exp, err := decodeExpiry(tok)
	if err != nil {
		log.Debug().Err(err).Msg("token expiry unknown")
		return time.Time{}, false
	}
	return exp, true
}

// IsExpiringSoon reports whether the token expires within threshold. Tokens with unknown
// expiry are not considered expiring.
func IsExpiringSoon(tok string, threshold time.Duration) bool {
	exp, ok := ExpirationTime(tok)
	if !ok {
		return false
	}
	return exp.Sub(NowTimeFunc()) < threshold
}

// IsExpired reports whether the token's expiry has passed. Tokens with unknown expiry count
// as expired.
func IsExpired(tok string) bool {
	exp, ok := ExpirationTime(tok)
	if !ok {
		return true
	}
	return !NowTimeFunc().Before(exp)
}

// Subject reads the sub claim without verifying the token.
func Subject(tok string) (string, bool) {
	claims, err := decodeClaims(tok)
	if err != nil {
		return "", false
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", false
	}
	return sub, true
}

// decodeExpiry keeps sub-second precision: exp may be fractional, and jwt.NumericDate would
// truncate it to whole seconds.
func decodeExpiry(tok string) (time.Time, error) {
	claims, err := decodeClaims(tok)
	if err != nil {
		return time.Time{}, err
	}

	var secs float64
	switch v := claims["exp"].(type) {
	case nil:
		return time.Time{}, fmt.Errorf("%w: no exp claim", ErrTokenDecode)
	case float64:
		secs = v
	case json.Number:
		if secs, err = v.Float64(); err != nil {
			return time.Time{}, fmt.Errorf("%w: exp %q: %v", ErrTokenDecode, v, err)
		}
	default:
		return time.Time{}, fmt.Errorf("%w: exp has type %T", ErrTokenDecode, v)
	}

	ms := math.Round(secs * 1000)
	if math.IsNaN(ms) || ms >= math.MaxInt64 || ms <= math.MinInt64 {
		return time.Time{}, fmt.Errorf("%w: exp %v out of range", ErrTokenDecode, secs)
	}
	return time.UnixMilli(int64(ms)), nil
}

func decodeClaims(tok string) (claims jwt.MapClaims, err error) {
	defer func() {
		if r := recover(); r != nil {
			claims, err = nil, fmt.Errorf("%w: %v", ErrTokenDecode, r)
		}
	}()

	parts := strings.Split(tok, ".")
	if len(parts) != 3 || parts[1] == "" {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrTokenDecode, len(parts))
	}

	payload, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenDecode, err)
	}

	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenDecode, err)
	}
	return claims, nil
}
