package relay

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// VerifyToken checks an HS256 bearer token and returns its userId claim.
// The claim may be a string or a number; both appear in the wild.
func VerifyToken(token string, secret []byte) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("verify token: %w", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("verify token: unexpected claims type %T", parsed.Claims)
	}
	switch v := claims["userId"].(type) {
	case string:
		if v == "" {
			return "", fmt.Errorf("verify token: empty userId claim")
		}
		return v, nil
	case float64:
		return strconv.FormatInt(int64(v), 10), nil
	}
	return "", fmt.Errorf("verify token: missing userId claim")
}

// SignToken mints a token carrying the userId claim. The signin endpoint
// and tests use it.
func SignToken(userID string, secret []byte) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": userID})
	signed, err := tok.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
