package client

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var errNoSubject = errors.New("token has no subject")

// AccessTokenClaims decodes the access token without verifying its
// signature. The server is the only party that validates it; the client only
// reads who it belongs to and when it expires.
func AccessTokenClaims(token string) (*SessionInfo, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errNoSubject
	}
	info := &SessionInfo{Username: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return info, nil
}
