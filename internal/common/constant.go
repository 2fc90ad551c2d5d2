package common

const (
	// AccessTokenCookieName is the session cookie the API issues on login.
	AccessTokenCookieName = "access_token"

	// RefreshTokenCookieName carries the long-lived refresh token.
	RefreshTokenCookieName = "refresh_token"

	// RequestIDHeaderName is attached to every outbound API request.
	RequestIDHeaderName = "X-Request-ID"
)
