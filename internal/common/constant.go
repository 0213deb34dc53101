package common

import "time"

const (
	// AuthorizationHeaderName carries "Bearer <token>" on authenticated requests.
	AuthorizationHeaderName = "Authorization"
	BearerPrefix            = "Bearer "

	// TokenValidityDuration is the fixed lifetime of an issued access token.
	TokenValidityDuration = 24 * time.Hour
)
