// Package client is a Go client for the account server HTTP API.
//
// # Overview
//
// HTTPClient authenticates with Login, keeps the issued access token and
// sends it as a Bearer token on every /api/users call. Server error statuses
// are mapped back to the sentinel errors of package common so callers can
// use errors.Is the same way they would against the services directly:
//
//	404 common.ErrorNotFound
//	409 common.ErrorConflict
//	401 common.ErrorUnauthorized (or ErrTokenExpired / ErrInvalidToken)
//	403 common.ErrorAccountDisabled
//	400 *BadRequestError
//	5xx ErrUnavailable
//
// The token is held in memory only and is never written to logs.
package client
