package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Upstream catalog errors, classified from HTTP status codes.
	// ErrNotFound doubles as a capability-absence signal: the upstream
	// returns 404 when an account or region lacks access to an endpoint,
	// which callers treat as "use the fallback", not as a failure.
	ErrUnauthorized = fmt.Errorf("unauthorized")
	ErrNotFound     = fmt.Errorf("not found")
	ErrRateLimited  = fmt.Errorf("rate limited")
	ErrUpstream     = fmt.Errorf("upstream error")

	// Authentication errors
	ErrAuthFailed     = fmt.Errorf("authentication failed")
	ErrNoCredential   = fmt.Errorf("no credential on record")
	ErrNoRefreshToken = fmt.Errorf("no refresh token available")
	ErrReauthRequired = fmt.Errorf("re-authentication required")
	ErrTimeout        = fmt.Errorf("operation timed out")

	// Recommendation request errors
	ErrNoSeeds        = fmt.Errorf("no seeds available")
	ErrNoArtistSeeds  = fmt.Errorf("no artist seeds available")
	ErrArtistNotFound = fmt.Errorf("artist not found")
	ErrEmptyPlaylist  = fmt.Errorf("playlist has no addressable tracks")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// Service errors
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrListenerNotFound   = fmt.Errorf("listener not found")
)
