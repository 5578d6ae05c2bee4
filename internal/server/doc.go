// Package server provides HTTP routing, middleware, and the web surface of
// the recommendation service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), exchanges the
// authorization code for a credential, and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks. When the user
// runs `encore auth`, a temporary HTTP server starts on the configured
// redirect address, handles the callback, and shuts down after receiving
// the credential.
//
// # Recommendation API
//
// [RecommendationHandler] exposes the engine over HTTP for `encore serve`:
// GET /recommendations runs a request, GET /history lists past result sets,
// and GET /healthz reports liveness. Engine errors map onto HTTP statuses
// via [statusForError].
package server
