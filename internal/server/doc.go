// Package server implements the loopback HTTP listener used during
// authorization.
//
// `radar auth` starts a short-lived server on the configured localhost
// address, opens the Spotify consent page in a browser, and waits for the
// redirect. The [CallbackHandler] validates the state token, exchanges the
// authorization code, and delivers exactly one [AuthResult] on its channel
// before the server shuts down.
//
// The [Router] keeps routing and middleware separate from the handler so the
// callback can be exercised directly with httptest in tests.
package server
