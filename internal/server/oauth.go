package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

// AuthResult is the outcome of one authorization callback.
type AuthResult struct {
	Token *oauth2.Token
	err   error
}

// Error returns the failure that produced this result, if any.
func (r AuthResult) Error() error {
	return r.err
}

// CallbackHandler receives the Spotify authorization redirect.
//
// It validates the state token, exchanges the authorization code, and
// delivers exactly one [AuthResult] on the channel returned by [Result].
// Repeated callbacks are rejected.
type CallbackHandler struct {
	config  *oauth2.Config
	state   string
	results chan AuthResult

	mu      sync.Mutex
	handled bool
	once    sync.Once
}

// NewCallbackHandler creates a handler expecting the given state token.
func NewCallbackHandler(config *oauth2.Config, state string) *CallbackHandler {
	return &CallbackHandler{
		config:  config,
		state:   state,
		results: make(chan AuthResult, 1),
	}
}

// Routes implements [Handler].
func (h *CallbackHandler) Routes() []string {
	return []string{"/callback"}
}

// Result returns the channel the flow outcome is delivered on. The channel
// receives one result and is then closed.
func (h *CallbackHandler) Result() <-chan AuthResult {
	return h.results
}

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.handled {
		h.mu.Unlock()
		http.Error(w, "authorization already completed", http.StatusBadRequest)
		return
	}
	h.handled = true
	h.mu.Unlock()

	query := r.URL.Query()

	if query.Get("state") != h.state {
		h.deliver(AuthResult{err: fmt.Errorf("state token mismatch")})
		http.Error(w, "state token mismatch", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		reason := query.Get("error")
		if reason == "" {
			reason = "no authorization code in callback"
		}
		h.deliver(AuthResult{err: fmt.Errorf("authorization denied: %s", reason)})
		http.Error(w, "authorization denied", http.StatusBadRequest)
		return
	}

	token, err := h.config.Exchange(context.Background(), code)
	if err != nil {
		h.deliver(AuthResult{err: fmt.Errorf("code exchange failed: %w", err)})
		http.Error(w, "code exchange failed", http.StatusInternalServerError)
		return
	}

	h.deliver(AuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

// deliver sends the result once and closes the channel.
func (h *CallbackHandler) deliver(result AuthResult) {
	h.once.Do(func() {
		h.results <- result
		close(h.results)
	})
}

const successPage = `<!DOCTYPE html>
<html>
<head>
  <title>radar</title>
  <style>
    body { font-family: system-ui, sans-serif; display: flex; align-items: center;
           justify-content: center; height: 100vh; margin: 0; background: #111; color: #eee; }
    main { text-align: center; }
    h1 { color: #1DB954; }
  </style>
</head>
<body>
  <main>
    <h1>Connected</h1>
    <p>radar is authorized. You can close this tab and return to the terminal.</p>
  </main>
</body>
</html>
`
