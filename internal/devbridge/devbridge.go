// Package devbridge is a scripted, in-memory stand-in for the JavaScript
// authentication service. It implements the bridge wire contract over a
// WebSocket so the authentication flows can be exercised locally, without
// an identity provider. Development and tests only.
package devbridge

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/remoteauth/pkg/remoteauth"
)

// Backend holds the scripted authentication state behind the dev bridge.
// It is safe for concurrent use.
type Backend struct {
	logger *slog.Logger

	mu       sync.Mutex
	signedIn bool
	account  remoteauth.Account
	scopes   []string
	tokenTTL time.Duration
	tokenSeq int
	issued   map[string]time.Time
	storage  map[string]string
	now      func() time.Time
}

// BackendOption configures a Backend.
type BackendOption func(*Backend)

// WithAccount sets the account reported for the signed-in user.
func WithAccount(account remoteauth.Account) BackendOption {
	return func(b *Backend) {
		b.account = account
	}
}

// WithScopes sets the scopes granted on issued tokens.
func WithScopes(scopes ...string) BackendOption {
	return func(b *Backend) {
		b.scopes = scopes
	}
}

// WithTokenTTL sets issued token lifetime. Default 1h.
func WithTokenTTL(ttl time.Duration) BackendOption {
	return func(b *Backend) {
		if ttl > 0 {
			b.tokenTTL = ttl
		}
	}
}

// WithLogger sets the backend logger.
func WithLogger(logger *slog.Logger) BackendOption {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBackend creates a Backend with a default development account.
func NewBackend(opts ...BackendOption) *Backend {
	b := &Backend{
		logger: slog.Default(),
		account: remoteauth.Account{
			"sub":  "dev-user",
			"name": "Dev User",
		},
		scopes:   []string{"openid", "profile"},
		tokenTTL: time.Hour,
		issued:   make(map[string]time.Time),
		storage:  make(map[string]string),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// operationContext is the slice of the bridge operation context the backend
// needs; application state is echoed back opaquely.
type operationContext struct {
	URL   string          `json:"url,omitempty"`
	State json.RawMessage `json:"state,omitempty"`
}

type operationResult struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	State        json.RawMessage `json:"state,omitempty"`
}

// Handle dispatches one bridge call and returns its result value.
func (b *Backend) Handle(method string, params []json.RawMessage) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch method {
	case "init":
		return nil, nil

	case "signIn":
		op, err := decodeContext(params)
		if err != nil {
			return nil, err
		}
		b.signedIn = true
		b.logger.Debug("dev bridge sign-in")
		return operationResult{Status: string(remoteauth.StatusSuccess), State: op.State}, nil

	case "completeSignIn":
		b.signedIn = true
		return operationResult{Status: string(remoteauth.StatusSuccess)}, nil

	case "signOut":
		op, err := decodeContext(params)
		if err != nil {
			return nil, err
		}
		b.signedIn = false
		b.logger.Debug("dev bridge sign-out")
		return operationResult{Status: string(remoteauth.StatusSuccess), State: op.State}, nil

	case "completeSignOut":
		b.signedIn = false
		return operationResult{Status: string(remoteauth.StatusSuccess)}, nil

	case "getAccessToken":
		if !b.signedIn {
			return remoteauth.TokenResponse{Status: remoteauth.TokenStatusRequiresRedirect}, nil
		}
		b.tokenSeq++
		value := fmt.Sprintf("dev-token-%d", b.tokenSeq)
		expires := b.now().Add(b.tokenTTL)
		b.issued[value] = expires
		return remoteauth.TokenResponse{
			Status: remoteauth.TokenStatusSuccess,
			Token: &remoteauth.AccessToken{
				Value:         value,
				GrantedScopes: b.scopes,
				Expires:       expires,
			},
		}, nil

	case "getUser":
		if !b.signedIn {
			return nil, nil
		}
		return b.account, nil

	case "sessionStorage.getItem":
		key, err := decodeString(params)
		if err != nil {
			return nil, err
		}
		value, ok := b.storage[key]
		if !ok {
			return nil, nil
		}
		return value, nil

	case "sessionStorage.setItem":
		if len(params) != 2 {
			return nil, fmt.Errorf("devbridge: setItem wants 2 params, got %d", len(params))
		}
		var key, value string
		if err := json.Unmarshal(params[0], &key); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(params[1], &value); err != nil {
			return nil, err
		}
		b.storage[key] = value
		return nil, nil

	case "sessionStorage.removeItem":
		key, err := decodeString(params)
		if err != nil {
			return nil, err
		}
		delete(b.storage, key)
		return nil, nil

	default:
		return nil, fmt.Errorf("devbridge: unknown method %q", method)
	}
}

// SignedIn reports whether the scripted user is currently signed in.
func (b *Backend) SignedIn() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.signedIn
}

// ValidToken reports whether value is a live token this backend issued.
func (b *Backend) ValidToken(value string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	expires, ok := b.issued[value]
	return ok && b.now().Before(expires)
}

func decodeContext(params []json.RawMessage) (operationContext, error) {
	var op operationContext
	if len(params) == 0 {
		return op, nil
	}
	if err := json.Unmarshal(params[0], &op); err != nil {
		return op, fmt.Errorf("devbridge: decode operation context: %w", err)
	}
	return op, nil
}

func decodeString(params []json.RawMessage) (string, error) {
	if len(params) != 1 {
		return "", fmt.Errorf("devbridge: want 1 param, got %d", len(params))
	}
	var s string
	if err := json.Unmarshal(params[0], &s); err != nil {
		return "", err
	}
	return s, nil
}
