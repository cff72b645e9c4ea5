package authhttp

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vango-dev/remoteauth/pkg/remoteauth"
)

// tokenExpirationWindow is how close to expiry a cached token may get
// before a fresh one is requested.
const tokenExpirationWindow = 5 * time.Minute

// Sentinel errors for handler misuse. These indicate programmer mistakes
// and are never produced during normal request flow.
var (
	// ErrNotConfigured is returned by RoundTrip before Configure was called.
	ErrNotConfigured = errors.New("authhttp: round tripper not configured, call Configure with the endpoint URLs to attach tokens to")

	// ErrAlreadyConfigured is returned when Configure is called twice.
	ErrAlreadyConfigured = errors.New("authhttp: round tripper already configured")

	// ErrNoAuthorizedURLs is returned when Configure is given no URLs.
	ErrNoAuthorizedURLs = errors.New("authhttp: at least one authorized URL must be configured")
)

// TokenUnavailableError is returned when a request to an authorized URI
// could not be provisioned with an access token. It carries the redirect
// information needed to initiate an interactive login.
type TokenUnavailableError struct {
	// Result is the failed token acquisition outcome.
	Result remoteauth.AccessTokenResult

	// Scopes are the scopes the request was configured with, if any.
	Scopes []string
}

// Error implements error.
func (e *TokenUnavailableError) Error() string {
	if len(e.Scopes) > 0 {
		return fmt.Sprintf("authhttp: unable to provision an access token for scopes %q", strings.Join(e.Scopes, ", "))
	}
	return "authhttp: unable to provision an access token for the default scopes"
}

// Redirect navigates into the interactive login described by the failed
// token result. configure may be nil; when set it can adjust the
// interactive request before navigating.
func (e *TokenUnavailableError) Redirect(nav remoteauth.Navigator, configure func(*remoteauth.InteractiveRequestOptions)) error {
	if e.Result.InteractiveRequest == nil || e.Result.InteractiveRequestURL == "" {
		return errors.New("authhttp: token result carries no interactive request")
	}
	if configure != nil {
		configure(e.Result.InteractiveRequest)
	}
	return remoteauth.NavigateToLogin(nav, e.Result.InteractiveRequestURL, e.Result.InteractiveRequest)
}

// RoundTripper attaches bearer tokens to requests targeting the configured
// authorized base URIs. It keeps a last-value token cache per instance;
// concurrent refreshes may race and issue duplicate token requests, which
// is acceptable because token acquisition is idempotent.
type RoundTripper struct {
	provider remoteauth.TokenProvider
	next     http.RoundTripper

	authorized   []*url.URL
	tokenOptions *remoteauth.AccessTokenRequestOptions

	lastToken    *remoteauth.AccessToken
	cachedHeader string

	unsubscribe func()
	now         func() time.Time
}

// Option configures a RoundTripper.
type Option func(*RoundTripper)

// WithTransport sets the underlying transport. Default: http.DefaultTransport.
func WithTransport(next http.RoundTripper) Option {
	return func(rt *RoundTripper) {
		if next != nil {
			rt.next = next
		}
	}
}

// New creates an unconfigured RoundTripper over the given provider. When
// the provider also publishes authentication state changes, the cached
// token is invalidated on every change (a sign-out must not leave a stale
// token attached to later requests); call Close to tear the subscription
// down.
func New(provider remoteauth.TokenProvider, opts ...Option) *RoundTripper {
	rt := &RoundTripper{
		provider: provider,
		next:     http.DefaultTransport,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(rt)
	}
	if notifier, ok := provider.(remoteauth.ChangeNotifier); ok {
		rt.unsubscribe = notifier.Subscribe(func(remoteauth.Principal) {
			rt.lastToken = nil
		})
	}
	return rt
}

// ConfigureOption narrows the token requests a RoundTripper issues.
type ConfigureOption func(*remoteauth.AccessTokenRequestOptions)

// WithScopes requests these scopes for attached tokens.
func WithScopes(scopes ...string) ConfigureOption {
	return func(o *remoteauth.AccessTokenRequestOptions) {
		o.Scopes = scopes
	}
}

// WithReturnURL sets the URL interactive acquisitions return to.
func WithReturnURL(returnURL string) ConfigureOption {
	return func(o *remoteauth.AccessTokenRequestOptions) {
		o.ReturnURL = returnURL
	}
}

// Configure sets the authorized base URIs tokens are attached to, plus
// optional token request options. It must be called exactly once before
// the first request; reconfiguring fails with ErrAlreadyConfigured.
func (rt *RoundTripper) Configure(authorizedURLs []string, opts ...ConfigureOption) error {
	if rt.authorized != nil {
		return ErrAlreadyConfigured
	}
	if len(authorizedURLs) == 0 {
		return ErrNoAuthorizedURLs
	}
	parsed := make([]*url.URL, 0, len(authorizedURLs))
	for _, raw := range authorizedURLs {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("authhttp: parse authorized URL %q: %w", raw, err)
		}
		if !u.IsAbs() {
			return fmt.Errorf("authhttp: authorized URL %q is not absolute", raw)
		}
		parsed = append(parsed, u)
	}
	rt.authorized = parsed

	if len(opts) > 0 {
		options := &remoteauth.AccessTokenRequestOptions{}
		for _, opt := range opts {
			opt(options)
		}
		rt.tokenOptions = options
	}
	return nil
}

// RoundTrip implements http.RoundTripper.
func (rt *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if rt.authorized == nil {
		return nil, ErrNotConfigured
	}
	if !rt.covers(req.URL) {
		return rt.next.RoundTrip(req)
	}

	now := rt.now()
	if rt.lastToken == nil || !now.Before(rt.lastToken.Expires.Add(-tokenExpirationWindow)) {
		result, err := rt.provider.RequestAccessToken(req.Context(), rt.tokenOptions)
		if err != nil {
			return nil, err
		}
		token, ok := result.Token()
		if !ok {
			var scopes []string
			if rt.tokenOptions != nil {
				scopes = rt.tokenOptions.Scopes
			}
			return nil, &TokenUnavailableError{Result: result, Scopes: scopes}
		}
		rt.lastToken = token
		rt.cachedHeader = "Bearer " + token.Value
	}

	// Per the http.RoundTripper contract the request must not be mutated.
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", rt.cachedHeader)
	return rt.next.RoundTrip(req)
}

// Close tears down the authentication state change subscription.
func (rt *RoundTripper) Close() error {
	if rt.unsubscribe != nil {
		rt.unsubscribe()
		rt.unsubscribe = nil
	}
	return nil
}

// covers reports whether target falls under one of the authorized base
// URIs: same scheme and host, and a path prefix at a segment boundary.
func (rt *RoundTripper) covers(target *url.URL) bool {
	if target == nil {
		return false
	}
	for _, base := range rt.authorized {
		if isBaseOf(base, target) {
			return true
		}
	}
	return false
}

func isBaseOf(base, target *url.URL) bool {
	if !strings.EqualFold(base.Scheme, target.Scheme) || !strings.EqualFold(base.Host, target.Host) {
		return false
	}
	basePath := strings.TrimSuffix(base.EscapedPath(), "/")
	targetPath := target.EscapedPath()
	if basePath == "" {
		return true
	}
	return targetPath == basePath || strings.HasPrefix(targetPath, basePath+"/")
}
