package remoteauth

import (
	"reflect"
	"time"
)

// InteractionType identifies why an interactive redirect is being requested.
// Values match the camelCase wire form used across the bridge.
type InteractionType string

const (
	// InteractionSignIn is an interactive redirect to sign the user in.
	InteractionSignIn InteractionType = "signIn"

	// InteractionGetToken is an interactive redirect to provision an
	// access token that could not be obtained silently.
	InteractionGetToken InteractionType = "getToken"

	// InteractionSignOut is an interactive redirect to sign the user out.
	InteractionSignOut InteractionType = "signOut"
)

// Status is the terminal status of a sign-in or sign-out operation.
type Status string

const (
	// StatusRedirect means the operation is continuing via a full-page
	// redirect; the browser navigation is already pending externally.
	StatusRedirect Status = "redirect"

	// StatusSuccess means the operation completed and the user state changed.
	StatusSuccess Status = "success"

	// StatusFailure means the operation failed; ErrorMessage carries why.
	StatusFailure Status = "failure"

	// StatusOperationCompleted means the bridge finished bookkeeping for an
	// operation that was already concluded elsewhere; no action is needed.
	StatusOperationCompleted Status = "operationCompleted"
)

// TokenStatus is the status of an access token acquisition.
type TokenStatus string

const (
	// TokenStatusSuccess means a usable token was obtained silently.
	TokenStatusSuccess TokenStatus = "success"

	// TokenStatusRequiresRedirect means the token can only be obtained
	// through an interactive redirect.
	TokenStatusRequiresRedirect TokenStatus = "requiresRedirect"
)

// State is implemented by application authentication state that rides along
// through a sign-in or sign-out operation. Implementations must tolerate
// being called on their zero value (typically a nil pointer).
type State interface {
	// GetReturnURL returns the pending return URL, or "" when unset.
	GetReturnURL() string

	// SetReturnURL records the URL to navigate back to once the
	// operation completes.
	SetReturnURL(url string)
}

// AuthenticationState is the default State implementation: a single mutable
// return URL. Applications needing extra round-trip state embed it.
type AuthenticationState struct {
	ReturnURL string `json:"returnUrl,omitempty"`
}

// GetReturnURL returns the pending return URL. Safe on a nil receiver.
func (s *AuthenticationState) GetReturnURL() string {
	if s == nil {
		return ""
	}
	return s.ReturnURL
}

// SetReturnURL records the pending return URL.
func (s *AuthenticationState) SetReturnURL(url string) {
	s.ReturnURL = url
}

// Context is the transient envelope handed to a single bridge operation.
// It is created fresh per operation and never persisted.
type Context[S State] struct {
	// URL is the current browser URL, set for callback completions.
	URL string `json:"url,omitempty"`

	// State is the application authentication state for the operation.
	State S `json:"state,omitempty"`

	// InteractiveRequest carries the options recovered from history entry
	// state, when the operation was entered through an interactive request.
	InteractiveRequest *InteractiveRequestOptions `json:"interactiveRequest,omitempty"`
}

// Result is the terminal output of every sign-in and sign-out operation.
type Result[S State] struct {
	Status       Status `json:"status"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	State        S      `json:"state,omitempty"`
}

// AccessToken is a bearer token granted by the authentication provider.
// It is held only in memory; Value is a secret and must not be logged.
type AccessToken struct {
	Value         string    `json:"value"`
	GrantedScopes []string  `json:"grantedScopes"`
	Expires       time.Time `json:"expires"`
}

// AccessTokenRequestOptions narrows an access token request to specific
// scopes and a specific URL to return to after an interactive acquisition.
type AccessTokenRequestOptions struct {
	Scopes    []string `json:"scopes,omitempty"`
	ReturnURL string   `json:"returnUrl,omitempty"`
}

// AccessTokenResult is the outcome of Service.RequestAccessToken.
type AccessTokenResult struct {
	// Status is TokenStatusSuccess when token acquisition succeeded.
	Status TokenStatus

	// InteractiveRequestURL is the path to navigate to (the login path)
	// when Status is TokenStatusRequiresRedirect.
	InteractiveRequestURL string

	// InteractiveRequest describes the interactive acquisition to perform
	// when Status is TokenStatusRequiresRedirect.
	InteractiveRequest *InteractiveRequestOptions

	token *AccessToken
}

// NewAccessTokenResult builds a token acquisition outcome directly. It is
// meant for TokenProvider implementations other than *Service.
func NewAccessTokenResult(status TokenStatus, token *AccessToken) AccessTokenResult {
	return AccessTokenResult{Status: status, token: token}
}

// Token returns the acquired access token. It yields a token only when the
// result status is TokenStatusSuccess.
func (r AccessTokenResult) Token() (*AccessToken, bool) {
	if r.Status != TokenStatusSuccess || r.token == nil {
		return nil, false
	}
	return r.token, true
}

// TokenResponse is the raw access token outcome reported by the bridge,
// before the service resolves redirect information.
type TokenResponse struct {
	Status TokenStatus  `json:"status"`
	Token  *AccessToken `json:"token,omitempty"`
}

// Account is the raw account shape reported by the bridge's getUser call:
// an open-ended bag of claim values keyed by claim name. A nil Account
// means no user is signed in.
type Account map[string]any

// isNil reports whether v is nil, including typed nils hiding behind an
// interface (a nil *AuthenticationState stored in a State, for instance).
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Map, reflect.Ptr, reflect.Interface, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}
