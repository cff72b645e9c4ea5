package remoteauth

import "context"

// Bridge is the external JavaScript authentication service, seen through
// the interop boundary. Each method is a single request/response round
// trip; argument and result shapes cross the boundary as camelCase JSON.
//
// The bridge owns the actual protocol work: redirects, popups and token
// storage all happen on the JavaScript side. Implementations must be safe
// to call from the framework's event loop; they are the only suspension
// points in the authentication flows.
type Bridge[S State] interface {
	// Init configures the JavaScript service. Called once per Service
	// instance, before any other method.
	Init(ctx context.Context, providerOptions any, logging LoggingOptions) error

	// SignIn starts a sign-in operation.
	SignIn(ctx context.Context, operation Context[S]) (Result[S], error)

	// CompleteSignIn finishes a redirect sign-in flow using the callback URL.
	CompleteSignIn(ctx context.Context, url string) (Result[S], error)

	// SignOut starts a sign-out operation.
	SignOut(ctx context.Context, operation Context[S]) (Result[S], error)

	// CompleteSignOut finishes a redirect sign-out flow using the callback URL.
	CompleteSignOut(ctx context.Context, url string) (Result[S], error)

	// GetAccessToken obtains an access token, silently when possible.
	// options may be nil to use the provider defaults.
	GetAccessToken(ctx context.Context, options *AccessTokenRequestOptions) (TokenResponse, error)

	// GetUser returns the current account, or nil when signed out.
	GetUser(ctx context.Context) (Account, error)
}
