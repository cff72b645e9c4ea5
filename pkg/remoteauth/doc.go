// Package remoteauth drives OpenID Connect style sign-in and sign-out
// flows for browser-hosted applications.
//
// The package is glue, not a protocol implementation. The actual OAuth/OIDC
// exchange (authorization requests, token exchange, PKCE) is performed by an
// external JavaScript authentication service reached through the Bridge
// interface. remoteauth orchestrates calls to it, decides what to do with
// the results, and tells the host framework which UI fragment to show and
// where to navigate next.
//
// # The Two Halves
//
// remoteauth has two independent halves:
//
//   - The Authenticator state machine consumes a navigation action
//     ("login", "logout-callback", ...) and drives the Service through the
//     corresponding sign-in or sign-out operation, translating the result
//     into a follow-up navigation or a rendered fragment.
//
//   - The authhttp.RoundTripper (see the authhttp package) intercepts
//     outgoing HTTP requests and attaches cached bearer tokens obtained
//     through the same Service, viewed as a token provider.
//
// # Actions and Navigation
//
// Authentication routes live under configurable paths (PathsOptions). The
// host application routes "authentication/{action}" to the Authenticator:
//
//	authn := remoteauth.NewAuthenticator(service, nav, &remoteauth.AuthenticationState{})
//	if err := authn.HandleAction(ctx, action); err != nil {
//	    // programmer error: unknown action or an invalid bridge result
//	}
//	fragment, _ := authn.Fragment()
//	render(fragment)
//
// Interactive requests survive full-page redirects by riding along as
// opaque history entry state (InteractiveRequestOptions.ToState). Use
// NavigateToLogin and NavigateToLogout to enter the flows so that state is
// attached correctly.
//
// # Concurrency
//
// All operations are expected to run on the framework's single UI event
// loop. Suspension points are exactly the bridge calls; re-entrant dispatch
// of the same action is made a no-op by the Authenticator's last-handled
// guard, not by locking.
package remoteauth
