package remoteauth

import (
	"fmt"
	"net/url"
)

// NavigateOptions control how a navigation manipulates browser history.
// ReplaceHistoryEntry and ForceLoad are independent: an in-app navigation
// can replace the current entry without reloading, and a full page load can
// keep or replace the entry.
type NavigateOptions struct {
	// ReplaceHistoryEntry replaces the current history entry instead of
	// pushing a new one.
	ReplaceHistoryEntry bool

	// ForceLoad performs a full page load instead of an in-app navigation.
	ForceLoad bool

	// HistoryEntryState is opaque data attached to the target history
	// entry, readable through Navigator.HistoryEntryState after arrival.
	HistoryEntryState string
}

// Navigator is the slice of the host framework's navigation manager the
// authentication layer needs.
type Navigator interface {
	// URI returns the current absolute URI.
	URI() string

	// BaseURI returns the application base URI, with a trailing slash.
	BaseURI() string

	// HistoryEntryState returns the opaque state attached to the current
	// history entry, or "" when none is attached.
	HistoryEntryState() string

	// NavigateTo navigates to uri, which may be absolute or relative to
	// the base URI.
	NavigateTo(uri string, opts NavigateOptions)
}

// authNavigationOptions is the navigation shape used for every transition
// the state machine issues: replace the current entry, stay in-app.
var authNavigationOptions = NavigateOptions{ReplaceHistoryEntry: true}

// NavigateToLogin navigates to the login path with the interactive request
// attached as history entry state, so the request survives the redirect
// round trip.
func NavigateToLogin(nav Navigator, loginPath string, request *InteractiveRequestOptions) error {
	if request == nil {
		request = &InteractiveRequestOptions{
			Interaction: InteractionSignIn,
			ReturnURL:   nav.URI(),
		}
	}
	state, err := request.ToState()
	if err != nil {
		return err
	}
	nav.NavigateTo(loginPath, NavigateOptions{HistoryEntryState: state})
	return nil
}

// NavigateToLogout navigates to the logout path, marking the request as
// initiated from within the application. returnURL may be empty.
func NavigateToLogout(nav Navigator, logoutPath, returnURL string) error {
	state, err := (&InteractiveRequestOptions{
		Interaction: InteractionSignOut,
		ReturnURL:   returnURL,
	}).ToState()
	if err != nil {
		return err
	}
	nav.NavigateTo(logoutPath, NavigateOptions{HistoryEntryState: state})
	return nil
}

// toAbsoluteURI resolves uri against the navigator's base URI.
func toAbsoluteURI(nav Navigator, uri string) (*url.URL, error) {
	base, err := url.Parse(nav.BaseURI())
	if err != nil {
		return nil, fmt.Errorf("remoteauth: parse base URI: %w", err)
	}
	ref, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("remoteauth: parse URI %q: %w", uri, err)
	}
	return base.ResolveReference(ref), nil
}
