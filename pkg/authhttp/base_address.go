package authhttp

import (
	"github.com/vango-dev/remoteauth/pkg/remoteauth"
)

// NewBaseAddress creates a RoundTripper preconfigured to attach tokens to
// every request under the application's own base URI. This is the common
// setup for applications calling a first-party API served from the same
// origin.
func NewBaseAddress(provider remoteauth.TokenProvider, nav remoteauth.Navigator, opts ...Option) (*RoundTripper, error) {
	rt := New(provider, opts...)
	if err := rt.Configure([]string{nav.BaseURI()}); err != nil {
		return nil, err
	}
	return rt, nil
}
