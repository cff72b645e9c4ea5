// Package authhttp attaches bearer tokens to outgoing HTTP requests.
//
// RoundTripper wraps an http.RoundTripper and consults a
// remoteauth.TokenProvider before forwarding each request. Requests whose
// target URI is covered by one of the configured authorized base URIs get
// an Authorization header with a cached access token, refreshed when the
// token is within five minutes of expiry; all other requests pass through
// untouched.
//
//	rt := authhttp.New(service)
//	if err := rt.Configure([]string{"https://api.example.com/"}); err != nil { ... }
//	client := &http.Client{Transport: rt}
//
// When no usable token can be obtained, RoundTrip fails with a
// *TokenUnavailableError carrying the interactive request the caller can
// redirect into:
//
//	var tokenErr *authhttp.TokenUnavailableError
//	if errors.As(err, &tokenErr) {
//	    tokenErr.Redirect(nav, nil)
//	}
package authhttp
