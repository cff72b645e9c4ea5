package authhttp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/remoteauth/pkg/remoteauth"
)

type fakeTokenProvider struct {
	calls       int
	lastOptions *remoteauth.AccessTokenRequestOptions
	tokenFunc   func() (remoteauth.AccessTokenResult, error)

	subscriber func(remoteauth.Principal)
}

func (p *fakeTokenProvider) RequestAccessToken(ctx context.Context, options *remoteauth.AccessTokenRequestOptions) (remoteauth.AccessTokenResult, error) {
	p.calls++
	p.lastOptions = options
	if p.tokenFunc != nil {
		return p.tokenFunc()
	}
	return remoteauth.NewAccessTokenResult(remoteauth.TokenStatusSuccess, &remoteauth.AccessToken{
		Value:   "token-1",
		Expires: time.Now().Add(time.Hour),
	}), nil
}

func (p *fakeTokenProvider) Subscribe(fn func(remoteauth.Principal)) func() {
	p.subscriber = fn
	return func() { p.subscriber = nil }
}

type capturingTransport struct {
	requests []*http.Request
}

func (t *capturingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.requests = append(t.requests, req)
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("")),
		Request:    req,
	}, nil
}

func newConfiguredRoundTripper(t *testing.T, provider *fakeTokenProvider, transport *capturingTransport, opts ...ConfigureOption) *RoundTripper {
	t.Helper()
	rt := New(provider, WithTransport(transport))
	if err := rt.Configure([]string{"https://api.example.com/v1/"}, opts...); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	return rt
}

func get(t *testing.T, rt *RoundTripper, target string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip(%q) error = %v", target, err)
	}
	resp.Body.Close()
}

func TestRoundTripUnconfiguredFails(t *testing.T) {
	rt := New(&fakeTokenProvider{})
	req, err := http.NewRequest(http.MethodGet, "https://api.example.com/v1/items", nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	if _, err := rt.RoundTrip(req); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("RoundTrip() error = %v, want ErrNotConfigured", err)
	}
}

func TestConfigureValidation(t *testing.T) {
	rt := New(&fakeTokenProvider{})
	if err := rt.Configure(nil); !errors.Is(err, ErrNoAuthorizedURLs) {
		t.Errorf("Configure(nil) error = %v, want ErrNoAuthorizedURLs", err)
	}
	if err := rt.Configure([]string{"/relative"}); err == nil {
		t.Error("Configure(relative) succeeded, want error")
	}
	if err := rt.Configure([]string{"https://api.example.com/"}); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if err := rt.Configure([]string{"https://other.example.com/"}); !errors.Is(err, ErrAlreadyConfigured) {
		t.Errorf("second Configure() error = %v, want ErrAlreadyConfigured", err)
	}
}

func TestRoundTripAttachesBearerToAuthorizedURI(t *testing.T) {
	provider := &fakeTokenProvider{}
	transport := &capturingTransport{}
	rt := newConfiguredRoundTripper(t, provider, transport)

	get(t, rt, "https://api.example.com/v1/items")

	if len(transport.requests) != 1 {
		t.Fatalf("len(requests) = %d, want 1", len(transport.requests))
	}
	if got := transport.requests[0].Header.Get("Authorization"); got != "Bearer token-1" {
		t.Fatalf("Authorization = %q, want %q", got, "Bearer token-1")
	}
}

func TestRoundTripDoesNotMutateOriginalRequest(t *testing.T) {
	provider := &fakeTokenProvider{}
	transport := &capturingTransport{}
	rt := newConfiguredRoundTripper(t, provider, transport)

	req, err := http.NewRequest(http.MethodGet, "https://api.example.com/v1/items", nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip() error = %v", err)
	}
	resp.Body.Close()
	if got := req.Header.Get("Authorization"); got != "" {
		t.Fatalf("original request Authorization = %q, want empty", got)
	}
}

func TestRoundTripPassesThroughOtherURIs(t *testing.T) {
	provider := &fakeTokenProvider{}
	transport := &capturingTransport{}
	rt := newConfiguredRoundTripper(t, provider, transport)

	for _, target := range []string{
		"https://other.example.com/v1/items",
		"http://api.example.com/v1/items",
		"https://api.example.com/v2/items",
	} {
		get(t, rt, target)
	}

	if provider.calls != 0 {
		t.Fatalf("provider calls = %d, want 0", provider.calls)
	}
	for _, req := range transport.requests {
		if got := req.Header.Get("Authorization"); got != "" {
			t.Errorf("%s: Authorization = %q, want empty", req.URL, got)
		}
	}
}

func TestRoundTripCachesTokenUntilExpirationWindow(t *testing.T) {
	expires := time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC)
	provider := &fakeTokenProvider{
		tokenFunc: func() (remoteauth.AccessTokenResult, error) {
			return remoteauth.NewAccessTokenResult(remoteauth.TokenStatusSuccess, &remoteauth.AccessToken{
				Value:   "token-1",
				Expires: expires,
			}), nil
		},
	}
	transport := &capturingTransport{}
	rt := newConfiguredRoundTripper(t, provider, transport)

	now := expires.Add(-time.Hour)
	rt.now = func() time.Time { return now }

	get(t, rt, "https://api.example.com/v1/items")
	get(t, rt, "https://api.example.com/v1/items")
	if provider.calls != 1 {
		t.Fatalf("provider calls while fresh = %d, want 1", provider.calls)
	}

	// One second into the expiration window a fresh token is requested.
	now = expires.Add(-tokenExpirationWindow + time.Second)
	get(t, rt, "https://api.example.com/v1/items")
	if provider.calls != 2 {
		t.Fatalf("provider calls inside window = %d, want 2", provider.calls)
	}
}

func TestRoundTripForwardsConfiguredScopes(t *testing.T) {
	provider := &fakeTokenProvider{}
	transport := &capturingTransport{}
	rt := newConfiguredRoundTripper(t, provider, transport,
		WithScopes("example.read", "example.write"),
		WithReturnURL("https://www.example.com/base/"))

	get(t, rt, "https://api.example.com/v1/items")

	if provider.lastOptions == nil {
		t.Fatal("provider received nil options")
	}
	if got := provider.lastOptions.Scopes; len(got) != 2 || got[0] != "example.read" {
		t.Errorf("Scopes = %v, want [example.read example.write]", got)
	}
	if got := provider.lastOptions.ReturnURL; got != "https://www.example.com/base/" {
		t.Errorf("ReturnURL = %q, want the configured return URL", got)
	}
}

func TestRoundTripTokenUnavailable(t *testing.T) {
	provider := &fakeTokenProvider{
		tokenFunc: func() (remoteauth.AccessTokenResult, error) {
			return remoteauth.NewAccessTokenResult(remoteauth.TokenStatusRequiresRedirect, nil), nil
		},
	}
	transport := &capturingTransport{}
	rt := newConfiguredRoundTripper(t, provider, transport, WithScopes("example.read"))

	req, err := http.NewRequest(http.MethodGet, "https://api.example.com/v1/items", nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	_, err = rt.RoundTrip(req)

	var unavailable *TokenUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("RoundTrip() error = %v, want *TokenUnavailableError", err)
	}
	if unavailable.Result.Status != remoteauth.TokenStatusRequiresRedirect {
		t.Errorf("Result.Status = %q, want %q", unavailable.Result.Status, remoteauth.TokenStatusRequiresRedirect)
	}
	if len(unavailable.Scopes) != 1 || unavailable.Scopes[0] != "example.read" {
		t.Errorf("Scopes = %v, want [example.read]", unavailable.Scopes)
	}
	if len(transport.requests) != 0 {
		t.Errorf("requests forwarded = %d, want 0", len(transport.requests))
	}
}

func TestRoundTripInvalidatesCacheOnStateChange(t *testing.T) {
	provider := &fakeTokenProvider{}
	transport := &capturingTransport{}
	rt := newConfiguredRoundTripper(t, provider, transport)

	get(t, rt, "https://api.example.com/v1/items")
	get(t, rt, "https://api.example.com/v1/items")
	if provider.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", provider.calls)
	}

	if provider.subscriber == nil {
		t.Fatal("round tripper did not subscribe to state changes")
	}
	provider.subscriber(remoteauth.Principal{})

	get(t, rt, "https://api.example.com/v1/items")
	if provider.calls != 2 {
		t.Fatalf("provider calls after state change = %d, want 2", provider.calls)
	}

	if err := rt.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if provider.subscriber != nil {
		t.Fatal("subscription still active after Close")
	}
}

func TestIsBaseOf(t *testing.T) {
	tests := []struct {
		base   string
		target string
		want   bool
	}{
		{"https://api.example.com/", "https://api.example.com/items", true},
		{"https://api.example.com", "https://api.example.com/items", true},
		{"https://API.example.COM/", "https://api.example.com/items", true},
		{"https://api.example.com/v1/", "https://api.example.com/v1", true},
		{"https://api.example.com/v1/", "https://api.example.com/v1/items", true},
		{"https://api.example.com/v1/", "https://api.example.com/v11/items", false},
		{"https://api.example.com/", "http://api.example.com/items", false},
		{"https://api.example.com/", "https://other.example.com/items", false},
	}
	for _, tt := range tests {
		base, err := url.Parse(tt.base)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.base, err)
		}
		target, err := url.Parse(tt.target)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.target, err)
		}
		if got := isBaseOf(base, target); got != tt.want {
			t.Errorf("isBaseOf(%q, %q) = %v, want %v", tt.base, tt.target, got, tt.want)
		}
	}
}
